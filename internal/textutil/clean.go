// Package textutil normalizes text before it enters a prompt. Malformed
// UTF-8 or stray control characters cause request encoding failures at
// the provider, so every text field flowing into the composer passes
// through Clean first.
package textutil

import (
	"html"
	"strings"
	"unicode/utf8"
)

// Clean decodes HTML entities, drops null bytes and control characters
// (except tab, newline and carriage return), and replaces invalid UTF-8
// sequences so the result is always valid UTF-8.
func Clean(text string) string {
	text = html.UnescapeString(text)

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			// Invalid byte sequence: drop it.
			i++
			continue
		}
		i += size

		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7F:
			// Control character: drop.
		case r >= 0xFDD0 && r <= 0xFDEF:
			// Unicode noncharacters.
		case r&0xFFFE == 0xFFFE:
			// U+xxFFFE and U+xxFFFF in every plane.
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}

// CollapseWhitespace replaces runs of whitespace with a single space.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TrimWords returns at most n whitespace-separated words of text. For
// scripts written without spaces (such as Chinese) a word is
// approximated by a run of up to four runes, matching how the CMS trims
// excerpts.
func TrimWords(text string, n int) string {
	if n <= 0 {
		return ""
	}

	fields := strings.Fields(text)
	if len(fields) > 1 || text == "" {
		if len(fields) <= n {
			return strings.Join(fields, " ")
		}
		return strings.Join(fields[:n], " ")
	}

	// Single unbroken run: budget by runes instead.
	runes := []rune(text)
	limit := n * 4
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// TruncateRunes cuts text to at most n runes without splitting a
// multibyte sequence.
func TruncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
