package llm

import (
	"strings"

	"github.com/tidwall/gjson"
)

// responsePaths are tried in order against the raw response body.
// Different gateways wrap the assistant text differently; the standard
// chat-completion shape comes first, then the common flat variants.
var responsePaths = []string{
	"choices.0.message.content",
	"content",
	"response",
	"text",
	"message",
	"data.message",
}

// extractContent pulls the assistant text out of a completion response
// body. Returns "" when no strategy matches.
func extractContent(body []byte) string {
	root := gjson.ParseBytes(body)

	for _, path := range responsePaths {
		v := root.Get(path)
		if v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}

	// Last resort: the first substantial string anywhere near the top of
	// the document. Short strings are skipped so ids and status words do
	// not masquerade as the reply.
	return firstLongString(root, 2)
}

func firstLongString(v gjson.Result, depth int) string {
	if depth < 0 {
		return ""
	}

	var found string
	v.ForEach(func(_, child gjson.Result) bool {
		switch child.Type {
		case gjson.String:
			if s := strings.TrimSpace(child.String()); len(s) > 10 {
				found = s
				return false
			}
		case gjson.JSON:
			if s := firstLongString(child, depth-1); s != "" {
				found = s
				return false
			}
		}
		return true
	})
	return found
}
