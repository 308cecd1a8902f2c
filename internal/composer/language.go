package composer

import (
	"regexp"
	"strings"

	"github.com/kwlam/sitechat/internal/config"
)

var (
	acceptsEnglish = regexp.MustCompile(`\ben\b`)
	acceptsChinese = regexp.MustCompile(`\bzh\b`)
)

// DetectLocale picks the response language for a request. Signals are
// checked strongest first: a language prefix in the page URL, then the
// site's configured locale, then the browser's Accept-Language, and
// finally Traditional Chinese.
func DetectLocale(pageURL, acceptLanguage string, siteLocale config.Locale) config.Locale {
	if strings.Contains(pageURL, "/en/") || strings.Contains(pageURL, "/en-") {
		return config.LocaleEnglish
	}
	if strings.Contains(pageURL, "/zh/") || strings.Contains(pageURL, "/zh-") {
		return config.LocaleChinese
	}

	switch siteLocale {
	case config.LocaleEnglish, config.LocaleChinese:
		return siteLocale
	}

	// English only when the browser asks for it and not for Chinese too;
	// mixed preferences keep the Chinese default.
	if acceptsEnglish.MatchString(acceptLanguage) && !acceptsChinese.MatchString(acceptLanguage) {
		return config.LocaleEnglish
	}

	return config.LocaleChinese
}
