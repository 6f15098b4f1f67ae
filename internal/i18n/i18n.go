package i18n

import "strings"

const (
	LocaleNorwegian = "no"
	LocaleEnglish   = "en"

	// DefaultLocale is used for unknown or empty locales.
	DefaultLocale = LocaleNorwegian
)

var supported = map[string]struct{}{
	LocaleNorwegian: {},
	LocaleEnglish:   {},
}

// NormalizeLocale lower-cases raw and falls back to DefaultLocale when unsupported.
func NormalizeLocale(raw string) string {
	locale := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := supported[locale]; ok {
		return locale
	}
	return DefaultLocale
}

// ResolveResourcePath returns the question bank path of a theme for a locale.
// Norwegian banks carry no suffix, English ones are suffixed with "-en".
func ResolveResourcePath(theme, locale string) string {
	suffix := ""
	if NormalizeLocale(locale) == LocaleEnglish {
		suffix = "-en"
	}
	return "data/questions-" + theme + suffix + ".json"
}
