package strex

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// localeClarifications carries prompt hints for locales whose bare language
// name is ambiguous to the model.
var localeClarifications = map[string]string{
	"zh_CN": "Use Simplified Chinese characters and Mainland China conventions.",
	"zh_TW": "Use Traditional Chinese characters and Taiwan conventions.",
	"pt_BR": "Use Brazilian Portuguese vocabulary and spelling.",
	"pt_PT": "Use European Portuguese vocabulary and spelling.",
	"en_GB": "Use British English spelling.",
	"sr_RS": "Use Cyrillic script.",
}

// LanguageName returns the human-readable English name of a language code
// for use in prompts, e.g. "zh_CN" -> "Chinese". Falls back to the code
// itself when it cannot be parsed.
func LanguageName(code string) string {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// LocaleClarification returns an extra prompt hint for ambiguous locales,
// or "" when none is needed.
func LocaleClarification(code string) string {
	return localeClarifications[NormalizeLocale(code)]
}

// NormalizeLocale converts a language code to underscore form
// (e.g. "zh-CN" -> "zh_CN").
func NormalizeLocale(code string) string {
	return strings.ReplaceAll(code, "-", "_")
}

// BaseLang extracts the lowercase base language ("zh" from "zh_CN").
func BaseLang(code string) string {
	base, _, _ := strings.Cut(NormalizeLocale(code), "_")
	return strings.ToLower(base)
}

// SameLanguage reports whether two codes share a base language, in which
// case translation can be bypassed.
func SameLanguage(a, b string) bool {
	return BaseLang(a) == BaseLang(b)
}
