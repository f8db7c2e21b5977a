package language

import "strings"

// Language is a target language suggested in the form.
type Language struct {
	Code string
	Name string
}

// DefaultCode is preselected when nothing was saved.
const DefaultCode = "zh-hant"

// Suggested lists the codes offered by the language picker, in display order.
// Any other code is still passed through to the translator unchanged.
var Suggested = []Language{
	{Code: "en", Name: "English"},
	{Code: "zh-hans", Name: "Chinese (Simplified)"},
	{Code: "zh-hant", Name: "Chinese (Traditional)"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "es", Name: "Spanish"},
}

// Codes returns the suggested codes in display order.
func Codes() []string {
	codes := make([]string, 0, len(Suggested))
	for _, l := range Suggested {
		codes = append(codes, l.Code)
	}
	return codes
}

// GetLanguage looks up a suggested language by code, case-insensitively.
func GetLanguage(code string) (Language, bool) {
	needle := strings.TrimSpace(code)
	for _, l := range Suggested {
		if strings.EqualFold(l.Code, needle) {
			return l, true
		}
	}
	return Language{}, false
}

// IsSuggested reports whether code is one of the picker entries.
func IsSuggested(code string) bool {
	_, ok := GetLanguage(code)
	return ok
}

// Resolve maps a code or display name ("Japanese") to a suggested code.
// Unknown input is returned trimmed, since the translator accepts any code.
func Resolve(input string) string {
	needle := strings.TrimSpace(input)
	if l, ok := GetLanguage(needle); ok {
		return l.Code
	}
	for _, l := range Suggested {
		if strings.EqualFold(l.Name, needle) {
			return l.Code
		}
	}
	return needle
}
