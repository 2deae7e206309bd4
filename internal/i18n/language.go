package i18n

import (
	"golang.org/x/text/language"
)

type Language struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

// Languages lists the supported display languages; the first is the default.
var Languages = []Language{
	{Tag: "en", Name: "English"},
	{Tag: "ta", Name: "தமிழ்"},
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Tamil})

// Supported reports whether tag is one of Languages.
func Supported(tag string) bool {
	for _, l := range Languages {
		if l.Tag == tag {
			return true
		}
	}
	return false
}

// Match picks a supported tag from an explicit choice, falling back to an
// Accept-Language header and finally to English.
func Match(explicit, acceptLanguage string) string {
	if Supported(explicit) {
		return explicit
	}
	candidates := []string{}
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	if acceptLanguage != "" {
		candidates = append(candidates, acceptLanguage)
	}
	if len(candidates) == 0 {
		return Languages[0].Tag
	}
	_, idx := language.MatchStrings(matcher, candidates...)
	return Languages[idx].Tag
}
