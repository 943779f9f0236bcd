package services

import (
	"errors"
	"strings"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// languageAliases normalizes common synonyms to the canonical name
// before the id lookup
var languageAliases = map[string]string{
	"js":      "javascript",
	"node":    "javascript",
	"py":      "python",
	"python3": "python",
	"golang":  "go",
	"c++":     "cpp",
	"ts":      "typescript",
	"cs":      "csharp",
	"c#":      "csharp",
}

// languageIDs maps canonical names to the judge service's language codes
var languageIDs = map[string]int{
	"c":          50,
	"csharp":     51,
	"cpp":        54,
	"go":         60,
	"java":       62,
	"javascript": 63,
	"python":     71,
	"ruby":       72,
	"rust":       73,
	"typescript": 74,
}

// ResolveLanguage maps a human-supplied language name to the judge service's
// language code. Case-insensitive; unknown names yield ErrUnsupportedLanguage.
func ResolveLanguage(name string) (int, error) {
	lang := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := languageAliases[lang]; ok {
		lang = canonical
	}
	id, ok := languageIDs[lang]
	if !ok {
		return 0, ErrUnsupportedLanguage
	}
	return id, nil
}
