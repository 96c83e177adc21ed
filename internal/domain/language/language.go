package language

import (
	"fmt"
	"unicode"
)

// Language selects the prompt template family for a session. It is a tagged
// variant resolved once per session, not inspected at runtime.
type Language string

const (
	// Auto defers the choice until the first question of a session.
	Auto Language = "auto"
	// Chinese selects the Chinese prompt templates.
	Chinese Language = "chinese"
	// English selects the English prompt templates.
	English Language = "english"
)

// Parse validates a configured language name. Empty means Auto; the short
// forms zh and en are accepted alongside the full names.
func Parse(s string) (Language, error) {
	switch s {
	case "", "auto":
		return Auto, nil
	case "zh", "chinese":
		return Chinese, nil
	case "en", "english":
		return English, nil
	default:
		return "", fmt.Errorf("unknown language %q (want auto, zh or en)", s)
	}
}

// Detect classifies text as Chinese when it contains any Han rune,
// English otherwise.
func Detect(text string) Language {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return Chinese
		}
	}
	return English
}

// Resolve pins an Auto language using the given text; concrete languages
// pass through unchanged.
func (l Language) Resolve(text string) Language {
	if l == Auto {
		return Detect(text)
	}
	return l
}
