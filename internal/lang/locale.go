// Package lang classifies utterances into the closed set of supported
// locales and normalizes transport-provided locale hints.
package lang

import "strings"

// Locale is a supported conversation locale.
type Locale string

const (
	EN Locale = "en"
	RU Locale = "ru"
)

// Default is the fallback locale for unsupported or unknown detections.
const Default = EN

// Supported lists every locale the service can converse in.
func Supported() []Locale {
	return []Locale{EN, RU}
}

// IsSupported reports whether l is part of the closed locale set.
func IsSupported(l Locale) bool {
	switch l {
	case EN, RU:
		return true
	default:
		return false
	}
}

// Detect classifies an utterance by a cheap script heuristic: any Cyrillic
// rune means Russian, everything else is English. Total over all inputs.
func Detect(text string) Locale {
	for _, r := range text {
		if r >= 0x0400 && r <= 0x04FF {
			return RU
		}
	}
	return EN
}

// Match resolves an arbitrary locale hint (e.g. a Telegram language_code
// such as "ru-RU") against the supported set. ok is false when the hint
// names no supported locale.
func Match(hint string) (Locale, bool) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if i := strings.IndexAny(hint, "-_"); i > 0 {
		hint = hint[:i]
	}
	l := Locale(hint)
	if IsSupported(l) {
		return l, true
	}
	return Default, false
}

// Normalize is Match with the fallback folded in: unsupported hints map to
// Default. Total function.
func Normalize(hint string) Locale {
	l, _ := Match(hint)
	return l
}
