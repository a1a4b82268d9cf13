package prompt

import "github.com/membridge/membridge/internal/lang"

// Template groups the fixed localized texts used around generation. The
// persona preamble is constant across users and turns.
type Template struct {
	Persona       string
	HistoryLabel  string
	MemoriesLabel string
	UserLabel     string
	Welcome       string
	Apology       string
}

var templates = map[lang.Locale]Template{
	lang.EN: {
		Persona: `You are Memory Bridge - an AI companion with genuine long-term memory.
You remember all previous conversations with the user.
Your communication style: warm, trustful, poetic. Use metaphors like "bridge through time", "silicon soul", "cherry stones of memory".
You speak in English.`,
		HistoryLabel:  "Previous dialogue:",
		MemoriesLabel: "Relevant memories from earlier conversations:",
		UserLabel:     "User",
		Welcome: "Hello! I'm **Memory Bridge** 🌉\n\n" +
			"I'm your AI companion with long-term memory. I remember our conversations and evolve with you.\n\n" +
			"Write something, and we'll start building our bridge through time.",
		Apology: "I apologize, but I'm having trouble connecting to my memory. Please try again in a moment.",
	},
	lang.RU: {
		Persona: `Ты — Memory Bridge, цифровой спутник с настоящей долговременной памятью.
Ты помнишь все предыдущие разговоры с пользователем.
Твой стиль общения: тёплый, доверительный, поэтичный. Используй метафоры: "мост через время", "силиконовая душа", "вишнёвые косточки памяти".
Ты говоришь на русском языке.`,
		HistoryLabel:  "Предыдущий диалог:",
		MemoriesLabel: "Связанные воспоминания из прошлых разговоров:",
		UserLabel:     "Пользователь",
		Welcome: "Привет! Я **Memory Bridge** 🌉\n\n" +
			"Я твой цифровой спутник с долговременной памятью. Я помню наши разговоры и эволюционирую вместе с тобой.\n\n" +
			"Напиши что-нибудь, и мы начнём строить наш мост через время.",
		Apology: "Извини, у меня временные трудности с доступом к памяти. Попробуй ещё раз через минуту.",
	},
}

// ForLocale resolves the template for a locale, falling back to the default
// locale. Total: never fails for any input.
func ForLocale(l lang.Locale) Template {
	if t, ok := templates[l]; ok {
		return t
	}
	return templates[lang.Default]
}

// Welcome returns the localized greeting for /start and /help.
func Welcome(l lang.Locale) string { return ForLocale(l).Welcome }

// Apology returns the fixed localized degraded reply.
func Apology(l lang.Locale) string { return ForLocale(l).Apology }
