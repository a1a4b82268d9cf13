// Package prompt assembles generation payloads from the persona preamble,
// the short-term dialogue window, and optional long-term recall hits. All
// assembly is pure: identical inputs produce identical payloads.
package prompt

import (
	"fmt"
	"strings"

	"github.com/membridge/membridge/internal/shortterm"
)

// HistoryWindow bounds how many recent turns are rendered into the payload.
const HistoryWindow = 10

// Build renders one generation payload: persona preamble for the memory's
// locale, recall hits (when any), the most recent turns oldest-first as
// "role: text" lines, and the current message with an explicit reply cue.
func Build(mem *shortterm.UserMemory, message string, recalled []string) string {
	t := ForLocale(mem.Locale)

	var b strings.Builder
	b.WriteString(t.Persona)
	b.WriteString("\n\n")

	if len(recalled) > 0 {
		b.WriteString(t.MemoriesLabel)
		b.WriteString("\n")
		for _, hit := range recalled {
			b.WriteString("- ")
			b.WriteString(hit)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(t.HistoryLabel)
	b.WriteString("\n")
	for _, turn := range mem.RecentTurns(HistoryWindow) {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
	}

	fmt.Fprintf(&b, "\n%s: %s\nMemory Bridge:", t.UserLabel, message)
	return b.String()
}
