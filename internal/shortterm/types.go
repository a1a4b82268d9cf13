// Package shortterm owns the bounded per-user dialogue window. One JSON file
// per user holds the full record; Save fully rewrites it (last writer wins).
package shortterm

import (
	"time"

	"github.com/membridge/membridge/internal/lang"
)

// MaxHistory caps the dialogue window; the oldest turns are evicted first.
const MaxHistory = 20

// DefaultTrustLevel seeds new records. Nothing mutates it yet; the field is
// carried for forward compatibility with relationship scoring.
const DefaultTrustLevel = 0.5

// Turn is a single user or assistant utterance. Immutable once appended.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// UserMemory is the per-user short-term record persisted as one file.
type UserMemory struct {
	UserID     string      `json:"user_id"`
	CreatedAt  time.Time   `json:"created_at"`
	Locale     lang.Locale `json:"locale"`
	History    []Turn      `json:"history"`
	Concepts   []string    `json:"concepts"`
	TrustLevel float64     `json:"trust_level"`
}

// NewUserMemory returns a fresh default record for a user seen for the
// first time (or whose persisted state could not be read).
func NewUserMemory(userID string) *UserMemory {
	return &UserMemory{
		UserID:     userID,
		CreatedAt:  time.Now().UTC(),
		Locale:     lang.Default,
		History:    []Turn{},
		Concepts:   []string{},
		TrustLevel: DefaultTrustLevel,
	}
}

// AppendTurn appends a turn stamped with the current time and enforces the
// history cap by discarding from the front.
func (m *UserMemory) AppendTurn(role, text string) {
	m.History = append(m.History, Turn{
		Role: role,
		Text: text,
		Time: time.Now().UTC(),
	})
	if len(m.History) > MaxHistory {
		m.History = m.History[len(m.History)-MaxHistory:]
	}
}

// RecentTurns returns up to n most recent turns in chronological order.
func (m *UserMemory) RecentTurns(n int) []Turn {
	if n <= 0 || n > len(m.History) {
		n = len(m.History)
	}
	return m.History[len(m.History)-n:]
}
