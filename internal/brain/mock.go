package brain

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator produces deterministic local replies when no provider key
// is configured.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (g *MockGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	lines := strings.Split(strings.TrimSpace(req.Prompt), "\n")
	last := ""
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" && l != "Memory Bridge:" {
			last = l
			break
		}
	}
	if last == "" {
		return Response{Text: "I am listening."}, nil
	}
	return Response{Text: fmt.Sprintf("I heard you: %s", last)}, nil
}
