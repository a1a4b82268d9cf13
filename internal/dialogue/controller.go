// Package dialogue orchestrates one inbound message end to end: locale
// detection, short-term memory update, long-term recall, prompt assembly,
// generation with retry, and persistence.
package dialogue

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/membridge/membridge/internal/brain"
	"github.com/membridge/membridge/internal/lang"
	"github.com/membridge/membridge/internal/observability"
	"github.com/membridge/membridge/internal/prompt"
	"github.com/membridge/membridge/internal/recall"
	"github.com/membridge/membridge/internal/shortterm"
)

// Controller owns the per-message lifecycle. All collaborators are injected
// at construction; nothing here reaches for globals.
type Controller struct {
	memory      *shortterm.FileStore
	archive     *recall.Archive
	generator   brain.Generator
	metrics     *observability.Metrics
	recallLimit int
}

func New(memory *shortterm.FileStore, archive *recall.Archive, generator brain.Generator, metrics *observability.Metrics, recallLimit int) *Controller {
	if recallLimit <= 0 {
		recallLimit = 3
	}
	return &Controller{
		memory:      memory,
		archive:     archive,
		generator:   generator,
		metrics:     metrics,
		recallLimit: recallLimit,
	}
}

// HandleMessage runs one dialogue turn and returns the reply text and the
// locale it was written in. Every failure past retry exhaustion resolves to
// the localized apology; the user's turn is persisted on every path.
func (c *Controller) HandleMessage(ctx context.Context, userID, text string) (string, lang.Locale) {
	turnID := uuid.NewString()
	// Locale follows the current message only, never stored history.
	locale := lang.Detect(text)

	release := c.memory.Acquire(userID)
	defer release()

	mem := c.memory.Load(userID)
	mem.Locale = locale
	mem.AppendTurn(shortterm.RoleUser, text)

	recalled := c.archive.Search(ctx, userID, text, c.recallLimit)
	c.metrics.RecallHits.Observe(float64(len(recalled)))

	payload := prompt.Build(mem, text, recalled)

	start := time.Now()
	res, err := c.generator.Generate(ctx, brain.Request{UserID: userID, Prompt: payload})
	c.metrics.ObserveGenerationLatency(time.Since(start))

	if err != nil {
		c.metrics.ProviderErrors.WithLabelValues(errorKind(err)).Inc()
		c.metrics.Turns.WithLabelValues("degraded").Inc()
		log.Printf("[dialogue] turn %s user %s degraded: %v", turnID, userID, err)
		c.save(mem)
		return prompt.Apology(locale), locale
	}

	mem.AppendTurn(shortterm.RoleAssistant, res.Text)
	c.save(mem)

	c.archive.Index(ctx, userID, shortterm.RoleUser, text)
	c.archive.Index(ctx, userID, shortterm.RoleAssistant, res.Text)
	c.metrics.IndexedRecords.Add(2)

	c.metrics.Turns.WithLabelValues("success").Inc()
	return res.Text, locale
}

// Welcome handles the /start and /help greeting: it resolves the user's
// locale (transport hint first, then detection), persists it, and returns
// the localized welcome text.
func (c *Controller) Welcome(ctx context.Context, userID, localeHint, text string) (string, lang.Locale) {
	locale, ok := lang.Match(localeHint)
	if !ok {
		if text != "" {
			locale = lang.Detect(text)
		} else {
			locale = lang.Default
		}
	}

	release := c.memory.Acquire(userID)
	defer release()

	mem := c.memory.Load(userID)
	mem.Locale = locale
	c.save(mem)

	c.metrics.Turns.WithLabelValues("welcome").Inc()
	return prompt.Welcome(locale), locale
}

// save logs instead of propagating: a failed write costs continuity on the
// next restart, not the current reply.
func (c *Controller) save(mem *shortterm.UserMemory) {
	if err := c.memory.Save(mem); err != nil {
		log.Printf("[dialogue] persist memory for %s failed: %v", mem.UserID, err)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, brain.ErrEmptyPrompt):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transient"
	}
}
