package telegram

import (
	"context"
	"log"
	"time"
)

// Handler processes one inbound update. Implementations must be safe for
// concurrent calls: updates from different users are dispatched in
// parallel.
type Handler func(ctx context.Context, upd Update)

// Poller drives pull delivery via getUpdates long polling.
type Poller struct {
	client  *Client
	handler Handler
	timeout time.Duration
}

func NewPoller(client *Client, handler Handler) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		timeout: 50 * time.Second,
	}
}

// Run polls until ctx is cancelled. Transport errors back off briefly and
// the loop continues; a dead transport must not kill the process.
func (p *Poller) Run(ctx context.Context) {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[telegram] getUpdates failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			// One task per message; per-user ordering is enforced further
			// down by the short-term store's user scope.
			go p.handler(ctx, upd)
		}
	}
}
