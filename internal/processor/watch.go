package processor

import (
	"context"
	"log"
	"strings"
)

// RowChange is delivered whenever the word cell of a single row changes.
// An empty word means "clear the row".
type RowChange struct {
	Row  int
	Word string
}

// Watch consumes row-changed events until the channel closes or the context
// is cancelled. It is the single consumer: events for the same sheet must not
// be fanned out to more than one Watch loop.
func (p *Processor) Watch(ctx context.Context, events <-chan RowChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.handle(ctx, ev)
		}
	}
}

func (p *Processor) handle(ctx context.Context, ev RowChange) {
	if strings.TrimSpace(ev.Word) == "" {
		if err := p.Clear(ctx, ev.Row); err != nil {
			log.Printf("Error clearing row %d: %v", ev.Row, err)
		}
		return
	}
	if err := p.Process(ctx, ev.Word, ev.Row); err != nil {
		log.Printf("Error processing %q at row %d: %v", ev.Word, ev.Row, err)
	}
}
