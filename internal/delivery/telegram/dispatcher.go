package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shardBuffer = 64

type EventHandler func(ctx context.Context, ev Event)

// Dispatcher fans updates out to a fixed set of workers.
// Events of one user always land on the same worker and keep their order.
type Dispatcher struct {
	workers int
	handle  EventHandler
	logger  *zap.Logger
}

func NewDispatcher(workers int, handle EventHandler, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{workers: workers, handle: handle, logger: logger}
}

// Run consumes updates until ctx is done or the channel is closed.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	g, ctx := errgroup.WithContext(ctx)

	shards := make([]chan Event, d.workers)
	for i := range shards {
		ch := make(chan Event, shardBuffer)
		shards[i] = ch
		g.Go(func() error {
			for ev := range ch {
				d.safeHandle(ctx, ev)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, ch := range shards {
				close(ch)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case u, ok := <-updates:
				if !ok {
					return nil
				}
				ev, ok := EventFromUpdate(u)
				if !ok {
					d.logger.Debug("update skipped", zap.Int("update_id", u.UpdateID))
					continue
				}
				select {
				case shards[shardFor(ev.User.ID, len(shards))] <- ev:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	})

	return g.Wait()
}

func (d *Dispatcher) safeHandle(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panic",
				zap.String("kind", ev.Kind.String()),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	d.handle(ctx, ev)
}

func shardFor(userID int64, n int) int {
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(n))
}
