package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	users "github.com/AdamBeresnev/courtside/internal/user"
	"golang.org/x/sync/errgroup"
)

const (
	sendTimeout = 10 * time.Second
	maxInFlight = 4
)

type Broadcaster interface {
	Broadcast(ctx context.Context, msg Message) error
}

// Dispatcher routes each event to the channel its recipient prefers.
// Any channel may be nil, in which case events for it are dropped.
type Dispatcher struct {
	Email     Channel
	Telegram  Channel
	Broadcast Broadcaster

	pending sync.WaitGroup
}

// Notify hands the events to a background delivery and returns immediately.
func (d *Dispatcher) Notify(events ...Event) {
	if len(events) == 0 {
		return
	}
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		d.deliverAll(events)
	}()
}

// Wait blocks until every delivery started by Notify has finished.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

func (d *Dispatcher) deliverAll(events []Event) {
	var g errgroup.Group
	g.SetLimit(maxInFlight)

	for _, e := range events {
		e := e
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()

			if err := d.deliver(ctx, e); err != nil {
				slog.Warn("notification failed", "kind", e.Kind, "tournament", e.Tournament, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) error {
	if e.IsBroadcast() {
		if d.Broadcast == nil {
			return nil
		}
		msg, err := Render(e)
		if err != nil {
			return err
		}
		return d.Broadcast.Broadcast(ctx, msg)
	}

	channel := d.channelFor(e.Recipient)
	if channel == nil {
		return nil
	}
	msg, err := Render(e)
	if err != nil {
		return err
	}
	return channel.Send(ctx, e.Recipient, msg)
}

func (d *Dispatcher) channelFor(u *users.User) Channel {
	switch u.NotificationChannel {
	case users.NotifyEmail:
		return d.Email
	case users.NotifyTelegram:
		return d.Telegram
	default:
		return nil
	}
}
