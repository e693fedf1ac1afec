package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/courtside/internal/notify"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tour := env.tournament(t, env.organizer(t), func(tr *tournament.Tournament) {
		tr.MaxParticipants = utils.Ptr(2)
	})
	p := env.players(t, 5)

	var wg sync.WaitGroup
	errs := make(chan error, len(p))
	for _, pl := range p {
		pl := pl
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.entries.Join(ctx, pl, tour.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	parts, err := env.entries.Participants(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, parts.Confirmed, 2)
	assert.Len(t, parts.Waitlist, 3)
}

// stallingNotifier blocks its first call until release is closed.
type stallingNotifier struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (n *stallingNotifier) Notify(...notify.Event) {
	first := false
	n.once.Do(func() { first = true })
	if !first {
		return
	}
	close(n.entered)
	<-n.release
}

func TestJoinNotifiesOutsideTournamentLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tour := env.tournament(t, env.organizer(t), nil)
	p := env.players(t, 2)

	notes := &stallingNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	entries := NewEntryService(env.db, env.tStore, env.uStore, notes)
	defer close(notes.release)

	go func() {
		_, _ = entries.Join(ctx, p[0], tour.ID)
	}()
	<-notes.entered

	done := make(chan error, 1)
	go func() {
		_, err := entries.Join(ctx, p[1], tour.ID)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second join waited on a pending notification")
	}
}
