package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/courtside/internal/notify"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EntryService is the entry ledger: admission, withdrawal and the waitlist queue.
type EntryService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	users       *store.UserStore
	notifier    notify.Notifier
}

func NewEntryService(db *sqlx.DB, tournaments *store.TournamentStore, users *store.UserStore, notifier notify.Notifier) *EntryService {
	return &EntryService{db: db, tournaments: tournaments, users: users, notifier: notifier}
}

// Participants lists entrants as users, both lists in queue order.
type Participants struct {
	Confirmed []users.User `json:"confirmed"`
	Waitlist  []users.User `json:"waitlist"`
}

// Join admits the acting user. When the tournament is full the entry goes to the
// waitlist, and when the waitlist is full too the join fails with ErrCapacityExceeded.
func (s *EntryService) Join(ctx context.Context, acting *users.User, tournamentID uuid.UUID) (*tournament.Entry, error) {
	if acting == nil {
		return nil, ErrForbidden
	}

	var t *tournament.Tournament
	var entry *tournament.Entry
	err := lockedTx(ctx, s.db, tournamentID, func(tx *sqlx.Tx) error {
		var err error
		t, err = s.tournaments.GetTournament(ctx, tx, tournamentID)
		if err != nil {
			return notFound(err, "tournament")
		}
		if t.Status == tournament.StatusCompleted {
			return badState("tournament %q is completed", t.Name)
		}

		entry, err = admit(ctx, tx, s.tournaments, t, acting.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.Registration(acting, t.Name, string(entry.Status)))
	return entry, nil
}

// Leave withdraws the acting user. A confirmed player leaving an Open tournament
// hands their place to the head of the waitlist.
func (s *EntryService) Leave(ctx context.Context, acting *users.User, tournamentID uuid.UUID) error {
	if acting == nil {
		return ErrForbidden
	}

	var t *tournament.Tournament
	var promoted *users.User
	err := lockedTx(ctx, s.db, tournamentID, func(tx *sqlx.Tx) error {
		var err error
		t, err = s.tournaments.GetTournament(ctx, tx, tournamentID)
		if err != nil {
			return notFound(err, "tournament")
		}

		entries, err := s.tournaments.GetEntries(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		roster := tournament.NewRoster(entries)

		entry, ok := roster.Find(acting.ID)
		if !ok {
			return ErrNotEntered
		}
		if err := s.tournaments.DeleteEntry(ctx, tx, entry.ID); err != nil {
			return err
		}

		if entry.Status != tournament.EntryConfirmed || t.Status != tournament.StatusOpen {
			return nil
		}
		head, ok := roster.Head()
		if !ok {
			return nil
		}
		if err := s.tournaments.UpdateEntryStatus(ctx, tx, head.ID, tournament.EntryConfirmed); err != nil {
			return fmt.Errorf("promote waitlist head: %w", err)
		}
		promoted, err = s.users.GetUser(ctx, tx, head.UserID)
		return notFound(err, "promoted user")
	})
	if err != nil {
		return err
	}

	events := []notify.Event{notify.Withdrawal(acting, t.Name)}
	if promoted != nil {
		events = append(events, notify.Registration(promoted, t.Name, string(tournament.EntryConfirmed)))
	}
	s.notifier.Notify(events...)
	return nil
}

func (s *EntryService) Participants(ctx context.Context, tournamentID uuid.UUID) (*Participants, error) {
	if _, err := s.tournaments.GetTournament(ctx, s.db, tournamentID); err != nil {
		return nil, notFound(err, "tournament")
	}

	entries, err := s.tournaments.GetEntries(ctx, s.db, tournamentID)
	if err != nil {
		return nil, err
	}
	roster := tournament.NewRoster(entries)

	confirmed, err := s.usersInOrder(ctx, roster.Confirmed)
	if err != nil {
		return nil, err
	}
	waitlist, err := s.usersInOrder(ctx, roster.Waitlist)
	if err != nil {
		return nil, err
	}
	return &Participants{Confirmed: confirmed, Waitlist: waitlist}, nil
}

func (s *EntryService) usersInOrder(ctx context.Context, entries []tournament.Entry) ([]users.User, error) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	list, err := s.users.GetUsers(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]users.User, len(list))
	for _, u := range list {
		byID[u.ID] = u
	}
	out := make([]users.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// admit appends a new entry for userID at the back of the queue.
func admit(ctx context.Context, tx *sqlx.Tx, ts *store.TournamentStore, t *tournament.Tournament, userID uuid.UUID) (*tournament.Entry, error) {
	entries, err := ts.GetEntries(ctx, tx, t.ID)
	if err != nil {
		return nil, err
	}
	roster := tournament.NewRoster(entries)

	if _, ok := roster.Find(userID); ok {
		return nil, fmt.Errorf("entry: %w", ErrDuplicateEntry)
	}
	status, ok := roster.AdmitStatus(t)
	if !ok {
		return nil, fmt.Errorf("%w (max %d)", ErrCapacityExceeded, tournament.WaitlistCap)
	}

	entry := &tournament.Entry{
		ID:           uuid.New(),
		TournamentID: t.ID,
		UserID:       userID,
		Status:       status,
		Position:     roster.NextPosition(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := ts.CreateEntry(ctx, tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
