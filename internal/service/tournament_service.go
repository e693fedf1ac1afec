package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/courtside/internal/notify"
	"github.com/AdamBeresnev/courtside/internal/standings"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	users       *store.UserStore
	notifier    notify.Notifier
}

func NewTournamentService(db *sqlx.DB, tournaments *store.TournamentStore, users *store.UserStore, notifier notify.Notifier) *TournamentService {
	return &TournamentService{db: db, tournaments: tournaments, users: users, notifier: notifier}
}

type TournamentInput struct {
	Name            string                    `json:"name"`
	Description     string                    `json:"description"`
	MaxParticipants *int                      `json:"maxParticipants"`
	CourtsCount     int                       `json:"courtsCount"`
	RoundsCount     *int                      `json:"roundsCount"`
	Mode            tournament.SchedulingMode `json:"schedulingMode"`
	MatchType       tournament.MatchType      `json:"type"`
}

// TournamentData is a tournament together with its per-court progress.
type TournamentData struct {
	*tournament.Tournament
	CourtProgress []tournament.CourtProgress `json:"courtProgress,omitempty"`
}

// StandingRow is a standings row with the player's display name.
type StandingRow struct {
	standings.Row
	FullName string `json:"fullName"`
}

func (in *TournamentInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Mode == "" {
		in.Mode = tournament.ModeFixed
	}
	if !in.Mode.Valid() {
		return invalid("unknown scheduling mode %q", in.Mode)
	}
	if in.MatchType == "" {
		in.MatchType = tournament.Singles
	}
	if !in.MatchType.Valid() {
		return invalid("unknown match type %q", in.MatchType)
	}
	if in.CourtsCount < 0 {
		return invalid("courtsCount must not be negative")
	}
	if in.CourtsCount == 0 {
		in.CourtsCount = 1
	}
	if in.RoundsCount != nil && *in.RoundsCount < 0 {
		return invalid("roundsCount must not be negative")
	}
	return nil
}

// Create opens a new tournament with the organizer as its first confirmed entrant,
// then invites everyone.
func (s *TournamentService) Create(ctx context.Context, acting *users.User, in TournamentInput) (*tournament.Tournament, error) {
	if !acting.IsOrganizer() {
		return nil, ErrForbidden
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	t := &tournament.Tournament{
		ID:              uuid.New(),
		OwnerID:         acting.ID,
		Name:            in.Name,
		Description:     in.Description,
		MaxParticipants: in.MaxParticipants,
		CourtsCount:     in.CourtsCount,
		RoundsCount:     in.RoundsCount,
		Mode:            in.Mode,
		MatchType:       in.MatchType,
		Status:          tournament.StatusOpen,
		CreatedAt:       time.Now().UTC(),
	}

	var everyone []users.User
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.tournaments.CreateTournament(ctx, tx, t); err != nil {
			return err
		}
		if _, err := admit(ctx, tx, s.tournaments, t, acting.ID); err != nil {
			return fmt.Errorf("enter creator: %w", err)
		}
		var err error
		everyone, err = s.users.ListUsers(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	events := make([]notify.Event, 0, len(everyone)+2)
	events = append(events, notify.Registration(acting, t.Name, string(tournament.EntryConfirmed)))
	for i := range everyone {
		events = append(events, notify.Invitation(&everyone[i], t.Name))
	}
	events = append(events, notify.Invitation(nil, t.Name))
	s.notifier.Notify(events...)

	slog.Info("tournament created", "id", t.ID, "name", t.Name, "mode", t.Mode)
	return t, nil
}

func (s *TournamentService) Get(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	t, err := s.tournaments.GetTournament(ctx, s.db, id)
	if err != nil {
		return nil, notFound(err, "tournament")
	}
	courts, err := s.tournaments.ListCourtProgress(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &TournamentData{Tournament: t, CourtProgress: courts}, nil
}

func (s *TournamentService) List(ctx context.Context) ([]tournament.Tournament, error) {
	return s.tournaments.ListTournaments(ctx, s.db)
}

// Start closes registration. The court count shrinks to what the confirmed field can fill.
func (s *TournamentService) Start(ctx context.Context, acting *users.User, id uuid.UUID) (*tournament.Tournament, error) {
	if !acting.IsOrganizer() {
		return nil, ErrForbidden
	}

	var t *tournament.Tournament
	err := lockedTx(ctx, s.db, id, func(tx *sqlx.Tx) error {
		var err error
		t, err = s.tournaments.GetTournament(ctx, tx, id)
		if err != nil {
			return notFound(err, "tournament")
		}
		if t.Status != tournament.StatusOpen {
			return badState("tournament is %s", t.Status)
		}

		entries, err := s.tournaments.GetEntries(ctx, tx, id)
		if err != nil {
			return err
		}
		confirmed := len(tournament.NewRoster(entries).Confirmed)
		if needed := confirmed / t.PlayersPerMatch(); needed > 0 && needed < t.CourtsCount {
			t.CourtsCount = needed
		}

		t.Status = tournament.StatusInProgress
		t.CurrentRound = 0
		t.RoundStartedAt = nil
		return s.tournaments.UpdateTournament(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.StatusUpdate(nil, t.Name, notify.StatusStarted))
	return t, nil
}

// Finish completes the tournament and announces the final standings.
func (s *TournamentService) Finish(ctx context.Context, acting *users.User, id uuid.UUID) (*tournament.Tournament, error) {
	if !acting.IsOrganizer() {
		return nil, ErrForbidden
	}

	var (
		t        *tournament.Tournament
		entrants []users.User
		results  string
	)
	err := lockedTx(ctx, s.db, id, func(tx *sqlx.Tx) error {
		var err error
		t, err = s.tournaments.GetTournament(ctx, tx, id)
		if err != nil {
			return notFound(err, "tournament")
		}
		if t.Status != tournament.StatusInProgress {
			return badState("tournament is %s", t.Status)
		}

		t.Status = tournament.StatusCompleted
		t.RoundStartedAt = nil
		if err := s.tournaments.UpdateTournament(ctx, tx, t); err != nil {
			return err
		}

		entries, err := s.tournaments.GetEntries(ctx, tx, id)
		if err != nil {
			return err
		}
		players := tournament.NewRoster(entries).ConfirmedPlayers()
		entrants, err = s.users.GetUsers(ctx, tx, players)
		if err != nil {
			return err
		}
		matches, err := s.tournaments.GetMatches(ctx, tx, id)
		if err != nil {
			return err
		}
		results = standings.ResultsText(players, matches, names(entrants))
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := make([]notify.Event, 0, len(entrants)+1)
	for i := range entrants {
		events = append(events, notify.Results(&entrants[i], t.Name, results))
	}
	events = append(events, notify.Results(nil, t.Name, results))
	s.notifier.Notify(events...)
	return t, nil
}

// Reset wipes matches and entries and reopens registration.
func (s *TournamentService) Reset(ctx context.Context, acting *users.User, id uuid.UUID) (*tournament.Tournament, error) {
	if !acting.IsOrganizer() {
		return nil, ErrForbidden
	}

	var t *tournament.Tournament
	var former []users.User
	err := lockedTx(ctx, s.db, id, func(tx *sqlx.Tx) error {
		var err error
		t, err = s.tournaments.GetTournament(ctx, tx, id)
		if err != nil {
			return notFound(err, "tournament")
		}

		entries, err := s.tournaments.GetEntries(ctx, tx, id)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = e.UserID
		}
		if former, err = s.users.GetUsers(ctx, tx, ids); err != nil {
			return err
		}

		if err := s.tournaments.DeleteMatches(ctx, tx, id); err != nil {
			return err
		}
		if err := s.tournaments.DeleteEntries(ctx, tx, id); err != nil {
			return err
		}
		if err := s.tournaments.ResetCourtProgress(ctx, tx, id, 0); err != nil {
			return err
		}

		t.Status = tournament.StatusOpen
		t.CurrentRound = 0
		t.LastFinishedRound = 0
		t.RoundStartedAt = nil
		return s.tournaments.UpdateTournament(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}

	events := make([]notify.Event, 0, len(former))
	for i := range former {
		events = append(events, notify.StatusUpdate(&former[i], t.Name, notify.StatusReset))
	}
	s.notifier.Notify(events...)
	return t, nil
}

// Delete removes a tournament and everything attached to it. Only its owner may do so.
func (s *TournamentService) Delete(ctx context.Context, acting *users.User, id uuid.UUID) error {
	if !acting.IsOrganizer() {
		return ErrForbidden
	}

	var t *tournament.Tournament
	err := lockedTx(ctx, s.db, id, func(tx *sqlx.Tx) error {
		var err error
		t, err = s.tournaments.GetTournament(ctx, tx, id)
		if err != nil {
			return notFound(err, "tournament")
		}
		if t.OwnerID != acting.ID {
			return fmt.Errorf("%w: only the owner can delete a tournament", ErrForbidden)
		}
		return s.tournaments.DeleteTournament(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(notify.Deleted(t.Name))
	return nil
}

// Standings ranks the confirmed entrants by completed matches so far.
func (s *TournamentService) Standings(ctx context.Context, id uuid.UUID) ([]StandingRow, error) {
	if _, err := s.tournaments.GetTournament(ctx, s.db, id); err != nil {
		return nil, notFound(err, "tournament")
	}
	entries, err := s.tournaments.GetEntries(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	players := tournament.NewRoster(entries).ConfirmedPlayers()

	matches, err := s.tournaments.GetMatches(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	entrants, err := s.users.GetUsers(ctx, s.db, players)
	if err != nil {
		return nil, err
	}

	rows := standings.Compute(players, matches)
	standings.SortForResults(rows)

	byID := names(entrants)
	out := make([]StandingRow, len(rows))
	for i, r := range rows {
		out[i] = StandingRow{Row: r, FullName: byID[r.PlayerID]}
	}
	return out, nil
}

func names(list []users.User) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(list))
	for _, u := range list {
		out[u.ID] = u.FullName
	}
	return out
}
