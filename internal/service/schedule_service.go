package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/AdamBeresnev/courtside/internal/pairing"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ScheduleService generates rounds and drives round and court progression.
type ScheduleService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	users       *store.UserStore
}

func NewScheduleService(db *sqlx.DB, tournaments *store.TournamentStore, users *store.UserStore) *ScheduleService {
	return &ScheduleService{db: db, tournaments: tournaments, users: users}
}

// GenerateSchedule replaces every match of the tournament with a fresh schedule
// built by the tournament's scheduling mode.
func (s *ScheduleService) GenerateSchedule(ctx context.Context, acting *users.User, id uuid.UUID) ([]tournament.Match, error) {
	if !acting.IsOrganizer() {
		return nil, ErrForbidden
	}

	var matches []tournament.Match
	err := lockedTx(ctx, s.db, id, func(tx *sqlx.Tx) error {
		t, players, err := s.loadRunning(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(players) < 2 {
			return fmt.Errorf("%w: need at least 2 confirmed players", ErrInsufficientParticipants)
		}

		progressCourts := 0
		switch t.Mode {
		case tournament.ModeShuffle:
			ratings, err := s.ratings(ctx, tx, players)
			if err != nil {
				return err
			}
			matches = pairing.Shuffle(pairing.ShuffleParams{
				TournamentID: t.ID,
				Players:      players,
				Ratings:      ratings,
				Courts:       t.Courts(),
				Rounds:       t.MaxRounds(),
			})
			progressCourts = t.Courts()

		case tournament.ModeWaterfall:
			var courts int
			matches, courts, err = pairing.Waterfall(pairing.WaterfallParams{
				TournamentID: t.ID,
				Players:      players,
				Courts:       t.Courts(),
			})
			if errors.Is(err, pairing.ErrNotEnoughPlayers) {
				return fmt.Errorf("%w: waterfall needs at least 4 confirmed players", ErrInsufficientParticipants)
			}
			if err != nil {
				return err
			}
			t.CourtsCount = courts

		default:
			matches = pairing.RoundRobin(pairing.RoundRobinParams{
				TournamentID: t.ID,
				Players:      players,
				Doubles:      t.MatchType == tournament.Doubles,
				Courts:       t.Courts(),
				Rounds:       utils.OrZero(t.RoundsCount),
			})
		}
		if games(matches) == 0 {
			return fmt.Errorf("%w: not enough players for a single %s match", ErrInsufficientParticipants, t.MatchType)
		}
		stamp(matches)

		if err := s.tournaments.DeleteMatches(ctx, tx, t.ID); err != nil {
			return err
		}
		if err := s.tournaments.CreateMatches(ctx, tx, matches); err != nil {
			return err
		}
		if err := s.tournaments.ResetCourtProgress(ctx, tx, t.ID, progressCourts); err != nil {
			return err
		}

		t.CurrentRound = 0
		t.LastFinishedRound = 0
		t.RoundStartedAt = nil
		if err := s.tournaments.UpdateTournament(ctx, tx, t); err != nil {
			return err
		}

		slog.Info("schedule generated", "tournament", t.ID, "mode", t.Mode, "matches", len(matches))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// NextRound appends one round drawn from the current standings.
func (s *ScheduleService) NextRound(ctx context.Context, acting *users.User, id uuid.UUID) ([]tournament.Match, error) {
	if !acting.IsOrganizer() {
		return nil, ErrForbidden
	}

	var matches []tournament.Match
	err := lockedTx(ctx, s.db, id, func(tx *sqlx.Tx) error {
		t, players, err := s.loadRunning(ctx, tx, id)
		if err != nil {
			return err
		}

		existing, err := s.tournaments.GetMatches(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		next := tournament.LastRound(existing) + 1
		if next > t.MaxRounds() {
			return badState("max rounds reached (%d)", t.MaxRounds())
		}

		matches, err = pairing.NextRound(pairing.NextRoundParams{
			TournamentID: t.ID,
			Players:      players,
			Matches:      existing,
			Courts:       t.Courts(),
			Doubles:      t.MatchType == tournament.Doubles,
			Round:        next,
		})
		if errors.Is(err, pairing.ErrNotEnoughPlayers) {
			return fmt.Errorf("%w: need at least 4 confirmed players for the next round", ErrInsufficientParticipants)
		}
		if err != nil {
			return err
		}
		stamp(matches)

		if err := s.tournaments.CreateMatches(ctx, tx, matches); err != nil {
			return err
		}
		t.RoundStartedAt = nil
		return s.tournaments.UpdateTournament(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// StartRound begins play. In shuffle mode court selects the court to advance, and any
// confirmed entrant may start it; otherwise the organizer starts the latest generated round.
func (s *ScheduleService) StartRound(ctx context.Context, acting *users.User, id uuid.UUID, court int) (*TournamentData, error) {
	return s.progress(ctx, acting, id, court, true)
}

// FinishRound ends the round started by StartRound.
func (s *ScheduleService) FinishRound(ctx context.Context, acting *users.User, id uuid.UUID, court int) (*TournamentData, error) {
	return s.progress(ctx, acting, id, court, false)
}

func (s *ScheduleService) progress(ctx context.Context, acting *users.User, id uuid.UUID, court int, start bool) (*TournamentData, error) {
	if acting == nil {
		return nil, ErrForbidden
	}

	var data *TournamentData
	err := lockedTx(ctx, s.db, id, func(tx *sqlx.Tx) error {
		t, players, err := s.loadRunning(ctx, tx, id)
		if err != nil {
			return err
		}

		if t.Mode == tournament.ModeShuffle {
			err = s.progressCourt(ctx, tx, t, acting, players, court, start)
		} else {
			err = s.progressRound(ctx, tx, t, acting, start)
		}
		if err != nil {
			return err
		}

		courts, err := s.tournaments.ListCourtProgress(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		data = &TournamentData{Tournament: t, CourtProgress: courts}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *ScheduleService) progressCourt(ctx context.Context, tx *sqlx.Tx, t *tournament.Tournament, acting *users.User, players []uuid.UUID, court int, start bool) error {
	if court < 1 {
		return invalid("court is required in shuffle mode")
	}
	if !acting.IsOrganizer() && !slices.Contains(players, acting.ID) {
		return ErrForbidden
	}

	progress, err := s.tournaments.GetCourtProgress(ctx, tx, t.ID, court)
	if err != nil {
		return notFound(err, fmt.Sprintf("court %d", court))
	}

	if start {
		last, err := s.tournaments.LastCourtRound(ctx, tx, t.ID, court)
		if err != nil {
			return err
		}
		err = progress.Start(last)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidState, err)
		}
	} else if err := progress.Finish(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	return s.tournaments.SaveCourtProgress(ctx, tx, progress)
}

func (s *ScheduleService) progressRound(ctx context.Context, tx *sqlx.Tx, t *tournament.Tournament, acting *users.User, start bool) error {
	if !acting.IsOrganizer() {
		return ErrForbidden
	}

	last, err := s.tournaments.LastRound(ctx, tx, t.ID)
	if err != nil {
		return err
	}
	if last == 0 {
		return badState("no rounds have been generated")
	}

	t.CurrentRound = last
	if start {
		now := time.Now().UTC()
		t.RoundStartedAt = &now
	} else {
		t.RoundStartedAt = nil
		t.LastFinishedRound = last
	}
	return s.tournaments.UpdateTournament(ctx, tx, t)
}

// loadRunning fetches an In Progress tournament and its confirmed players in queue order.
func (s *ScheduleService) loadRunning(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*tournament.Tournament, []uuid.UUID, error) {
	t, err := s.tournaments.GetTournament(ctx, tx, id)
	if err != nil {
		return nil, nil, notFound(err, "tournament")
	}
	if t.Status != tournament.StatusInProgress {
		return nil, nil, badState("tournament is %s, not %s", t.Status, tournament.StatusInProgress)
	}

	entries, err := s.tournaments.GetEntries(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	return t, tournament.NewRoster(entries).ConfirmedPlayers(), nil
}

func (s *ScheduleService) ratings(ctx context.Context, tx *sqlx.Tx, players []uuid.UUID) (map[uuid.UUID]float64, error) {
	list, err := s.users.GetUsers(ctx, tx, players)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]float64, len(list))
	for _, u := range list {
		out[u.ID] = u.Rating
	}
	return out, nil
}

// games counts the playable matches, leaving out byes.
func games(matches []tournament.Match) int {
	n := 0
	for i := range matches {
		if !matches[i].IsBye() {
			n++
		}
	}
	return n
}

func stamp(matches []tournament.Match) {
	now := time.Now().UTC()
	for i := range matches {
		matches[i].CreatedAt = now
	}
}
