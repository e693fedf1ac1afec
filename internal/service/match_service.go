package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/courtside/internal/rating"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	users       *store.UserStore
}

func NewMatchService(db *sqlx.DB, tournaments *store.TournamentStore, users *store.UserStore) *MatchService {
	return &MatchService{db: db, tournaments: tournaments, users: users}
}

// MatchData is a match with its players' display names.
type MatchData struct {
	tournament.Match
	Player1Name  string   `json:"player1Name,omitempty"`
	Partner1Name string   `json:"partner1Name,omitempty"`
	Player2Name  string   `json:"player2Name,omitempty"`
	Partner2Name string   `json:"partner2Name,omitempty"`
	ByeNames     []string `json:"byeNames,omitempty"`
}

// Matches lists a tournament's matches by round, then court.
func (s *MatchService) Matches(ctx context.Context, tournamentID uuid.UUID) ([]MatchData, error) {
	if _, err := s.tournaments.GetTournament(ctx, s.db, tournamentID); err != nil {
		return nil, notFound(err, "tournament")
	}
	matches, err := s.tournaments.GetMatches(ctx, s.db, tournamentID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for i := range matches {
		for _, id := range matches[i].Players() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	list, err := s.users.GetUsers(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byID := names(list)

	name := func(id *uuid.UUID) string {
		if id == nil {
			return ""
		}
		if n, ok := byID[*id]; ok {
			return n
		}
		return "Unknown"
	}

	out := make([]MatchData, len(matches))
	for i, m := range matches {
		out[i] = MatchData{
			Match:        m,
			Player1Name:  name(m.Player1ID),
			Partner1Name: name(m.Partner1ID),
			Player2Name:  name(m.Player2ID),
			Partner2Name: name(m.Partner2ID),
		}
		for _, id := range m.ByePlayers {
			out[i].ByeNames = append(out[i].ByeNames, name(&id))
		}
	}
	return out, nil
}

// RecordScore stores a result and completes the match. Ratings move only the first
// time a match completes; later corrections change the score alone.
func (s *MatchService) RecordScore(ctx context.Context, acting *users.User, matchID uuid.UUID, score1, score2 int) (*tournament.Match, error) {
	if acting == nil {
		return nil, ErrForbidden
	}
	if score1 < 0 || score2 < 0 {
		return nil, invalid("scores must not be negative")
	}

	m, err := s.tournaments.GetMatch(ctx, s.db, matchID)
	if err != nil {
		return nil, notFound(err, "match")
	}

	err = lockedTx(ctx, s.db, m.TournamentID, func(tx *sqlx.Tx) error {
		var err error
		m, err = s.tournaments.GetMatch(ctx, tx, matchID)
		if err != nil {
			return notFound(err, "match")
		}
		if m.IsBye() {
			return badState("a bye cannot be scored")
		}
		if !acting.IsOrganizer() && !m.HasPlayer(acting.ID) {
			return ErrForbidden
		}

		firstCompletion := m.Status != tournament.MatchCompleted
		m.Score1 = &score1
		m.Score2 = &score2
		m.Status = tournament.MatchCompleted
		if err := s.tournaments.UpdateMatchResult(ctx, tx, m); err != nil {
			return err
		}

		if firstCompletion {
			return s.applyRatings(ctx, tx, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MatchService) applyRatings(ctx context.Context, tx *sqlx.Tx, m *tournament.Match) error {
	side1, err := s.sideRatings(ctx, tx, m.Side1())
	if err != nil {
		return err
	}
	side2, err := s.sideRatings(ctx, tx, m.Side2())
	if err != nil {
		return err
	}

	res, ok := rating.ForMatch(side1, side2, *m.Score1, *m.Score2)
	if !ok {
		return nil
	}

	update := func(ids []uuid.UUID, ratings []float64) error {
		for i, id := range ids {
			if err := s.users.UpdateRating(ctx, tx, id, ratings[i]); err != nil {
				return fmt.Errorf("update rating: %w", err)
			}
		}
		return nil
	}
	if err := update(m.Side1(), res.Side1); err != nil {
		return err
	}
	if err := update(m.Side2(), res.Side2); err != nil {
		return err
	}

	slog.Info("ratings updated", "match", m.ID, "side1", res.Side1, "side2", res.Side2)
	return nil
}

func (s *MatchService) sideRatings(ctx context.Context, tx *sqlx.Tx, ids []uuid.UUID) ([]float64, error) {
	out := make([]float64, len(ids))
	for i, id := range ids {
		u, err := s.users.GetUser(ctx, tx, id)
		if err != nil {
			return nil, notFound(err, "player")
		}
		out[i] = u.Rating
	}
	return out, nil
}
