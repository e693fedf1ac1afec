package store

import (
	"context"

	"github.com/AdamBeresnev/courtside/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TournamentStore persists tournaments with their entries, matches and court progress.
// Every method takes the queryer to run on so callers can share one transaction.
type TournamentStore struct{}

func NewTournamentStore() *TournamentStore {
	return &TournamentStore{}
}

const (
	createTournamentQuery = `
		INSERT INTO tournaments (id, owner_id, name, description, max_participants, courts_count, rounds_count,
			scheduling_mode, match_type, status, current_round, last_finished_round, round_started_at, created_at)
		VALUES (:id, :owner_id, :name, :description, :max_participants, :courts_count, :rounds_count,
			:scheduling_mode, :match_type, :status, :current_round, :last_finished_round, :round_started_at, :created_at)
	`
	updateTournamentQuery = `
		UPDATE tournaments SET
			name = :name,
			description = :description,
			max_participants = :max_participants,
			courts_count = :courts_count,
			rounds_count = :rounds_count,
			scheduling_mode = :scheduling_mode,
			match_type = :match_type,
			status = :status,
			current_round = :current_round,
			last_finished_round = :last_finished_round,
			round_started_at = :round_started_at
		WHERE id = :id
	`
	createEntryQuery = `
		INSERT INTO entries (id, tournament_id, user_id, status, position, created_at)
		VALUES (:id, :tournament_id, :user_id, :status, :position, :created_at)
	`
	createMatchesQuery = `
		INSERT INTO matches (id, tournament_id, round_number, court, player_1_id, partner_1_id, player_2_id, partner_2_id,
			bye_player_ids, score_1, score_2, status, created_at)
		VALUES (:id, :tournament_id, :round_number, :court, :player_1_id, :partner_1_id, :player_2_id, :partner_2_id,
			:bye_player_ids, :score_1, :score_2, :status, :created_at)
	`
	updateMatchResultQuery = `
		UPDATE matches SET score_1 = :score_1, score_2 = :score_2, status = :status WHERE id = :id
	`
	upsertCourtProgressQuery = `
		INSERT INTO court_progress (tournament_id, court, current_round, status)
		VALUES (:tournament_id, :court, :current_round, :status)
		ON CONFLICT (tournament_id, court) DO UPDATE SET
			current_round = excluded.current_round,
			status = excluded.status
	`
)

func (s *TournamentStore) CreateTournament(ctx context.Context, q sqlx.ExtContext, t *tournament.Tournament) error {
	_, err := sqlx.NamedExecContext(ctx, q, createTournamentQuery, t)
	return err
}

func (s *TournamentStore) UpdateTournament(ctx context.Context, q sqlx.ExtContext, t *tournament.Tournament) error {
	_, err := sqlx.NamedExecContext(ctx, q, updateTournamentQuery, t)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*tournament.Tournament, error) {
	var t tournament.Tournament
	if err := sqlx.GetContext(ctx, q, &t, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context, q sqlx.QueryerContext) ([]tournament.Tournament, error) {
	var tournaments []tournament.Tournament
	err := sqlx.SelectContext(ctx, q, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC")
	return tournaments, err
}

// DeleteTournament removes the tournament; entries, matches and court progress go with it.
func (s *TournamentStore) DeleteTournament(ctx context.Context, q sqlx.ExecerContext, id uuid.UUID) error {
	_, err := q.ExecContext(ctx, "DELETE FROM tournaments WHERE id = ?", id)
	return err
}

func (s *TournamentStore) CreateEntry(ctx context.Context, q sqlx.ExtContext, e *tournament.Entry) error {
	_, err := sqlx.NamedExecContext(ctx, q, createEntryQuery, e)
	return err
}

// GetEntries returns every entry of a tournament in queue order.
func (s *TournamentStore) GetEntries(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]tournament.Entry, error) {
	var entries []tournament.Entry
	err := sqlx.SelectContext(ctx, q, &entries, "SELECT * FROM entries WHERE tournament_id = ? ORDER BY position ASC", tournamentID)
	return entries, err
}

func (s *TournamentStore) UpdateEntryStatus(ctx context.Context, q sqlx.ExecerContext, id uuid.UUID, status tournament.EntryStatus) error {
	_, err := q.ExecContext(ctx, "UPDATE entries SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *TournamentStore) DeleteEntry(ctx context.Context, q sqlx.ExecerContext, id uuid.UUID) error {
	_, err := q.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	return err
}

func (s *TournamentStore) DeleteEntries(ctx context.Context, q sqlx.ExecerContext, tournamentID uuid.UUID) error {
	_, err := q.ExecContext(ctx, "DELETE FROM entries WHERE tournament_id = ?", tournamentID)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, q sqlx.ExtContext, matches []tournament.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, q, createMatchesQuery, matches)
	return err
}

func (s *TournamentStore) GetMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*tournament.Match, error) {
	var m tournament.Match
	if err := sqlx.GetContext(ctx, q, &m, "SELECT * FROM matches WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]tournament.Match, error) {
	var matches []tournament.Match
	err := sqlx.SelectContext(ctx, q, &matches,
		"SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, court ASC, created_at ASC", tournamentID)
	return matches, err
}

// GetCompletedMatches returns completed matches across all tournaments.
func (s *TournamentStore) GetCompletedMatches(ctx context.Context, q sqlx.QueryerContext) ([]tournament.Match, error) {
	var matches []tournament.Match
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT * FROM matches WHERE status = ?", tournament.MatchCompleted)
	return matches, err
}

// LastRound returns the highest generated round of a tournament, 0 when none exists.
func (s *TournamentStore) LastRound(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) (int, error) {
	var last int
	err := sqlx.GetContext(ctx, q, &last, "SELECT COALESCE(MAX(round_number), 0) FROM matches WHERE tournament_id = ?", tournamentID)
	return last, err
}

// LastCourtRound returns the highest generated round on one court.
func (s *TournamentStore) LastCourtRound(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID, court int) (int, error) {
	var last int
	err := sqlx.GetContext(ctx, q, &last,
		"SELECT COALESCE(MAX(round_number), 0) FROM matches WHERE tournament_id = ? AND court = ?", tournamentID, court)
	return last, err
}

func (s *TournamentStore) UpdateMatchResult(ctx context.Context, q sqlx.ExtContext, m *tournament.Match) error {
	_, err := sqlx.NamedExecContext(ctx, q, updateMatchResultQuery, m)
	return err
}

func (s *TournamentStore) DeleteMatches(ctx context.Context, q sqlx.ExecerContext, tournamentID uuid.UUID) error {
	_, err := q.ExecContext(ctx, "DELETE FROM matches WHERE tournament_id = ?", tournamentID)
	return err
}

func (s *TournamentStore) GetCourtProgress(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID, court int) (*tournament.CourtProgress, error) {
	var c tournament.CourtProgress
	if err := sqlx.GetContext(ctx, q, &c, "SELECT * FROM court_progress WHERE tournament_id = ? AND court = ?", tournamentID, court); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *TournamentStore) ListCourtProgress(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]tournament.CourtProgress, error) {
	var courts []tournament.CourtProgress
	err := sqlx.SelectContext(ctx, q, &courts, "SELECT * FROM court_progress WHERE tournament_id = ? ORDER BY court ASC", tournamentID)
	return courts, err
}

func (s *TournamentStore) SaveCourtProgress(ctx context.Context, q sqlx.ExtContext, c *tournament.CourtProgress) error {
	_, err := sqlx.NamedExecContext(ctx, q, upsertCourtProgressQuery, c)
	return err
}

// ResetCourtProgress replaces a tournament's court rows with fresh ready courts 1..courts.
func (s *TournamentStore) ResetCourtProgress(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID, courts int) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM court_progress WHERE tournament_id = ?", tournamentID); err != nil {
		return err
	}
	for c := 1; c <= courts; c++ {
		progress := tournament.NewCourtProgress(tournamentID, c)
		if err := s.SaveCourtProgress(ctx, q, &progress); err != nil {
			return err
		}
	}
	return nil
}
