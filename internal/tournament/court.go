package tournament

import (
	"errors"

	"github.com/google/uuid"
)

type CourtState string

const (
	CourtReady      CourtState = "ready"
	CourtInProgress CourtState = "in_progress"
)

var (
	ErrCourtBusy        = errors.New("court round already in progress")
	ErrCourtIdle        = errors.New("court has no round in progress")
	ErrCourtRoundsSpent = errors.New("court has played every generated round")
)

// CourtProgress tracks one court in shuffle mode. Courts advance independently of
// each other and of the tournament's CurrentRound.
type CourtProgress struct {
	TournamentID uuid.UUID  `db:"tournament_id" json:"-"`
	Court        int        `db:"court" json:"court"`
	CurrentRound int        `db:"current_round" json:"currentRound"`
	State        CourtState `db:"status" json:"status"`
}

func NewCourtProgress(tournamentID uuid.UUID, court int) CourtProgress {
	return CourtProgress{TournamentID: tournamentID, Court: court, State: CourtReady}
}

// Start moves a ready court into its next round. lastRound is the highest generated
// round for the court.
func (c *CourtProgress) Start(lastRound int) error {
	if c.State == CourtInProgress {
		return ErrCourtBusy
	}
	if c.CurrentRound >= lastRound {
		return ErrCourtRoundsSpent
	}
	c.CurrentRound++
	c.State = CourtInProgress
	return nil
}

func (c *CourtProgress) Finish() error {
	if c.State != CourtInProgress {
		return ErrCourtIdle
	}
	c.State = CourtReady
	return nil
}
