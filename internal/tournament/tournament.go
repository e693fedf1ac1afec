package tournament

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

type SchedulingMode string

const (
	ModeFixed     SchedulingMode = "fixed"
	ModeShuffle   SchedulingMode = "shuffle"
	ModeWaterfall SchedulingMode = "waterfall"
)

func (m SchedulingMode) Valid() bool {
	switch m {
	case ModeFixed, ModeShuffle, ModeWaterfall:
		return true
	}
	return false
}

type MatchType string

const (
	Singles MatchType = "Singles"
	Doubles MatchType = "Doubles"
)

func (t MatchType) Valid() bool {
	return t == Singles || t == Doubles
}

// DefaultRounds is used by the shuffle and adaptive generators when a tournament has no round count.
const DefaultRounds = 5

type Tournament struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"ownerId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`

	// Nil or non-positive means unbounded.
	MaxParticipants *int `db:"max_participants" json:"maxParticipants,omitempty"`
	CourtsCount     int  `db:"courts_count" json:"courtsCount"`
	RoundsCount     *int `db:"rounds_count" json:"roundsCount,omitempty"`

	Mode      SchedulingMode `db:"scheduling_mode" json:"schedulingMode"`
	MatchType MatchType      `db:"match_type" json:"type"`
	Status    Status         `db:"status" json:"status"`

	CurrentRound      int        `db:"current_round" json:"currentRound"`
	LastFinishedRound int        `db:"last_finished_round" json:"lastFinishedRound"`
	RoundStartedAt    *time.Time `db:"round_started_at" json:"roundStartedAt,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (t *Tournament) HasCapacity() bool {
	return t.MaxParticipants != nil && *t.MaxParticipants > 0
}

// Courts never reports fewer than one court.
func (t *Tournament) Courts() int {
	if t.CourtsCount < 1 {
		return 1
	}
	return t.CourtsCount
}

func (t *Tournament) PlayersPerMatch() int {
	if t.MatchType == Doubles {
		return 4
	}
	return 2
}

// MaxRounds is the configured round count, or DefaultRounds when unset.
func (t *Tournament) MaxRounds() int {
	if t.RoundsCount != nil && *t.RoundsCount > 0 {
		return *t.RoundsCount
	}
	return DefaultRounds
}
