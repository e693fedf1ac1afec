package tournament

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
	MatchBye       MatchStatus = "bye"
)

// ByeCourt is the court number recorded on a round-wide bye.
const ByeCourt = 0

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId"`
	Round        int       `db:"round_number" json:"round"`
	Court        int       `db:"court" json:"court"`

	Player1ID  *uuid.UUID `db:"player_1_id" json:"player1Id,omitempty"`
	Partner1ID *uuid.UUID `db:"partner_1_id" json:"partner1Id,omitempty"`
	Player2ID  *uuid.UUID `db:"player_2_id" json:"player2Id,omitempty"`
	Partner2ID *uuid.UUID `db:"partner_2_id" json:"partner2Id,omitempty"`

	// ByePlayers is only set on bye matches.
	ByePlayers PlayerList `db:"bye_player_ids" json:"byePlayerIds,omitempty"`

	Score1 *int        `db:"score_1" json:"score1"`
	Score2 *int        `db:"score_2" json:"score2"`
	Status MatchStatus `db:"status" json:"status"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMatch builds a scheduled match. side1 and side2 hold one player (singles) or two (doubles).
func NewMatch(tournamentID uuid.UUID, round, court int, side1, side2 []uuid.UUID) Match {
	m := Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Round:        round,
		Court:        court,
		Status:       MatchScheduled,
	}
	m.Player1ID, m.Partner1ID = side(side1)
	m.Player2ID, m.Partner2ID = side(side2)
	return m
}

func NewBye(tournamentID uuid.UUID, round, court int, players []uuid.UUID) Match {
	list := make(PlayerList, len(players))
	copy(list, players)
	return Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Round:        round,
		Court:        court,
		ByePlayers:   list,
		Status:       MatchBye,
	}
}

func side(players []uuid.UUID) (*uuid.UUID, *uuid.UUID) {
	var p, partner *uuid.UUID
	if len(players) > 0 {
		id := players[0]
		p = &id
	}
	if len(players) > 1 {
		id := players[1]
		partner = &id
	}
	return p, partner
}

func (m *Match) IsBye() bool {
	return m.Status == MatchBye
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchCompleted && m.Score1 != nil && m.Score2 != nil
}

// Side1 returns the players of the first side, partner last.
func (m *Match) Side1() []uuid.UUID {
	return collect(m.Player1ID, m.Partner1ID)
}

func (m *Match) Side2() []uuid.UUID {
	return collect(m.Player2ID, m.Partner2ID)
}

// Players lists everyone on court, or everyone sitting out for a bye.
func (m *Match) Players() []uuid.UUID {
	if m.IsBye() {
		return []uuid.UUID(m.ByePlayers)
	}
	return append(m.Side1(), m.Side2()...)
}

func (m *Match) HasPlayer(id uuid.UUID) bool {
	for _, p := range m.Players() {
		if p == id {
			return true
		}
	}
	return false
}

func collect(ids ...*uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != nil {
			out = append(out, *id)
		}
	}
	return out
}

// LastRound returns the highest round number among matches, 0 when there are none.
func LastRound(matches []Match) int {
	last := 0
	for _, m := range matches {
		if m.Round > last {
			last = m.Round
		}
	}
	return last
}

// PlayerList is stored as a comma separated column.
type PlayerList []uuid.UUID

func (l PlayerList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = id.String()
	}
	return strings.Join(parts, ","), nil
}

func (l *PlayerList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into PlayerList", src)
	}

	if raw == "" {
		*l = nil
		return nil
	}

	parts := strings.Split(raw, ",")
	list := make(PlayerList, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			return fmt.Errorf("invalid player id %q: %w", p, err)
		}
		list = append(list, id)
	}
	*l = list
	return nil
}
