package standings

import (
	"sort"

	"github.com/AdamBeresnev/courtside/internal/tournament"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/google/uuid"
)

// Ranking is one line of the cross-tournament leaderboard.
type Ranking struct {
	User    users.User `json:"user"`
	Row     Row        `json:"stats"`
	WinRate float64    `json:"winRate"`
}

// Rank orders every user by dynamic rating, then win rate, then point differential.
func Rank(players []users.User, matches []tournament.Match) []Ranking {
	ids := make([]uuid.UUID, len(players))
	for i, u := range players {
		ids[i] = u.ID
	}
	rows := Compute(ids, matches)

	out := make([]Ranking, len(players))
	for i, u := range players {
		out[i] = Ranking{User: u, Row: rows[i], WinRate: winRate(rows[i])}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].User.Rating != out[j].User.Rating {
			return out[i].User.Rating > out[j].User.Rating
		}
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].Row.Diff > out[j].Row.Diff
	})
	return out
}

func winRate(r Row) float64 {
	if r.Played == 0 {
		return 0
	}
	return float64(r.Won) / float64(r.Played)
}
