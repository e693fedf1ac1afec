package standings

import (
	"sort"

	"github.com/AdamBeresnev/courtside/internal/tournament"
	"github.com/google/uuid"
)

const (
	WinPoints  = 2
	DrawPoints = 1
)

type Row struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Played        int       `json:"played"`
	Won           int       `json:"won"`
	Lost          int       `json:"lost"`
	Drawn         int       `json:"drawn"`
	PointsFor     int       `json:"pointsFor"`
	PointsAgainst int       `json:"pointsAgainst"`
	Diff          int       `json:"diff"`
	Points        int       `json:"points"`
}

func (r *Row) record(own, opponent int) {
	r.Played++
	r.PointsFor += own
	r.PointsAgainst += opponent
	r.Diff += own - opponent

	switch {
	case own > opponent:
		r.Won++
		r.Points += WinPoints
	case own < opponent:
		r.Lost++
	default:
		r.Drawn++
		r.Points += DrawPoints
	}
}

// Compute aggregates completed matches into one row per player, in the order the
// players were given. Players outside the list are ignored; both members of a
// doubles side are credited individually.
func Compute(players []uuid.UUID, matches []tournament.Match) []Row {
	rows := make([]Row, len(players))
	index := make(map[uuid.UUID]*Row, len(players))
	for i, id := range players {
		rows[i] = Row{PlayerID: id}
		index[id] = &rows[i]
	}

	for i := range matches {
		m := &matches[i]
		if !m.IsCompleted() {
			continue
		}
		s1, s2 := *m.Score1, *m.Score2
		for _, id := range m.Side1() {
			if row, ok := index[id]; ok {
				row.record(s1, s2)
			}
		}
		for _, id := range m.Side2() {
			if row, ok := index[id]; ok {
				row.record(s2, s1)
			}
		}
	}

	return rows
}

// ForCourt computes standings from the completed matches played on one court.
func ForCourt(players []uuid.UUID, matches []tournament.Match, court int) []Row {
	var onCourt []tournament.Match
	for _, m := range matches {
		if m.Court == court {
			onCourt = append(onCourt, m)
		}
	}
	return Compute(players, onCourt)
}

// SortForAdvance orders rows by points then point differential. Ties keep their input order.
func SortForAdvance(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Diff > rows[j].Diff
	})
}

// SortForResults additionally breaks ties on wins, for announced tables.
func SortForResults(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].Diff != rows[j].Diff {
			return rows[i].Diff > rows[j].Diff
		}
		return rows[i].Won > rows[j].Won
	})
}
