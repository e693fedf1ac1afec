package standings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AdamBeresnev/courtside/internal/tournament"
	"github.com/google/uuid"
)

const (
	nameWidth    = 15
	noMatchesMsg = "No matches completed on any court."
)

// Table renders rows, sorted for announcement, as a plain text table.
func Table(title string, rows []Row, names map[uuid.UUID]string) string {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	SortForResults(sorted)

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString("Rank | Player Name | Pts | W-L | Diff\n")
	b.WriteString("--------------------------------------\n")
	for i, r := range sorted {
		sign := ""
		if r.Diff > 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, "%d. %-*s | %d | %d-%d | %s%d\n",
			i+1, nameWidth, displayName(names[r.PlayerID]), r.Points, r.Won, r.Lost, sign, r.Diff)
	}
	return b.String()
}

func displayName(name string) string {
	if name == "" {
		return "Unknown"
	}
	runes := []rune(name)
	if len(runes) > nameWidth {
		return string(runes[:nameWidth-3]) + "..."
	}
	return name
}

// CrossCourt reports whether any player appears on more than one court among completed matches.
func CrossCourt(matches []tournament.Match) bool {
	seen := make(map[uuid.UUID]int)
	for i := range matches {
		m := &matches[i]
		if !m.IsCompleted() {
			continue
		}
		court := courtOf(m)
		for _, id := range m.Players() {
			if c, ok := seen[id]; ok && c != court {
				return true
			}
			seen[id] = court
		}
	}
	return false
}

// ResultsText builds the final announcement: one overall table when players crossed
// courts, otherwise a table per court.
func ResultsText(players []uuid.UUID, matches []tournament.Match, names map[uuid.UUID]string) string {
	if CrossCourt(matches) {
		return Table("Overall Tournament Standings", Compute(players, matches), names)
	}

	byCourt := make(map[int][]tournament.Match)
	for i := range matches {
		m := &matches[i]
		if m.IsCompleted() {
			byCourt[courtOf(m)] = append(byCourt[courtOf(m)], *m)
		}
	}
	if len(byCourt) == 0 {
		return noMatchesMsg
	}

	courts := make([]int, 0, len(byCourt))
	for c := range byCourt {
		courts = append(courts, c)
	}
	sort.Ints(courts)

	var b strings.Builder
	for _, c := range courts {
		courtMatches := byCourt[c]
		onCourt := make(map[uuid.UUID]bool)
		for i := range courtMatches {
			for _, id := range courtMatches[i].Players() {
				onCourt[id] = true
			}
		}
		var courtPlayers []uuid.UUID
		for _, id := range players {
			if onCourt[id] {
				courtPlayers = append(courtPlayers, id)
			}
		}

		b.WriteString(Table(fmt.Sprintf("Court %d Standings", c), Compute(courtPlayers, courtMatches), names))
		b.WriteString("\n\n")
	}
	return b.String()
}

func courtOf(m *tournament.Match) int {
	if m.Court == 0 {
		return 1
	}
	return m.Court
}
