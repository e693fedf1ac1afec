package pairing

import (
	"github.com/AdamBeresnev/courtside/internal/tournament"
	"github.com/google/uuid"
)

type RoundRobinParams struct {
	TournamentID uuid.UUID
	Players      []uuid.UUID
	Doubles      bool
	Courts       int
	// Rounds is the target round count; zero means as many rounds as the first
	// matchup pool needs at full court usage.
	Rounds int
}

// unit is one scheduling participant: a single player or a fixed team of two.
type unit []uuid.UUID

type matchup [2]unit

func (m matchup) players() []uuid.UUID {
	return append(append([]uuid.UUID{}, m[0]...), m[1]...)
}

// RoundRobin schedules every unit against every other unit with a greedy scan:
// each round walks the matchup pool in order and seats every matchup whose
// players are still free, until the courts are full. Matchups that do not fit
// stay in the pool for later rounds. The heuristic can leave courts empty.
//
// In doubles, teams are drawn at random. When the pool runs dry and rounds are
// still owed, a fresh set of teams with no repeated partnership is drawn.
func RoundRobin(p RoundRobinParams) []tournament.Match {
	courts := max(p.Courts, 1)

	var teamSets [][]unit
	if p.Doubles {
		teamSets = partnerSets(shuffled(p.Players))
	} else {
		singles := make([]unit, len(p.Players))
		for i, id := range p.Players {
			singles[i] = unit{id}
		}
		teamSets = [][]unit{singles}
	}
	if len(teamSets) == 0 {
		return nil
	}

	pool := shuffledMatchups(allMatchups(teamSets[0]))
	nextSet := 1

	targetRounds := p.Rounds
	if targetRounds <= 0 {
		targetRounds = (len(pool) + courts - 1) / courts
	}

	var matches []tournament.Match
	for round := 1; round <= targetRounds; round++ {
		if len(pool) == 0 {
			if nextSet >= len(teamSets) {
				break
			}
			pool = shuffledMatchups(allMatchups(teamSets[nextSet]))
			nextSet++
		}

		used := make(map[uuid.UUID]bool)
		court := 0
		for i := 0; i < len(pool) && court < courts; {
			m := pool[i]
			if collides(used, m.players()) {
				i++
				continue
			}
			court++
			for _, id := range m.players() {
				used[id] = true
			}
			matches = append(matches, tournament.NewMatch(p.TournamentID, round, court, m[0], m[1]))
			pool = append(pool[:i], pool[i+1:]...)
		}
	}

	return matches
}

func collides(used map[uuid.UUID]bool, players []uuid.UUID) bool {
	for _, id := range players {
		if used[id] {
			return true
		}
	}
	return false
}

func allMatchups(units []unit) []matchup {
	var out []matchup
	for i := 0; i < len(units); i++ {
		for j := i + 1; j < len(units); j++ {
			out = append(out, matchup{units[i], units[j]})
		}
	}
	return out
}

func shuffledMatchups(ms []matchup) []matchup {
	out := make([]matchup, len(ms))
	copy(out, ms)
	shuffleSlice(out)
	return out
}

// partnerSets splits players into teams of two, once per round of the circle
// method, so no partnership repeats across sets. With an odd count one player
// sits out of each set.
func partnerSets(players []uuid.UUID) [][]unit {
	n := len(players)
	if n < 2 {
		return nil
	}

	// nil stands in for the missing player when n is odd
	ring := make([]*uuid.UUID, 0, n+1)
	for i := range players {
		ring = append(ring, &players[i])
	}
	if n%2 == 1 {
		ring = append(ring, nil)
	}
	size := len(ring)

	m := size - 1
	sets := make([][]unit, 0, m)
	for k := 0; k < m; k++ {
		var set []unit
		add := func(a, b *uuid.UUID) {
			if a != nil && b != nil {
				set = append(set, unit{*a, *b})
			}
		}

		add(ring[m], ring[k])
		for i := 1; i < size/2; i++ {
			add(ring[(k+i)%m], ring[(k-i+m)%m])
		}
		sets = append(sets, set)
	}
	return sets
}
