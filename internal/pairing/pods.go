package pairing

import (
	"errors"
	"sort"

	"github.com/AdamBeresnev/courtside/internal/tournament"
	"github.com/google/uuid"
)

var ErrNotEnoughPlayers = errors.New("not enough players")

type ShuffleParams struct {
	TournamentID uuid.UUID
	Players      []uuid.UUID
	Ratings      map[uuid.UUID]float64
	Courts       int
	Rounds       int
}

// Pods seeds players by rating, best first, into one pod per court. Pod sizes
// differ by at most one; the earlier courts take the larger pods.
func Pods(players []uuid.UUID, ratings map[uuid.UUID]float64, courts int) [][]uuid.UUID {
	courts = max(courts, 1)

	seeded := make([]uuid.UUID, len(players))
	copy(seeded, players)
	sort.SliceStable(seeded, func(i, j int) bool {
		return ratings[seeded[i]] > ratings[seeded[j]]
	})

	base := len(seeded) / courts
	extra := len(seeded) % courts

	pods := make([][]uuid.UUID, 0, courts)
	next := 0
	for c := 0; c < courts; c++ {
		size := base
		if c < extra {
			size++
		}
		pods = append(pods, seeded[next:next+size])
		next += size
	}
	return pods
}

// Shuffle lays out every round up front: each pod stays on its court and
// rotates partners according to its size. Players sitting out a round get a
// bye on their pod's court.
func Shuffle(p ShuffleParams) []tournament.Match {
	rounds := p.Rounds
	if rounds <= 0 {
		rounds = tournament.DefaultRounds
	}

	var matches []tournament.Match
	for c, pod := range Pods(p.Players, p.Ratings, p.Courts) {
		if len(pod) == 0 {
			continue
		}
		court := c + 1
		rotation := RotationFor(len(pod))
		for round := 1; round <= rounds; round++ {
			plan := rotation.Plan(pod, round)
			for _, g := range plan.Games {
				matches = append(matches, tournament.NewMatch(p.TournamentID, round, court, g.Side1, g.Side2))
			}
			if len(plan.Sitting) > 0 {
				matches = append(matches, tournament.NewBye(p.TournamentID, round, court, plan.Sitting))
			}
		}
	}
	return matches
}

type WaterfallParams struct {
	TournamentID uuid.UUID
	Players      []uuid.UUID
	Courts       int
}

// Waterfall seeds the opening round of a king-of-the-court run: a random draw
// fills as many doubles courts as the field allows and everyone else sits.
// It returns the court count actually used.
func Waterfall(p WaterfallParams) ([]tournament.Match, int, error) {
	if len(p.Players) < 4 {
		return nil, 0, ErrNotEnoughPlayers
	}

	courts := min(max(p.Courts, 1), len(p.Players)/4)
	drawn := shuffled(p.Players)

	matches := make([]tournament.Match, 0, courts+1)
	for c := 0; c < courts; c++ {
		q := drawn[c*4 : c*4+4]
		matches = append(matches, tournament.NewMatch(p.TournamentID, 1, c+1, q[:2], q[2:]))
	}
	if rest := drawn[courts*4:]; len(rest) > 0 {
		matches = append(matches, tournament.NewBye(p.TournamentID, 1, tournament.ByeCourt, rest))
	}
	return matches, courts, nil
}
