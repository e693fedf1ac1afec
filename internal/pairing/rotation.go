package pairing

import (
	"math/rand"

	"github.com/google/uuid"
)

// Game is one match worth of players: each side holds one or two players.
type Game struct {
	Side1 []uuid.UUID
	Side2 []uuid.UUID
}

// RoundPlan is what a pod plays in one round.
type RoundPlan struct {
	Games   []Game
	Sitting []uuid.UUID
}

// Rotation maps a pod and a 1-based round number to that round's partner assignment.
type Rotation interface {
	Plan(pod []uuid.UUID, round int) RoundPlan
	// Deterministic is false when Plan reshuffles on every call.
	Deterministic() bool
}

// cycle is a fixed table of doubles splits; entry i is used for rounds i+1, i+1+len, ...
// Each split is {a, b, c, d}: a and b partner against c and d.
type cycle [][4]int

func (c cycle) Deterministic() bool { return true }

func (c cycle) Plan(pod []uuid.UUID, round int) RoundPlan {
	split := c[(round-1)%len(c)]

	playing := make(map[int]bool, 4)
	for _, i := range split {
		playing[i] = true
	}
	var sitting []uuid.UUID
	for i, id := range pod {
		if !playing[i] {
			sitting = append(sitting, id)
		}
	}

	return RoundPlan{
		Games: []Game{{
			Side1: []uuid.UUID{pod[split[0]], pod[split[1]]},
			Side2: []uuid.UUID{pod[split[2]], pod[split[3]]},
		}},
		Sitting: sitting,
	}
}

var (
	// FourCycle covers the three ways to split four players into two teams.
	FourCycle = cycle{
		{0, 1, 2, 3},
		{0, 2, 1, 3},
		{0, 3, 1, 2},
	}

	// FiveCycle sits out one player per round; over five rounds every player sits
	// once and every pair of players partners exactly once.
	FiveCycle = cycle{
		{0, 1, 2, 3},
		{0, 2, 1, 4},
		{0, 3, 2, 4},
		{0, 4, 1, 3},
		{1, 2, 3, 4},
	}
)

// randomChunks is the fallback for pod sizes without a table. It offers no
// rotation guarantee: every round is an independent shuffle cut into fours.
type randomChunks struct{}

func (randomChunks) Deterministic() bool { return false }

func (randomChunks) Plan(pod []uuid.UUID, _ int) RoundPlan {
	shuffled := shuffled(pod)

	var plan RoundPlan
	i := 0
	for ; i+3 < len(shuffled); i += 4 {
		plan.Games = append(plan.Games, Game{
			Side1: []uuid.UUID{shuffled[i], shuffled[i+1]},
			Side2: []uuid.UUID{shuffled[i+2], shuffled[i+3]},
		})
	}
	plan.Sitting = append(plan.Sitting, shuffled[i:]...)
	return plan
}

// RotationFor picks the rotation for a pod size.
func RotationFor(size int) Rotation {
	switch size {
	case 4:
		return FourCycle
	case 5:
		return FiveCycle
	default:
		return randomChunks{}
	}
}

func shuffled(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	shuffleSlice(out)
	return out
}

func shuffleSlice[T any](s []T) {
	rand.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}
