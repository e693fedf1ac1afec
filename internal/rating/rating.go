// Package rating implements the logistic dynamic-rating adjustment applied after a match.
//
// A side's outcome is its share of the points scored, not a binary win, so the margin
// of victory moves ratings. Every player on a side shares the side's expected and
// actual values but adjusts from their own rating with their own K factor.
package rating

import "math"

const (
	// Floor is the lowest rating a player can hold.
	Floor = 1.0
	// ProvisionalBelow marks ratings that still move with ProvisionalK.
	ProvisionalBelow = 2.0
	ProvisionalK     = 0.5
	EstablishedK     = 0.1
	// Scale is the rating gap that makes one side ten times as likely to win.
	Scale = 2.0
)

// WinProbability is the expected outcome for a side rated a against a side rated b.
func WinProbability(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, -(a-b)/Scale))
}

// TeamRating averages the ratings of the players on a side.
func TeamRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return Floor
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

func KFactor(current float64) float64 {
	if current < ProvisionalBelow {
		return ProvisionalK
	}
	return EstablishedK
}

// Delta is the unrounded, unfloored change for a player.
func Delta(current, actual, expected float64) float64 {
	return KFactor(current) * (actual - expected)
}

// Adjust returns the new rating, floored and rounded to three decimals.
func Adjust(current, actual, expected float64) float64 {
	next := current + Delta(current, actual, expected)
	if next < Floor {
		next = Floor
	}
	return math.Round(next*1000) / 1000
}

// Result holds the post-match ratings of both sides, in the order they were given.
type Result struct {
	Side1 []float64
	Side2 []float64
}

// ForMatch rates a finished match. ok is false when no points were scored, in which
// case nobody's rating changes.
func ForMatch(side1, side2 []float64, score1, score2 int) (res Result, ok bool) {
	total := score1 + score2
	if total <= 0 || len(side1) == 0 || len(side2) == 0 {
		return Result{}, false
	}

	expected1 := WinProbability(TeamRating(side1), TeamRating(side2))
	expected2 := 1 - expected1
	actual1 := float64(score1) / float64(total)
	actual2 := float64(score2) / float64(total)

	res.Side1 = make([]float64, len(side1))
	for i, r := range side1 {
		res.Side1[i] = Adjust(r, actual1, expected1)
	}
	res.Side2 = make([]float64, len(side2))
	for i, r := range side2 {
		res.Side2[i] = Adjust(r, actual2, expected2)
	}
	return res, true
}
