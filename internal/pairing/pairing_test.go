package pairing

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/AdamBeresnev/courtside/internal/tournament"
	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tID = uuid.New()

func newPlayers(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

// assertNoDoubleBooking checks that nobody appears twice in the same round.
func assertNoDoubleBooking(t *testing.T, matches []tournament.Match) {
	t.Helper()
	seen := make(map[int]map[uuid.UUID]bool)
	for i := range matches {
		m := &matches[i]
		if seen[m.Round] == nil {
			seen[m.Round] = make(map[uuid.UUID]bool)
		}
		ids := m.Players()
		if m.IsBye() {
			ids = m.ByePlayers
		}
		for _, id := range ids {
			assert.False(t, seen[m.Round][id], "player %s booked twice in round %d", id, m.Round)
			seen[m.Round][id] = true
		}
	}
}

func teamKey(ids ...uuid.UUID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	sort.Strings(s)
	return strings.Join(s, "+")
}

func sideKey(m tournament.Match, side int) string {
	if side == 1 {
		return teamKey(m.Side1()...)
	}
	return teamKey(m.Side2()...)
}

func matchupKey(m tournament.Match) string {
	a, b := sideKey(m, 1), sideKey(m, 2)
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func TestRoundRobinSingles(t *testing.T) {
	tests := []struct {
		players, courts int
	}{
		{4, 1},
		{5, 2},
		{6, 3},
		{7, 2},
		{10, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d players on %d courts", tt.players, tt.courts), func(t *testing.T) {
			matches := RoundRobin(RoundRobinParams{
				TournamentID: tID,
				Players:      newPlayers(tt.players),
				Courts:       tt.courts,
			})

			assertNoDoubleBooking(t, matches)

			seen := make(map[string]bool)
			for _, m := range matches {
				key := matchupKey(m)
				assert.False(t, seen[key], "matchup %s repeated", key)
				seen[key] = true
				assert.LessOrEqual(t, m.Court, tt.courts)
				assert.GreaterOrEqual(t, m.Court, 1)
			}

			total := tt.players * (tt.players - 1) / 2
			rounds := (total + tt.courts - 1) / tt.courts
			assert.LessOrEqual(t, len(matches), total)
			assert.LessOrEqual(t, tournament.LastRound(matches), rounds)
		})
	}
}

func TestRoundRobinRespectsRoundCap(t *testing.T) {
	matches := RoundRobin(RoundRobinParams{
		TournamentID: tID,
		Players:      newPlayers(6),
		Courts:       3,
		Rounds:       2,
	})
	assert.LessOrEqual(t, tournament.LastRound(matches), 2)
	assert.LessOrEqual(t, len(matches), 6)
}

func TestRoundRobinDoublesFourPlayersThreeRounds(t *testing.T) {
	p := newPlayers(4)
	matches := RoundRobin(RoundRobinParams{
		TournamentID: tID,
		Players:      p,
		Doubles:      true,
		Courts:       1,
		Rounds:       3,
	})

	require.Len(t, matches, 3)
	partnerships := make(map[string]bool)
	for i, m := range matches {
		assert.Equal(t, i+1, m.Round)
		assert.Equal(t, 1, m.Court)
		assert.ElementsMatch(t, p, m.Players())
		partnerships[sideKey(m, 1)] = true
		partnerships[sideKey(m, 2)] = true
	}
	assert.Len(t, partnerships, 6)
}

func TestRoundRobinDoublesDefaultsToOnePool(t *testing.T) {
	matches := RoundRobin(RoundRobinParams{
		TournamentID: tID,
		Players:      newPlayers(9),
		Doubles:      true,
		Courts:       2,
	})

	// nine players make four teams, one player is left out
	require.Len(t, matches, 6)
	players := make(map[uuid.UUID]bool)
	for _, m := range matches {
		assert.Len(t, m.Players(), 4)
		for _, id := range m.Players() {
			players[id] = true
		}
	}
	assert.Len(t, players, 8)
	assertNoDoubleBooking(t, matches)
}

func TestRoundRobinDoublesDrawsFreshTeamsAfterFirstPool(t *testing.T) {
	matches := RoundRobin(RoundRobinParams{
		TournamentID: tID,
		Players:      newPlayers(8),
		Doubles:      true,
		Courts:       1,
		Rounds:       8,
	})

	// four teams give six matchups, so rounds seven and eight need new teams
	require.Len(t, matches, 8)
	first := make(map[string]bool)
	for _, m := range matches[:6] {
		first[sideKey(m, 1)] = true
		first[sideKey(m, 2)] = true
	}
	assert.Len(t, first, 4)

	for i, m := range matches[6:] {
		assert.Equal(t, 7+i, m.Round)
		for _, key := range []string{sideKey(m, 1), sideKey(m, 2)} {
			assert.False(t, first[key], "partnership %s reused in round %d", key, m.Round)
		}
	}
	assertNoDoubleBooking(t, matches)
}

func TestRoundRobinTooFewPlayers(t *testing.T) {
	assert.Empty(t, RoundRobin(RoundRobinParams{TournamentID: tID, Players: newPlayers(1), Courts: 1}))
	assert.Empty(t, RoundRobin(RoundRobinParams{TournamentID: tID, Players: newPlayers(3), Doubles: true, Courts: 1}))
}

func TestPartnerSetsNeverRepeatPartners(t *testing.T) {
	for _, n := range []int{4, 5, 6, 8, 11} {
		sets := partnerSets(newPlayers(n))
		seen := make(map[string]bool)
		for _, set := range sets {
			assert.Len(t, set, n/2)
			for _, team := range set {
				key := teamKey(team...)
				assert.False(t, seen[key], "partnership repeated for n=%d", n)
				seen[key] = true
			}
		}
		assert.Len(t, seen, n*(n-1)/2)
	}
}

func TestFourCycleCoversAllSplits(t *testing.T) {
	pod := newPlayers(4)
	splits := make(map[string]int)
	for round := 1; round <= 3; round++ {
		plan := FourCycle.Plan(pod, round)
		require.Len(t, plan.Games, 1)
		assert.Empty(t, plan.Sitting)
		g := plan.Games[0]
		a, b := teamKey(g.Side1...), teamKey(g.Side2...)
		if a > b {
			a, b = b, a
		}
		splits[a+"|"+b]++
	}
	assert.Len(t, splits, 3)

	first := FourCycle.Plan(pod, 1)
	fourth := FourCycle.Plan(pod, 4)
	assert.Equal(t, first, fourth)
}

func TestFiveCycleRotation(t *testing.T) {
	pod := newPlayers(5)
	sat := make(map[uuid.UUID]int)
	partners := make(map[string]int)
	for round := 1; round <= 5; round++ {
		plan := FiveCycle.Plan(pod, round)
		require.Len(t, plan.Sitting, 1)
		sat[plan.Sitting[0]]++
		partners[teamKey(plan.Games[0].Side1...)]++
		partners[teamKey(plan.Games[0].Side2...)]++
	}

	assert.Len(t, sat, 5)
	assert.Equal(t, []uuid.UUID{pod[4]}, FiveCycle.Plan(pod, 1).Sitting)
	assert.Equal(t, []uuid.UUID{pod[0]}, FiveCycle.Plan(pod, 5).Sitting)
	assert.Len(t, partners, 10)
}

func TestRotationFor(t *testing.T) {
	assert.True(t, RotationFor(4).Deterministic())
	assert.True(t, RotationFor(5).Deterministic())
	assert.False(t, RotationFor(6).Deterministic())

	plan := RotationFor(6).Plan(newPlayers(6), 1)
	assert.Len(t, plan.Games, 1)
	assert.Len(t, plan.Sitting, 2)
}

func TestPods(t *testing.T) {
	p := newPlayers(10)
	ratings := make(map[uuid.UUID]float64)
	for i, id := range p {
		ratings[id] = float64(i)
	}

	pods := Pods(p, ratings, 3)
	require.Len(t, pods, 3)
	assert.Len(t, pods[0], 4)
	assert.Len(t, pods[1], 3)
	assert.Len(t, pods[2], 3)
	assert.Equal(t, p[9], pods[0][0])
	assert.Equal(t, p[0], pods[2][2])
}

func TestShuffleFourPod(t *testing.T) {
	p := newPlayers(8)
	matches := Shuffle(ShuffleParams{TournamentID: tID, Players: p, Courts: 2, Rounds: 3})

	require.Len(t, matches, 6)
	assertNoDoubleBooking(t, matches)

	byCourt := make(map[int]map[string]bool)
	for _, m := range matches {
		assert.False(t, m.IsBye())
		if byCourt[m.Court] == nil {
			byCourt[m.Court] = make(map[string]bool)
		}
		byCourt[m.Court][matchupKey(m)] = true
	}
	assert.Len(t, byCourt, 2)
	for _, splits := range byCourt {
		assert.Len(t, splits, 3)
	}
}

func TestShuffleFivePodRecordsByes(t *testing.T) {
	p := newPlayers(5)
	matches := Shuffle(ShuffleParams{TournamentID: tID, Players: p, Courts: 1})

	var games, byes int
	for _, m := range matches {
		assert.Equal(t, 1, m.Court)
		if m.IsBye() {
			byes++
			assert.Len(t, m.ByePlayers, 1)
			continue
		}
		games++
	}
	assert.Equal(t, tournament.DefaultRounds, games)
	assert.Equal(t, tournament.DefaultRounds, byes)
	assertNoDoubleBooking(t, matches)
}

func TestWaterfall(t *testing.T) {
	t.Run("needs four players", func(t *testing.T) {
		_, _, err := Waterfall(WaterfallParams{TournamentID: tID, Players: newPlayers(3), Courts: 1})
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	})

	t.Run("caps courts by field size", func(t *testing.T) {
		matches, courts, err := Waterfall(WaterfallParams{TournamentID: tID, Players: newPlayers(10), Courts: 4})
		require.NoError(t, err)
		assert.Equal(t, 2, courts)
		require.Len(t, matches, 3)

		bye := matches[2]
		assert.True(t, bye.IsBye())
		assert.Equal(t, tournament.ByeCourt, bye.Court)
		assert.Len(t, bye.ByePlayers, 2)
		for _, m := range matches {
			assert.Equal(t, 1, m.Round)
		}
		assertNoDoubleBooking(t, matches)
	})

	t.Run("exact fit has no bye", func(t *testing.T) {
		matches, courts, err := Waterfall(WaterfallParams{TournamentID: tID, Players: newPlayers(8), Courts: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, courts)
		assert.Len(t, matches, 2)
	})
}

func scored(m tournament.Match, s1, s2 int) tournament.Match {
	m.Score1 = utils.Ptr(s1)
	m.Score2 = utils.Ptr(s2)
	m.Status = tournament.MatchCompleted
	return m
}

func TestNextRoundGroupsByStandings(t *testing.T) {
	p := newPlayers(9)
	history := []tournament.Match{
		// p[8] and p[7] win big, p[0] and p[1] lose
		scored(tournament.NewMatch(tID, 1, 1, []uuid.UUID{p[8], p[7]}, []uuid.UUID{p[0], p[1]}), 11, 0),
		scored(tournament.NewMatch(tID, 1, 2, []uuid.UUID{p[6], p[5]}, []uuid.UUID{p[2], p[3]}), 11, 9),
	}

	params := NextRoundParams{
		TournamentID: tID,
		Players:      p,
		Matches:      history,
		Courts:       2,
		Doubles:      true,
		Round:        2,
	}
	matches, err := NextRound(params)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	top := matches[0]
	assert.Equal(t, 1, top.Court)
	assert.ElementsMatch(t, []uuid.UUID{p[8], p[7], p[6], p[5]}, top.Players())
	// ties keep queue order, so the top group ranks p7, p8, p5, p6;
	// round 2 uses the second split: 1st and 3rd against 2nd and 4th
	assert.ElementsMatch(t, []uuid.UUID{p[7], p[5]}, top.Side1())

	bye := matches[2]
	assert.True(t, bye.IsBye())
	assert.Equal(t, tournament.PlayerList{p[1]}, bye.ByePlayers)
	assertNoDoubleBooking(t, matches)

	again, err := NextRound(params)
	require.NoError(t, err)
	require.Len(t, again, len(matches))
	for i := range matches {
		assert.Equal(t, matches[i].Court, again[i].Court)
		assert.Equal(t, matches[i].Players(), again[i].Players())
		assert.Equal(t, matches[i].ByePlayers, again[i].ByePlayers)
	}
}

func TestNextRoundSingles(t *testing.T) {
	p := newPlayers(5)
	matches, err := NextRound(NextRoundParams{TournamentID: tID, Players: p, Courts: 2, Round: 1})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, []uuid.UUID{p[0]}, matches[0].Side1())
	assert.Equal(t, []uuid.UUID{p[1]}, matches[0].Side2())
	assert.Equal(t, 2, matches[1].Court)
	assert.Equal(t, tournament.PlayerList{p[4]}, matches[2].ByePlayers)
}

func TestNextRoundNeedsFourPlayers(t *testing.T) {
	_, err := NextRound(NextRoundParams{TournamentID: tID, Players: newPlayers(3), Courts: 1, Round: 1})
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}
