package pairing

import (
	"github.com/AdamBeresnev/courtside/internal/standings"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	"github.com/google/uuid"
)

type NextRoundParams struct {
	TournamentID uuid.UUID
	// Players are the confirmed entrants in queue order; ties in the standings keep this order.
	Players []uuid.UUID
	Matches []tournament.Match
	Courts  int
	Doubles bool
	Round   int
}

// NextRound groups players by current form: the standings so far are ranked
// and cut into consecutive groups, one per court, top group on court 1.
// Players past the last full group get a bye. The output depends only on the
// inputs, so regenerating a round gives the same draw.
func NextRound(p NextRoundParams) ([]tournament.Match, error) {
	if len(p.Players) < 4 {
		return nil, ErrNotEnoughPlayers
	}

	rows := standings.Compute(p.Players, p.Matches)
	standings.SortForAdvance(rows)
	ranked := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ranked[i] = r.PlayerID
	}

	group := 2
	if p.Doubles {
		group = 4
	}
	active := min(max(p.Courts, 1)*group, len(ranked))
	active -= active % group

	var matches []tournament.Match
	for i := 0; i < active; i += group {
		court := i/group + 1
		g := ranked[i : i+group]
		if p.Doubles {
			for _, game := range FourCycle.Plan(g, p.Round).Games {
				matches = append(matches, tournament.NewMatch(p.TournamentID, p.Round, court, game.Side1, game.Side2))
			}
			continue
		}
		matches = append(matches, tournament.NewMatch(p.TournamentID, p.Round, court, g[:1], g[1:]))
	}

	if rest := ranked[active:]; len(rest) > 0 {
		matches = append(matches, tournament.NewBye(p.TournamentID, p.Round, tournament.ByeCourt, rest))
	}
	return matches, nil
}
