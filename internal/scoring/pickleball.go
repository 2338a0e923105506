package scoring

import "courtwatch/internal/sport"

// pickleballRules implements rally scoring with side-out serve rules: only
// the serving side scores, and a rally lost on serve transfers the serve
// instead of a point. In doubles the serve passes to the second server
// first, so the opponents only gain serve after two consecutive losses.
type pickleballRules struct {
	target   int
	winByTwo bool
	doubles  bool
}

func newPickleballRules(cfg MatchConfig) *pickleballRules {
	target := cfg.TargetScore
	if target <= 0 {
		target = 11
	}
	return &pickleballRules{
		target:   target,
		winByTwo: cfg.WinByTwo,
		doubles:  cfg.Kind == sport.Doubles,
	}
}

func (r *pickleballRules) Sport() sport.Sport {
	return sport.Pickleball
}

func (r *pickleballRules) ApplyRally(st State, winner Side) (State, Outcome) {
	out := Outcome{ScoreAfter: st.Points}

	if winner != st.Server {
		// Side-out: no score change, the serve moves on.
		if r.doubles && !st.SecondServer {
			st.SecondServer = true
		} else {
			st.Server = st.Server.Other()
			st.SecondServer = false
		}
		return st, out
	}

	st.Points = st.Points.Add(winner)
	out.PointScored = true
	out.ScoreAfter = st.Points

	if r.gameWon(st.Points, winner) {
		// A rally-scoring match is a single game.
		st.MatchWinner = winner
		out.GameWon = winner
		out.MatchWon = winner
	}
	return st, out
}

func (r *pickleballRules) gameWon(points Score, side Side) bool {
	if points.Get(side) < r.target {
		return false
	}
	if r.winByTwo {
		return points.Lead(side) >= 2
	}
	return true
}
