package scoring

import "courtwatch/internal/sport"

// Traditional scoring thresholds.
const (
	gamePointsToWin     = 4 // deuce threshold is gamePointsToWin - 1
	gamesPerSet         = 6
	tiebreakPointsToWin = 7
)

// traditionalRules implements deuce/advantage scoring with six-game sets, a
// tiebreak at six-all, and set-based match completion. Tennis and padel
// both build on it; padel adds the golden-point option.
type traditionalRules struct {
	sp          sport.Sport
	doubles     bool
	setsToWin   int
	goldenPoint bool
	firstServer Side
}

func (r *traditionalRules) Sport() sport.Sport {
	return r.sp
}

func (r *traditionalRules) ApplyRally(st State, winner Side) (State, Outcome) {
	if st.Tiebreak {
		return r.applyTiebreakPoint(st, winner)
	}
	return r.applyGamePoint(st, winner)
}

func (r *traditionalRules) applyGamePoint(st State, winner Side) (State, Outcome) {
	st.Points = st.Points.Add(winner)
	out := Outcome{PointScored: true, ScoreAfter: st.Points}

	if !r.gameWon(st.Points, winner) {
		return st, out
	}

	out.GameWon = winner
	st.Points = Score{}
	st.Games = st.Games.Add(winner)

	if r.setWon(st.Games, winner) {
		return r.completeSet(st, winner, out)
	}

	st = r.rotateServe(st)

	if st.Games.A == gamesPerSet && st.Games.B == gamesPerSet {
		st.Tiebreak = true
		st.TiebreakPlayed = 0
		st.TiebreakFirstServer = st.Server
		out.TiebreakEntered = true
	}
	return st, out
}

func (r *traditionalRules) applyTiebreakPoint(st State, winner Side) (State, Outcome) {
	st.Points = st.Points.Add(winner)
	st.TiebreakPlayed++
	out := Outcome{PointScored: true, ScoreAfter: st.Points}

	if st.Points.Get(winner) >= tiebreakPointsToWin && st.Points.Lead(winner) >= 2 {
		// A won tiebreak always yields a 7-6 set.
		out.GameWon = winner
		st.Games = st.Games.Add(winner)
		return r.completeSet(st, winner, out)
	}

	// First point is served by the opener; after that the serve alternates
	// every two points.
	if ((st.TiebreakPlayed+1)/2)%2 == 0 {
		st.Server = st.TiebreakFirstServer
	} else {
		st.Server = st.TiebreakFirstServer.Other()
	}
	return st, out
}

func (r *traditionalRules) completeSet(st State, winner Side, out Outcome) (State, Outcome) {
	out.SetWon = winner
	st.CompletedSets = append(st.CompletedSets, st.Games)
	st.Sets = st.Sets.Add(winner)

	wasTiebreak := st.Tiebreak
	firstServer := st.TiebreakFirstServer
	st.Points = Score{}
	st.Games = Score{}
	st.Tiebreak = false
	st.TiebreakPlayed = 0
	st.TiebreakFirstServer = SideNone

	if st.Sets.Get(winner) >= r.setsToWin {
		st.MatchWinner = winner
		out.MatchWon = winner
		return st, out
	}

	if wasTiebreak {
		// The side that received first in the tiebreak opens the next set.
		st.ServeSlot = (st.ServeSlot + 1) % 4
		st.Server = firstServer.Other()
	} else {
		st = r.rotateServe(st)
	}
	return st, out
}

// rotateServe advances the server after a completed game. Doubles cycles
// through four server slots (team A first server, team B first server,
// team A second server, team B second server); singles alternates.
func (r *traditionalRules) rotateServe(st State) State {
	if r.doubles {
		st.ServeSlot = (st.ServeSlot + 1) % 4
		if st.ServeSlot%2 == 0 {
			st.Server = r.firstServer
		} else {
			st.Server = r.firstServer.Other()
		}
		st.SecondServer = st.ServeSlot >= 2
		return st
	}
	st.Server = st.Server.Other()
	return st
}

func (r *traditionalRules) gameWon(points Score, side Side) bool {
	if r.goldenPoint && points.Get(side.Other()) >= gamePointsToWin-1 && points.Get(side) >= gamePointsToWin {
		// Golden point: at deuce the next point decides the game outright.
		return true
	}
	return points.Get(side) >= gamePointsToWin && points.Lead(side) >= 2
}

func (r *traditionalRules) setWon(games Score, side Side) bool {
	return games.Get(side) >= gamesPerSet && games.Lead(side) >= 2
}
