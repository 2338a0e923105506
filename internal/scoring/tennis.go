package scoring

import "courtwatch/internal/sport"

// newTennisRules builds traditional deuce/advantage rules for singles or
// doubles tennis.
func newTennisRules(cfg MatchConfig) Rules {
	setsToWin := cfg.SetsToWin
	if setsToWin <= 0 {
		setsToWin = 2
	}
	first := cfg.FirstServer
	if first == SideNone {
		first = SideA
	}
	return &traditionalRules{
		sp:          sport.Tennis,
		doubles:     cfg.Kind == sport.Doubles,
		setsToWin:   setsToWin,
		firstServer: first,
	}
}
