package scoring

import (
	"fmt"

	"courtwatch/internal/sport"
)

// newPadelRules builds traditional rules for padel: always doubles, with
// the optional golden-point rule replacing advantage play.
func newPadelRules(cfg MatchConfig) (Rules, error) {
	if cfg.Kind == sport.Singles {
		return nil, fmt.Errorf("padel is doubles only")
	}
	setsToWin := cfg.SetsToWin
	if setsToWin <= 0 {
		setsToWin = 2
	}
	first := cfg.FirstServer
	if first == SideNone {
		first = SideA
	}
	return &traditionalRules{
		sp:          sport.Padel,
		doubles:     true,
		setsToWin:   setsToWin,
		goldenPoint: cfg.GoldenPoint,
		firstServer: first,
	}, nil
}
