package scoring

import (
	"fmt"

	"courtwatch/internal/sport"
)

var pointLabels = []string{"0", "15", "30", "40"}

// DisplayPoints maps the raw point counts to what the scoreboard shows.
// Rally scoring and tiebreaks show plain counts; traditional games map to
// 0/15/30/40 with deuce and advantage once both sides pass 40.
func DisplayPoints(cfg MatchConfig, st State) (a, b string) {
	if cfg.Sport == sport.Pickleball || st.Tiebreak {
		return fmt.Sprintf("%d", st.Points.A), fmt.Sprintf("%d", st.Points.B)
	}

	pa, pb := st.Points.A, st.Points.B
	if pa >= 3 && pb >= 3 {
		switch {
		case pa == pb:
			// Deuce; under golden point the next rally decides outright.
			return "40", "40"
		case pa > pb:
			return "Ad", "-"
		default:
			return "-", "Ad"
		}
	}

	return pointLabel(pa), pointLabel(pb)
}

func pointLabel(p int) string {
	if p < len(pointLabels) {
		return pointLabels[p]
	}
	return pointLabels[len(pointLabels)-1]
}

// Scoreline renders a compact one-line summary of the match position.
func Scoreline(cfg MatchConfig, st State) string {
	a, b := DisplayPoints(cfg, st)
	switch cfg.Sport {
	case sport.Pickleball:
		return fmt.Sprintf("%s-%s (serve %s)", a, b, st.Server)
	default:
		return fmt.Sprintf("sets %d-%d games %d-%d points %s-%s (serve %s)",
			st.Sets.A, st.Sets.B, st.Games.A, st.Games.B, a, b, st.Server)
	}
}
