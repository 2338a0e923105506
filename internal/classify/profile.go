package classify

import "courtwatch/internal/sport"

// Profile holds the per-sport swing thresholds.
//
// Magnitudes are user acceleration in g, rotations in rad/s, angles in
// degrees. Tennis carries the highest touch threshold because its ball
// impacts are heavier; padel the lowest because the sport is softest.
type Profile struct {
	// MinSwing is the minimum magnitude for a deliberate swing. Anything
	// below it with no timing context is sensor noise.
	MinSwing float64

	// Touch is the ceiling for dinks, drops and resets.
	Touch float64

	// Serve is the full serve magnitude threshold.
	Serve float64

	// VolleyLow and VolleyHigh bound the reactive-block magnitude band.
	VolleyLow  float64
	VolleyHigh float64

	// SteepAngle is the gyro angle above which a high-rotation swing reads
	// as an overhead.
	SteepAngle float64
}

var profiles = map[sport.Sport]Profile{
	sport.Pickleball: {
		MinSwing:   1.2,
		Touch:      1.6,
		Serve:      2.6,
		VolleyLow:  1.6,
		VolleyHigh: 2.6,
		SteepAngle: 55,
	},
	sport.Tennis: {
		MinSwing:   1.4,
		Touch:      2.0,
		Serve:      3.0,
		VolleyLow:  2.0,
		VolleyHigh: 3.0,
		SteepAngle: 60,
	},
	sport.Padel: {
		MinSwing:   1.1,
		Touch:      1.5,
		Serve:      2.4,
		VolleyLow:  1.5,
		VolleyHigh: 2.4,
		SteepAngle: 55,
	},
}

// ProfileFor returns the threshold profile for a sport.
func ProfileFor(sp sport.Sport) Profile {
	return profiles[sp]
}
