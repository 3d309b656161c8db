package estimate

import "math"

// Config carries the tuning constants for delivery window estimation.
type Config struct {
	AverageSpeedMPH  float64
	ExtraMinutes     int
	MinWindowMinutes int
	NearTierMiles    float64
	FarTierMiles     float64
}

// DefaultConfig returns the production estimation constants.
func DefaultConfig() Config {
	return Config{
		AverageSpeedMPH:  20,
		ExtraMinutes:     5,
		MinWindowMinutes: 10,
		NearTierMiles:    5,
		FarTierMiles:     15,
	}
}

// Window is an estimated delivery range in minutes from acceptance.
type Window struct {
	Min int
	Max int
}

// Window computes the delivery window for the given aggregate kitchen prep
// time and store-to-address distance. Inputs are non-negative by contract
// of the caller. The lower bound never drops below MinWindowMinutes, so
// even a zero-distance zero-prep order yields a sensible range.
func (c Config) Window(prepMinutes, distanceMiles float64) Window {
	base := distanceMiles/c.AverageSpeedMPH*60 + prepMinutes

	min := int(math.Floor(base)) + c.ExtraMinutes
	if min < c.MinWindowMinutes {
		min = c.MinWindowMinutes
	}

	max := int(math.Floor(base+c.tierBuffer(distanceMiles))) + c.MinWindowMinutes

	if max < min {
		max = min
	}
	return Window{Min: min, Max: max}
}

// tierBuffer grows with distance: nothing for nearby stores, one buffer
// unit inside the far tier, two beyond it.
func (c Config) tierBuffer(distanceMiles float64) float64 {
	switch {
	case distanceMiles < c.NearTierMiles:
		return 0
	case distanceMiles < c.FarTierMiles:
		return float64(c.ExtraMinutes)
	default:
		return float64(2 * c.ExtraMinutes)
	}
}
