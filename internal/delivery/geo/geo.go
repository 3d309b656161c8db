package geo

import "math"

const earthRadiusMiles = 3958.8

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Miles returns the great-circle distance between two points using the
// haversine formula. Delivery radii are small enough that no projection
// correction is needed. NaN or infinite inputs propagate NaN.
func Miles(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

// DistanceTo returns the distance in miles from p to q.
func (p Point) DistanceTo(q Point) float64 {
	return Miles(p, q)
}
