package geometry

import (
	"math"
)

// --- Geometry Helpers ---

func DistNM(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 3440.06
	r1, r2 := lat1*math.Pi/180, lat2*math.Pi/180

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	// --- handle dateline crossing ---
	for dLon > math.Pi {
		dLon -= 2 * math.Pi
	}
	for dLon < -math.Pi {
		dLon += 2 * math.Pi
	}

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(r1)*math.Cos(r2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return R * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Destination projects a start point along a true track for a given distance
// in metres and returns the new latitude/longitude. Latitude is clamped at
// the poles and longitude wrapped to [-180, 180].
func Destination(lat, lon, trackDeg, distM float64) (float64, float64) {
	const earthRadiusM = 6371000.0

	d := distM / earthRadiusM
	trackRad := trackDeg * math.Pi / 180

	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180

	newLatRad := math.Asin(math.Sin(latRad)*math.Cos(d) +
		math.Cos(latRad)*math.Sin(d)*math.Cos(trackRad))

	newLonRad := lonRad + math.Atan2(math.Sin(trackRad)*math.Sin(d)*math.Cos(latRad),
		math.Cos(d)-math.Sin(latRad)*math.Sin(newLatRad))

	newLat := newLatRad * 180 / math.Pi
	newLon := newLonRad * 180 / math.Pi

	if newLat > 90 {
		newLat = 90
	}
	if newLat < -90 {
		newLat = -90
	}
	newLon = math.Mod(newLon+180, 360) - 180

	return newLat, newLon
}
