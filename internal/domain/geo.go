package domain

import "math"

// GeoPoint is a WGS-84 latitude/longitude coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether the point is the unset zero value. The exact
// null-island coordinate is treated as missing, which is acceptable for
// a wildfire engine.
func (p GeoPoint) IsZero() bool { return p.Lat == 0 && p.Lon == 0 }

// Valid reports whether the point lies within WGS-84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

const earthKmPerDegLat = 111.32

// Destination returns the point reached by travelling distanceKm from p
// on the given bearing. Equirectangular approximation: fine for the
// tactical ranges involved (tens of km), cheap enough to call per
// perimeter point.
func (p GeoPoint) Destination(bearingDeg, distanceKm float64) GeoPoint {
	rad := bearingDeg * math.Pi / 180
	dLat := distanceKm * math.Cos(rad) / earthKmPerDegLat
	kmPerDegLon := earthKmPerDegLat * math.Cos(p.Lat*math.Pi/180)
	if kmPerDegLon < 1e-6 {
		kmPerDegLon = 1e-6
	}
	dLon := distanceKm * math.Sin(rad) / kmPerDegLon
	return GeoPoint{Lat: p.Lat + dLat, Lon: p.Lon + dLon}
}

// normalizeBearing wraps a bearing into [0,360).
func normalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// angularDelta returns the absolute raw difference between two bearings
// in [0,360). Callers that need the effective (shortest-arc) change use
// effectiveChange on the result.
func angularDelta(a, b float64) float64 {
	return math.Abs(normalizeBearing(a) - normalizeBearing(b))
}

// effectiveChange collapses a raw angular delta to the shortest arc.
func effectiveChange(rawDelta float64) float64 {
	if rawDelta > 180 {
		return 360 - rawDelta
	}
	return rawDelta
}

// clamp bounds v to [lo,hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
