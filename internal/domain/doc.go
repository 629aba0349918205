// Package domain models wildfire behavior and tactical response doctrine.
//
// # Scope
//
// Everything in this package is pure computation over immutable inputs:
// risk scoring, spread prediction, wind-pattern analysis, and tactical
// plan generation. No I/O happens here. Collaborator data (weather,
// facilities, detections) arrives pre-fetched inside an
// EnvironmentalSnapshot or ZoneContext; adapters own the fetching.
//
// # Units
//
// One consistent unit system is used everywhere:
//
//	distance      kilometres
//	speed         km/h (rate of spread is computed in m/min internally
//	              and converted before leaving the spread module)
//	area          km²
//	time horizons hours
//	bearings      degrees true, normalized to [0,360)
//	temperature   °C
//
// # Scores and tiers
//
// Magnitude and danger scores are clamped to [0,100] and map to bands:
//
//	<25 low | <50 moderate | <75 high | ≥75 extreme
//
// Fire-intensity tiers derive from effective wind speed with fixed
// thresholds shared by the wind analyzer and the perimeter builder:
//
//	>30 km/h extreme | >20 high | >10 moderate | else low
//
// # Atmospheric stability
//
// A simplified diurnal rule, applied identically to the current reading
// and every hourly forecast point:
//
//	unstable  hour in [10,16] and temperature > 25°C
//	stable    hour in [22,24) or [0,6]
//	neutral   otherwise
//
// # Determinism
//
// All scoring and prediction is deterministic: same inputs, same
// outputs. Where the computation needs "now" (plan timestamps, change
// detection anchors) it reads the package clock, which tests freeze via
// SetClock. There is no randomness anywhere in this package.
package domain
