package domain

import (
	"fmt"
	"math"
	"time"
)

// IntensityTier classifies fire intensity driven by effective wind.
type IntensityTier string

const (
	IntensityLow      IntensityTier = "low"
	IntensityModerate IntensityTier = "moderate"
	IntensityHigh     IntensityTier = "high"
	IntensityExtreme  IntensityTier = "extreme"
)

// IntensityForWindSpeed maps an effective wind speed (km/h) to its
// tier. Shared by the wind analyzer and the perimeter builder so both
// report consistent intensities.
func IntensityForWindSpeed(speedKmh float64) IntensityTier {
	switch {
	case speedKmh > 30:
		return IntensityExtreme
	case speedKmh > 20:
		return IntensityHigh
	case speedKmh > 10:
		return IntensityModerate
	default:
		return IntensityLow
	}
}

// StabilityTier classifies atmospheric stability.
type StabilityTier string

const (
	StabilityStable   StabilityTier = "stable"
	StabilityNeutral  StabilityTier = "neutral"
	StabilityUnstable StabilityTier = "unstable"
)

// StabilityFor applies the diurnal stability rule: unstable during hot
// midday hours, stable overnight, neutral otherwise. The same rule
// covers the current reading and every forecast point.
func StabilityFor(hour int, tempC float64) StabilityTier {
	switch {
	case hour >= 10 && hour <= 16 && tempC > 25:
		return StabilityUnstable
	case hour >= 22 || hour < 6:
		return StabilityStable
	default:
		return StabilityNeutral
	}
}

// WindData is the analyzed current wind state.
type WindData struct {
	SpeedKmh        float64       `json:"speed_kmh"`
	DirectionDeg    float64       `json:"direction_deg"`
	GustKmh         float64       `json:"gust_kmh"`
	Stability       StabilityTier `json:"stability"`
	TurbulenceIndex float64       `json:"turbulence_index"` // 0–1, gust excess over mean
	ShearIndex      float64       `json:"shear_index"`      // 0–1, near-term directional variability
}

// WindForecastPoint is one hourly step of the wind outlook.
type WindForecastPoint struct {
	Time         time.Time     `json:"time"`
	SpeedKmh     float64       `json:"speed_kmh"`
	DirectionDeg float64       `json:"direction_deg"`
	GustKmh      float64       `json:"gust_kmh"`
	TemperatureC float64       `json:"temperature_c"`
	Stability    StabilityTier `json:"stability"`
}

// Spread vector names. The four vectors are always derived
// arithmetically from the single current wind direction.
const (
	VectorHead       = "head"
	VectorFlankRight = "flank_right"
	VectorFlankLeft  = "flank_left"
	VectorBacking    = "backing"
)

// FireSpreadVector describes expected fire movement along one axis.
type FireSpreadVector struct {
	Name                  string        `json:"name"`
	DirectionDeg          float64       `json:"direction_deg"`
	SpeedKmh              float64       `json:"speed_kmh"`
	Intensity             IntensityTier `json:"intensity"`
	Probability           float64       `json:"probability"`           // 0–1
	TimeToReachHours      float64       `json:"time_to_reach_hours"`   // to the 1 km reference line
	FuelConsumptionTPerHa float64       `json:"fuel_consumption_t_ha"` // tonnes per hectare
}

// Critical-change trigger types, each keyed to a fixed recommendation.
const (
	TriggerDirectionShift = "direction_shift"
	TriggerSpeedSurge     = "speed_surge"
	TriggerStabilityDrop  = "stability_drop"
)

// CriticalWindChange flags a forecast transition that should change
// tactics on the ground.
type CriticalWindChange struct {
	At             time.Time `json:"at"`
	Trigger        string    `json:"trigger"`
	Description    string    `json:"description"`
	Impact         string    `json:"impact"` // "high" or "critical"
	Recommendation string    `json:"recommendation"`
}

// changeRecommendations are fixed doctrine texts keyed by trigger type.
var changeRecommendations = map[string]string{
	TriggerDirectionShift: "Reposition crews out of the new spread axis and re-anchor control lines before the shift arrives.",
	TriggerSpeedSurge:     "Pull crews back to safety zones and widen control lines; expect spotting ahead of the main front.",
	TriggerStabilityDrop:  "Anticipate erratic column-driven behavior; suspend direct attack on the head until conditions settle.",
}

// WindProfile is the full output of the analyzer.
type WindProfile struct {
	Current         WindData             `json:"current"`
	Forecast        []WindForecastPoint  `json:"forecast"`
	Vectors         []FireSpreadVector   `json:"vectors"`
	CriticalChanges []CriticalWindChange `json:"critical_changes"`
	Degraded        bool                 `json:"degraded"` // true when the hourly series was synthesized
	Confidence      float64              `json:"confidence"`
}

// AttackAngle is a fixed doctrine descriptor for one approach to the
// fire, oriented by the live wind direction only.
type AttackAngle struct {
	Name          string  `json:"name"`
	BearingDeg    float64 `json:"bearing_deg"`
	Effectiveness float64 `json:"effectiveness"` // 0–1, constant per doctrine
	Risk          float64 `json:"risk"`          // 0–1, constant per doctrine
	Description   string  `json:"description"`
}

// windForecastHours is the fixed hourly outlook length.
const windForecastHours = 24

// WindAnalyzer derives wind behavior from a snapshot. Stateless; safe
// for concurrent use.
type WindAnalyzer struct{}

// NewWindAnalyzer creates a WindAnalyzer.
func NewWindAnalyzer() *WindAnalyzer {
	return &WindAnalyzer{}
}

// Analyze produces the current wind state, a 24-point hourly forecast,
// the four spread vectors, and any critical-change alerts. When the
// snapshot carries no usable hourly series, a deterministic diurnal
// curve is synthesized from current conditions and the profile is
// marked degraded.
func (a *WindAnalyzer) Analyze(snap EnvironmentalSnapshot, location GeoPoint) (WindProfile, error) {
	if err := snap.Validate(); err != nil {
		return WindProfile{}, err
	}

	now := clock.Now().UTC()
	forecast, degraded := a.forecastSeries(snap, now)

	current := WindData{
		SpeedKmh:        snap.WindSpeedKmh,
		DirectionDeg:    normalizeBearing(snap.WindDirDeg),
		GustKmh:         snap.WindGustKmh,
		Stability:       StabilityFor(now.Hour(), snap.TemperatureC),
		TurbulenceIndex: turbulenceIndex(snap.WindSpeedKmh, snap.WindGustKmh),
		ShearIndex:      shearIndex(forecast),
	}

	confidence := snap.EffectiveQuality()
	if degraded {
		confidence *= 0.7
	}

	return WindProfile{
		Current:         current,
		Forecast:        forecast,
		Vectors:         SpreadVectors(current),
		CriticalChanges: DetectCriticalChanges(forecast),
		Degraded:        degraded,
		Confidence:      clamp(confidence, 0.05, 1),
	}, nil
}

// forecastSeries maps the snapshot's hourly series into forecast
// points, or synthesizes a diurnal curve when the series is absent.
func (a *WindAnalyzer) forecastSeries(snap EnvironmentalSnapshot, now time.Time) ([]WindForecastPoint, bool) {
	h := snap.Hourly
	n := len(h.Times)
	if n >= windForecastHours &&
		len(h.WindSpeedKmh) >= windForecastHours &&
		len(h.WindDirDeg) >= windForecastHours &&
		len(h.TemperatureC) >= windForecastHours {
		points := make([]WindForecastPoint, windForecastHours)
		for i := 0; i < windForecastHours; i++ {
			gust := 0.0
			if i < len(h.WindGustKmh) {
				gust = h.WindGustKmh[i]
			}
			points[i] = WindForecastPoint{
				Time:         h.Times[i],
				SpeedKmh:     h.WindSpeedKmh[i],
				DirectionDeg: normalizeBearing(h.WindDirDeg[i]),
				GustKmh:      gust,
				TemperatureC: h.TemperatureC[i],
				Stability:    StabilityFor(h.Times[i].UTC().Hour(), h.TemperatureC[i]),
			}
		}
		return points, false
	}

	// Deterministic diurnal fallback: wind peaks mid-afternoon,
	// temperature follows the same phase. Direction is held constant;
	// inventing direction shifts would fabricate critical alerts.
	points := make([]WindForecastPoint, windForecastHours)
	for i := 0; i < windForecastHours; i++ {
		t := now.Add(time.Duration(i+1) * time.Hour)
		phase := 2 * math.Pi * float64(t.Hour()-15) / 24
		speed := snap.WindSpeedKmh * (1 + 0.25*math.Cos(phase))
		temp := snap.TemperatureC + 3*math.Cos(phase)

		points[i] = WindForecastPoint{
			Time:         t,
			SpeedKmh:     speed,
			DirectionDeg: normalizeBearing(snap.WindDirDeg),
			GustKmh:      speed * 1.4,
			TemperatureC: temp,
			Stability:    StabilityFor(t.Hour(), temp),
		}
	}
	return points, true
}

// SpreadVectors derives the four movement axes from the current wind.
// Directions are always {d, d+90, d−90, d+180} mod 360. Both flanks
// share one rate function; backing is the slowest axis.
func SpreadVectors(current WindData) []FireSpreadVector {
	d := current.DirectionDeg
	headSpeed := headRate(current.SpeedKmh)

	return []FireSpreadVector{
		buildVector(VectorHead, d, headSpeed, current.SpeedKmh, 0.85),
		buildVector(VectorFlankRight, d+90, flankRate(headSpeed), current.SpeedKmh*0.5, 0.60),
		buildVector(VectorFlankLeft, d-90, flankRate(headSpeed), current.SpeedKmh*0.5, 0.60),
		buildVector(VectorBacking, d+180, headSpeed*0.15, current.SpeedKmh*0.25, 0.35),
	}
}

func buildVector(name string, bearingDeg, speedKmh, effectiveWindKmh, probability float64) FireSpreadVector {
	tier := IntensityForWindSpeed(effectiveWindKmh)
	timeToReach := 0.0
	if speedKmh > 0 {
		timeToReach = 1 / speedKmh // hours to the 1 km reference line
	}
	return FireSpreadVector{
		Name:                  name,
		DirectionDeg:          normalizeBearing(bearingDeg),
		SpeedKmh:              speedKmh,
		Intensity:             tier,
		Probability:           probability,
		TimeToReachHours:      timeToReach,
		FuelConsumptionTPerHa: fuelConsumption[tier],
	}
}

// headRate estimates head-fire advance (km/h) from wind speed.
func headRate(windKmh float64) float64 {
	return 0.5 + windKmh*0.08
}

// flankRate is the shared rate function for both flanks.
func flankRate(headKmh float64) float64 {
	return headKmh * 0.4
}

// fuelConsumption per intensity tier, tonnes per hectare.
var fuelConsumption = map[IntensityTier]float64{
	IntensityLow:      8,
	IntensityModerate: 15,
	IntensityHigh:     25,
	IntensityExtreme:  40,
}

// DetectCriticalChanges scans consecutive forecast points for
// transitions that should change tactics:
//
//   - direction delta in the open interval (45°,315°) — the interval
//     excludes near-0/360 wraparound non-changes — critical when the
//     effective change exceeds 90°, high otherwise
//   - speed increase over 10 km/h, critical when over 20
//   - stability transition stable→unstable
func DetectCriticalChanges(forecast []WindForecastPoint) []CriticalWindChange {
	var changes []CriticalWindChange

	for i := 1; i < len(forecast); i++ {
		prev, next := forecast[i-1], forecast[i]

		if raw := angularDelta(next.DirectionDeg, prev.DirectionDeg); raw > 45 && raw < 315 {
			impact := "high"
			if effectiveChange(raw) > 90 {
				impact = "critical"
			}
			changes = append(changes, newChange(next.Time, TriggerDirectionShift, impact,
				directionShiftDescription(prev.DirectionDeg, next.DirectionDeg)))
		}

		if delta := next.SpeedKmh - prev.SpeedKmh; delta > 10 {
			impact := "high"
			if delta > 20 {
				impact = "critical"
			}
			changes = append(changes, newChange(next.Time, TriggerSpeedSurge, impact,
				speedSurgeDescription(prev.SpeedKmh, next.SpeedKmh)))
		}

		if prev.Stability == StabilityStable && next.Stability == StabilityUnstable {
			changes = append(changes, newChange(next.Time, TriggerStabilityDrop, "high",
				"Atmosphere destabilizes after a stable period"))
		}
	}
	return changes
}

func newChange(at time.Time, trigger, impact, description string) CriticalWindChange {
	return CriticalWindChange{
		At:             at,
		Trigger:        trigger,
		Description:    description,
		Impact:         impact,
		Recommendation: changeRecommendations[trigger],
	}
}

func directionShiftDescription(fromDeg, toDeg float64) string {
	return "Wind veers from " + formatBearing(fromDeg) + " to " + formatBearing(toDeg)
}

func speedSurgeDescription(fromKmh, toKmh float64) string {
	return "Wind strengthens from " + formatSpeed(fromKmh) + " to " + formatSpeed(toKmh)
}

func formatBearing(deg float64) string {
	return fmt.Sprintf("%03.0f°", normalizeBearing(deg))
}

func formatSpeed(kmh float64) string {
	return fmt.Sprintf("%.0f km/h", kmh)
}

// OptimalAttackAngles returns the four fixed doctrine approach
// descriptors, oriented by the live wind direction only. Effectiveness
// and risk are doctrine constants; only bearings move with the wind.
func (a *WindAnalyzer) OptimalAttackAngles(current WindData) []AttackAngle {
	d := current.DirectionDeg
	return []AttackAngle{
		{
			Name:          "direct",
			BearingDeg:    normalizeBearing(d + 180),
			Effectiveness: 0.9,
			Risk:          0.3,
			Description:   "Attack from the burned, upwind side where intensity is lowest.",
		},
		{
			Name:          "flank_right",
			BearingDeg:    normalizeBearing(d + 90),
			Effectiveness: 0.7,
			Risk:          0.5,
			Description:   "Pinch the right flank, working toward the head.",
		},
		{
			Name:          "flank_left",
			BearingDeg:    normalizeBearing(d - 90),
			Effectiveness: 0.7,
			Risk:          0.5,
			Description:   "Pinch the left flank, working toward the head.",
		},
		{
			Name:          "indirect",
			BearingDeg:    normalizeBearing(d),
			Effectiveness: 0.5,
			Risk:          0.2,
			Description:   "Build control lines ahead of the head from a safe distance.",
		},
	}
}

// turbulenceIndex scales gust excess over the mean wind into 0–1.
func turbulenceIndex(speedKmh, gustKmh float64) float64 {
	if speedKmh <= 0 || gustKmh <= speedKmh {
		return 0
	}
	return clamp((gustKmh-speedKmh)/speedKmh, 0, 1)
}

// shearIndex measures directional variability over the next six
// forecast hours, scaled so 90° of mean deviation saturates.
func shearIndex(forecast []WindForecastPoint) float64 {
	n := len(forecast)
	if n > 6 {
		n = 6
	}
	if n < 2 {
		return 0
	}
	var total float64
	for i := 1; i < n; i++ {
		total += effectiveChange(angularDelta(forecast[i].DirectionDeg, forecast[i-1].DirectionDeg))
	}
	mean := total / float64(n-1)
	return clamp(mean/90, 0, 1)
}
