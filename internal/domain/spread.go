package domain

import "math"

// PerimeterPoint is one sampled boundary location of the predicted fire
// extent at the 24-hour horizon, overlay-ready for the dashboard map.
type PerimeterPoint struct {
	Point            GeoPoint      `json:"point"`
	BearingDeg       float64       `json:"bearing_deg"`
	DistanceKm       float64       `json:"distance_km"`
	TimeToReachHours float64       `json:"time_to_reach_hours"`
	Intensity        IntensityTier `json:"intensity"`
}

// SpreadPrediction is the directional short-horizon forecast.
// Areas use km² throughout; the legacy km/hectare mixing is gone.
type SpreadPrediction struct {
	DirectionDeg           float64          `json:"direction_deg"` // equals the driving wind direction
	SpeedKmh               float64          `json:"speed_kmh"`
	Area24hKm2             float64          `json:"area_24h_km2"`
	Area72hKm2             float64          `json:"area_72h_km2"`
	ContainmentProbability float64          `json:"containment_probability"` // 0–1
	Perimeter              []PerimeterPoint `json:"perimeter"`
	Confidence             float64          `json:"confidence"` // 0–1
}

// SpreadCoefficients parameterize the rate-of-spread estimator.
// Rate (m/min) = base + wind·windCoeff + (100−humidity)·humidityCoeff
// + (temp−20)·tempCoeff, floored at zero.
type SpreadCoefficients struct {
	BaseRateMPerMin float64
	WindCoeff       float64 // m/min gained per km/h of wind
	HumidityCoeff   float64 // m/min gained per % of humidity deficit
	TempCoeff       float64 // m/min gained per °C above 20
	AlignmentGain   float64 // perimeter asymmetry: 0 = circle, 0.5 = 1.5x downwind / 0.5x upwind
}

// DefaultSpreadCoefficients returns the calibrated defaults.
func DefaultSpreadCoefficients() SpreadCoefficients {
	return SpreadCoefficients{
		BaseRateMPerMin: 2.0,
		WindCoeff:       0.40,
		HumidityCoeff:   0.03,
		TempCoeff:       0.05,
		AlignmentGain:   0.5,
	}
}

// perimeterPointCount is the fixed number of boundary samples, one
// every 22.5° of bearing.
const perimeterPointCount = 16

// Predictor computes spread forecasts. Stateless apart from its
// coefficients; safe for concurrent use across fires.
type Predictor struct {
	coeff SpreadCoefficients
}

// NewPredictor creates a Predictor with default coefficients.
func NewPredictor() *Predictor {
	return &Predictor{coeff: DefaultSpreadCoefficients()}
}

// NewPredictorWithCoefficients creates a Predictor with custom tuning.
func NewPredictorWithCoefficients(c SpreadCoefficients) *Predictor {
	return &Predictor{coeff: c}
}

// Predict computes the directional spread forecast for an observation.
// Spread direction is the driving wind direction; the perimeter is
// amplified downwind and compressed upwind by the alignment factor.
// Zero or negative rate yields zero areas and a collapsed perimeter,
// never NaN.
func (p *Predictor) Predict(obs FireObservation, snap EnvironmentalSnapshot, risk RiskAssessment) (SpreadPrediction, error) {
	if err := obs.Validate(); err != nil {
		return SpreadPrediction{}, err
	}
	if err := snap.Validate(); err != nil {
		return SpreadPrediction{}, err
	}

	ratePerMin := p.coeff.BaseRateMPerMin +
		snap.WindSpeedKmh*p.coeff.WindCoeff +
		(100-snap.HumidityPct)*p.coeff.HumidityCoeff +
		(snap.TemperatureC-20)*p.coeff.TempCoeff
	if ratePerMin < 0 {
		ratePerMin = 0
	}
	speedKmh := ratePerMin * 60 / 1000

	direction := normalizeBearing(snap.WindDirDeg)

	var area24, area72 float64
	if speedKmh > 0 {
		r24 := speedKmh * 24
		r72 := speedKmh * 72
		area24 = math.Pi * r24 * r24
		area72 = math.Pi * r72 * r72
	}

	return SpreadPrediction{
		DirectionDeg:           direction,
		SpeedKmh:               speedKmh,
		Area24hKm2:             area24,
		Area72hKm2:             area72,
		ContainmentProbability: containmentProbability(risk.MagnitudeScore),
		Perimeter:              p.buildPerimeter(obs.Location, direction, speedKmh, snap.WindSpeedKmh),
		Confidence:             clamp(risk.Confidence*snap.EffectiveQuality(), 0.05, 1),
	}, nil
}

// containmentProbability estimates the likelihood control lines stop
// further spread. Floored at 0.05: doctrine never reports a fire as
// hopeless.
func containmentProbability(magnitudeScore float64) float64 {
	return math.Max(0.05, 1-clamp(magnitudeScore, 0, 100)/100)
}

// buildPerimeter samples the 24-hour boundary at even angular spacing.
// Per-point distance is the 24h run scaled by the wind-alignment
// factor; per-point intensity uses the shared wind-speed tiers applied
// to the alignment-scaled wind.
func (p *Predictor) buildPerimeter(origin GeoPoint, windDirDeg, speedKmh, windSpeedKmh float64) []PerimeterPoint {
	points := make([]PerimeterPoint, 0, perimeterPointCount)
	step := 360.0 / perimeterPointCount

	for i := 0; i < perimeterPointCount; i++ {
		bearing := normalizeBearing(float64(i) * step)
		factor := p.alignmentFactor(bearing, windDirDeg)
		distance := speedKmh * 24 * factor
		timeToReach := 0.0
		if speedKmh > 0 {
			timeToReach = 24 * factor
		}

		points = append(points, PerimeterPoint{
			Point:            origin.Destination(bearing, distance),
			BearingDeg:       bearing,
			DistanceKm:       distance,
			TimeToReachHours: timeToReach,
			Intensity:        IntensityForWindSpeed(windSpeedKmh * factor),
		})
	}
	return points
}

// alignmentFactor scales a bearing's reach by its alignment with the
// wind: 1+gain directly downwind, 1−gain directly upwind.
func (p *Predictor) alignmentFactor(bearingDeg, windDirDeg float64) float64 {
	delta := effectiveChange(angularDelta(bearingDeg, windDirDeg))
	return 1 + p.coeff.AlignmentGain*math.Cos(delta*math.Pi/180)
}
