package domain

// RiskBreakdown exposes every sub-score (0–100) feeding the two
// aggregate scores, so a reviewer can audit exactly why a fire ranked
// the way it did.
type RiskBreakdown struct {
	Brightness        float64 `json:"brightness"`
	Size              float64 `json:"size"`
	Weather           float64 `json:"weather"`
	VegetationDryness float64 `json:"vegetation_dryness"`

	Population     float64 `json:"population"`
	Infrastructure float64 `json:"infrastructure"`
	Economic       float64 `json:"economic"`
	Environmental  float64 `json:"environmental"`
}

// RiskAssessment is the derived output of the scoring module. Never
// stored as mutable state; recomputed from inputs on demand.
type RiskAssessment struct {
	MagnitudeScore float64       `json:"magnitude_score"` // 0–100, how big/intense
	DangerScore    float64       `json:"danger_score"`    // 0–100, what it threatens
	MagnitudeBand  string        `json:"magnitude_band"`
	DangerBand     string        `json:"danger_band"`
	Breakdown      RiskBreakdown `json:"breakdown"`
	Confidence     float64       `json:"confidence"` // 0–1
}

// MagnitudeWeights are the blend weights for the magnitude score.
// They must sum to 1.
type MagnitudeWeights struct {
	Brightness float64
	Size       float64
	Weather    float64
	Dryness    float64
}

// DangerWeights are the blend weights for the danger score.
type DangerWeights struct {
	Population     float64
	Infrastructure float64
	Economic       float64
	Environmental  float64
}

// DefaultMagnitudeWeights is the doctrine blend: brightness 40%,
// size 30%, weather 20%, vegetation dryness 10%.
func DefaultMagnitudeWeights() MagnitudeWeights {
	return MagnitudeWeights{Brightness: 0.40, Size: 0.30, Weather: 0.20, Dryness: 0.10}
}

// DefaultDangerWeights is the doctrine blend: population 40%,
// infrastructure 30%, economic 20%, environmental 10%.
func DefaultDangerWeights() DangerWeights {
	return DangerWeights{Population: 0.40, Infrastructure: 0.30, Economic: 0.20, Environmental: 0.10}
}

// Scorer computes risk assessments. It is stateless apart from its
// weights, so one instance can score any number of concurrent fires.
type Scorer struct {
	magnitude MagnitudeWeights
	danger    DangerWeights
}

// NewScorer creates a Scorer with the default doctrine weights.
func NewScorer() *Scorer {
	return NewScorerWithWeights(DefaultMagnitudeWeights(), DefaultDangerWeights())
}

// NewScorerWithWeights creates a Scorer with custom blend weights.
// Sub-term estimators can be swapped this way without breaking the
// monotonicity contract, since every sub-score is monotone on its own.
func NewScorerWithWeights(m MagnitudeWeights, d DangerWeights) *Scorer {
	return &Scorer{magnitude: m, danger: d}
}

// Score computes the magnitude and danger assessment for an observation
// in its environmental context. Pure and deterministic: no side
// effects, no randomness, total over all valid inputs.
func (s *Scorer) Score(obs FireObservation, snap EnvironmentalSnapshot) (RiskAssessment, error) {
	if err := obs.Validate(); err != nil {
		return RiskAssessment{}, err
	}
	if err := snap.Validate(); err != nil {
		return RiskAssessment{}, err
	}

	b := RiskBreakdown{
		Brightness:        brightnessScore(obs.BrightnessK),
		Size:              sizeScore(obs.SizeHa),
		Weather:           weatherScore(snap.TemperatureC, snap.HumidityPct, snap.WindSpeedKmh),
		VegetationDryness: drynessScore(snap),

		Population:     clamp(snap.Exposure.PopulationDensity/10, 0, 100),
		Infrastructure: clamp(snap.Exposure.InfrastructureIndex*100, 0, 100),
		Economic:       clamp(snap.Exposure.EconomicValueIndex*100, 0, 100),
		Environmental:  environmentalScore(snap),
	}

	magnitude := clamp(
		s.magnitude.Brightness*b.Brightness+
			s.magnitude.Size*b.Size+
			s.magnitude.Weather*b.Weather+
			s.magnitude.Dryness*b.VegetationDryness,
		0, 100)

	danger := clamp(
		s.danger.Population*b.Population+
			s.danger.Infrastructure*b.Infrastructure+
			s.danger.Economic*b.Economic+
			s.danger.Environmental*b.Environmental,
		0, 100)

	return RiskAssessment{
		MagnitudeScore: magnitude,
		DangerScore:    danger,
		MagnitudeBand:  ScoreBand(magnitude),
		DangerBand:     ScoreBand(danger),
		Breakdown:      b,
		Confidence:     riskConfidence(obs, snap),
	}, nil
}

// ScoreBand maps a 0–100 score to its qualitative band.
func ScoreBand(score float64) string {
	switch {
	case score < 25:
		return "low"
	case score < 50:
		return "moderate"
	case score < 75:
		return "high"
	default:
		return "extreme"
	}
}

// brightnessScore scales fire radiative brightness. 300 K is the
// detection floor for MODIS/VIIRS thermal anomalies; 450 K saturates.
func brightnessScore(brightnessK float64) float64 {
	return clamp((brightnessK-300)/1.5, 0, 100)
}

// sizeScore scales burning area; 10 ha saturates. Initial detections
// are small, so the scale is deliberately steep at the low end.
func sizeScore(sizeHa float64) float64 {
	return clamp(sizeHa*10, 0, 100)
}

// weatherScore blends temperature, humidity deficit, and wind into one
// fire-weather term. Each component is monotone in its hazard
// direction, so the blend is too.
func weatherScore(tempC, humidityPct, windKmh float64) float64 {
	tempComponent := clamp((tempC-10)*(100.0/30.0), 0, 100) // 10°C → 0, 40°C → 100
	humidityComponent := clamp(100-humidityPct, 0, 100)
	windComponent := clamp(windKmh*2, 0, 100) // 50 km/h saturates

	return clamp(0.35*tempComponent+0.35*humidityComponent+0.30*windComponent, 0, 100)
}

// drynessScore blends cured-fuel fraction, vegetation stress (inverse
// NDVI), and drought status. NDVI is a negative risk factor: greener
// vegetation scores lower.
func drynessScore(snap EnvironmentalSnapshot) float64 {
	ndviStress := 1 - clamp(snap.NDVI, 0, 1)
	drought := clamp(snap.DroughtIndex/5, 0, 1)
	return clamp(60*clamp(snap.VegetationDryness, 0, 1)+25*ndviStress+15*drought, 0, 100)
}

// environmentalScore combines protected-area value, forest share, and
// historical fire incidence (a proxy for ecosystem fragility).
func environmentalScore(snap EnvironmentalSnapshot) float64 {
	history := clamp(float64(snap.HistoricalFireCount)/10, 0, 1)
	return clamp(100*(0.6*clamp(snap.Exposure.EnvironmentalValue, 0, 1)+
		0.25*clamp(snap.LandCover.Forest, 0, 1)+
		0.15*history), 0, 100)
}

// riskConfidence derives the 0–1 quality indicator from detection
// confidence and snapshot quality. Floored at 0.05 so a degraded
// assessment is still distinguishable from "no assessment".
func riskConfidence(obs FireObservation, snap EnvironmentalSnapshot) float64 {
	c := (obs.Confidence / 100) * snap.EffectiveQuality()
	if snap.Stale {
		c *= 0.8
	}
	return clamp(c, 0.05, 1)
}
