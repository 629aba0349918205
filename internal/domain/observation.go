package domain

import "time"

// FireObservation is a single active-fire detection from a satellite or
// ground sensor. Immutable once constructed.
type FireObservation struct {
	ID          string    `json:"id"`
	Location    GeoPoint  `json:"location"`
	BrightnessK float64   `json:"brightness_k"` // fire radiative brightness, Kelvin
	Confidence  float64   `json:"confidence"`   // detection confidence, 0–100
	SizeHa      float64   `json:"size_ha"`      // estimated burning area, hectares
	Sensor      string    `json:"sensor"`       // e.g. "VIIRS", "MODIS"
	DetectedAt  time.Time `json:"detected_at"`
}

// Validate checks the fields every downstream module depends on.
// Enrichment fields (sensor, ID) may be empty.
func (o FireObservation) Validate() error {
	if o.Location.IsZero() {
		return NewValidationError("location")
	}
	if !o.Location.Valid() {
		return &ValidationError{Field: "location", Reason: "outside WGS-84 bounds"}
	}
	if o.BrightnessK <= 0 {
		return NewValidationError("brightness_k")
	}
	if o.Confidence < 0 || o.Confidence > 100 {
		return &ValidationError{Field: "confidence", Reason: "must be in [0,100]"}
	}
	if o.SizeHa < 0 {
		return &ValidationError{Field: "size_ha", Reason: "must be non-negative"}
	}
	return nil
}
