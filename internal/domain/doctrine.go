package domain

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed doctrine.yaml
var defaultDoctrineYAML []byte

// CasualtyRisk is the doctrine casualty-risk triple for a strategy,
// each component in [0,1].
type CasualtyRisk struct {
	Civilian  float64 `json:"civilian" yaml:"civilian"`
	Responder float64 `json:"responder" yaml:"responder"`
	Asset     float64 `json:"asset" yaml:"asset"`
}

// TacticalPhase is one static phase of a strategy's execution template.
type TacticalPhase struct {
	Name            string   `json:"name" yaml:"name"`
	Objectives      []string `json:"objectives" yaml:"objectives"`
	Deployments     []string `json:"deployments" yaml:"deployments"`
	SafetyMeasures  []string `json:"safety_measures" yaml:"safety_measures"`
	SuccessCriteria []string `json:"success_criteria" yaml:"success_criteria"`
	FallbackOptions []string `json:"fallback_options" yaml:"fallback_options"`
}

// StrategyDoctrine is one pre-authored catalog entry. Phase templates
// are static; only priority, risk and success numbers are adjusted at
// ranking time from live conditions.
type StrategyDoctrine struct {
	ID                     string          `yaml:"id"`
	Name                   string          `yaml:"name"`
	BasePriority           float64         `yaml:"base_priority"` // 1–10
	RiskLevel              string          `yaml:"risk_level"`    // low|moderate|high|extreme
	BaseSuccessProbability float64         `yaml:"base_success_probability"`
	PersonnelRequired      int             `yaml:"personnel_required"`
	RequiredResources      []string        `yaml:"required_resources"`
	EstimatedDurationHours float64         `yaml:"estimated_duration_hours"`
	CasualtyRisk           CasualtyRisk    `yaml:"casualty_risk"`
	CriticalFactors        []string        `yaml:"critical_factors"`
	ContingencyPlans       []string        `yaml:"contingency_plans"`
	Phases                 []TacticalPhase `yaml:"phases"`
}

// RouteTemplate places a route by fixed offset from the fire location.
// Bearing offsets are relative to the spread direction: 0 = downwind,
// 180 = upwind (the burned side).
type RouteTemplate struct {
	BearingOffsetDeg float64 `yaml:"bearing_offset_deg"`
	DistanceKm       float64 `yaml:"distance_km"`
	CapacityPerHour  int     `yaml:"capacity_per_hour"`
	Purpose          string  `yaml:"purpose"`
}

// RoleTemplate holds the per-role route doctrine.
type RoleTemplate struct {
	EntryRoutes      []RouteTemplate `yaml:"entry_routes"`
	EvacuationRoutes []RouteTemplate `yaml:"evacuation_routes"`
}

// Doctrine is the versioned operational configuration: the five-entry
// strategy catalog and per-role route templates. Keeping doctrine in
// data decouples content changes from ranking and selection logic.
type Doctrine struct {
	Version       int                     `yaml:"version"`
	Strategies    []StrategyDoctrine      `yaml:"strategies"`
	RoleTemplates map[string]RoleTemplate `yaml:"role_templates"`
}

// strategyCatalogSize is fixed by doctrine: the catalog always has
// exactly five entries.
const strategyCatalogSize = 5

// DefaultDoctrine parses the embedded doctrine document.
func DefaultDoctrine() (*Doctrine, error) {
	return ParseDoctrine(defaultDoctrineYAML)
}

// LoadDoctrine reads a doctrine override from disk.
func LoadDoctrine(path string) (*Doctrine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read doctrine %s: %w", path, err)
	}
	return ParseDoctrine(data)
}

// ParseDoctrine unmarshals and validates a doctrine document.
func ParseDoctrine(data []byte) (*Doctrine, error) {
	var d Doctrine
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse doctrine: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Doctrine) validate() error {
	if len(d.Strategies) != strategyCatalogSize {
		return fmt.Errorf("doctrine: catalog must have exactly %d strategies, got %d", strategyCatalogSize, len(d.Strategies))
	}
	seen := make(map[string]bool, len(d.Strategies))
	for _, s := range d.Strategies {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("doctrine: strategy missing id or name")
		}
		if seen[s.ID] {
			return fmt.Errorf("doctrine: duplicate strategy id %q", s.ID)
		}
		seen[s.ID] = true
		if s.BasePriority < 1 || s.BasePriority > 10 {
			return fmt.Errorf("doctrine: strategy %q base_priority must be in [1,10]", s.ID)
		}
		if _, ok := riskLevelRank[s.RiskLevel]; !ok {
			return fmt.Errorf("doctrine: strategy %q has unknown risk_level %q", s.ID, s.RiskLevel)
		}
		if len(s.Phases) == 0 {
			return fmt.Errorf("doctrine: strategy %q has no phases", s.ID)
		}
	}
	for _, role := range []OrganizationRole{RoleFirefighting, RoleMedical, RoleLawEnforcement, RoleCivilProtection} {
		tpl, ok := d.RoleTemplates[string(role)]
		if !ok {
			return fmt.Errorf("doctrine: missing role template %q", role)
		}
		if len(tpl.EntryRoutes) == 0 {
			return fmt.Errorf("doctrine: role template %q has no entry routes", role)
		}
	}
	return nil
}

// riskLevelRank orders qualitative risk levels for tie-breaking:
// lower rank sorts first on equal priority.
var riskLevelRank = map[string]int{
	"low":      0,
	"moderate": 1,
	"high":     2,
	"extreme":  3,
}
