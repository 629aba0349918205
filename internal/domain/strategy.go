package domain

import "sort"

// StrategyEntry is one ranked catalog entry. Content comes from
// doctrine; only Priority, SuccessProbability and the derived risk
// numbers move with live conditions.
type StrategyEntry struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Priority               float64         `json:"priority"` // 1–10, higher ranks first
	RiskLevel              string          `json:"risk_level"`
	RequiredResources      []string        `json:"required_resources"`
	PersonnelRequired      int             `json:"personnel_required"`
	EstimatedDurationHours float64         `json:"estimated_duration_hours"`
	SuccessProbability     float64         `json:"success_probability"` // 0–1
	CasualtyRisk           CasualtyRisk    `json:"casualty_risk"`
	Phases                 []TacticalPhase `json:"phases"`
	ContingencyPlans       []string        `json:"contingency_plans"`
	CriticalFactors        []string        `json:"critical_factors"`
}

// Wind thresholds for strategy adjustment: above windAdverseKmh the
// head is too energetic for direct work; above burnWindLimitKmh a
// prescribed burn is out of prescription.
const (
	windAdverseKmh   = 25.0
	burnWindLimitKmh = 15.0
)

// StrategyCatalog returns the five doctrine strategies ranked for the
// live situation: priority descending, ties broken by ascending risk
// level, then by name for determinism. Phase templates are never
// modified; only priority, success probability and (for escalated
// fires) risk level adjust.
func (p *Planner) StrategyCatalog(location GeoPoint, wind WindProfile, spread SpreadPrediction, risk RiskAssessment) []StrategyEntry {
	entries := make([]StrategyEntry, 0, len(p.doctrine.Strategies))
	for _, s := range p.doctrine.Strategies {
		entries = append(entries, StrategyEntry{
			ID:                     s.ID,
			Name:                   s.Name,
			Priority:               s.BasePriority,
			RiskLevel:              s.RiskLevel,
			RequiredResources:      s.RequiredResources,
			PersonnelRequired:      s.PersonnelRequired,
			EstimatedDurationHours: s.EstimatedDurationHours,
			SuccessProbability:     s.BaseSuccessProbability,
			CasualtyRisk:           s.CasualtyRisk,
			Phases:                 s.Phases,
			ContingencyPlans:       s.ContingencyPlans,
			CriticalFactors:        s.CriticalFactors,
		})
	}

	windAdverse := wind.Current.Stability == StabilityUnstable || wind.Current.SpeedKmh > windAdverseKmh
	escalated := risk.MagnitudeScore >= 75

	for i := range entries {
		e := &entries[i]
		switch e.ID {
		case "offensive":
			if windAdverse {
				e.Priority -= 3
				e.SuccessProbability *= 0.55
				e.RiskLevel = escalateRiskLevel(e.RiskLevel)
			}
			if escalated {
				e.Priority--
			}
		case "defensive":
			if windAdverse {
				e.Priority++
			}
			if escalated {
				e.Priority++
			}
		case "containment":
			if windAdverse {
				e.Priority++
			}
			if spread.ContainmentProbability < 0.3 {
				e.SuccessProbability *= 0.8
			}
		case "indirect":
			if windAdverse {
				e.Priority++
			}
		case "controlled_burn":
			if wind.Current.SpeedKmh > burnWindLimitKmh {
				e.Priority -= 2
				e.SuccessProbability *= 0.5
				e.RiskLevel = escalateRiskLevel(e.RiskLevel)
			}
		}

		e.Priority = clamp(e.Priority, 1, 10)
		e.SuccessProbability = clamp(e.SuccessProbability, 0.05, 0.95)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		ri, rj := riskLevelRank[entries[i].RiskLevel], riskLevelRank[entries[j].RiskLevel]
		if ri != rj {
			return ri < rj
		}
		return entries[i].Name < entries[j].Name
	})

	return entries
}

// escalateRiskLevel bumps a qualitative risk level one step.
func escalateRiskLevel(level string) string {
	switch level {
	case "low":
		return "moderate"
	case "moderate":
		return "high"
	default:
		return "extreme"
	}
}
