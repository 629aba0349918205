package domain

import (
	"sort"
	"time"
)

// OrganizationRole is the closed set of responder organizations the
// planner knows doctrine for. Anything else normalizes to generic,
// which plans with the civil-protection routine.
type OrganizationRole string

const (
	RoleFirefighting    OrganizationRole = "firefighting"
	RoleMedical         OrganizationRole = "medical"
	RoleLawEnforcement  OrganizationRole = "law_enforcement"
	RoleCivilProtection OrganizationRole = "civil_protection"
	RoleGeneric         OrganizationRole = "generic"
)

// ParseRole normalizes a role string, failing closed to generic.
func ParseRole(s string) OrganizationRole {
	switch OrganizationRole(s) {
	case RoleFirefighting, RoleMedical, RoleLawEnforcement, RoleCivilProtection, RoleGeneric:
		return OrganizationRole(s)
	default:
		return RoleGeneric
	}
}

// SuppressionCapable reports whether the role runs water-source
// lookups. Only suppression roles stage water; a medical plan never
// carries water sources.
func (r OrganizationRole) SuppressionCapable() bool {
	return r == RoleFirefighting
}

// WaterSource is a usable suppression water point near the fire.
type WaterSource struct {
	Name           string   `json:"name"`
	Location       GeoPoint `json:"location"`
	Type           string   `json:"type"` // hydrant, pond, tank, river
	CapacityLiters int      `json:"capacity_liters"`
}

// CivilianArea is an occupied area the plan must account for.
type CivilianArea struct {
	Name               string   `json:"name"`
	Type               string   `json:"type"` // residential, hospital, school, care_home
	Location           GeoPoint `json:"location"`
	Population         int      `json:"population"`
	EvacuationPriority int      `json:"evacuation_priority"` // 1 (low) – 5 (immediate)
	SpecialNeeds       bool     `json:"special_needs"`
}

// Shelter is a designated refuge site.
type Shelter struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
	Capacity int      `json:"capacity"`
}

// ZoneContext is the facility/route collaborator's view of the area
// around the fire, shared by every role routine.
type ZoneContext struct {
	WaterSources  []WaterSource  `json:"water_sources"`
	CivilianAreas []CivilianArea `json:"civilian_areas"`
	Shelters      []Shelter      `json:"shelters"`
	Quality       float64        `json:"quality"` // 0–1
}

// Route is a synthesized access or evacuation corridor.
type Route struct {
	Priority        int        `json:"priority"` // 1 = highest
	Purpose         string     `json:"purpose"`
	Points          []GeoPoint `json:"points"` // ordered outside-in toward the fire
	CapacityPerHour int        `json:"capacity_per_hour"`
}

// CriticalZone marks an area needing dedicated attention.
type CriticalZone struct {
	Type     string   `json:"type"` // projected_path, triage_site, traffic_control, shelter_zone
	Priority int      `json:"priority"`
	Center   GeoPoint `json:"center"`
	RadiusKm float64  `json:"radius_km"`
}

// TacticalPlan is one role's operational picture for one observation.
// Recomputed on demand; never mutated in place.
type TacticalPlan struct {
	Role             OrganizationRole `json:"role"`
	PrimaryStrategy  string           `json:"primary_strategy"`
	EntryRoutes      []Route          `json:"entry_routes"`
	EvacuationRoutes []Route          `json:"evacuation_routes"`
	CriticalZones    []CriticalZone   `json:"critical_zones"`
	WaterSources     []WaterSource    `json:"water_sources"`
	CivilianAreas    []CivilianArea   `json:"civilian_areas"`
	GeneratedAt      time.Time        `json:"generated_at"`
	Confidence       float64          `json:"confidence"`
}

// PlanInputs bundles the upstream module outputs the planner
// synchronizes on.
type PlanInputs struct {
	Risk   RiskAssessment   `json:"risk"`
	Spread SpreadPrediction `json:"spread"`
	Wind   WindProfile      `json:"wind"`
}

// Planner generates role-specific tactical plans and the ranked
// strategy catalog from injected doctrine. Stateless beyond the
// doctrine document; safe for concurrent fires.
type Planner struct {
	doctrine *Doctrine
}

// NewPlanner creates a Planner over the given doctrine.
func NewPlanner(d *Doctrine) *Planner {
	return &Planner{doctrine: d}
}

// GeneratePlan dispatches on the organization role to one of five
// routines. Unknown and generic roles run the civil-protection routine;
// the only refusal is an observation without a location.
func (p *Planner) GeneratePlan(obs FireObservation, zone ZoneContext, inputs PlanInputs, role OrganizationRole) (TacticalPlan, error) {
	if obs.Location.IsZero() || !obs.Location.Valid() {
		return TacticalPlan{}, NewValidationError("location")
	}

	normalized := ParseRole(string(role))
	plan := TacticalPlan{
		Role:        normalized,
		GeneratedAt: clock.Now().UTC(),
		Confidence:  planConfidence(inputs, zone),
	}

	catalog := p.StrategyCatalog(obs.Location, inputs.Wind, inputs.Spread, inputs.Risk)
	plan.PrimaryStrategy = catalog[0].Name

	spreadDir := inputs.Spread.DirectionDeg

	switch normalized {
	case RoleFirefighting:
		p.planFirefighting(&plan, obs, zone, inputs, spreadDir)
	case RoleMedical:
		p.planMedical(&plan, obs, zone, spreadDir)
	case RoleLawEnforcement:
		p.planLawEnforcement(&plan, obs, zone, inputs, spreadDir)
	case RoleCivilProtection, RoleGeneric:
		p.planCivilProtection(&plan, obs, zone, inputs, spreadDir)
	default:
		// ParseRole is closed, but keep the fail-closed arm explicit.
		p.planCivilProtection(&plan, obs, zone, inputs, spreadDir)
	}

	return plan, nil
}

func (p *Planner) planFirefighting(plan *TacticalPlan, obs FireObservation, zone ZoneContext, inputs PlanInputs, spreadDir float64) {
	tpl := p.doctrine.RoleTemplates[string(RoleFirefighting)]
	plan.EntryRoutes = buildRoutes(obs.Location, spreadDir, tpl.EntryRoutes)
	plan.EvacuationRoutes = buildRoutes(obs.Location, spreadDir, tpl.EvacuationRoutes)

	plan.CriticalZones = []CriticalZone{
		projectedPathZone(obs.Location, inputs.Spread),
	}

	// Suppression role: stage water by usable capacity.
	plan.WaterSources = append([]WaterSource(nil), zone.WaterSources...)
	sort.SliceStable(plan.WaterSources, func(i, j int) bool {
		return plan.WaterSources[i].CapacityLiters > plan.WaterSources[j].CapacityLiters
	})

	// Full civilian awareness layer, highest evacuation priority first.
	plan.CivilianAreas = sortedByEvacuationPriority(zone.CivilianAreas)
}

func (p *Planner) planMedical(plan *TacticalPlan, obs FireObservation, zone ZoneContext, spreadDir float64) {
	tpl := p.doctrine.RoleTemplates[string(RoleMedical)]
	plan.EntryRoutes = buildRoutes(obs.Location, spreadDir, tpl.EntryRoutes)
	plan.EvacuationRoutes = buildRoutes(obs.Location, spreadDir, tpl.EvacuationRoutes)

	// Casualty collection upwind of the fire, clear of the spread axis.
	plan.CriticalZones = []CriticalZone{{
		Type:     "triage_site",
		Priority: 1,
		Center:   obs.Location.Destination(normalizeBearing(spreadDir+180), 4),
		RadiusKm: 0.5,
	}}

	// Medical keeps only hospitals and special-needs populations.
	for _, area := range zone.CivilianAreas {
		if area.Type == "hospital" || area.SpecialNeeds {
			plan.CivilianAreas = append(plan.CivilianAreas, area)
		}
	}
	plan.CivilianAreas = sortedByEvacuationPriority(plan.CivilianAreas)

	// Not a suppression role: no water-source lookup, ever.
	plan.WaterSources = nil
}

func (p *Planner) planLawEnforcement(plan *TacticalPlan, obs FireObservation, zone ZoneContext, inputs PlanInputs, spreadDir float64) {
	tpl := p.doctrine.RoleTemplates[string(RoleLawEnforcement)]
	plan.EntryRoutes = buildRoutes(obs.Location, spreadDir, tpl.EntryRoutes)
	plan.EvacuationRoutes = buildRoutes(obs.Location, spreadDir, tpl.EvacuationRoutes)

	plan.CriticalZones = []CriticalZone{
		projectedPathZone(obs.Location, inputs.Spread),
	}
	// One traffic control point per evacuation corridor mouth.
	for i, route := range plan.EvacuationRoutes {
		if len(route.Points) == 0 {
			continue
		}
		plan.CriticalZones = append(plan.CriticalZones, CriticalZone{
			Type:     "traffic_control",
			Priority: i + 2,
			Center:   route.Points[0],
			RadiusKm: 0.3,
		})
	}

	plan.CivilianAreas = sortedByEvacuationPriority(zone.CivilianAreas)
}

func (p *Planner) planCivilProtection(plan *TacticalPlan, obs FireObservation, zone ZoneContext, inputs PlanInputs, spreadDir float64) {
	tpl := p.doctrine.RoleTemplates[string(RoleCivilProtection)]
	plan.EntryRoutes = buildRoutes(obs.Location, spreadDir, tpl.EntryRoutes)
	plan.EvacuationRoutes = buildRoutes(obs.Location, spreadDir, tpl.EvacuationRoutes)

	plan.CriticalZones = []CriticalZone{
		projectedPathZone(obs.Location, inputs.Spread),
	}
	for i, shelter := range zone.Shelters {
		plan.CriticalZones = append(plan.CriticalZones, CriticalZone{
			Type:     "shelter_zone",
			Priority: i + 2,
			Center:   shelter.Location,
			RadiusKm: 0.5,
		})
	}

	plan.CivilianAreas = sortedByEvacuationPriority(zone.CivilianAreas)
}

// buildRoutes materializes route templates as three-point corridors
// running outside-in toward the fire. Priority follows template order.
func buildRoutes(origin GeoPoint, spreadDirDeg float64, templates []RouteTemplate) []Route {
	routes := make([]Route, 0, len(templates))
	for i, tpl := range templates {
		bearing := normalizeBearing(spreadDirDeg + tpl.BearingOffsetDeg)
		routes = append(routes, Route{
			Priority:        i + 1,
			Purpose:         tpl.Purpose,
			CapacityPerHour: tpl.CapacityPerHour,
			Points: []GeoPoint{
				origin.Destination(bearing, tpl.DistanceKm),
				origin.Destination(bearing, tpl.DistanceKm*0.6),
				origin.Destination(bearing, tpl.DistanceKm*0.3),
			},
		})
	}
	return routes
}

// projectedPathZone covers the next six hours of head-fire run.
func projectedPathZone(origin GeoPoint, spread SpreadPrediction) CriticalZone {
	run := spread.SpeedKmh * 6
	if run < 1 {
		run = 1
	}
	return CriticalZone{
		Type:     "projected_path",
		Priority: 1,
		Center:   origin.Destination(spread.DirectionDeg, run/2),
		RadiusKm: run / 2,
	}
}

func sortedByEvacuationPriority(areas []CivilianArea) []CivilianArea {
	out := append([]CivilianArea(nil), areas...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EvacuationPriority > out[j].EvacuationPriority
	})
	return out
}

// planConfidence is the minimum of the upstream confidences, scaled by
// zone data quality. The weakest input bounds how much to trust the plan.
func planConfidence(inputs PlanInputs, zone ZoneContext) float64 {
	c := inputs.Risk.Confidence
	if inputs.Spread.Confidence > 0 && inputs.Spread.Confidence < c {
		c = inputs.Spread.Confidence
	}
	if inputs.Wind.Confidence > 0 && inputs.Wind.Confidence < c {
		c = inputs.Wind.Confidence
	}
	quality := zone.Quality
	if quality <= 0 {
		quality = 0.5 // no facility data at all: plan geometry still holds, context does not
	}
	return clamp(c*quality, 0.05, 1)
}
