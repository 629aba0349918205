// Package facilities resolves the operational context around a fire
// from OpenStreetMap via the Overpass API: water sources, occupied
// areas, shelters, and the exposure indices the danger score consumes.
package facilities

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
)

// Client queries Overpass for the zone context around a location.
type Client struct {
	httpClient *http.Client
	baseURL    string
	radiusKm   float64
	logger     *slog.Logger
}

// NewClient creates an Overpass client covering radiusKm around each
// queried location.
func NewClient(baseURL string, radiusKm float64, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		radiusKm: radiusKm,
		logger:   logger,
	}
}

// RadiusKm returns the configured threat radius.
func (c *Client) RadiusKm() float64 { return c.radiusKm }

// Zone fetches and classifies all mapped facilities around the location.
func (c *Client) Zone(ctx context.Context, location domain.GeoPoint) (domain.ZoneContext, error) {
	zone, _, err := c.Survey(ctx, location)
	return zone, err
}

// Survey fetches the area once and derives both the planner's zone
// context and the exposure indices the danger score consumes.
func (c *Client) Survey(ctx context.Context, location domain.GeoPoint) (domain.ZoneContext, domain.Exposure, error) {
	query := c.buildQuery(location)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(url.Values{"data": {query}}.Encode()))
	if err != nil {
		return domain.ZoneContext{}, domain.Exposure{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ZoneContext{}, domain.Exposure{}, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.ZoneContext{}, domain.Exposure{}, fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.ZoneContext{}, domain.Exposure{}, fmt.Errorf("decode response: %w", err)
	}

	zone := classify(payload.Elements)
	zone.Quality = 1
	return zone, deriveExposure(payload.Elements, zone, c.radiusKm), nil
}

// buildQuery assembles the Overpass QL union for every feature class
// the planner and the exposure indices consume.
func (c *Client) buildQuery(location domain.GeoPoint) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", c.radiusKm*1000, location.Lat, location.Lon)

	selectors := []string{
		`node["emergency"="fire_hydrant"]`,
		`nwr["natural"="water"]`,
		`nwr["waterway"="river"]`,
		`nwr["amenity"="hospital"]`,
		`nwr["amenity"="school"]`,
		`nwr["amenity"="social_facility"]`,
		`nwr["landuse"="residential"]`,
		`nwr["emergency"="assembly_point"]`,
		`nwr["boundary"="protected_area"]`,
		`nwr["landuse"="forest"]`,
		`nwr["natural"="wood"]`,
		`nwr["landuse"="commercial"]`,
		`nwr["landuse"="industrial"]`,
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, sel := range selectors {
		b.WriteString(sel)
		b.WriteString(around)
		b.WriteString(";")
	}
	b.WriteString(");out center tags;")
	return b.String()
}

// classify maps raw OSM elements into the zone context. Population
// figures use the OSM population tag when present and conservative
// per-type defaults otherwise.
func classify(elements []element) domain.ZoneContext {
	var zone domain.ZoneContext

	for _, el := range elements {
		loc := el.location()
		name := el.Tags["name"]

		switch {
		case el.Tags["emergency"] == "fire_hydrant":
			zone.WaterSources = append(zone.WaterSources, domain.WaterSource{
				Name:           orDefault(name, "hydrant"),
				Location:       loc,
				Type:           "hydrant",
				CapacityLiters: 100000,
			})
		case el.Tags["waterway"] == "river":
			zone.WaterSources = append(zone.WaterSources, domain.WaterSource{
				Name:           orDefault(name, "river"),
				Location:       loc,
				Type:           "river",
				CapacityLiters: 5000000,
			})
		case el.Tags["natural"] == "water":
			zone.WaterSources = append(zone.WaterSources, domain.WaterSource{
				Name:           orDefault(name, "water body"),
				Location:       loc,
				Type:           "pond",
				CapacityLiters: 500000,
			})
		case el.Tags["amenity"] == "hospital":
			zone.CivilianAreas = append(zone.CivilianAreas, domain.CivilianArea{
				Name:               orDefault(name, "hospital"),
				Type:               "hospital",
				Location:           loc,
				Population:         el.population(300),
				EvacuationPriority: 5,
				SpecialNeeds:       true,
			})
		case el.Tags["amenity"] == "school":
			zone.CivilianAreas = append(zone.CivilianAreas, domain.CivilianArea{
				Name:               orDefault(name, "school"),
				Type:               "school",
				Location:           loc,
				Population:         el.population(500),
				EvacuationPriority: 4,
			})
		case el.Tags["amenity"] == "social_facility":
			zone.CivilianAreas = append(zone.CivilianAreas, domain.CivilianArea{
				Name:               orDefault(name, "care facility"),
				Type:               "care_home",
				Location:           loc,
				Population:         el.population(80),
				EvacuationPriority: 5,
				SpecialNeeds:       true,
			})
		case el.Tags["landuse"] == "residential":
			zone.CivilianAreas = append(zone.CivilianAreas, domain.CivilianArea{
				Name:               orDefault(name, "residential area"),
				Type:               "residential",
				Location:           loc,
				Population:         el.population(1000),
				EvacuationPriority: 3,
			})
		case el.Tags["emergency"] == "assembly_point":
			zone.Shelters = append(zone.Shelters, domain.Shelter{
				Name:     orDefault(name, "assembly point"),
				Location: loc,
				Capacity: el.population(500),
			})
		}
	}
	return zone
}

// deriveExposure turns feature counts into the 0–1 exposure indices.
// The scaling constants are coarse: they rank zones against each other,
// they do not pretend to be census data.
func deriveExposure(elements []element, zone domain.ZoneContext, radiusKm float64) domain.Exposure {
	var protected, forest, commercial int
	for _, el := range elements {
		switch {
		case el.Tags["boundary"] == "protected_area":
			protected++
		case el.Tags["landuse"] == "forest" || el.Tags["natural"] == "wood":
			forest++
		case el.Tags["landuse"] == "commercial" || el.Tags["landuse"] == "industrial":
			commercial++
		}
	}

	var population int
	var hospitals, schools int
	for _, area := range zone.CivilianAreas {
		population += area.Population
		switch area.Type {
		case "hospital":
			hospitals++
		case "school":
			schools++
		}
	}

	areaKm2 := math.Pi * radiusKm * radiusKm
	density := 0.0
	if areaKm2 > 0 {
		density = float64(population) / areaKm2
	}

	return domain.Exposure{
		PopulationDensity:   density,
		InfrastructureIndex: capped(0.3*float64(hospitals) + 0.15*float64(schools) + 0.02*float64(len(zone.WaterSources))),
		EconomicValueIndex:  capped(0.1*float64(commercial) + 0.05*float64(len(zone.CivilianAreas))),
		EnvironmentalValue:  capped(0.4*float64(protected) + 0.05*float64(forest)),
	}
}

func capped(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func orDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// Overpass API response types.

type overpassResponse struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// location returns the node position, or the computed center for ways
// and relations.
func (e element) location() domain.GeoPoint {
	if e.Center != nil {
		return domain.GeoPoint{Lat: e.Center.Lat, Lon: e.Center.Lon}
	}
	return domain.GeoPoint{Lat: e.Lat, Lon: e.Lon}
}

// population reads the OSM population tag, falling back to a per-type
// default when absent or unparsable.
func (e element) population(fallback int) int {
	raw, ok := e.Tags["population"]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
