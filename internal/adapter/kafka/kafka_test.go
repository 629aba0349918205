package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
	"github.com/seojedaperez/ignismap-engine/internal/engine"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 14, 13, 0, 0, 0, time.UTC)
	bundle := engine.AnalysisBundle{
		Observation: domain.FireObservation{
			ID:       "viirs-20260814-0042",
			Location: domain.GeoPoint{Lat: 39.47, Lon: -0.38},
		},
		Role: domain.RoleFirefighting,
		Risk: domain.RiskAssessment{
			MagnitudeScore: 65.5,
			MagnitudeBand:  "high",
		},
		GeneratedAt: now,
	}

	msg, err := serializeToMessage(bundle)
	require.NoError(t, err)

	assert.Equal(t, []byte("viirs-20260814-0042"), msg.Key)
	assert.Contains(t, string(msg.Value), `"magnitude_band":"high"`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "role", msg.Headers[0].Key)
	assert.Equal(t, []byte("firefighting"), msg.Headers[0].Value)
	assert.Equal(t, "magnitude_band", msg.Headers[1].Key)
	assert.Equal(t, []byte("high"), msg.Headers[1].Value)
	assert.Equal(t, "generated_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}
