package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every outbound structure crosses an RPC/JSON boundary and lands in an
// audit trail: a serialize/deserialize round trip must yield an
// identical value.
func TestOutputsRoundTripJSON(t *testing.T) {
	risk, err := NewScorer().Score(testObservation(), testSnapshot())
	require.NoError(t, err)

	spread, err := NewPredictor().Predict(testObservation(), testSnapshot(), risk)
	require.NoError(t, err)

	wind, err := NewWindAnalyzer().Analyze(testSnapshot(), testObservation().Location)
	require.NoError(t, err)

	plan, err := testPlanner(t).GeneratePlan(testObservation(), testZone(), PlanInputs{Risk: risk, Spread: spread, Wind: wind}, RoleFirefighting)
	require.NoError(t, err)

	catalog := testPlanner(t).StrategyCatalog(testObservation().Location, wind, spread, risk)

	t.Run("risk assessment", func(t *testing.T) { roundTrip(t, risk) })
	t.Run("spread prediction", func(t *testing.T) { roundTrip(t, spread) })
	t.Run("wind profile", func(t *testing.T) { roundTrip(t, wind) })
	t.Run("tactical plan", func(t *testing.T) { roundTrip(t, plan) })
	t.Run("strategy catalog", func(t *testing.T) { roundTrip(t, catalog) })
	t.Run("observation", func(t *testing.T) { roundTrip(t, testObservation()) })
	t.Run("snapshot", func(t *testing.T) { roundTrip(t, testSnapshot()) })
}

func roundTrip[T any](t *testing.T, value T) {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)

	var decoded T
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, value, decoded)
}
