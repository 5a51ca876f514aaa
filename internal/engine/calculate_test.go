package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbim/carbonledger/internal/ingest"
	"github.com/greenbim/carbonledger/internal/materials"
)

// engineTestDatabase is the shared reference data for engine tests:
// concrete with an exact and a generic entry, steel with only a generic
// entry, timber as a carbon sink with no generic.
const engineTestDatabase = `{
  "metadata": {"name": "test-db", "version": "2.1.0", "source": "NIBE"},
  "materials": {
    "concrete": {
      "C30/37": {"embodied_co2_per_kg": 0.120, "density_kg_m3": 2400, "source": "NIBE"},
      "concrete_generic": {"embodied_co2_per_kg": 0.130, "density_kg_m3": 2400, "source": "NIBE-generic"}
    },
    "steel": {
      "steel_generic": {"embodied_co2_per_kg": 1.85, "density_kg_m3": 7850, "source": "NIBE-generic"}
    },
    "timber": {
      "glulam": {"embodied_co2_per_kg": -0.95, "density_kg_m3": 500, "source": "NIBE"}
    }
  },
  "reinforcement_ratios": {"column": 2.5, "beam": 2.0, "footing": 3.0},
  "steel_reinforcement_co2_factor": 1.65
}`

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	db, err := materials.ParseDatabase(context.Background(), []byte(engineTestDatabase), materials.FormatJSON)
	require.NoError(t, err)

	e, err := New(db, opts...)
	require.NoError(t, err)
	return e
}

func volume(v float64) *float64 { return &v }

func element(id, elementType, category, subcategory string, vol *float64) ingest.ClassifiedElement {
	return ingest.ClassifiedElement{
		GlobalID:    id,
		Name:        "Element " + id,
		ElementType: elementType,
		MaterialPrimary: ingest.MaterialRef{
			Category:    category,
			Subcategory: subcategory,
		},
		VolumeM3:   vol,
		Confidence: 0.9,
	}
}

func TestCalculateElement_ConcreteColumn(t *testing.T) {
	e := newTestEngine(t)

	out := e.calculateElement(context.Background(), element("col-1", "column", "concrete", "C30/37", volume(0.38)))
	require.True(t, out.calculated)

	r := out.result
	assert.InDelta(t, 912.0, r.MassKg, 1e-9)
	// base 109.44 + rebar 37.62 (22.8 kg steel at 1.65)
	assert.InDelta(t, 147.06, r.CO2Kg, 1e-9)
	assert.InDelta(t, 0.120, r.CO2FactorUsed, 1e-9)
	assert.Equal(t, "NIBE", r.DataSource)
	assert.Equal(t, "exact", r.Resolution)
	assert.Equal(t, MethodVolumeBased, r.CalculationMethod)
	assert.InDelta(t, 0.9, r.Confidence, 1e-9)
	assert.Contains(t, r.Warnings, "Added 2.5% reinforcement (22.8 kg steel)")
}

func TestCalculateElement_ReinforcementAdditivity(t *testing.T) {
	e := newTestEngine(t)

	reinforced := e.calculateElement(context.Background(),
		element("col-1", "column", "concrete", "C30/37", volume(0.38)))
	plain := e.calculateElement(context.Background(),
		element("wall-1", "wall", "concrete", "C30/37", volume(0.38)))
	require.True(t, reinforced.calculated)
	require.True(t, plain.calculated)

	// Same volume and material, so the difference is exactly the rebar CO2.
	assert.InDelta(t, 37.62, reinforced.result.CO2Kg-plain.result.CO2Kg, 1e-9)
}

func TestCalculateElement_ConcreteWithoutRatio(t *testing.T) {
	e := newTestEngine(t)

	// "wall" has no listed ratio; no addition and no warning, by design
	// of the ratio table, not an error.
	out := e.calculateElement(context.Background(), element("w-1", "wall", "concrete", "C30/37", volume(1.0)))
	require.True(t, out.calculated)
	assert.InDelta(t, 2400.0, out.result.MassKg, 1e-9)
	assert.InDelta(t, 288.0, out.result.CO2Kg, 1e-9)
	assert.Empty(t, out.result.Warnings)
}

func TestCalculateElement_TimberCarbonSink(t *testing.T) {
	e := newTestEngine(t)

	out := e.calculateElement(context.Background(), element("t-1", "beam", "timber", "glulam", volume(0.15)))
	require.True(t, out.calculated)

	assert.InDelta(t, 75.0, out.result.MassKg, 1e-9)
	// Sequestered carbon: the negative sign is data, not an error.
	assert.InDelta(t, -71.25, out.result.CO2Kg, 1e-9)
}

func TestCalculateElement_ReinforcementGatedOnConcrete(t *testing.T) {
	e := newTestEngine(t)

	// "column" is a ratio-table key, but the element is timber: the
	// category gate must keep the steel addend away from the carbon sink.
	out := e.calculateElement(context.Background(), element("t-col", "column", "timber", "glulam", volume(0.15)))
	require.True(t, out.calculated)
	assert.InDelta(t, -71.25, out.result.CO2Kg, 1e-9)
	assert.Empty(t, out.result.Warnings)
}

func TestCalculateElement_SteelGenericFallback(t *testing.T) {
	e := newTestEngine(t)

	out := e.calculateElement(context.Background(), element("s-1", "beam", "steel", "S355", volume(0.0549)))
	require.True(t, out.calculated)

	r := out.result
	assert.Equal(t, "generic", r.Resolution)
	assert.Equal(t, "NIBE-generic", r.DataSource)
	assert.InDelta(t, 431.0, r.MassKg, 0.1)
	assert.InDelta(t, 797.35, r.CO2Kg, 0.1)
	// The generic path is silent; steel is never reinforced.
	assert.Empty(t, r.Warnings)
}

func TestCalculateElement_FirstFallbackWarning(t *testing.T) {
	e := newTestEngine(t)

	// timber has no timber_generic, so an unknown subcategory lands on
	// the first stored entry with a warning naming the substitution.
	out := e.calculateElement(context.Background(), element("t-2", "beam", "timber", "bamboo", volume(0.1)))
	require.True(t, out.calculated)
	assert.Equal(t, "first-fallback", out.result.Resolution)
	assert.Contains(t, out.result.Warnings, "Using glulam as fallback for bamboo")
}

func TestCalculateElement_Skips(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name        string
		element     ingest.ClassifiedElement
		wantWarning string
	}{
		{
			name:        "no volume",
			element:     element("a", "wall", "concrete", "C30/37", nil),
			wantWarning: "No volume data",
		},
		{
			name:        "zero volume",
			element:     element("b", "wall", "concrete", "C30/37", volume(0)),
			wantWarning: "Zero volume",
		},
		{
			name:        "negative volume",
			element:     element("c", "wall", "concrete", "C30/37", volume(-1.2)),
			wantWarning: "Zero volume",
		},
		{
			name:        "category missing from database",
			element:     element("d", "pipe", "plastics", "pvc", volume(0.5)),
			wantWarning: "Material not found: plastics/pvc",
		},
		{
			name:        "no material classification",
			element:     element("e", "wall", "", "", volume(0.5)),
			wantWarning: "No material classification",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.calculateElement(context.Background(), tt.element)
			require.False(t, out.calculated)

			s := out.skipped
			assert.Equal(t, tt.element.GlobalID, s.GlobalID)
			assert.Equal(t, MethodSkipped, s.CalculationMethod)
			assert.Equal(t, []string{tt.wantWarning}, s.Warnings)
			assert.InDelta(t, 0.9, s.Confidence, 1e-9)
		})
	}
}

func TestCalculateElement_VolumeCheckedBeforeMaterial(t *testing.T) {
	e := newTestEngine(t)

	// Both defects present: the volume precondition is reported.
	out := e.calculateElement(context.Background(), element("x", "pipe", "plastics", "pvc", nil))
	require.False(t, out.calculated)
	assert.Equal(t, []string{"No volume data"}, out.skipped.Warnings)
}
