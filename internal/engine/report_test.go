package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleReport_Composition(t *testing.T) {
	totals := NewTotals()
	r := result("concrete", 147.06, 912.0)
	totals.Add(r)
	totals.AddSkipped()

	skip := SkippedElement{
		GlobalID:          "s-1",
		CalculationMethod: MethodSkipped,
		Warnings:          []string{"No volume data"},
	}
	meta := Metadata{
		SourceFile:      "office.ifc",
		RunID:           "01HTESTTESTTESTTESTTESTTES",
		CalculationDate: "2026-03-14T15:09:26Z",
		DatabaseVersion: "2.1.0",
		DatabaseSource:  "NIBE",
	}

	report := AssembleReport(meta, totals, []Result{r}, []SkippedElement{skip})

	assert.Equal(t, meta, report.Metadata)
	assert.Equal(t, totals.Summary(), report.Summary)
	assert.Equal(t, totals.ByCategory(), report.ByCategory)
	assert.Equal(t, []Result{r}, report.DetailedResults)
	assert.Equal(t, []SkippedElement{skip}, report.SkippedElements)
}

func TestAssembleReport_EmptySlicesNotNull(t *testing.T) {
	report := AssembleReport(Metadata{}, NewTotals(), nil, nil)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	// Consumers get arrays, never null.
	assert.Contains(t, string(data), `"detailed_results":[]`)
	assert.Contains(t, string(data), `"skipped_elements":[]`)
	assert.Contains(t, string(data), `"by_category":[]`)
}

func TestReport_JSONSchema(t *testing.T) {
	full := Result{
		GlobalID:          "el-1",
		ElementName:       "Column-01",
		ElementType:       "column",
		MaterialCategory:  "concrete",
		VolumeM3:          0.38,
		MassKg:            912.0,
		CO2Kg:             147.06,
		CO2FactorUsed:     0.12,
		DataSource:        "NIBE",
		Resolution:        "exact",
		CalculationMethod: MethodVolumeBased,
		Confidence:        0.92,
		Warnings:          []string{},
	}
	totals := NewTotals()
	totals.Add(full)

	report := AssembleReport(Metadata{SourceFile: "x.ifc"}, totals, []Result{full}, nil)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"metadata", "summary", "by_category", "detailed_results", "skipped_elements"} {
		assert.Contains(t, decoded, key)
	}

	results, ok := decoded["detailed_results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	row, ok := results[0].(map[string]any)
	require.True(t, ok)

	for _, key := range []string{
		"global_id", "element_name", "element_type", "material_category",
		"volume_m3", "mass_kg", "co2_kg", "co2_factor_used", "data_source",
		"calculation_method", "confidence", "warnings",
	} {
		assert.Contains(t, row, key)
	}
	assert.Equal(t, "volume_based", row["calculation_method"])
}
