package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(category string, co2, mass float64) Result {
	return Result{
		MaterialCategory:  category,
		CO2Kg:             co2,
		MassKg:            mass,
		CalculationMethod: MethodVolumeBased,
	}
}

func TestTotals_Summary(t *testing.T) {
	totals := NewTotals()
	totals.Add(result("concrete", 147.06, 912.0))
	totals.Add(result("timber", -71.25, 75.0))
	totals.AddSkipped()

	summary := totals.Summary()
	assert.Equal(t, 3, summary.TotalElements)
	assert.Equal(t, 2, summary.Calculated)
	assert.Equal(t, 1, summary.Skipped)
	assert.InDelta(t, 75.81, summary.TotalCO2Kg, 1e-9)
	assert.InDelta(t, 987.0, summary.TotalMassKg, 1e-9)
	assert.InDelta(t, 66.7, summary.CompletenessPct, 1e-9)
}

func TestTotals_EmptyBatchSummary(t *testing.T) {
	summary := NewTotals().Summary()
	assert.Zero(t, summary.TotalElements)
	assert.Zero(t, summary.TotalCO2Kg)
	// 0/0 completeness is defined as 0.0, not NaN.
	assert.Zero(t, summary.CompletenessPct)
}

func TestTotals_ByCategorySorting(t *testing.T) {
	totals := NewTotals()
	totals.Add(result("steel", 500.0, 400.0))
	totals.Add(result("concrete", 800.0, 9000.0))
	totals.Add(result("concrete", 200.0, 2000.0))
	totals.Add(result("timber", -71.25, 75.0))

	byCategory := totals.ByCategory()
	require.Len(t, byCategory, 3)

	// CO2 descending: the carbon sink sorts last.
	assert.Equal(t, "concrete", byCategory[0].Category)
	assert.Equal(t, "steel", byCategory[1].Category)
	assert.Equal(t, "timber", byCategory[2].Category)

	assert.Equal(t, 2, byCategory[0].Count)
	assert.InDelta(t, 1000.0, byCategory[0].CO2Kg, 1e-9)
	assert.InDelta(t, 11000.0, byCategory[0].MassKg, 1e-9)

	// Signed percentages against a total of 1428.75.
	assert.InDelta(t, 70.0, byCategory[0].Percentage, 0.05)
	assert.InDelta(t, 35.0, byCategory[1].Percentage, 0.05)
	assert.InDelta(t, -5.0, byCategory[2].Percentage, 0.05)
}

func TestTotals_ByCategoryTieBreak(t *testing.T) {
	totals := NewTotals()
	totals.Add(result("steel", 100.0, 1.0))
	totals.Add(result("aluminium", 100.0, 1.0))

	byCategory := totals.ByCategory()
	require.Len(t, byCategory, 2)
	assert.Equal(t, "aluminium", byCategory[0].Category)
	assert.Equal(t, "steel", byCategory[1].Category)
}

func TestTotals_ZeroTotalPercentages(t *testing.T) {
	// Positive and negative contributions cancel exactly: every
	// percentage is 0.0 by definition, no division by zero.
	totals := NewTotals()
	totals.Add(result("steel", 71.25, 100.0))
	totals.Add(result("timber", -71.25, 75.0))

	for _, cat := range totals.ByCategory() {
		assert.Zero(t, cat.Percentage, "category %s", cat.Category)
	}
}

func TestTotals_MergeCommutative(t *testing.T) {
	results := []Result{
		result("concrete", 147.06, 912.0),
		result("steel", 797.29, 430.97),
		result("timber", -71.25, 75.0),
		result("concrete", 288.0, 2400.0),
		result("masonry", 52.5, 250.0),
	}

	whole := NewTotals()
	for _, r := range results {
		whole.Add(r)
	}
	whole.AddSkipped()

	left := NewTotals()
	for _, r := range results[:2] {
		left.Add(r)
	}
	right := NewTotals()
	for _, r := range results[2:] {
		right.Add(r)
	}
	right.AddSkipped()

	ab := NewTotals()
	ab.Merge(left)
	ab.Merge(right)

	ba := NewTotals()
	ba.Merge(right)
	ba.Merge(left)

	assert.Equal(t, whole.Summary(), ab.Summary())
	assert.Equal(t, whole.Summary(), ba.Summary())
	assert.Equal(t, whole.ByCategory(), ab.ByCategory())
	assert.Equal(t, whole.ByCategory(), ba.ByCategory())
}

func TestTotals_MergeNil(t *testing.T) {
	totals := NewTotals()
	totals.Add(result("concrete", 1.0, 1.0))
	totals.Merge(nil)
	assert.Equal(t, 1, totals.Summary().Calculated)
}
