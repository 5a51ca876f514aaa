// Package engine implements the embodied-carbon calculation: per-element
// mass and CO2 arithmetic, reinforcement augmentation for structural
// concrete, aggregation into category summaries, and report assembly.
//
// The engine is a pure batch transform over a read-only material database.
// Every input element ends up in exactly one of the report's detailed
// results or skipped elements; per-element data problems never abort a run.
package engine

// Calculation method tags. This is the single discriminator consumers use
// to tell calculated results from skipped elements.
const (
	// MethodVolumeBased marks a successfully calculated element.
	MethodVolumeBased = "volume_based"

	// MethodSkipped marks an element no result could be produced for.
	MethodSkipped = "skipped"
)

// Result is the calculation outcome for one calculable element. CO2 values
// are signed: carbon-sink materials (timber) carry negative factors and the
// sign is preserved through aggregation.
type Result struct {
	GlobalID          string   `json:"global_id"`
	ElementName       string   `json:"element_name"`
	ElementType       string   `json:"element_type"`
	MaterialCategory  string   `json:"material_category"`
	VolumeM3          float64  `json:"volume_m3"`
	MassKg            float64  `json:"mass_kg"`
	CO2Kg             float64  `json:"co2_kg"`
	CO2FactorUsed     float64  `json:"co2_factor_used"`
	DataSource        string   `json:"data_source"`
	Resolution        string   `json:"resolution,omitempty"`
	CalculationMethod string   `json:"calculation_method"`
	Confidence        float64  `json:"confidence"`
	Warnings          []string `json:"warnings"`
}

// SkippedElement records an element no result was produced for, with the
// human-readable reasons. Warnings is never empty.
type SkippedElement struct {
	GlobalID          string   `json:"global_id"`
	Name              string   `json:"name"`
	ElementType       string   `json:"element_type"`
	MaterialCategory  string   `json:"material_category"`
	CalculationMethod string   `json:"calculation_method"`
	Confidence        float64  `json:"confidence"`
	Warnings          []string `json:"warnings"`
}

// CategorySummary aggregates calculated results for one material category.
// Percentage is signed; a carbon-sink category can show a negative share.
type CategorySummary struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	CO2Kg      float64 `json:"co2_kg"`
	MassKg     float64 `json:"mass_kg"`
	Percentage float64 `json:"percentage"`
}

// Summary holds batch-level counts and totals.
type Summary struct {
	TotalElements   int     `json:"total_elements"`
	Calculated      int     `json:"calculated"`
	Skipped         int     `json:"skipped"`
	TotalCO2Kg      float64 `json:"total_co2_kg"`
	TotalMassKg     float64 `json:"total_mass_kg"`
	CompletenessPct float64 `json:"completeness_pct"`
}

// Metadata identifies a report: its upstream source, the run that produced
// it, and the reference database the factors came from.
type Metadata struct {
	SourceFile      string `json:"source_file"`
	RunID           string `json:"run_id"`
	CalculationDate string `json:"calculation_date"`
	DatabaseVersion string `json:"database_version"`
	DatabaseSource  string `json:"database_source"`
}

// Report is the complete calculation output. ByCategory is an ordered slice
// (CO2 descending) rather than a map because the category ordering is part
// of the output contract. DetailedResults and SkippedElements preserve
// input order.
type Report struct {
	Metadata        Metadata          `json:"metadata"`
	Summary         Summary           `json:"summary"`
	ByCategory      []CategorySummary `json:"by_category"`
	DetailedResults []Result          `json:"detailed_results"`
	SkippedElements []SkippedElement  `json:"skipped_elements"`
}
