package engine

import "sort"

// categoryTotals accumulates one category's unrounded sums.
type categoryTotals struct {
	count int
	co2   float64
	mass  float64
}

// Totals is a commutative, associative accumulator over calculation
// outcomes. Partial Totals built over sub-batches can be merged in any
// order and yield the same result as a single pass; values are only rounded
// when a Summary or category breakdown is produced, never per step.
type Totals struct {
	calculated int
	skipped    int
	co2        float64
	mass       float64
	categories map[string]*categoryTotals
}

// NewTotals returns an empty accumulator.
func NewTotals() *Totals {
	return &Totals{categories: make(map[string]*categoryTotals)}
}

// Add folds one calculated result into the totals.
func (t *Totals) Add(r Result) {
	t.calculated++
	t.co2 += r.CO2Kg
	t.mass += r.MassKg

	cat, ok := t.categories[r.MaterialCategory]
	if !ok {
		cat = &categoryTotals{}
		t.categories[r.MaterialCategory] = cat
	}
	cat.count++
	cat.co2 += r.CO2Kg
	cat.mass += r.MassKg
}

// AddSkipped counts one skipped element.
func (t *Totals) AddSkipped() {
	t.skipped++
}

// Merge folds another partial accumulator into this one.
func (t *Totals) Merge(other *Totals) {
	if other == nil {
		return
	}
	t.calculated += other.calculated
	t.skipped += other.skipped
	t.co2 += other.co2
	t.mass += other.mass

	for name, otherCat := range other.categories {
		cat, ok := t.categories[name]
		if !ok {
			cat = &categoryTotals{}
			t.categories[name] = cat
		}
		cat.count += otherCat.count
		cat.co2 += otherCat.co2
		cat.mass += otherCat.mass
	}
}

// Summary produces the batch summary, rounding at this output boundary
// only. An empty batch yields 0.0 completeness rather than dividing by
// zero.
func (t *Totals) Summary() Summary {
	total := t.calculated + t.skipped

	completeness := 0.0
	if total > 0 {
		completeness = round1(100 * float64(t.calculated) / float64(total))
	}

	return Summary{
		TotalElements:   total,
		Calculated:      t.calculated,
		Skipped:         t.skipped,
		TotalCO2Kg:      round2(t.co2),
		TotalMassKg:     round2(t.mass),
		CompletenessPct: completeness,
	}
}

// ByCategory produces per-category summaries sorted by CO2 descending, so
// the heaviest emitters lead and carbon-sink categories (negative CO2) sort
// last. Equal CO2 ties break on category name to keep output stable. When
// the batch total is zero (nothing calculated, or positive and negative
// contributions cancel exactly) every percentage is 0.0 by definition.
func (t *Totals) ByCategory() []CategorySummary {
	summaries := make([]CategorySummary, 0, len(t.categories))
	for name, cat := range t.categories {
		pct := 0.0
		if t.co2 != 0 {
			pct = round1(100 * cat.co2 / t.co2)
		}
		summaries = append(summaries, CategorySummary{
			Category:   name,
			Count:      cat.count,
			CO2Kg:      round2(cat.co2),
			MassKg:     round2(cat.mass),
			Percentage: pct,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CO2Kg != summaries[j].CO2Kg {
			return summaries[i].CO2Kg > summaries[j].CO2Kg
		}
		return summaries[i].Category < summaries[j].Category
	})

	return summaries
}
