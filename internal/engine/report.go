package engine

// AssembleReport composes the final report from already computed parts. It
// performs no arithmetic of its own and always emits a complete value: a
// report exists even at 0% completeness. Result and skip slices keep the
// caller's (input) order; nil slices become empty so the JSON output always
// carries arrays, never null.
func AssembleReport(meta Metadata, totals *Totals, results []Result, skipped []SkippedElement) *Report {
	if results == nil {
		results = []Result{}
	}
	if skipped == nil {
		skipped = []SkippedElement{}
	}

	return &Report{
		Metadata:        meta,
		Summary:         totals.Summary(),
		ByCategory:      totals.ByCategory(),
		DetailedResults: results,
		SkippedElements: skipped,
	}
}
