package materials

import "fmt"

// ResolutionTag documents which lookup path produced the entry used for an
// element. Tags surface in report warnings and data-source labels so every
// factor in a report is auditable back to its lookup path.
type ResolutionTag string

const (
	// ResolutionExact means the requested subcategory matched directly.
	ResolutionExact ResolutionTag = "exact"

	// ResolutionGeneric means the category's "<category>_generic" entry
	// was substituted. This path is silent: generic entries exist exactly
	// for this purpose.
	ResolutionGeneric ResolutionTag = "generic"

	// ResolutionFirstFallback means the first subcategory in the
	// category's stored order was substituted, with a warning.
	ResolutionFirstFallback ResolutionTag = "first-fallback"
)

// Resolution is the outcome of a successful material lookup.
type Resolution struct {
	Entry Entry

	// Subcategory is the subcategory actually used, which differs from
	// the requested one on the generic and first-fallback paths.
	Subcategory string

	Tag ResolutionTag

	// Warning is a human-readable note attached to the element's result.
	// Only the first-fallback path sets it.
	Warning string
}

// Resolve looks up a (category, subcategory) pair through the fallback
// chain, first match wins:
//
//  1. exact match on materials[category][subcategory]
//  2. the category's "<category>_generic" entry
//  3. the first subcategory in the category's stored order
//
// The ordering is load-bearing and must not change: a generic entry always
// beats the first-in-category entry. Keys are matched exactly; no case
// folding, no fuzzy matching. When the category is absent or empty,
// Resolve returns an error wrapping ErrMaterialNotFound and the caller
// skips the element.
func (db *Database) Resolve(categoryName, subcategory string) (Resolution, error) {
	cat, ok := db.materials[categoryName]
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s/%s", ErrMaterialNotFound, categoryName, subcategory)
	}

	if entry, ok := cat.entries[subcategory]; ok {
		return Resolution{
			Entry:       entry,
			Subcategory: subcategory,
			Tag:         ResolutionExact,
		}, nil
	}

	generic := categoryName + genericSuffix
	if entry, ok := cat.entries[generic]; ok {
		return Resolution{
			Entry:       entry,
			Subcategory: generic,
			Tag:         ResolutionGeneric,
		}, nil
	}

	if len(cat.order) > 0 {
		first := cat.order[0]
		return Resolution{
			Entry:       cat.entries[first],
			Subcategory: first,
			Tag:         ResolutionFirstFallback,
			Warning:     fmt.Sprintf("Using %s as fallback for %s", first, subcategory),
		}, nil
	}

	return Resolution{}, fmt.Errorf("%w: %s/%s", ErrMaterialNotFound, categoryName, subcategory)
}
