// Package materials holds the embodied-carbon reference database: CO2
// factors and densities per material subcategory, reinforcement ratios for
// structural concrete, and the steel reinforcement CO2 factor.
//
// A Database is loaded once per run and is read-only afterwards, so
// concurrent lookups from parallel element calculations need no locking.
package materials

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// genericSuffix forms the generic fallback subcategory name for a category,
// e.g. "concrete" -> "concrete_generic".
const genericSuffix = "_generic"

// Entry is a single material record: the embodied CO2 factor, the density
// used to convert volume to mass, and the provenance label of the data.
// A negative CO2 factor marks a carbon sink (timber) and is not an error.
type Entry struct {
	EmbodiedCO2PerKg float64
	DensityKgM3      float64
	Source           string
}

// Metadata describes the database itself and is propagated into report
// metadata untouched.
type Metadata struct {
	Name    string
	Version string
	Source  string
}

// category keeps the subcategory entries of one material category together
// with their resolution order. The order is load-bearing: the
// first-in-category fallback picks the first name in it.
type category struct {
	order   []string
	entries map[string]Entry
}

// Database is the immutable materials reference data for a calculation run.
type Database struct {
	meta        Metadata
	materials   map[string]category
	ratios      map[string]float64
	steelFactor float64
}

// Metadata returns the database's own metadata.
func (db *Database) Metadata() Metadata { return db.meta }

// SteelReinforcementCO2Factor returns the kg CO2-eq per kg of reinforcement
// steel, applied uniformly to all reinforced concrete regardless of the
// concrete subcategory used.
func (db *Database) SteelReinforcementCO2Factor() float64 { return db.steelFactor }

// ReinforcementRatio returns the rebar mass percentage for a structural
// element type, and whether the type has a listed ratio at all.
func (db *Database) ReinforcementRatio(elementType string) (float64, bool) {
	ratio, ok := db.ratios[elementType]
	return ratio, ok
}

// HasCategory reports whether the category exists in the database.
func (db *Database) HasCategory(name string) bool {
	_, ok := db.materials[name]
	return ok
}

// Entry returns the entry for an exact (category, subcategory) pair.
func (db *Database) Entry(categoryName, subcategory string) (Entry, bool) {
	cat, ok := db.materials[categoryName]
	if !ok {
		return Entry{}, false
	}
	entry, ok := cat.entries[subcategory]
	return entry, ok
}

// Subcategories returns the subcategory names of a category in resolution
// order. The returned slice is a copy.
func (db *Database) Subcategories(categoryName string) []string {
	cat, ok := db.materials[categoryName]
	if !ok {
		return nil
	}
	out := make([]string, len(cat.order))
	copy(out, cat.order)
	return out
}

// Categories returns all category names in lexical order.
func (db *Database) Categories() []string {
	out := make([]string, 0, len(db.materials))
	for name := range db.materials {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CheckVersion verifies the database version against a semver constraint
// such as ">= 1.2.0". An empty constraint always passes. With a constraint
// configured, an unparseable version is an error: version gating cannot be
// silently skipped once the caller asked for it.
func (db *Database) CheckVersion(constraint string) error {
	if constraint == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("%w: invalid constraint %q: %v", ErrVersionConstraint, constraint, err)
	}

	v, err := semver.NewVersion(db.meta.Version)
	if err != nil {
		return fmt.Errorf("%w: database version %q is not valid semver", ErrVersionConstraint, db.meta.Version)
	}

	if !c.Check(v) {
		return fmt.Errorf("%w: version %s does not satisfy %q", ErrVersionConstraint, db.meta.Version, constraint)
	}
	return nil
}
