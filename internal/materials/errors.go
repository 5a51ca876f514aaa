package materials

// constError is an immutable error type for sentinel errors.
// It implements the error interface and provides compile-time safety.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for material database handling. These can be compared
// with errors.Is() even when wrapped with additional detail.
var (
	// ErrMaterialNotFound indicates the resolver exhausted every fallback
	// for a (category, subcategory) pair. Callers skip the element.
	ErrMaterialNotFound = constError("material not found")

	// ErrInvalidDatabase indicates structurally invalid reference data.
	// This is a batch-fatal condition reported before any element work.
	ErrInvalidDatabase = constError("invalid material database")

	// ErrVersionConstraint indicates the database version does not satisfy
	// the configured minimum version constraint.
	ErrVersionConstraint = constError("database version constraint not satisfied")
)
