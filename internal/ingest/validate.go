package ingest

import (
	"context"
	"fmt"

	"github.com/greenbim/carbonledger/internal/logging"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Structural validation errors. Any of these fails the whole batch before
// element processing begins; per-element data problems (missing volume,
// unknown material) are not structural and skip individual elements instead.
var (
	// ErrEmptyBatch indicates a feed with no elements.
	ErrEmptyBatch = constError("element batch is empty")

	// ErrInvalidElement indicates an element missing identity fields or
	// carrying an out-of-range confidence.
	ErrInvalidElement = constError("invalid classified element")

	// ErrDuplicateGlobalID indicates two elements sharing a global_id,
	// which would break the results/skipped coverage invariant.
	ErrDuplicateGlobalID = constError("duplicate global_id")
)

// ValidateElements checks batch-level integrity of a parsed feed. It fails
// fast on the first structural defect so the caller never receives a
// partially processed batch.
func ValidateElements(ctx context.Context, elements []ClassifiedElement) error {
	log := logging.FromContext(ctx)

	if len(elements) == 0 {
		return ErrEmptyBatch
	}

	seen := make(map[string]bool, len(elements))
	for i, element := range elements {
		if element.GlobalID == "" {
			return fmt.Errorf("%w: element %d has no global_id", ErrInvalidElement, i)
		}
		if seen[element.GlobalID] {
			return fmt.Errorf("%w: %s", ErrDuplicateGlobalID, element.GlobalID)
		}
		seen[element.GlobalID] = true

		if element.Confidence < 0 || element.Confidence > 1 {
			return fmt.Errorf("%w: %s has confidence %g outside [0,1]",
				ErrInvalidElement, element.GlobalID, element.Confidence)
		}
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "ingest").
		Str("operation", "validate_elements").
		Int("element_count", len(elements)).
		Msg("element batch validated")

	return nil
}
