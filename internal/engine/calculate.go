package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/greenbim/carbonledger/internal/ingest"
	"github.com/greenbim/carbonledger/internal/logging"
)

// concreteCategory gates reinforcement augmentation. The ratio table is
// keyed by element type, but only concrete elements receive a steel addend;
// a timber column whose type collides with a ratio key is never reinforced.
const concreteCategory = "concrete"

// Skip warnings for volume problems.
const (
	warnNoVolume   = "No volume data"
	warnZeroVolume = "Zero volume"
)

// round2 rounds to 2 decimals (masses, CO2 values).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds to 1 decimal (percentages).
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// outcome is the per-element calculation result: exactly one of result or
// skipped is meaningful, selected by calculated.
type outcome struct {
	result     Result
	skipped    SkippedElement
	calculated bool
}

// calculateElement computes mass and CO2 for one classified element, or
// records why it could not. All failure modes here are element-local: the
// element is skipped with a warning and the batch continues.
func (e *Engine) calculateElement(ctx context.Context, element ingest.ClassifiedElement) outcome {
	log := logging.FromContext(ctx)

	skip := func(warnings ...string) outcome {
		log.Warn().
			Ctx(ctx).
			Str("component", "engine").
			Str("operation", "calculate_element").
			Str("global_id", element.GlobalID).
			Str("element_type", element.ElementType).
			Strs("warnings", warnings).
			Msg("element skipped")
		return outcome{skipped: SkippedElement{
			GlobalID:          element.GlobalID,
			Name:              element.Name,
			ElementType:       element.ElementType,
			MaterialCategory:  element.MaterialPrimary.Category,
			CalculationMethod: MethodSkipped,
			Confidence:        element.Confidence,
			Warnings:          warnings,
		}}
	}

	if element.VolumeM3 == nil {
		return skip(warnNoVolume)
	}
	volume := *element.VolumeM3
	if volume <= 0 {
		return skip(warnZeroVolume)
	}

	category := element.MaterialPrimary.Category
	subcategory := element.MaterialPrimary.Subcategory
	if category == "" || subcategory == "" {
		return skip("No material classification")
	}

	resolution, err := e.db.Resolve(category, subcategory)
	if err != nil {
		return skip(fmt.Sprintf("Material not found: %s/%s", category, subcategory))
	}

	warnings := make([]string, 0, 2)
	if resolution.Warning != "" {
		warnings = append(warnings, resolution.Warning)
	}

	mass := round2(volume * resolution.Entry.DensityKgM3)
	baseCO2 := round2(mass * resolution.Entry.EmbodiedCO2PerKg)
	co2 := baseCO2

	// Reinforcement augmentation for structural concrete. Concrete with
	// no listed ratio for its element type gets no addend; that is not an
	// error. Negative factors (timber) never reach this branch, so the
	// carbon-sink sign is never diluted by a positive steel addend.
	if category == concreteCategory {
		if ratio, ok := e.db.ReinforcementRatio(element.ElementType); ok {
			rebarMass := mass * (ratio / 100)
			rebarCO2 := round2(rebarMass * e.db.SteelReinforcementCO2Factor())
			co2 = round2(baseCO2 + rebarCO2)
			warnings = append(warnings,
				fmt.Sprintf("Added %g%% reinforcement (%g kg steel)", ratio, round2(rebarMass)))
		}
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "calculate_element").
		Str("global_id", element.GlobalID).
		Str("category", category).
		Str("resolution", string(resolution.Tag)).
		Float64("mass_kg", mass).
		Float64("co2_kg", co2).
		Msg("element calculated")

	return outcome{
		calculated: true,
		result: Result{
			GlobalID:          element.GlobalID,
			ElementName:       element.Name,
			ElementType:       element.ElementType,
			MaterialCategory:  category,
			VolumeM3:          volume,
			MassKg:            mass,
			CO2Kg:             co2,
			CO2FactorUsed:     resolution.Entry.EmbodiedCO2PerKg,
			DataSource:        resolution.Entry.Source,
			Resolution:        string(resolution.Tag),
			CalculationMethod: MethodVolumeBased,
			Confidence:        element.Confidence,
			Warnings:          warnings,
		},
	}
}
