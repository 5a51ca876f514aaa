package engine

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/greenbim/carbonledger/internal/ingest"
	"github.com/greenbim/carbonledger/internal/logging"
	"github.com/greenbim/carbonledger/internal/materials"
)

// Engine turns classified elements and a material database into a report.
// The database is read-only for the engine's lifetime, so parallel element
// calculations share it without locking.
type Engine struct {
	db          *materials.Database
	concurrency int
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency sets the number of parallel element-calculation workers.
// Values below 2 keep the run sequential.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over a loaded material database.
func New(db *materials.Database, opts ...Option) (*Engine, error) {
	if db == nil {
		return nil, errors.New("material database cannot be nil")
	}

	e := &Engine{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RunInput is one calculation request: a batch of classified elements and
// the label of the model they came from.
type RunInput struct {
	// SourceFile identifies the upstream building model in report
	// metadata. It is a label, not a path the engine reads.
	SourceFile string

	Elements []ingest.ClassifiedElement
}

// Run executes the full calculation over a batch. The batch is validated
// fail-fast; afterwards every element produces either a detailed result or
// a skipped entry and nothing aborts the run except context cancellation.
// With concurrency configured, elements are calculated in parallel into an
// indexed slice so input order survives, and the fold into totals stays
// sequential.
func (e *Engine) Run(ctx context.Context, input RunInput) (*Report, error) {
	log := logging.FromContext(ctx)
	start := e.now()
	runID := ulid.Make().String()

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "run").
		Str("run_id", runID).
		Str("source_file", input.SourceFile).
		Int("element_count", len(input.Elements)).
		Int("concurrency", e.concurrency).
		Msg("starting calculation run")

	if err := ingest.ValidateElements(ctx, input.Elements); err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "engine").
			Str("run_id", runID).
			Err(err).
			Msg("batch validation failed")
		return nil, err
	}

	outcomes := make([]outcome, len(input.Elements))
	if e.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for i, element := range input.Elements {
			i, element := i, element
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = e.calculateElement(gctx, element)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, element := range input.Elements {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = e.calculateElement(ctx, element)
		}
	}

	totals := NewTotals()
	results := make([]Result, 0, len(outcomes))
	skipped := make([]SkippedElement, 0)
	for _, out := range outcomes {
		if out.calculated {
			totals.Add(out.result)
			results = append(results, out.result)
		} else {
			totals.AddSkipped()
			skipped = append(skipped, out.skipped)
		}
	}

	dbMeta := e.db.Metadata()
	report := AssembleReport(Metadata{
		SourceFile:      input.SourceFile,
		RunID:           runID,
		CalculationDate: start.UTC().Format(time.RFC3339),
		DatabaseVersion: dbMeta.Version,
		DatabaseSource:  dbMeta.Source,
	}, totals, results, skipped)

	log.Info().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "run").
		Str("run_id", runID).
		Int("calculated", report.Summary.Calculated).
		Int("skipped", report.Summary.Skipped).
		Float64("total_co2_kg", report.Summary.TotalCO2Kg).
		Float64("completeness_pct", report.Summary.CompletenessPct).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("calculation run complete")

	return report, nil
}
