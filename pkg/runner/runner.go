// Package runner orchestrates the benchmark phases in a fixed sequence and
// assembles the comparison report.
package runner

import (
	"context"
	"fmt"

	"github.com/shardmark/shardmark/pkg/bench"
	"github.com/shardmark/shardmark/pkg/schema"
	"github.com/shardmark/shardmark/pkg/workload"
	"github.com/sirupsen/logrus"
)

// WorkloadGenerator produces the dataset shared across variants.
type WorkloadGenerator interface {
	Generate() (workload.Set, error)
}

// Runner executes the full comparison.
type Runner interface {
	// Run generates the workload once, then measures each variant in order:
	// provision, insert, shard-filtered counts, full scan, index size; point
	// lookups run last against both variants using the same workload prefix.
	// Every phase runs to completion before the next begins: concurrent
	// phases would contaminate each other's wall-clock measurements.
	//
	// The first failure aborts the run. The returned report carries whatever
	// completed before the failure and is marked incomplete.
	Run(ctx context.Context) (*bench.Report, error)
}

// Config for the runner.
type Config struct {
	Variants        []*schema.Variant
	LookupBatchSize int

	// KeepTables leaves both variants' tables in place after a successful
	// run for manual inspection.
	KeepTables bool
}

// NewRunner wires the benchmark components together.
func NewRunner(
	log logrus.FieldLogger,
	cfg *Config,
	gen WorkloadGenerator,
	prov schema.Provisioner,
	ins bench.Inserter,
	queries bench.Queries,
	sizes bench.SizeReporter,
) Runner {
	return &runner{
		log:     log.WithField("component", "runner"),
		cfg:     cfg,
		gen:     gen,
		prov:    prov,
		ins:     ins,
		queries: queries,
		sizes:   sizes,
	}
}

type runner struct {
	log     logrus.FieldLogger
	cfg     *Config
	gen     WorkloadGenerator
	prov    schema.Provisioner
	ins     bench.Inserter
	queries bench.Queries
	sizes   bench.SizeReporter
}

// Ensure interface compliance.
var _ Runner = (*runner)(nil)

func (r *runner) Run(ctx context.Context) (*bench.Report, error) {
	report := &bench.Report{}

	set, err := r.gen.Generate()
	if err != nil {
		return report, fmt.Errorf("generating workload: %w", err)
	}

	for _, v := range r.cfg.Variants {
		if err := r.runVariant(ctx, v, set, report); err != nil {
			return report, err
		}
	}

	// Point lookups run after both variants are provisioned and measured, so
	// the identical key prefix hits fully populated tables in both cases.
	for _, v := range r.cfg.Variants {
		elapsed, rows, err := r.queries.BatchLookups(ctx, v, set, r.cfg.LookupBatchSize)
		if err != nil {
			return report, fmt.Errorf("variant %s: point lookup phase: %w", v.Name, err)
		}

		report.Add(bench.PhaseResult{
			Variant: v.Name, Phase: bench.PhaseLookups, Elapsed: elapsed, Rows: rows,
		})
	}

	if !r.cfg.KeepTables {
		for _, v := range r.cfg.Variants {
			if err := r.prov.Teardown(ctx, v); err != nil {
				// Measurements are already in hand; a failed drop does not
				// invalidate them.
				r.log.WithError(err).WithField("variant", v.Name).Warn("Failed to drop table")
			}
		}
	}

	report.Complete = true

	r.log.WithField("results", len(report.Results)).Info("Benchmark run complete")

	return report, nil
}

func (r *runner) runVariant(ctx context.Context, v *schema.Variant, set workload.Set, report *bench.Report) error {
	log := r.log.WithField("variant", v.Name)
	log.Info("Measuring schema variant")

	if err := r.prov.Provision(ctx, v); err != nil {
		return fmt.Errorf("variant %s: provisioning phase: %w", v.Name, err)
	}

	elapsed, err := r.ins.InsertAll(ctx, v, set)
	if err != nil {
		return fmt.Errorf("variant %s: insert phase: %w", v.Name, err)
	}

	report.Add(bench.PhaseResult{Variant: v.Name, Phase: bench.PhaseInsert, Elapsed: elapsed})

	elapsed, rows, err := r.queries.ShardFilterAll(ctx, v)
	if err != nil {
		return fmt.Errorf("variant %s: shard filter phase: %w", v.Name, err)
	}

	report.Add(bench.PhaseResult{
		Variant: v.Name, Phase: bench.PhaseShardFilter, Elapsed: elapsed, Rows: rows,
	})

	elapsed, rows, err = r.queries.FullTableScan(ctx, v)
	if err != nil {
		return fmt.Errorf("variant %s: full scan phase: %w", v.Name, err)
	}

	report.Add(bench.PhaseResult{
		Variant: v.Name, Phase: bench.PhaseFullScan, Elapsed: elapsed, Rows: rows,
	})

	bytes, err := r.sizes.IndexSize(ctx, v)
	if err != nil {
		return fmt.Errorf("variant %s: index size phase: %w", v.Name, err)
	}

	report.Add(bench.PhaseResult{Variant: v.Name, Phase: bench.PhaseIndexSize, Bytes: bytes})

	return nil
}
