package bench

import (
	"context"
	"time"

	"github.com/shardmark/shardmark/pkg/pg"
	"github.com/shardmark/shardmark/pkg/schema"
	"github.com/shardmark/shardmark/pkg/workload"
	"github.com/sirupsen/logrus"
)

// Queries is the family of read workloads executed against a schema variant.
// The sub-benchmarks are independent and run sequentially so their
// measurements stay uncontended.
type Queries interface {
	// ShardFilterAll issues one count query per shard ID, sequentially, and
	// returns the total elapsed time and the summed row count. The counts
	// partition the table, so the sum equals the inserted row count.
	ShardFilterAll(ctx context.Context, v *schema.Variant) (time.Duration, int64, error)

	// FullTableScan issues one unfiltered count query. Baseline scan cost,
	// expected to be comparable across variants.
	FullTableScan(ctx context.Context, v *schema.Variant) (time.Duration, int64, error)

	// BatchLookups issues one point lookup per tuple for the first limit
	// tuples of the set, filtering by topic and message only. The same fixed
	// prefix is used for both variants. Returns total elapsed time and the
	// number of matching rows.
	BatchLookups(ctx context.Context, v *schema.Variant, set workload.Set, limit int) (time.Duration, int64, error)
}

// NewQueries creates the read benchmarks for the given shard cardinality.
func NewQueries(log logrus.FieldLogger, db pg.DB, numShards int) Queries {
	return &queries{
		log:       log.WithField("component", "queries"),
		db:        db,
		numShards: numShards,
	}
}

type queries struct {
	log       logrus.FieldLogger
	db        pg.DB
	numShards int
}

// Ensure interface compliance.
var _ Queries = (*queries)(nil)

func (q *queries) ShardFilterAll(ctx context.Context, v *schema.Variant) (time.Duration, int64, error) {
	sql := "SELECT count(*) FROM " + v.Table + " WHERE shard = $1"

	var total int64

	start := time.Now()

	for shard := 1; shard <= q.numShards; shard++ {
		var n int64
		if err := q.db.QueryRow(ctx, sql, shard).Scan(&n); err != nil {
			return 0, 0, &QueryError{Variant: v.Name, Phase: PhaseShardFilter, Err: err}
		}

		total += n
	}

	return time.Since(start), total, nil
}

func (q *queries) FullTableScan(ctx context.Context, v *schema.Variant) (time.Duration, int64, error) {
	sql := "SELECT count(*) FROM " + v.Table

	var n int64

	start := time.Now()

	if err := q.db.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, 0, &QueryError{Variant: v.Name, Phase: PhaseFullScan, Err: err}
	}

	return time.Since(start), n, nil
}

func (q *queries) BatchLookups(ctx context.Context, v *schema.Variant, set workload.Set, limit int) (time.Duration, int64, error) {
	if limit > len(set) {
		limit = len(set)
	}

	sql := "SELECT count(*) FROM " + v.Table + " WHERE topic = $1 AND message = $2"

	var matched int64

	q.log.WithFields(logrus.Fields{
		"variant": v.Name,
		"lookups": limit,
	}).Debug("Running point lookups")

	start := time.Now()

	for _, t := range set[:limit] {
		var n int64
		if err := q.db.QueryRow(ctx, sql, t.Topic, t.Message).Scan(&n); err != nil {
			return 0, 0, &QueryError{Variant: v.Name, Phase: PhaseLookups, Err: err}
		}

		matched += n
	}

	return time.Since(start), matched, nil
}
