// Package bench contains the timed insert and query workloads executed
// against each schema variant, and the result model they produce.
package bench

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shardmark/shardmark/pkg/pg"
	"github.com/shardmark/shardmark/pkg/schema"
	"github.com/shardmark/shardmark/pkg/workload"
	"github.com/sirupsen/logrus"
)

// Inserter replays a workload set as insert operations against a schema
// variant.
type Inserter interface {
	// InsertAll submits every tuple as one batched execution and returns the
	// wall-clock time from first submission to last confirmation. The
	// variants are compared on storage-engine insert cost, so per-row round
	// trips must not dominate the measurement.
	InsertAll(ctx context.Context, v *schema.Variant, set workload.Set) (time.Duration, error)
}

// NewInserter creates an inserter backed by the given database.
func NewInserter(log logrus.FieldLogger, db pg.DB) Inserter {
	return &inserter{
		log: log.WithField("component", "inserter"),
		db:  db,
	}
}

type inserter struct {
	log logrus.FieldLogger
	db  pg.DB
}

// Ensure interface compliance.
var _ Inserter = (*inserter)(nil)

func (i *inserter) InsertAll(ctx context.Context, v *schema.Variant, set workload.Set) (time.Duration, error) {
	batch := &pgx.Batch{}
	sql := v.InsertSQL()

	for _, t := range set {
		batch.Queue(sql, v.InsertArgs(t)...)
	}

	i.log.WithFields(logrus.Fields{
		"variant": v.Name,
		"rows":    len(set),
	}).Info("Submitting insert batch")

	start := time.Now()
	results := i.db.SendBatch(ctx, batch)

	for row := range set {
		if _, err := results.Exec(); err != nil {
			results.Close()

			return 0, &InsertError{Variant: v.Name, Row: row, Err: err}
		}
	}

	if err := results.Close(); err != nil {
		return 0, &InsertError{Variant: v.Name, Row: -1, Err: err}
	}

	return time.Since(start), nil
}
