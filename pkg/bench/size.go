package bench

import (
	"context"

	"github.com/shardmark/shardmark/pkg/pg"
	"github.com/shardmark/shardmark/pkg/schema"
	"github.com/sirupsen/logrus"
)

// SizeReporter queries the database's storage accounting for the cumulative
// size of all indexes on a variant's table, including the primary key index.
// Read-only; the storage-cost counterpart to the timed phases.
type SizeReporter interface {
	IndexSize(ctx context.Context, v *schema.Variant) (int64, error)
}

// NewSizeReporter creates a size reporter backed by the given database.
func NewSizeReporter(log logrus.FieldLogger, db pg.DB) SizeReporter {
	return &sizeReporter{
		log: log.WithField("component", "sizes"),
		db:  db,
	}
}

type sizeReporter struct {
	log logrus.FieldLogger
	db  pg.DB
}

// Ensure interface compliance.
var _ SizeReporter = (*sizeReporter)(nil)

func (s *sizeReporter) IndexSize(ctx context.Context, v *schema.Variant) (int64, error) {
	var bytes int64

	err := s.db.QueryRow(ctx, "SELECT pg_indexes_size($1::regclass)", v.Table).Scan(&bytes)
	if err != nil {
		return 0, &SizeQueryError{Variant: v.Name, Err: err}
	}

	return bytes, nil
}
