package schema

import (
	"context"
	"fmt"

	"github.com/shardmark/shardmark/pkg/pg"
	"github.com/sirupsen/logrus"
)

// SchemaError reports a DDL failure or connectivity loss during
// provisioning. Connectivity failures are fatal to the run: a benchmark with
// a broken connection produces meaningless numbers, not a value to recover.
type SchemaError struct {
	Variant string
	Stmt    string
	Err     error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("provisioning %s: %q: %v", e.Variant, e.Stmt, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Provisioner creates and drops the competing table definitions.
type Provisioner interface {
	// Provision drops any pre-existing table of the same name, then creates
	// the variant's table and indexes. Idempotent.
	Provision(ctx context.Context, v *Variant) error

	// Teardown drops the variant's table if it exists.
	Teardown(ctx context.Context, v *Variant) error
}

// NewProvisioner creates a provisioner backed by the given database.
func NewProvisioner(log logrus.FieldLogger, db pg.DB) Provisioner {
	return &provisioner{
		log: log.WithField("component", "provisioner"),
		db:  db,
	}
}

type provisioner struct {
	log logrus.FieldLogger
	db  pg.DB
}

// Ensure interface compliance.
var _ Provisioner = (*provisioner)(nil)

func (p *provisioner) Provision(ctx context.Context, v *Variant) error {
	stmts := append([]string{v.DropStatement()}, v.CreateStatements()...)

	for _, stmt := range stmts {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return &SchemaError{Variant: v.Name, Stmt: stmt, Err: err}
		}
	}

	p.log.WithFields(logrus.Fields{
		"variant": v.Name,
		"table":   v.Table,
	}).Info("Schema provisioned")

	return nil
}

func (p *provisioner) Teardown(ctx context.Context, v *Variant) error {
	stmt := v.DropStatement()
	if _, err := p.db.Exec(ctx, stmt); err != nil {
		return &SchemaError{Variant: v.Name, Stmt: stmt, Err: err}
	}

	p.log.WithField("variant", v.Name).Debug("Schema dropped")

	return nil
}
