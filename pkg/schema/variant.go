// Package schema defines the competing table designs and provisions them in
// the target database.
package schema

import (
	"fmt"
	"strings"

	"github.com/shardmark/shardmark/pkg/workload"
)

// columnTypes maps the fixed message columns to their SQL types. Both
// variants store the same three columns; only key order and indexing differ.
var columnTypes = map[string]string{
	"topic":   "text NOT NULL",
	"shard":   "integer NOT NULL",
	"message": "bigint NOT NULL",
}

// Index describes a secondary index on a variant's table.
type Index struct {
	Name    string
	Columns []string
}

// Variant is a named schema design under comparison: a table, its column
// order, its primary key, and any secondary indexes. Variants are static
// configuration and are not mutated at runtime.
type Variant struct {
	Name       string
	Table      string
	Columns    []string
	PrimaryKey []string
	Indexes    []Index
}

// VariantA keys the table by (topic, shard, message) with no secondary
// index: shard-scoped access rides the primary key prefix.
func VariantA() *Variant {
	return &Variant{
		Name:       "variant_a",
		Table:      "messages_a",
		Columns:    []string{"topic", "shard", "message"},
		PrimaryKey: []string{"topic", "shard", "message"},
	}
}

// VariantB keys the table by (topic, message) and serves shard-scoped access
// through a secondary index on shard.
func VariantB() *Variant {
	return &Variant{
		Name:       "variant_b",
		Table:      "messages_b",
		Columns:    []string{"topic", "message", "shard"},
		PrimaryKey: []string{"topic", "message"},
		Indexes: []Index{
			{Name: "messages_b_shard_idx", Columns: []string{"shard"}},
		},
	}
}

// DropStatement returns the idempotent drop for the variant's table.
func (v *Variant) DropStatement() string {
	return "DROP TABLE IF EXISTS " + v.Table
}

// CreateStatements returns the table-creation statement followed by the
// variant's index-creation statements, in execution order.
func (v *Variant) CreateStatements() []string {
	cols := make([]string, 0, len(v.Columns)+1)
	for _, c := range v.Columns {
		cols = append(cols, c+" "+columnTypes[c])
	}

	cols = append(cols, "PRIMARY KEY ("+strings.Join(v.PrimaryKey, ", ")+")")

	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (%s)", v.Table, strings.Join(cols, ", ")),
	}

	for _, idx := range v.Indexes {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX %s ON %s (%s)",
			idx.Name, v.Table, strings.Join(idx.Columns, ", "),
		))
	}

	return stmts
}

// InsertSQL returns the parameterized insert statement in the variant's
// column order.
func (v *Variant) InsertSQL() string {
	params := make([]string, len(v.Columns))
	for i := range v.Columns {
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		v.Table, strings.Join(v.Columns, ", "), strings.Join(params, ", "),
	)
}

// InsertArgs maps a tuple to argument values in the variant's column order.
func (v *Variant) InsertArgs(t workload.Tuple) []any {
	args := make([]any, len(v.Columns))

	for i, c := range v.Columns {
		switch c {
		case "topic":
			args[i] = t.Topic
		case "shard":
			args[i] = t.Shard
		case "message":
			args[i] = t.Message
		}
	}

	return args
}
