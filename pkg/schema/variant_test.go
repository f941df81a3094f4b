package schema

import (
	"testing"

	"github.com/shardmark/shardmark/pkg/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantA_Statements(t *testing.T) {
	v := VariantA()

	assert.Equal(t, "DROP TABLE IF EXISTS messages_a", v.DropStatement())
	assert.Equal(t, []string{
		"CREATE TABLE messages_a (topic text NOT NULL, shard integer NOT NULL, " +
			"message bigint NOT NULL, PRIMARY KEY (topic, shard, message))",
	}, v.CreateStatements())
	assert.Equal(t,
		"INSERT INTO messages_a (topic, shard, message) VALUES ($1, $2, $3)",
		v.InsertSQL())
}

func TestVariantB_Statements(t *testing.T) {
	v := VariantB()

	assert.Equal(t, "DROP TABLE IF EXISTS messages_b", v.DropStatement())
	assert.Equal(t, []string{
		"CREATE TABLE messages_b (topic text NOT NULL, message bigint NOT NULL, " +
			"shard integer NOT NULL, PRIMARY KEY (topic, message))",
		"CREATE INDEX messages_b_shard_idx ON messages_b (shard)",
	}, v.CreateStatements())
	assert.Equal(t,
		"INSERT INTO messages_b (topic, message, shard) VALUES ($1, $2, $3)",
		v.InsertSQL())
}

func TestVariant_InsertArgs(t *testing.T) {
	tuple := workload.Tuple{Topic: "topic-7", Shard: 3, Message: 42}

	tests := []struct {
		name    string
		variant *Variant
		want    []any
	}{
		{
			name:    "variant A follows (topic, shard, message)",
			variant: VariantA(),
			want:    []any{"topic-7", 3, 42},
		},
		{
			name:    "variant B follows (topic, message, shard)",
			variant: VariantB(),
			want:    []any{"topic-7", 42, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.variant.InsertArgs(tuple))
		})
	}
}

func TestVariants_DistinctNames(t *testing.T) {
	a, b := VariantA(), VariantB()

	assert.NotEqual(t, a.Name, b.Name)
	assert.NotEqual(t, a.Table, b.Table)
}
