package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shardmark/shardmark/pkg/bench"
	"github.com/shardmark/shardmark/pkg/schema"
	"github.com/shardmark/shardmark/pkg/workload"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

// harness wires fake components that append to a shared call log, so phase
// ordering is observable.
type harness struct {
	calls []string

	genErr      error
	provisionErr map[string]error
	insertErr   map[string]error
	shardErr    map[string]error
	scanErr     map[string]error
	sizeErr     map[string]error
	lookupErr   map[string]error
	teardownErr error

	set workload.Set
}

func newHarness() *harness {
	return &harness{
		set: workload.Set{
			{Topic: "topic-1", Shard: 1, Message: 10},
			{Topic: "topic-1", Shard: 2, Message: 20},
		},
	}
}

func (h *harness) record(format string, args ...any) {
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

func (h *harness) Generate() (workload.Set, error) {
	h.record("generate")

	return h.set, h.genErr
}

func (h *harness) Provision(_ context.Context, v *schema.Variant) error {
	h.record("provision:%s", v.Name)

	return h.provisionErr[v.Name]
}

func (h *harness) Teardown(_ context.Context, v *schema.Variant) error {
	h.record("teardown:%s", v.Name)

	return h.teardownErr
}

func (h *harness) InsertAll(_ context.Context, v *schema.Variant, set workload.Set) (time.Duration, error) {
	h.record("insert:%s", v.Name)

	if err := h.insertErr[v.Name]; err != nil {
		return 0, err
	}

	return 10 * time.Millisecond, nil
}

func (h *harness) ShardFilterAll(_ context.Context, v *schema.Variant) (time.Duration, int64, error) {
	h.record("shard_filter:%s", v.Name)

	if err := h.shardErr[v.Name]; err != nil {
		return 0, 0, err
	}

	return 5 * time.Millisecond, int64(len(h.set)), nil
}

func (h *harness) FullTableScan(_ context.Context, v *schema.Variant) (time.Duration, int64, error) {
	h.record("full_scan:%s", v.Name)

	if err := h.scanErr[v.Name]; err != nil {
		return 0, 0, err
	}

	return 3 * time.Millisecond, int64(len(h.set)), nil
}

func (h *harness) BatchLookups(_ context.Context, v *schema.Variant, set workload.Set, limit int) (time.Duration, int64, error) {
	h.record("lookups:%s:limit=%d", v.Name, limit)

	if err := h.lookupErr[v.Name]; err != nil {
		return 0, 0, err
	}

	return 2 * time.Millisecond, int64(limit), nil
}

func (h *harness) IndexSize(_ context.Context, v *schema.Variant) (int64, error) {
	h.record("index_size:%s", v.Name)

	if err := h.sizeErr[v.Name]; err != nil {
		return 0, err
	}

	return 4096, nil
}

func newTestRunner(h *harness, cfg *Config) Runner {
	if cfg.Variants == nil {
		cfg.Variants = []*schema.Variant{schema.VariantA(), schema.VariantB()}
	}

	if cfg.LookupBatchSize == 0 {
		cfg.LookupBatchSize = 2
	}

	return NewRunner(testLogger(), cfg, h, h, h, h, h)
}

func TestRun_PhaseOrder(t *testing.T) {
	h := newHarness()
	run := newTestRunner(h, &Config{})

	report, err := run.Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Complete)

	assert.Equal(t, []string{
		"generate",
		"provision:variant_a",
		"insert:variant_a",
		"shard_filter:variant_a",
		"full_scan:variant_a",
		"index_size:variant_a",
		"provision:variant_b",
		"insert:variant_b",
		"shard_filter:variant_b",
		"full_scan:variant_b",
		"index_size:variant_b",
		"lookups:variant_a:limit=2",
		"lookups:variant_b:limit=2",
		"teardown:variant_a",
		"teardown:variant_b",
	}, h.calls)

	// Four results per variant plus one lookup result each.
	require.Len(t, report.Results, 10)
	assert.Equal(t, bench.PhaseInsert, report.Results[0].Phase)
	assert.Equal(t, "variant_a", report.Results[0].Variant)
	assert.Equal(t, bench.PhaseLookups, report.Results[9].Phase)
	assert.Equal(t, "variant_b", report.Results[9].Variant)
}

func TestRun_GenerationFailureAbortsEverything(t *testing.T) {
	h := newHarness()
	h.genErr = &workload.GenerationError{NumMessages: 10, MsgIDRange: 5}
	run := newTestRunner(h, &Config{})

	report, err := run.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generating workload")

	var genErr *workload.GenerationError
	assert.ErrorAs(t, err, &genErr)

	assert.False(t, report.Complete)
	assert.Empty(t, report.Results)
	assert.Equal(t, []string{"generate"}, h.calls)
}

func TestRun_InsertFailureSkipsReadPhases(t *testing.T) {
	cause := errors.New("syntax error at or near")
	h := newHarness()
	h.insertErr = map[string]error{"variant_a": cause}
	run := newTestRunner(h, &Config{})

	report, err := run.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variant variant_a")
	assert.Contains(t, err.Error(), "insert phase")
	assert.ErrorIs(t, err, cause)

	// No read phase runs for the failed variant, and variant B is never
	// reached: a harness that continues past a failed measurement would
	// produce untrustworthy comparisons.
	assert.Equal(t, []string{
		"generate",
		"provision:variant_a",
		"insert:variant_a",
	}, h.calls)

	assert.False(t, report.Complete)
	assert.Empty(t, report.Results)
}

func TestRun_SecondVariantFailureKeepsFirstResults(t *testing.T) {
	cause := errors.New("connection reset by peer")
	h := newHarness()
	h.shardErr = map[string]error{"variant_b": cause}
	run := newTestRunner(h, &Config{})

	report, err := run.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variant variant_b")
	assert.Contains(t, err.Error(), "shard filter phase")

	assert.False(t, report.Complete)

	// Variant A's four phases plus variant B's insert made it in.
	require.Len(t, report.Results, 5)

	for _, res := range report.Results[:4] {
		assert.Equal(t, "variant_a", res.Variant)
	}
}

func TestRun_LookupFailure(t *testing.T) {
	cause := errors.New("too many connections")
	h := newHarness()
	h.lookupErr = map[string]error{"variant_b": cause}
	run := newTestRunner(h, &Config{})

	report, err := run.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "point lookup phase")

	assert.False(t, report.Complete)
	require.Len(t, report.Results, 9)
}

func TestRun_KeepTablesSkipsTeardown(t *testing.T) {
	h := newHarness()
	run := newTestRunner(h, &Config{KeepTables: true})

	_, err := run.Run(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, h.calls, "teardown:variant_a")
	assert.NotContains(t, h.calls, "teardown:variant_b")
}

func TestRun_TeardownFailureDoesNotFailRun(t *testing.T) {
	h := newHarness()
	h.teardownErr = errors.New("table is locked")
	run := newTestRunner(h, &Config{})

	report, err := run.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Complete)
}
