package bench

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
)

// Phase names, in the order they run per variant.
const (
	PhaseInsert      = "insert"
	PhaseShardFilter = "shard_filter"
	PhaseFullScan    = "full_scan"
	PhaseIndexSize   = "index_size"
	PhaseLookups     = "point_lookups"
)

// PhaseResult is one measured (variant, phase) pair. Timed phases carry
// Elapsed; the size phase carries Bytes. Count phases also record the row
// count they observed so the report is self-checking.
type PhaseResult struct {
	Variant string
	Phase   string
	Elapsed time.Duration
	Bytes   int64
	Rows    int64
}

// Report accumulates phase results across the run. Complete is set only
// after every phase of every variant has been measured, so a failed run can
// never be mistaken for a successful one.
type Report struct {
	Results  []PhaseResult
	Complete bool
}

// Add appends a phase result.
func (r *Report) Add(res PhaseResult) {
	r.Results = append(r.Results, res)
}

// Render formats the report as labeled metric lines for the run log.
func (r *Report) Render() string {
	var sb strings.Builder

	sb.WriteString("schema variant comparison\n")

	if !r.Complete {
		sb.WriteString("!! INCOMPLETE RUN: a phase failed, results below stop at the failure point\n")
	}

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	for _, res := range r.Results {
		switch res.Phase {
		case PhaseIndexSize:
			fmt.Fprintf(w, "%s\t%s\t%s\t\n",
				res.Variant, res.Phase, units.BytesSize(float64(res.Bytes)))
		case PhaseShardFilter, PhaseFullScan, PhaseLookups:
			fmt.Fprintf(w, "%s\t%s\t%d ms\t(%d rows)\n",
				res.Variant, res.Phase, res.Elapsed.Milliseconds(), res.Rows)
		default:
			fmt.Fprintf(w, "%s\t%s\t%d ms\t\n",
				res.Variant, res.Phase, res.Elapsed.Milliseconds())
		}
	}

	w.Flush()

	return sb.String()
}
