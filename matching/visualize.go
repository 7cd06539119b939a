package matching

import (
	"io"
	"strings"
	"text/tabwriter"

	"github.com/wherewhere/wrapgen/typedesc"
)

// visualizer renders the matching outcome in a tabular format like below:
//
//	ok:   Read(p []byte) (int) -> Read
//	FAIL: ReedBytes()          -> ?    // missing; did you mean ReadBytes
type visualizer struct {
	rows []visRow
	fail bool
}

type visRow struct {
	ok     bool
	left   string
	right  string
	reason string
}

func newVisualizer() *visualizer {
	return &visualizer{}
}

// IsValid reports whether every candidate matched.
func (vis visualizer) IsValid() bool { return !vis.fail }

// Match records a matched candidate.
func (vis *visualizer) Match(w, t typedesc.Member, reason string) {
	vis.rows = append(vis.rows, visRow{ok: true, left: w.DebugName(), right: t.Name, reason: reason})
}

// Fail records a candidate without any matching target member.
func (vis *visualizer) Fail(w typedesc.Member, reason string) {
	vis.rows = append(vis.rows, visRow{left: w.DebugName(), right: "?", reason: reason})
	vis.fail = true
}

// String returns the string representation of the visualizer.
func (vis visualizer) String() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 1, 1, 1, ' ', 0)

	for i, row := range vis.rows {
		if i != 0 {
			io.WriteString(tw, "\n")
		}

		if row.ok {
			io.WriteString(tw, "ok:\t")
		} else {
			io.WriteString(tw, "FAIL:\t")
		}

		io.WriteString(tw, row.left)
		io.WriteString(tw, "\t->\t")
		io.WriteString(tw, row.right)

		if row.reason != "" {
			io.WriteString(tw, "\t// ")
			io.WriteString(tw, row.reason)
		}
	}

	tw.Flush()
	return b.String()
}
