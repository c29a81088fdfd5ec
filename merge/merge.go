// Package merge groups decoded traces by logical channel identity and
// concatenates blocks that are contiguous in time.
package merge

import (
	"slices"
	"strings"
	"time"

	"github.com/fairfield-nodal/rg16/errs"
	"github.com/fairfield-nodal/rg16/internal/identity"
	"github.com/fairfield-nodal/rg16/trace"
)

const epsilonSeconds = 1e-6

type row struct {
	// channelID is a hash of id, carried only as a fast pre-sort key — it is
	// never used to decide grouping, so a hash collision between two
	// distinct channel IDs can at worst cost sort locality, not correctness.
	channelID uint64
	id        string
	start     float64
	end       float64
	traceIdx  int
}

// Stream sorts traces by (channel identity, start time) and concatenates
// adjacent runs that belong to the same channel and abut in time to within
// one sample interval. All traces must share a single sampling rate;
// mixed-rate input fails with errs.ErrHeterogeneousStreamForMerge.
func Stream(traces []trace.Trace) ([]trace.Trace, error) {
	if len(traces) <= 1 {
		return slices.Clone(traces), nil
	}

	samplingRate := traces[0].Stats.SamplingRate
	for _, t := range traces {
		if t.Stats.SamplingRate != samplingRate {
			return nil, errs.ErrHeterogeneousStreamForMerge
		}
	}

	rows := make([]row, len(traces))
	for i, t := range traces {
		id := t.Stats.ID()
		rows[i] = row{
			channelID: identity.Hash(id),
			id:        id,
			start:     float64(t.Stats.StartTime.UnixNano()) / 1e9,
			end:       float64(t.Stats.EndTime.UnixNano()) / 1e9,
			traceIdx:  i,
		}
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		if a.channelID != b.channelID {
			if a.channelID < b.channelID {
				return -1
			}
			return 1
		}
		if a.id != b.id {
			return strings.Compare(a.id, b.id)
		}
		switch {
		case a.start < b.start:
			return -1
		case a.start > b.start:
			return 1
		default:
			return 0
		}
	})

	delta := 1/samplingRate + epsilonSeconds
	groups := groupRows(rows, delta)

	merged := make([]trace.Trace, 0, len(groups))
	for _, g := range groups {
		merged = append(merged, mergeGroup(traces, g, samplingRate))
	}

	return merged, nil
}

// groupRows partitions rows, already sorted by (channelID, id, start), into
// contiguous per-channel runs. Grouping is the equivalence relation the
// format fixes: two adjacent rows belong to the same channel iff their
// canonical id strings are equal, never their hash — a hash collision
// between two distinct ids must not merge unrelated sample data.
func groupRows(rows []row, delta float64) [][]row {
	sameID := make([]bool, len(rows))
	contiguous := make([]bool, len(rows))
	for i := range rows {
		sameID[i] = i == 0 || rows[i].id == rows[i-1].id
		contiguous[i] = i < len(rows)-1 && absFloat(rows[i+1].start-rows[i].end) <= delta
	}

	var groups [][]row
	for i, r := range rows {
		startsNewGroup := i == 0 || !(sameID[i] && contiguous[i-1])
		if startsNewGroup {
			groups = append(groups, []row{r})
		} else {
			groups[len(groups)-1] = append(groups[len(groups)-1], r)
		}
	}

	return groups
}

func mergeGroup(traces []trace.Trace, g []row, samplingRate float64) trace.Trace {
	if len(g) == 1 {
		return traces[g[0].traceIdx]
	}

	total := 0
	for _, r := range g {
		total += traces[r.traceIdx].Stats.Npts
	}

	data := make([]float32, 0, total)
	for _, r := range g {
		data = append(data, traces[r.traceIdx].Data...)
	}

	stats := traces[g[0].traceIdx].Stats
	stats.Npts = len(data)
	stats.EndTime = stats.StartTime.Add(durationFromSeconds(float64(stats.Npts-1) / samplingRate))

	return trace.Trace{Data: data, Stats: stats}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func durationFromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
