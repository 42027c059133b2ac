package batch

// MaxFailedIDs caps the failed product ids a Summary keeps.
const MaxFailedIDs = 20

// Summary aggregates the outcomes of a batch run.
type Summary struct {
	Succeeded int
	Failed    int
	Total     int
	Cancelled bool
	// FailedIDs samples the first failures, at most MaxFailedIDs.
	FailedIDs []string
}

// Summarize counts outcomes. Total is the number of products the run was asked to index,
// which exceeds Succeeded+Failed when the run stopped early.
func Summarize(results []Result, total int) Summary {
	s := Summary{Total: total}
	for _, r := range results {
		if r.OK() {
			s.Succeeded++
			continue
		}
		s.Failed++
		if len(s.FailedIDs) < MaxFailedIDs {
			s.FailedIDs = append(s.FailedIDs, r.ProductID())
		}
	}
	return s
}

// Processed returns the number of products that ran.
func (s Summary) Processed() int { return s.Succeeded + s.Failed }

// Add merges another summary into s.
func (s Summary) Add(o Summary) Summary {
	out := Summary{
		Succeeded: s.Succeeded + o.Succeeded,
		Failed:    s.Failed + o.Failed,
		Total:     s.Total + o.Total,
		Cancelled: s.Cancelled || o.Cancelled,
	}
	out.FailedIDs = append(out.FailedIDs, s.FailedIDs...)
	for _, id := range o.FailedIDs {
		if len(out.FailedIDs) == MaxFailedIDs {
			break
		}
		out.FailedIDs = append(out.FailedIDs, id)
	}
	return out
}
