package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total           int
	Succeeded       int // Items transformed, written or not.
	Failed          int // Items that failed in any stage.
	Written         int
	BytesIn         int64
	BytesOut        int64
	MarkersInserted int
	MarkersRemoved  int
}

// SizeDelta returns the aggregate byte difference between outputs and
// inputs. Encoding always grows text; decoding shrinks it.
func (s *RunStats) SizeDelta() int64 {
	return s.BytesOut - s.BytesIn
}
