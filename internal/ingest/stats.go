package ingest

import "sync/atomic"

// counters tracks lifetime ingestion totals for the pipeline.
type counters struct {
	attempted atomic.Int64
	stored    atomic.Int64
}

func (c *counters) record(attempted, stored int) {
	c.attempted.Add(int64(attempted))
	c.stored.Add(int64(stored))
}

// SuccessRate returns the fraction of segments stored out of all segments
// attempted over the pipeline's lifetime. Returns 1 before any ingestion.
func (p *Pipeline) SuccessRate() float64 {
	attempted := p.counters.attempted.Load()
	if attempted == 0 {
		return 1
	}
	return float64(p.counters.stored.Load()) / float64(attempted)
}
