package pipeline

import (
	"time"

	"github.com/iamNilotpal/zstream/internal/core/domain"
)

// reporter throttles progress snapshots to the configured minimum interval
// and keeps the Processed sequence monotonically non-decreasing.
type reporter struct {
	total    int64
	interval time.Duration
	fn       ProgressFunc

	start         time.Time
	lastReport    time.Time
	lastProcessed int64
}

func newReporter(total int64, interval time.Duration, fn ProgressFunc) *reporter {
	now := time.Now()
	return &reporter{
		total:    total,
		interval: interval,
		fn:       fn,
		start:    now,
		// Backdate so the first chunk produces a report immediately.
		lastReport: now.Add(-interval),
	}
}

// report emits a snapshot if the interval has elapsed. Returns false when
// the callback requested cancellation.
func (r *reporter) report(processed int64, phase domain.Phase) bool {
	if r.fn == nil {
		return true
	}
	now := time.Now()
	if now.Sub(r.lastReport) < r.interval {
		return true
	}
	return r.emit(processed, phase, now)
}

// final emits the finished snapshot unconditionally.
func (r *reporter) final(processed int64) {
	if r.fn == nil {
		return
	}
	r.emit(processed, domain.PhaseFinished, time.Now())
}

func (r *reporter) emit(processed int64, phase domain.Phase, now time.Time) bool {
	if processed < r.lastProcessed {
		processed = r.lastProcessed
	}

	elapsed := now.Sub(r.lastReport)
	var throughput float64
	if elapsed > 0 {
		throughput = float64(processed-r.lastProcessed) / elapsed.Seconds()
	}

	snap := domain.Progress{
		Processed:  processed,
		Total:      r.total,
		Throughput: throughput,
		Phase:      phase,
		Timestamp:  now,
	}
	if r.total > 0 {
		snap.Percent = float64(processed) / float64(r.total) * 100
		if throughput > 0 && processed < r.total {
			remaining := float64(r.total-processed) / throughput
			snap.ETA = time.Duration(remaining * float64(time.Second))
		}
	}

	r.lastReport = now
	r.lastProcessed = processed
	return r.fn(snap)
}
