package domain

import "time"

// Phase names the pipeline stage a progress snapshot was taken in.
type Phase string

const (
	PhaseReading       Phase = "reading"
	PhaseCompressing   Phase = "compressing"
	PhaseDecompressing Phase = "decompressing"
	PhaseWriting       Phase = "writing"
	PhaseFlushing      Phase = "flushing"
	PhaseFinished      Phase = "finished"
)

// Progress is an immutable snapshot of a running file operation. A new
// snapshot is produced per report interval; snapshots are delivered in
// monotonically non-decreasing Processed order.
type Progress struct {
	// Processed is the number of source bytes consumed so far.
	Processed int64 `json:"processed"`

	// Total is the source size in bytes, or 0 when unknown.
	Total int64 `json:"total"`

	// Percent is Processed/Total*100, or 0 when Total is unknown.
	Percent float64 `json:"percent"`

	// Throughput is the instantaneous rate in bytes per second, measured
	// since the previous report.
	Throughput float64 `json:"throughput"`

	// ETA estimates the remaining duration at the current throughput.
	// Zero when Total or Throughput is unknown.
	ETA time.Duration `json:"eta"`

	// Phase is the pipeline stage at snapshot time.
	Phase Phase `json:"phase"`

	// Timestamp records when the snapshot was taken.
	Timestamp time.Time `json:"timestamp"`
}
