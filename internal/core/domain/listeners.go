package domain

// StreamListeners carries optional observability hooks for a single codec
// session. All fields may be nil; the session never depends on them for
// correctness. Logging and timing belong here rather than inside the codec
// itself.
type StreamListeners struct {
	// OnStep is invoked after every engine step with the operation name and
	// the byte counts of that step.
	OnStep func(op string, consumed, produced int)

	// OnError is invoked when an operation is about to return an error.
	OnError func(op string, err error)

	// OnReset is invoked after a successful session reset.
	OnReset func()
}

// PipelineListeners carries optional hooks for file pipeline runs.
type PipelineListeners struct {
	// OnPhase is invoked whenever the pipeline transitions between phases.
	OnPhase func(phase Phase)

	// OnComplete is invoked once with the final byte counts after a
	// successful run.
	OnComplete func(read, written int64)
}
