package system

import (
	"context"
)

// RunWithContext executes a shutdown or cleanup operation under the caller's
// context. The operation runs on its own goroutine with an independent
// context, so cancelling the caller signals the operation to stop without
// abandoning it mid-way: the result is always waited for.
//
// Returns nil on success, the operation's error on failure, or the
// operation's eventual result when the caller's context fires first.
func RunWithContext(ctx context.Context, operation func(context.Context) error) error {
	// Fast feedback when the caller was already cancelled.
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Buffered so the goroutine can exit even if nobody reads the result.
	done := make(chan error, 1)

	go func() {
		done <- operation(opCtx)
		close(done)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// Signal the operation to wrap up, then wait for it.
		cancel()
		return <-done
	}
}
