// Package pipeline orchestrates the streaming codec over whole files:
// chunked reads, codec steps, buffered writes, and throttled progress
// reporting with cooperative cancellation.
package pipeline

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/internal/core/ports"
	"github.com/iamNilotpal/zstream/internal/core/services/codec"
	"github.com/iamNilotpal/zstream/pkg/errors"
	"github.com/iamNilotpal/zstream/pkg/system"
)

const (
	defaultChunkSize      = 64 * 1024
	defaultReportInterval = 100 * time.Millisecond
	defaultWriteBuffer    = 256 * 1024
)

// ProgressFunc receives throttled progress snapshots. Returning false
// cancels the run after the current chunk completes.
type ProgressFunc func(domain.Progress) bool

// Options tunes a pipeline. The zero value takes defaults.
type Options struct {
	// ChunkSize is the read granularity in bytes. Default 64KB.
	ChunkSize int

	// ReportInterval is the minimum gap between progress reports.
	// Default 100ms.
	ReportInterval time.Duration

	// Force overwrites existing destination files.
	Force bool

	// Listeners carries optional phase and completion hooks.
	Listeners domain.PipelineListeners
}

// Pipeline runs file-to-file compression and decompression. The pipeline
// itself is safe to share; every run builds its own codec session, which is
// owned exclusively by the goroutine driving that run.
type Pipeline struct {
	engine ports.CodecEngine
	fs     ports.FileSystem
	opts   Options

	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

// New creates a pipeline over the given engine and file system.
func New(engine ports.CodecEngine, fs ports.FileSystem, opts Options) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = defaultReportInterval
	}
	return &Pipeline{
		engine: engine,
		fs:     fs,
		opts:   opts,
		closed: make(chan struct{}),
	}
}

// CompressFile compresses src into dst under params, reporting progress
// through onProgress when non-nil. Blocks until the run completes, fails,
// or is cancelled via the context or the callback.
func (p *Pipeline) CompressFile(ctx context.Context, src, dst string, params domain.CompressionParams, onProgress ProgressFunc) error {
	comp := codec.NewCompressor(p.engine)
	if err := comp.Initialize(params); err != nil {
		return err
	}
	defer comp.Close()

	step := func(data []byte, flush domain.FlushMode) ([]byte, error) {
		return comp.Compress(data, flush)
	}
	return p.run(ctx, "compress-file", src, dst, domain.PhaseCompressing, step, onProgress)
}

// DecompressFile decompresses src into dst. Only WindowBits in params is
// meaningful.
func (p *Pipeline) DecompressFile(ctx context.Context, src, dst string, params domain.CompressionParams, onProgress ProgressFunc) error {
	dec := codec.NewDecompressor(p.engine)
	if err := dec.Initialize(params); err != nil {
		return err
	}
	defer dec.Close()

	step := func(data []byte, flush domain.FlushMode) ([]byte, error) {
		return dec.Decompress(data, flush)
	}
	return p.run(ctx, "decompress-file", src, dst, domain.PhaseDecompressing, step, onProgress)
}

// CompressFileAsync runs CompressFile on a background goroutine. Progress
// snapshots arrive on the returned progress channel; the error channel
// receives exactly one value when the run ends. The background goroutine
// exclusively owns its codec session.
func (p *Pipeline) CompressFileAsync(ctx context.Context, src, dst string, params domain.CompressionParams) (<-chan domain.Progress, <-chan error) {
	return p.async(ctx, func(ctx context.Context, onProgress ProgressFunc) error {
		return p.CompressFile(ctx, src, dst, params, onProgress)
	})
}

// DecompressFileAsync runs DecompressFile on a background goroutine.
func (p *Pipeline) DecompressFileAsync(ctx context.Context, src, dst string, params domain.CompressionParams) (<-chan domain.Progress, <-chan error) {
	return p.async(ctx, func(ctx context.Context, onProgress ProgressFunc) error {
		return p.DecompressFile(ctx, src, dst, params, onProgress)
	})
}

func (p *Pipeline) async(ctx context.Context, run func(context.Context, ProgressFunc) error) (<-chan domain.Progress, <-chan error) {
	progressCh := make(chan domain.Progress, 16)
	errCh := make(chan error, 1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(errCh)
		defer close(progressCh)

		onProgress := func(snap domain.Progress) bool {
			select {
			case progressCh <- snap:
			case <-ctx.Done():
				return false
			case <-p.closed:
				return false
			default:
				// Never block the run on a slow consumer; drop the snapshot.
			}
			return true
		}
		errCh <- run(ctx, onProgress)
	}()
	return progressCh, errCh
}

// Close waits for in-flight async runs to drain, bounded by ctx.
func (p *Pipeline) Close(ctx context.Context) error {
	p.once.Do(func() { close(p.closed) })
	return system.RunWithContext(ctx, func(context.Context) error {
		p.wg.Wait()
		return nil
	})
}

// run is the shared chunk loop. Cancellation, via context or a callback
// returning false, takes effect after the current chunk: the chunk's output
// is fully written before the run stops, so the destination never holds a
// half-written chunk.
func (p *Pipeline) run(
	ctx context.Context,
	op, src, dst string,
	workPhase domain.Phase,
	step func([]byte, domain.FlushMode) ([]byte, error),
	onProgress ProgressFunc,
) error {
	total, err := p.fs.Size(src)
	if err != nil {
		return errors.NewStreamError(op, err.Error())
	}
	in, err := p.fs.Open(src)
	if err != nil {
		return errors.NewStreamError(op, err.Error())
	}
	defer in.Close()

	out, err := p.fs.Create(dst, p.opts.Force)
	if err != nil {
		return errors.NewStreamError(op, err.Error())
	}

	cleanup := func(runErr error) error {
		out.Close()
		if runErr != nil {
			p.fs.Remove(dst)
		}
		return runErr
	}

	w := bufio.NewWriterSize(out, defaultWriteBuffer)
	rep := newReporter(total, p.opts.ReportInterval, onProgress)
	phase := func(ph domain.Phase) {
		if p.opts.Listeners.OnPhase != nil {
			p.opts.Listeners.OnPhase(ph)
		}
	}

	chunk := make([]byte, p.opts.ChunkSize)
	var read, written int64
	for {
		if err := ctx.Err(); err != nil {
			return cleanup(errors.NewCancelledError(op))
		}

		phase(domain.PhaseReading)
		n, rerr := io.ReadFull(in, chunk)
		read += int64(n)
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			return cleanup(errors.NewStreamError(op, rerr.Error()))
		}

		last := n < len(chunk)
		flush := domain.FlushNone
		if last {
			flush = domain.FlushFinish
		}

		phase(workPhase)
		produced, serr := step(chunk[:n], flush)
		if serr != nil {
			return cleanup(serr)
		}

		phase(domain.PhaseWriting)
		if _, werr := w.Write(produced); werr != nil {
			return cleanup(errors.NewStreamError(op, werr.Error()))
		}
		written += int64(len(produced))

		if !rep.report(read, workPhase) {
			// The chunk above was fully written first; flush what we have
			// and stop cleanly.
			w.Flush()
			return cleanup(errors.NewCancelledError(op))
		}

		if last {
			break
		}
	}

	phase(domain.PhaseFlushing)
	if err := w.Flush(); err != nil {
		return cleanup(errors.NewStreamError(op, err.Error()))
	}

	phase(domain.PhaseFinished)
	rep.final(read)
	if p.opts.Listeners.OnComplete != nil {
		p.opts.Listeners.OnComplete(read, written)
	}
	return cleanup(nil)
}
