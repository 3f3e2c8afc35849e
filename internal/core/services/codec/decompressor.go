package codec

import (
	"bytes"

	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/internal/core/ports"
	"github.com/iamNilotpal/zstream/pkg/errors"
)

// Decompressor is the streaming decompression session, the inflate mirror of
// Compressor. Input the engine could not consume is buffered internally and
// retried on the next call, which is what lets a caller hit NeedDictionary,
// supply the dictionary, and resume from the exact point of failure.
type Decompressor struct {
	engine    ports.CodecEngine
	session   ports.InflateSession
	listeners domain.StreamListeners

	pending  bytes.Buffer
	totalIn  int64
	totalOut int64
	finished bool
	broken   bool
}

// NewDecompressor creates an uninitialized decompressor bound to the engine.
func NewDecompressor(engine ports.CodecEngine) *Decompressor {
	return &Decompressor{engine: engine}
}

// NewDecompressorWithListeners creates an uninitialized decompressor that
// reports step and error events through listeners.
func NewDecompressorWithListeners(engine ports.CodecEngine, listeners domain.StreamListeners) *Decompressor {
	return &Decompressor{engine: engine, listeners: listeners}
}

// Initialize binds an inflate session. Only WindowBits in params is
// meaningful on the decode side.
func (d *Decompressor) Initialize(params domain.CompressionParams) error {
	session, err := d.engine.NewInflate(params)
	if err != nil {
		return d.fail("initialize", errors.NewStreamError("initialize", err.Error()))
	}
	if d.session != nil {
		d.session.End()
	}
	d.session = session
	d.pending.Reset()
	d.totalIn = 0
	d.totalOut = 0
	d.finished = false
	d.broken = false
	return nil
}

func (d *Decompressor) ready(op string) error {
	if d.session == nil {
		return d.fail(op, errors.NewStreamError(op, "decompressor not initialized"))
	}
	if d.broken {
		return d.fail(op, errors.NewStreamError(op, "session requires reset"))
	}
	return nil
}

func (d *Decompressor) fail(op string, err *errors.CodecError) error {
	if d.listeners.OnError != nil {
		d.listeners.OnError(op, err)
	}
	return err
}

// Decompress feeds data to the engine under the given flush mode and
// returns every byte produced. If the stream requires a preset dictionary
// the call fails with a need-dictionary error; the unconsumed input stays
// buffered, so supplying the dictionary via SetDictionary or
// DecompressWithDictionary resumes where the failure occurred.
func (d *Decompressor) Decompress(data []byte, flush domain.FlushMode) ([]byte, error) {
	return d.decompress(data, flush, nil)
}

// DecompressWithDictionary behaves like Decompress but installs dict and
// retries once if the engine signals need-dictionary mid-stream.
func (d *Decompressor) DecompressWithDictionary(data []byte, flush domain.FlushMode, dict []byte) ([]byte, error) {
	return d.decompress(data, flush, dict)
}

func (d *Decompressor) decompress(data []byte, flush domain.FlushMode, dict []byte) ([]byte, error) {
	const op = "decompress"
	if err := d.ready(op); err != nil {
		return nil, err
	}
	if d.finished {
		if len(data) == 0 {
			// Draining an already-ended stream is a no-op, which keeps
			// chunk-aligned callers from tripping over their final flush.
			return []byte{}, nil
		}
		return nil, d.fail(op, errors.NewStreamError(op, "stream already finished"))
	}

	d.pending.Write(data)

	out := outBuffers.Get()
	defer outBuffers.Put(out)
	chunk := stepChunks.Get()
	defer stepChunks.Put(chunk)

	// Permit one dictionary install per need-dictionary event, so malformed
	// input that keeps signalling need-dictionary cannot loop forever.
	dictInstalled := false

	for {
		in := d.pending.Bytes()
		consumed, produced, status := d.session.Step(in, chunk, flush)
		if d.listeners.OnStep != nil {
			d.listeners.OnStep(op, consumed, produced)
		}
		d.pending.Next(consumed)
		d.totalIn += int64(consumed)
		d.totalOut += int64(produced)
		out.Write(chunk[:produced])

		switch status {
		case domain.StatusStreamEnd:
			d.finished = true
			return cloneBytes(out), nil

		case domain.StatusNeedDict:
			if dict != nil && !dictInstalled {
				if st := d.session.SetDictionary(dict); st != domain.StatusOK {
					d.broken = true
					return nil, d.fail(op, errors.FromStatus(op, st, d.session.Message(), errors.ErrorDecompression))
				}
				dictInstalled = true
				continue
			}
			// Pending input is kept; the caller can install a dictionary
			// and call again.
			return nil, d.fail(op, errors.NewNeedDictionaryError(op))

		case domain.StatusBufError:
			if produced > 0 {
				// Output-side stall near a stream boundary; keep draining.
				continue
			}
			if flush == domain.FlushFinish {
				// Finish cannot make progress: the input ended mid-stream.
				d.broken = true
				return nil, d.fail(op, errors.FromStatus(op, status, "truncated stream", errors.ErrorDecompression))
			}
			// No progress possible without more input.
			return cloneBytes(out), nil

		case domain.StatusOK:
			if consumed > 0 {
				// A fresh event may legitimately need another install.
				dictInstalled = false
			}
			// Finish must reach stream end; keep stepping until the engine
			// signals it, or signals no-progress above.
			if d.pending.Len() > 0 || produced == len(chunk) || flush == domain.FlushFinish {
				continue
			}
			return cloneBytes(out), nil

		default:
			d.broken = true
			return nil, d.fail(op, errors.FromStatus(op, status, d.session.Message(), errors.ErrorDecompression))
		}
	}
}

// Finish drains any remaining buffered input and output. Equivalent to
// Decompress(nil, FlushFinish).
func (d *Decompressor) Finish() ([]byte, error) {
	return d.Decompress(nil, domain.FlushFinish)
}

// SetDictionary installs a preset dictionary, either proactively before the
// stream references one or in response to a need-dictionary error.
func (d *Decompressor) SetDictionary(dict []byte) error {
	const op = "set-dictionary"
	if err := d.ready(op); err != nil {
		return err
	}
	if st := d.session.SetDictionary(dict); st != domain.StatusOK {
		return d.fail(op, errors.FromStatus(op, st, d.session.Message(), errors.ErrorDecompression))
	}
	return nil
}

// Dictionary returns the current history window contents.
func (d *Decompressor) Dictionary() ([]byte, error) {
	const op = "get-dictionary"
	if err := d.ready(op); err != nil {
		return nil, err
	}
	dict, st := d.session.Dictionary()
	if st != domain.StatusOK {
		return nil, d.fail(op, errors.FromStatus(op, st, d.session.Message(), errors.ErrorDecompression))
	}
	return dict, nil
}

// GzipHeader returns the gzip header record populated so far. The record's
// Done field reports whether the header region has been fully consumed.
func (d *Decompressor) GzipHeader() (*domain.GzipHeader, error) {
	const op = "get-gzip-header"
	if err := d.ready(op); err != nil {
		return nil, err
	}
	hdr, st := d.session.Header()
	if st != domain.StatusOK {
		return nil, d.fail(op, errors.FromStatus(op, st, d.session.Message(), errors.ErrorDecompression))
	}
	return hdr, nil
}

// Prime injects bits into the engine's bit accumulator. Raw framing only,
// before the first step.
func (d *Decompressor) Prime(bits, value int) error {
	const op = "prime"
	if err := d.ready(op); err != nil {
		return err
	}
	if st := d.session.Prime(bits, value); st != domain.StatusOK {
		return d.fail(op, errors.FromStatus(op, st, d.session.Message(), errors.ErrorDecompression))
	}
	return nil
}

// Sync scans input for the next full-flush boundary after corruption,
// consuming from data and the internal pending buffer. It returns the
// number of bytes of data consumed. A buffer error means no boundary was
// found yet and more input is needed.
func (d *Decompressor) Sync(data []byte) (int, error) {
	const op = "sync"
	if err := d.ready(op); err != nil {
		return 0, err
	}

	d.pending.Write(data)
	in := d.pending.Bytes()
	consumed, st := d.session.Sync(in)
	d.pending.Next(consumed)
	fromData := consumed - (len(in) - len(data))
	if fromData < 0 {
		fromData = 0
	}
	switch st {
	case domain.StatusOK:
		d.broken = false
		return fromData, nil
	case domain.StatusBufError:
		return fromData, d.fail(op, errors.NewBufferError(op, "flush boundary not found"))
	default:
		return fromData, d.fail(op, errors.FromStatus(op, st, d.session.Message(), errors.ErrorDecompression))
	}
}

// SyncPoint reports whether the session sits at a boundary located by Sync.
func (d *Decompressor) SyncPoint() (bool, error) {
	if err := d.ready("sync-point"); err != nil {
		return false, err
	}
	return d.session.SyncPoint(), nil
}

// Mark returns the engine's diagnostic input position marker.
func (d *Decompressor) Mark() (int64, error) {
	if err := d.ready("mark"); err != nil {
		return 0, err
	}
	return d.session.Mark(), nil
}

// CodesUsed returns the engine's huffman code usage counter.
func (d *Decompressor) CodesUsed() (uint64, error) {
	if err := d.ready("codes-used"); err != nil {
		return 0, err
	}
	return d.session.CodesUsed(), nil
}

// Reset returns the session to its just-initialized state, dropping any
// buffered pending input.
func (d *Decompressor) Reset() error {
	const op = "reset"
	if d.session == nil {
		return d.fail(op, errors.NewStreamError(op, "decompressor not initialized"))
	}
	if st := d.session.Reset(); st != domain.StatusOK {
		return d.fail(op, errors.FromStatus(op, st, d.session.Message(), errors.ErrorDecompression))
	}
	d.pending.Reset()
	d.totalIn = 0
	d.totalOut = 0
	d.finished = false
	d.broken = false
	if d.listeners.OnReset != nil {
		d.listeners.OnReset()
	}
	return nil
}

// ResetWindowBits resets the session under a new window-bits value.
func (d *Decompressor) ResetWindowBits(windowBits int) error {
	const op = "reset-window-bits"
	if d.session == nil {
		return d.fail(op, errors.NewStreamError(op, "decompressor not initialized"))
	}
	if st := d.session.ResetWindowBits(windowBits); st != domain.StatusOK {
		return d.fail(op, errors.FromStatus(op, st, d.session.Message(), errors.ErrorDecompression))
	}
	d.pending.Reset()
	d.totalIn = 0
	d.totalOut = 0
	d.finished = false
	d.broken = false
	if d.listeners.OnReset != nil {
		d.listeners.OnReset()
	}
	return nil
}

// Close releases the underlying session.
func (d *Decompressor) Close() error {
	if d.session == nil {
		return nil
	}
	st := d.session.End()
	d.session = nil
	if st != domain.StatusOK {
		return errors.NewStreamError("close", "session already ended")
	}
	return nil
}

// TotalIn returns the number of compressed bytes consumed since Initialize
// or the last Reset.
func (d *Decompressor) TotalIn() int64 { return d.totalIn }

// TotalOut returns the number of decompressed bytes produced since
// Initialize or the last Reset.
func (d *Decompressor) TotalOut() int64 { return d.totalOut }

// Pending returns the number of input bytes buffered but not yet consumed
// by the engine.
func (d *Decompressor) Pending() int { return d.pending.Len() }
