// Package codec hosts the caller-facing codec services: streaming
// compression and decompression sessions, the one-shot helpers, and the
// callback-driven chunk processor. Services drive the engine port one step
// at a time and own all buffering between the caller and the engine.
//
// A service instance is single-owner mutable state: it is never safe for
// concurrent use. Run one instance per logical stream.
package codec

import (
	"bytes"

	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/internal/core/ports"
	"github.com/iamNilotpal/zstream/pkg/errors"
	"github.com/iamNilotpal/zstream/pkg/pool"
)

// defaultStepChunk is the size of the per-step output buffer the streaming
// services drain the engine into.
const defaultStepChunk = 4 * 1024

var stepChunks = pool.NewChunkPool(defaultStepChunk)
var outBuffers = pool.NewBufferPool(defaultStepChunk)

// Compressor is the streaming compression session. Lifecycle:
// Created → Initialize → Compress steps → Finish → (optional Reset) → steps.
// Every operation before Initialize fails with a stream error; a fatal
// engine status poisons the session until Reset.
type Compressor struct {
	engine    ports.CodecEngine
	session   ports.DeflateSession
	listeners domain.StreamListeners

	totalIn  int64
	totalOut int64
	finished bool
	broken   bool
}

// NewCompressor creates an uninitialized compressor bound to the engine.
func NewCompressor(engine ports.CodecEngine) *Compressor {
	return &Compressor{engine: engine}
}

// NewCompressorWithListeners creates an uninitialized compressor that
// reports step and error events through listeners.
func NewCompressorWithListeners(engine ports.CodecEngine, listeners domain.StreamListeners) *Compressor {
	return &Compressor{engine: engine, listeners: listeners}
}

// Initialize binds a deflate session with the given parameters. Calling it
// on an already-initialized compressor replaces the session.
func (c *Compressor) Initialize(params domain.CompressionParams) error {
	session, err := c.engine.NewDeflate(params)
	if err != nil {
		return c.fail("initialize", errors.NewStreamError("initialize", err.Error()))
	}
	if c.session != nil {
		c.session.End()
	}
	c.session = session
	c.totalIn = 0
	c.totalOut = 0
	c.finished = false
	c.broken = false
	return nil
}

func (c *Compressor) ready(op string) error {
	if c.session == nil {
		return c.fail(op, errors.NewStreamError(op, "compressor not initialized"))
	}
	if c.broken {
		return c.fail(op, errors.NewStreamError(op, "session requires reset"))
	}
	return nil
}

func (c *Compressor) fail(op string, err *errors.CodecError) error {
	if c.listeners.OnError != nil {
		c.listeners.OnError(op, err)
	}
	return err
}

// Compress feeds all of data to the engine under the given flush mode and
// returns every byte produced. A nil data slice with a flush mode is the way
// to flush buffered state without new input. After FlushFinish succeeds the
// stream is complete and further input is rejected until Reset.
func (c *Compressor) Compress(data []byte, flush domain.FlushMode) ([]byte, error) {
	const op = "compress"
	if err := c.ready(op); err != nil {
		return nil, err
	}
	if c.finished {
		return nil, c.fail(op, errors.NewStreamError(op, "stream already finished"))
	}

	out := outBuffers.Get()
	defer outBuffers.Put(out)
	chunk := stepChunks.Get()
	defer stepChunks.Put(chunk)

	in := data
	for {
		consumed, produced, status := c.session.Step(in, chunk, flush)
		if c.listeners.OnStep != nil {
			c.listeners.OnStep(op, consumed, produced)
		}
		in = in[consumed:]
		c.totalIn += int64(consumed)
		c.totalOut += int64(produced)
		out.Write(chunk[:produced])

		switch {
		case status == domain.StatusStreamEnd:
			c.finished = true
			return cloneBytes(out), nil
		case status.Fatal():
			c.broken = true
			return nil, c.fail(op, errors.FromStatus(op, status, c.session.Message(), errors.ErrorCompression))
		case status != domain.StatusOK && status != domain.StatusBufError:
			c.broken = true
			return nil, c.fail(op, errors.NewCompressionError(op, status, c.session.Message()))
		}

		if flush == domain.FlushFinish {
			// Finish runs until the engine reports end of stream.
			continue
		}
		if len(in) > 0 || produced == len(chunk) {
			// Unconsumed input, or a full chunk hinting at pending output.
			continue
		}
		return cloneBytes(out), nil
	}
}

// Finish flushes all buffered state and terminates the stream. Equivalent
// to Compress(nil, FlushFinish).
func (c *Compressor) Finish() ([]byte, error) {
	return c.Compress(nil, domain.FlushFinish)
}

// SetDictionary installs a preset dictionary on the session.
func (c *Compressor) SetDictionary(dict []byte) error {
	const op = "set-dictionary"
	if err := c.ready(op); err != nil {
		return err
	}
	if st := c.session.SetDictionary(dict); st != domain.StatusOK {
		return c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	return nil
}

// Dictionary returns the current history window contents.
func (c *Compressor) Dictionary() ([]byte, error) {
	const op = "get-dictionary"
	if err := c.ready(op); err != nil {
		return nil, err
	}
	dict, st := c.session.Dictionary()
	if st != domain.StatusOK {
		return nil, c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	return dict, nil
}

// SetParameters changes compression level and strategy mid-stream without
// restarting the window.
func (c *Compressor) SetParameters(level int, strategy domain.Strategy) error {
	const op = "set-parameters"
	if err := c.ready(op); err != nil {
		return err
	}
	if st := c.session.SetParams(level, strategy); st != domain.StatusOK {
		return c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	return nil
}

// Tune adjusts the engine's match-search knobs.
func (c *Compressor) Tune(goodLength, maxLazy, niceLength, maxChain int) error {
	const op = "tune"
	if err := c.ready(op); err != nil {
		return err
	}
	if st := c.session.Tune(goodLength, maxLazy, niceLength, maxChain); st != domain.StatusOK {
		return c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	return nil
}

// Prime injects bits ahead of the next byte-aligned output. Raw framing
// only, before the first step.
func (c *Compressor) Prime(bits, value int) error {
	const op = "prime"
	if err := c.ready(op); err != nil {
		return err
	}
	if st := c.session.Prime(bits, value); st != domain.StatusOK {
		return c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	return nil
}

// Pending reports output bytes and bits buffered inside the engine.
func (c *Compressor) Pending() (int, int, error) {
	const op = "pending"
	if err := c.ready(op); err != nil {
		return 0, 0, err
	}
	b, bits, st := c.session.Pending()
	if st != domain.StatusOK {
		return 0, 0, c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	return b, bits, nil
}

// Bound returns a worst-case compressed size for sourceLen input bytes.
func (c *Compressor) Bound(sourceLen int) (int, error) {
	const op = "bound"
	if err := c.ready(op); err != nil {
		return 0, err
	}
	return c.session.Bound(sourceLen), nil
}

// SetGzipHeader attaches a gzip header record to the stream. Gzip framing
// only, before the first step.
func (c *Compressor) SetGzipHeader(hdr *domain.GzipHeader) error {
	const op = "set-gzip-header"
	if err := c.ready(op); err != nil {
		return err
	}
	if st := c.session.SetHeader(hdr); st != domain.StatusOK {
		return c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	return nil
}

// Reset returns the session to its just-initialized state, clearing the
// byte counters and any poisoned state.
func (c *Compressor) Reset() error {
	const op = "reset"
	if c.session == nil {
		return c.fail(op, errors.NewStreamError(op, "compressor not initialized"))
	}
	if st := c.session.Reset(); st != domain.StatusOK {
		return c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	c.totalIn = 0
	c.totalOut = 0
	c.finished = false
	c.broken = false
	if c.listeners.OnReset != nil {
		c.listeners.OnReset()
	}
	return nil
}

// ResetWindowBits resets the session under a new window-bits value.
func (c *Compressor) ResetWindowBits(windowBits int) error {
	const op = "reset-window-bits"
	if c.session == nil {
		return c.fail(op, errors.NewStreamError(op, "compressor not initialized"))
	}
	if st := c.session.ResetWindowBits(windowBits); st != domain.StatusOK {
		return c.fail(op, errors.FromStatus(op, st, c.session.Message(), errors.ErrorCompression))
	}
	c.totalIn = 0
	c.totalOut = 0
	c.finished = false
	c.broken = false
	if c.listeners.OnReset != nil {
		c.listeners.OnReset()
	}
	return nil
}

// Close releases the underlying session. The compressor can be initialized
// again afterwards.
func (c *Compressor) Close() error {
	if c.session == nil {
		return nil
	}
	st := c.session.End()
	c.session = nil
	if st != domain.StatusOK {
		return errors.NewStreamError("close", "session already ended")
	}
	return nil
}

// TotalIn returns the number of input bytes consumed since Initialize or
// the last Reset.
func (c *Compressor) TotalIn() int64 { return c.totalIn }

// TotalOut returns the number of compressed bytes produced since Initialize
// or the last Reset.
func (c *Compressor) TotalOut() int64 { return c.totalOut }

func cloneBytes(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}
