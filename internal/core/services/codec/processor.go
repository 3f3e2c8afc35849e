package codec

import (
	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/internal/core/ports"
	"github.com/iamNilotpal/zstream/pkg/errors"
)

// InputFunc supplies the next input chunk. A nil slice signals end of
// input; an error aborts processing.
type InputFunc func() ([]byte, error)

// OutputFunc receives each produced chunk. Returning false cancels
// processing immediately.
type OutputFunc func([]byte) bool

// ChunkProcessor processes a stream of unknown or unbounded size through
// caller-supplied callbacks: input is pulled chunk by chunk, output pushed
// chunk by chunk. Memory use is proportional to the internal chunk size,
// never to the stream, which is the point relative to the whole-buffer
// services.
type ChunkProcessor struct {
	engine    ports.CodecEngine
	chunkSize int
}

// NewChunkProcessor creates a processor with the default internal chunk
// size.
func NewChunkProcessor(engine ports.CodecEngine) *ChunkProcessor {
	return &ChunkProcessor{engine: engine, chunkSize: defaultStepChunk}
}

// NewChunkProcessorSize creates a processor with an explicit internal chunk
// size.
func NewChunkProcessorSize(engine ports.CodecEngine, chunkSize int) *ChunkProcessor {
	if chunkSize <= 0 {
		chunkSize = defaultStepChunk
	}
	return &ChunkProcessor{engine: engine, chunkSize: chunkSize}
}

// Compress pulls input from provider, compresses it under params and pushes
// every produced chunk to handler. Runs until the provider signals end of
// input and the stream is finished, the handler cancels, or a callback or
// engine error occurs.
func (p *ChunkProcessor) Compress(params domain.CompressionParams, provider InputFunc, handler OutputFunc) error {
	const op = "process-compress"

	session, err := p.engine.NewDeflate(params)
	if err != nil {
		return errors.NewStreamError(op, err.Error())
	}
	defer session.End()

	return p.run(op, session, errors.ErrorCompression, provider, handler)
}

// Decompress pulls compressed input from provider and pushes decompressed
// chunks to handler.
func (p *ChunkProcessor) Decompress(params domain.CompressionParams, provider InputFunc, handler OutputFunc) error {
	const op = "process-decompress"

	session, err := p.engine.NewInflate(params)
	if err != nil {
		return errors.NewStreamError(op, err.Error())
	}
	defer session.End()

	return p.run(op, session, errors.ErrorDecompression, provider, handler)
}

func (p *ChunkProcessor) run(op string, session ports.Session, category errors.ErrorCategory, provider InputFunc, handler OutputFunc) error {
	chunk := stepChunks.Get()
	defer stepChunks.Put(chunk)
	if len(chunk) != p.chunkSize {
		chunk = make([]byte, p.chunkSize)
	}

	var in []byte
	flush := domain.FlushNone

	for {
		if len(in) == 0 && flush != domain.FlushFinish {
			next, err := provider()
			if err != nil {
				return errors.NewStreamError(op, err.Error())
			}
			if next == nil {
				// Input exhausted; drain everything still buffered.
				flush = domain.FlushFinish
			}
			in = next
		}

		consumed, produced, status := session.Step(in, chunk, flush)
		in = in[consumed:]

		if produced > 0 && !handler(chunk[:produced]) {
			return errors.NewCancelledError(op)
		}

		switch status {
		case domain.StatusStreamEnd:
			return nil
		case domain.StatusOK:
			// Keep stepping.
		case domain.StatusBufError:
			if flush == domain.FlushFinish && produced == 0 {
				// Finish cannot make progress: the input ended mid-stream.
				return errors.FromStatus(op, status, session.Message(), category)
			}
		default:
			return errors.FromStatus(op, status, session.Message(), category)
		}
	}
}

// CompressBuffer materializes the whole output of compressing data in
// memory. Convenience for small inputs only; it gives up the constant
// memory property that makes the callback form worthwhile.
func (p *ChunkProcessor) CompressBuffer(params domain.CompressionParams, data []byte) ([]byte, error) {
	return p.collect(data, func(provider InputFunc, handler OutputFunc) error {
		return p.Compress(params, provider, handler)
	})
}

// DecompressBuffer materializes the whole output of decompressing data in
// memory. Convenience for small inputs only.
func (p *ChunkProcessor) DecompressBuffer(params domain.CompressionParams, data []byte) ([]byte, error) {
	return p.collect(data, func(provider InputFunc, handler OutputFunc) error {
		return p.Decompress(params, provider, handler)
	})
}

func (p *ChunkProcessor) collect(data []byte, process func(InputFunc, OutputFunc) error) ([]byte, error) {
	out := outBuffers.Get()
	defer outBuffers.Put(out)

	sent := false
	provider := func() ([]byte, error) {
		if sent {
			return nil, nil
		}
		sent = true
		return data, nil
	}
	handler := func(chunk []byte) bool {
		out.Write(chunk)
		return true
	}

	if err := process(provider, handler); err != nil {
		return nil, err
	}
	return cloneBytes(out), nil
}
