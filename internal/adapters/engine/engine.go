// Package engine provides the default pure-Go codec engine. It implements
// the ports.CodecEngine contract on top of the klauspost flate
// implementation, adding the raw, zlib and gzip container framings, preset
// dictionaries, bit priming and the introspection surface the contract
// requires.
//
// Approximations relative to a native zlib backend are documented on the
// operations that make them: the history window is always 32KB regardless of
// window bits, the filtered/RLE/fixed strategies map to the default
// strategy, Tune records but cannot apply its knobs, and Mark is
// byte-granular.
package engine

import (
	"fmt"

	"github.com/klauspost/compress/flate"

	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/internal/core/ports"
	"github.com/iamNilotpal/zstream/pkg/errors"
)

// windowSize is the deflate history window: the flate backend always keeps
// the full 32KB regardless of the history bits requested.
const windowSize = 32 << 10

// Options tunes the engine's internal buffering. Zero values pick defaults.
type Options struct {
	// ReadChunkSize is the scratch buffer size the inflate pump decodes
	// into. Default 32KB.
	ReadChunkSize int

	// PendingLimit bounds decompressed bytes buffered between steps before
	// the decoder is paused. Default 64KB. This is what keeps chunked
	// processing at constant memory.
	PendingLimit int
}

// Engine is the default codec engine. It is stateless; all mutable state
// lives in the sessions it creates. Safe for concurrent use; the sessions
// are not.
type Engine struct {
	readChunkSize int
	pendingLimit  int
}

// New creates an engine. opts may be nil.
func New(opts *Options) *Engine {
	e := &Engine{readChunkSize: 32 << 10, pendingLimit: 64 << 10}
	if opts != nil {
		if opts.ReadChunkSize > 0 {
			e.readChunkSize = opts.ReadChunkSize
		}
		if opts.PendingLimit > 0 {
			e.pendingLimit = opts.PendingLimit
		}
	}
	return e
}

// NewDeflate implements ports.CodecEngine.
func (e *Engine) NewDeflate(params domain.CompressionParams) (ports.DeflateSession, error) {
	if err := ValidateDeflateParams(&params); err != nil {
		return nil, err
	}
	framing, _, _ := domain.ParseWindowBits(params.WindowBits, false)
	return newDeflateSession(params, framing)
}

// NewInflate implements ports.CodecEngine.
func (e *Engine) NewInflate(params domain.CompressionParams) (ports.InflateSession, error) {
	if err := ValidateInflateParams(&params); err != nil {
		return nil, err
	}
	framing, _, _ := domain.ParseWindowBits(params.WindowBits, true)
	return newInflateSession(params, framing, e.readChunkSize, e.pendingLimit), nil
}

// ValidateDeflateParams checks a compression parameter set the way zlib's
// deflateInit2 does, resolving defaulted values in place.
func ValidateDeflateParams(params *domain.CompressionParams) error {
	if params.Method == 0 {
		params.Method = domain.MethodDeflated
	}
	if params.Method != domain.MethodDeflated {
		return errors.NewValidationError("method", params.Method,
			fmt.Errorf("only the deflated method (%d) is defined", domain.MethodDeflated))
	}
	if params.Level != domain.LevelDefault &&
		(params.Level < domain.LevelNoCompression || params.Level > domain.LevelBestCompression) {
		return errors.NewValidationError("level", params.Level,
			fmt.Errorf("compression level must be %d or between %d and %d",
				domain.LevelDefault, domain.LevelNoCompression, domain.LevelBestCompression))
	}
	if params.WindowBits == 0 {
		params.WindowBits = domain.WindowBitsDefault
	}
	if _, _, ok := domain.ParseWindowBits(params.WindowBits, false); !ok {
		return errors.NewValidationError("windowBits", params.WindowBits,
			fmt.Errorf("window bits must select raw, zlib or gzip framing"))
	}
	if params.MemLevel == 0 {
		params.MemLevel = domain.MemLevelDefault
	}
	if params.MemLevel < domain.MemLevelMin || params.MemLevel > domain.MemLevelMax {
		return errors.NewValidationError("memLevel", params.MemLevel,
			fmt.Errorf("memory level must be between %d and %d", domain.MemLevelMin, domain.MemLevelMax))
	}
	if params.Strategy < domain.StrategyDefault || params.Strategy > domain.StrategyFixed {
		return errors.NewValidationError("strategy", params.Strategy,
			fmt.Errorf("unknown strategy"))
	}
	return nil
}

// ValidateInflateParams checks a decompression parameter set the way zlib's
// inflateInit2 does. Only window bits matter on the decode side.
func ValidateInflateParams(params *domain.CompressionParams) error {
	if params.WindowBits == 0 {
		params.WindowBits = domain.WindowBitsDefault
	}
	if _, _, ok := domain.ParseWindowBits(params.WindowBits, true); !ok {
		return errors.NewValidationError("windowBits", params.WindowBits,
			fmt.Errorf("window bits must select raw, zlib, gzip or auto framing"))
	}
	return nil
}

// flateLevel maps a (level, strategy) pair onto the flate backend's level
// parameter. Huffman-only and RLE collapse to flate's huffman-only mode; the
// filtered and fixed strategies have no backend equivalent and keep the
// plain level.
func flateLevel(level int, strategy domain.Strategy) int {
	if strategy == domain.StrategyHuffman || strategy == domain.StrategyRLE {
		return flate.HuffmanOnly
	}
	if level == domain.LevelDefault {
		return flate.DefaultCompression
	}
	return level
}

// appendWindow maintains a sliding history of the last windowSize bytes.
func appendWindow(window, data []byte) []byte {
	if len(data) >= windowSize {
		return append(window[:0], data[len(data)-windowSize:]...)
	}
	window = append(window, data...)
	if len(window) > windowSize {
		window = append(window[:0], window[len(window)-windowSize:]...)
	}
	return window
}
