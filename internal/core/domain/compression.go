package domain

// FlushMode tells the codec engine whether and how to force emission of a
// decodable boundary at the current position in the stream.
type FlushMode int

const (
	// FlushNone lets the engine decide how much output to produce. This is
	// the normal mode for feeding chunks mid-stream.
	FlushNone FlushMode = 0

	// FlushPartial emits enough output for the decoder to make progress,
	// without the byte alignment guarantee of FlushSync. Kept for
	// compatibility with old streams; prefer FlushSync.
	FlushPartial FlushMode = 1

	// FlushSync byte-aligns the output with an empty stored block so that a
	// decoder consuming everything produced so far can reconstruct all input
	// fed so far.
	FlushSync FlushMode = 2

	// FlushFull acts like FlushSync and additionally discards the history
	// window, so decoding can restart from this point if prior data is lost.
	// Using it frequently degrades compression.
	FlushFull FlushMode = 3

	// FlushFinish terminates the stream. After the engine reports
	// StatusStreamEnd no further data may be fed without a reset.
	FlushFinish FlushMode = 4

	// FlushBlock stops at the next deflate block boundary.
	FlushBlock FlushMode = 5

	// FlushTrees behaves like FlushBlock but also returns after the block
	// header bits. Deep introspection only.
	FlushTrees FlushMode = 6
)

func (f FlushMode) String() string {
	switch f {
	case FlushNone:
		return "none"
	case FlushPartial:
		return "partial"
	case FlushSync:
		return "sync"
	case FlushFull:
		return "full"
	case FlushFinish:
		return "finish"
	case FlushBlock:
		return "block"
	case FlushTrees:
		return "trees"
	default:
		return "unknown"
	}
}

// Status is the result code of a single engine operation. The values mirror
// the zlib return codes so that a cgo-backed engine can pass them through
// untranslated.
type Status int

const (
	StatusOK           Status = 0
	StatusStreamEnd    Status = 1
	StatusNeedDict     Status = 2
	StatusErrno        Status = -1
	StatusStreamError  Status = -2
	StatusDataError    Status = -3
	StatusMemError     Status = -4
	StatusBufError     Status = -5
	StatusVersionError Status = -6
)

// Fatal reports whether the status represents an unrecoverable engine
// failure. StatusBufError is excluded: it only signals that no progress was
// possible with the buffers provided.
func (s Status) Fatal() bool {
	switch s {
	case StatusStreamError, StatusDataError, StatusMemError, StatusErrno, StatusVersionError:
		return true
	default:
		return false
	}
}

// String returns the zlib error-string table entry for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStreamEnd:
		return "stream end"
	case StatusNeedDict:
		return "need dictionary"
	case StatusErrno:
		return "file error"
	case StatusStreamError:
		return "stream error"
	case StatusDataError:
		return "data error"
	case StatusMemError:
		return "insufficient memory"
	case StatusBufError:
		return "buffer error"
	case StatusVersionError:
		return "incompatible version"
	default:
		return "unknown"
	}
}

// Strategy tunes the encoder for particular kinds of input. Only the default
// and huffman-only strategies change behavior in the pure Go engine; the
// others are accepted and mapped to the default strategy.
type Strategy int

const (
	StrategyDefault  Strategy = 0
	StrategyFiltered Strategy = 1
	StrategyHuffman  Strategy = 2
	StrategyRLE      Strategy = 3
	StrategyFixed    Strategy = 4
)

// Compression levels. LevelDefault lets the engine pick its balanced setting.
const (
	LevelDefault         = -1
	LevelNoCompression   = 0
	LevelBestSpeed       = 1
	LevelBestCompression = 9
)

// MethodDeflated is the only compression method defined by the zlib format.
const MethodDeflated = 8

// Memory levels control how much internal state the engine allocates.
// MemLevelDefault resolves to 8, matching zlib.
const (
	MemLevelMin     = 1
	MemLevelDefault = 8
	MemLevelMax     = 9
)

// CompressionParams is the immutable parameter set bound to a session at
// initialization time. WindowBits selects both the history window size and
// the container framing, see Framing.
type CompressionParams struct {
	Level      int
	Method     int
	WindowBits int
	MemLevel   int
	Strategy   Strategy
}

// DefaultParams returns the parameter set equivalent to zlib's
// deflateInit(level): zlib framing with a full 32KB window.
func DefaultParams() CompressionParams {
	return CompressionParams{
		Level:      LevelDefault,
		Method:     MethodDeflated,
		WindowBits: WindowBitsDefault,
		MemLevel:   MemLevelDefault,
		Strategy:   StrategyDefault,
	}
}

// RawParams returns parameters for raw deflate framing (no container).
func RawParams(level int) CompressionParams {
	p := DefaultParams()
	p.Level = level
	p.WindowBits = -WindowBitsDefault
	return p
}

// ZlibParams returns parameters for zlib framing at the given level.
func ZlibParams(level int) CompressionParams {
	p := DefaultParams()
	p.Level = level
	return p
}

// GzipParams returns parameters for gzip framing at the given level.
func GzipParams(level int) CompressionParams {
	p := DefaultParams()
	p.Level = level
	p.WindowBits = WindowBitsDefault + GzipWindowOffset
	return p
}
