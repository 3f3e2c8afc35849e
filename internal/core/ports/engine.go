package ports

import "github.com/iamNilotpal/zstream/internal/core/domain"

// CodecEngine creates codec sessions. Implementations wrap an actual DEFLATE
// implementation; the services in internal/core/services only ever talk to
// this contract.
//
// A session owns mutable engine state and is never safe for concurrent use.
// Concurrency is achieved by giving every logical stream its own session.
type CodecEngine interface {
	// NewDeflate binds a compression session to the given parameters.
	// Returns an error on invalid parameter combinations.
	NewDeflate(params domain.CompressionParams) (DeflateSession, error)

	// NewInflate binds a decompression session. Only WindowBits is
	// meaningful on the decode side; the remaining parameters are ignored.
	NewInflate(params domain.CompressionParams) (InflateSession, error)
}

// Session is the surface shared by both directions.
//
// Step is the single-step mutable-state operation at the heart of the
// contract: it consumes up to len(in) input bytes, produces up to len(out)
// output bytes, and reports what happened. Neither slice is retained after
// the call returns. A full out buffer is a signal that more output may be
// pending; StatusBufError signals that no progress was possible with the
// buffers provided and is not fatal.
type Session interface {
	Step(in, out []byte, flush domain.FlushMode) (consumed, produced int, status domain.Status)

	// SetDictionary installs a preset dictionary. The valid lifecycle points
	// depend on direction and framing; see the implementations.
	SetDictionary(dict []byte) domain.Status

	// Dictionary returns a copy of the current history window contents.
	Dictionary() ([]byte, domain.Status)

	// Prime injects bits directly into the bitstream (compression) or the
	// bit accumulator (decompression). Raw framing only, before any stream
	// byte has been produced or consumed.
	Prime(bits, value int) domain.Status

	// Reset returns the session to its just-initialized state, keeping the
	// bound parameters. Cheaper than End plus a new session.
	Reset() domain.Status

	// ResetWindowBits resets the session and changes the window-bits
	// parameter, which may also change the framing.
	ResetWindowBits(windowBits int) domain.Status

	// End releases the session. Any operation after End fails with
	// StatusStreamError.
	End() domain.Status

	// Message returns the engine's last human-readable diagnostic, or the
	// empty string.
	Message() string
}

// DeflateSession is the compression side of the engine contract.
type DeflateSession interface {
	Session

	// SetHeader attaches a gzip header record. Gzip framing only, before the
	// first step.
	SetHeader(hdr *domain.GzipHeader) domain.Status

	// SetParams changes level and strategy mid-stream without discarding the
	// history window.
	SetParams(level int, strategy domain.Strategy) domain.Status

	// Tune adjusts internal match-search knobs. Engines without equivalent
	// knobs validate and record the values.
	Tune(goodLength, maxLazy, niceLength, maxChain int) domain.Status

	// Pending reports output bytes and bits buffered but not yet delivered.
	Pending() (bytes, bits int, status domain.Status)

	// Bound returns a worst-case compressed size for sourceLen input bytes
	// under the session's framing.
	Bound(sourceLen int) int
}

// InflateSession is the decompression side of the engine contract.
type InflateSession interface {
	Session

	// Header returns the gzip header record populated so far. Gzip or auto
	// framing only; the record's Done field reports completeness.
	Header() (*domain.GzipHeader, domain.Status)

	// Sync scans in for the next full-flush boundary, discarding corrupt
	// state. Returns the bytes consumed by the scan and StatusOK once a
	// boundary was found, StatusBufError when more input is needed.
	Sync(in []byte) (consumed int, status domain.Status)

	// SyncPoint reports whether the session is positioned at a boundary
	// located by Sync.
	SyncPoint() bool

	// Mark returns a diagnostic position marker for the input stream.
	Mark() int64

	// CodesUsed returns the number of huffman codes consumed, for engines
	// that track it; zero otherwise.
	CodesUsed() uint64
}
