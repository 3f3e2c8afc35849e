package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/iamNilotpal/zstream/internal/core/domain"
)

// ErrorCategory classifies the failures surfaced by codec operations. The
// category drives programmatic handling; the embedded engine status carries
// the diagnostic detail.
type ErrorCategory int

const (
	// ErrorCompression indicates the engine returned a non-success status
	// during a compression step.
	ErrorCompression ErrorCategory = iota + 1

	// ErrorDecompression indicates the engine returned a non-success status
	// during a decompression step, including exhausted buffer-growth retries.
	ErrorDecompression

	// ErrorStream indicates session misuse: an operation attempted on an
	// uninitialized, finished, or ended session, or a fatal stream-level
	// engine error that requires a reset.
	ErrorStream

	// ErrorNeedDictionary indicates decompression stopped because the stream
	// requires a preset dictionary that was not supplied. Recoverable by
	// supplying the dictionary and retrying.
	ErrorNeedDictionary

	// ErrorData indicates the input violates the expected format: corrupt
	// compressed data, a failed trailer check, or a wrong dictionary.
	ErrorData

	// ErrorBuffer indicates no progress was possible with the buffers
	// provided after retry logic was exhausted.
	ErrorBuffer

	// ErrorMemory indicates the engine could not allocate internal state.
	ErrorMemory

	// ErrorVersion indicates an engine version mismatch.
	ErrorVersion

	// ErrorCancelled indicates a progress callback or task cancellation
	// requested early termination.
	ErrorCancelled

	// ErrorInvalidData indicates a caller-facing representation problem,
	// such as a byte sequence that is not valid UTF-8 for a string round
	// trip. Not an engine status.
	ErrorInvalidData
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorCompression:
		return "compression"
	case ErrorDecompression:
		return "decompression"
	case ErrorStream:
		return "stream"
	case ErrorNeedDictionary:
		return "need-dictionary"
	case ErrorData:
		return "data"
	case ErrorBuffer:
		return "buffer"
	case ErrorMemory:
		return "memory"
	case ErrorVersion:
		return "version"
	case ErrorCancelled:
		return "cancelled"
	case ErrorInvalidData:
		return "invalid-data"
	default:
		return "unknown"
	}
}

// CodecError is the error type returned by every codec operation. It couples
// a symbolic category with the originating engine status code and the
// engine's own diagnostic message, so callers can both branch on kind and
// log the underlying cause.
type CodecError struct {
	Err       error
	Operation string
	Status    domain.Status
	Category  ErrorCategory
	Timestamp time.Time
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%v] %s: %v (%s)", e.Category, e.Operation, e.Err, e.Status)
	}
	return fmt.Sprintf("[%v] %s: %s", e.Category, e.Operation, e.Status)
}

func (e *CodecError) Unwrap() error { return e.Err }

// Recoverable reports whether the caller can make progress without
// destroying the session: by supplying a dictionary, growing a buffer, or
// feeding more input.
func (e *CodecError) Recoverable() bool {
	switch e.Category {
	case ErrorNeedDictionary, ErrorBuffer:
		return true
	default:
		return false
	}
}

func newError(category ErrorCategory, op string, status domain.Status, msg string) *CodecError {
	var err error
	if msg != "" {
		err = errors.New(msg)
	}
	return &CodecError{
		Err:       err,
		Operation: op,
		Status:    status,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// NewCompressionError wraps a failed compression step.
func NewCompressionError(op string, status domain.Status, msg string) *CodecError {
	return newError(ErrorCompression, op, status, msg)
}

// NewDecompressionError wraps a failed decompression step.
func NewDecompressionError(op string, status domain.Status, msg string) *CodecError {
	return newError(ErrorDecompression, op, status, msg)
}

// NewStreamError reports session misuse or a fatal stream-level failure.
func NewStreamError(op string, msg string) *CodecError {
	return newError(ErrorStream, op, domain.StatusStreamError, msg)
}

// NewNeedDictionaryError reports that decompression requires a preset
// dictionary that was not supplied.
func NewNeedDictionaryError(op string) *CodecError {
	return newError(ErrorNeedDictionary, op, domain.StatusNeedDict, "")
}

// NewDataError reports corrupt or mismatched input data.
func NewDataError(op string, msg string) *CodecError {
	return newError(ErrorData, op, domain.StatusDataError, msg)
}

// NewBufferError reports exhausted buffer-growth retries.
func NewBufferError(op string, msg string) *CodecError {
	return newError(ErrorBuffer, op, domain.StatusBufError, msg)
}

// NewCancelledError reports early termination requested by a callback or a
// cancelled context.
func NewCancelledError(op string) *CodecError {
	return newError(ErrorCancelled, op, domain.StatusOK, "operation cancelled")
}

// NewInvalidDataError reports a caller-facing representation problem.
func NewInvalidDataError(op string, msg string) *CodecError {
	return newError(ErrorInvalidData, op, domain.StatusOK, msg)
}

// FromStatus maps a fatal engine status to the matching error category,
// using fallback for statuses without a dedicated category.
func FromStatus(op string, status domain.Status, msg string, fallback ErrorCategory) *CodecError {
	switch status {
	case domain.StatusNeedDict:
		return NewNeedDictionaryError(op)
	case domain.StatusDataError:
		return newError(ErrorData, op, status, msg)
	case domain.StatusMemError:
		return newError(ErrorMemory, op, status, msg)
	case domain.StatusBufError:
		return newError(ErrorBuffer, op, status, msg)
	case domain.StatusVersionError:
		return newError(ErrorVersion, op, status, msg)
	case domain.StatusStreamError:
		return newError(ErrorStream, op, status, msg)
	default:
		return newError(fallback, op, status, msg)
	}
}

// AsCodecError extracts a CodecError from err, or nil.
func AsCodecError(err error) *CodecError {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

func hasCategory(err error, category ErrorCategory) bool {
	ce := AsCodecError(err)
	return ce != nil && ce.Category == category
}

// IsNeedDictionary reports whether err is a need-dictionary error.
func IsNeedDictionary(err error) bool { return hasCategory(err, ErrorNeedDictionary) }

// IsCancelled reports whether err is a cancellation.
func IsCancelled(err error) bool { return hasCategory(err, ErrorCancelled) }

// IsStreamError reports whether err is session misuse or a fatal stream
// failure.
func IsStreamError(err error) bool { return hasCategory(err, ErrorStream) }

// IsDataError reports whether err is a data corruption or mismatch error.
func IsDataError(err error) bool { return hasCategory(err, ErrorData) }

// StatusOf returns the engine status carried by err, or StatusOK when err is
// not a CodecError.
func StatusOf(err error) domain.Status {
	if ce := AsCodecError(err); ce != nil {
		return ce.Status
	}
	return domain.StatusOK
}
