package codec

import (
	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/internal/core/ports"
	"github.com/iamNilotpal/zstream/pkg/errors"
)

// GrowthPolicy bounds the guess-and-grow retry loop of one-shot
// decompression. The output buffer starts at InitialMultiplier times the
// input size and is multiplied by GrowthFactor after every buffer-too-small
// attempt, stopping once it would exceed MaxMultiplier times the input
// size. The bound is the defense against crafted inputs that expand without
// limit; tests inject a tiny cap to drive the exhaustion path.
type GrowthPolicy struct {
	InitialMultiplier int
	GrowthFactor      int
	MaxMultiplier     int
}

// DefaultGrowthPolicy is the whole-buffer decompression policy.
func DefaultGrowthPolicy() GrowthPolicy {
	return GrowthPolicy{InitialMultiplier: 4, GrowthFactor: 2, MaxMultiplier: 512}
}

// PartialGrowthPolicy caps growth more tightly, used when the caller asked
// for a specific output size.
func PartialGrowthPolicy() GrowthPolicy {
	return GrowthPolicy{InitialMultiplier: 1, GrowthFactor: 2, MaxMultiplier: 16}
}

// OneShot compresses and decompresses whole in-memory buffers, one engine
// session per call.
type OneShot struct {
	engine ports.CodecEngine
	policy GrowthPolicy
}

// NewOneShot creates a one-shot codec with the default growth policy.
func NewOneShot(engine ports.CodecEngine) *OneShot {
	return &OneShot{engine: engine, policy: DefaultGrowthPolicy()}
}

// NewOneShotWithPolicy creates a one-shot codec with a custom growth policy
// for whole-buffer decompression.
func NewOneShotWithPolicy(engine ports.CodecEngine, policy GrowthPolicy) *OneShot {
	return &OneShot{engine: engine, policy: policy}
}

// Compress deflates data at the given level with zlib framing. The output
// buffer is sized by the engine's worst-case bound, so a single step
// completes the stream.
func (o *OneShot) Compress(data []byte, level int) ([]byte, error) {
	const op = "oneshot-compress"

	params := domain.DefaultParams()
	params.Level = level
	session, err := o.engine.NewDeflate(params)
	if err != nil {
		return nil, errors.NewCompressionError(op, domain.StatusStreamError, err.Error())
	}
	defer session.End()

	out := make([]byte, session.Bound(len(data)))
	consumed, produced, status := session.Step(data, out, domain.FlushFinish)
	if status != domain.StatusStreamEnd {
		return nil, errors.NewCompressionError(op, status, session.Message())
	}
	if consumed != len(data) {
		return nil, errors.NewCompressionError(op, domain.StatusBufError, "input not fully consumed")
	}
	return out[:produced:produced], nil
}

// Decompress inflates a complete zlib-framed buffer. The output size is
// unknown up front, so it starts with a heuristic guess and retries with a
// geometrically growing buffer until success or the policy cap.
func (o *OneShot) Decompress(data []byte) ([]byte, error) {
	const op = "oneshot-decompress"

	out, _, err := o.inflate(op, data, o.initialSize(len(data), o.policy), o.policy.MaxMultiplier*len(data), o.policy)
	return out, err
}

// DecompressPartial inflates into a buffer sized by the caller's hint,
// reporting how many input bytes were actually consumed alongside the
// output. Growth on buffer-too-small is capped far more tightly than whole
// buffer decompression, since the caller explicitly asked for a small
// output.
func (o *OneShot) DecompressPartial(data []byte, sizeHint int) ([]byte, int, error) {
	const op = "oneshot-decompress-partial"
	if sizeHint <= 0 {
		return nil, 0, errors.NewBufferError(op, "size hint must be positive")
	}

	policy := PartialGrowthPolicy()
	return o.inflate(op, data, sizeHint, policy.MaxMultiplier*sizeHint, policy)
}

func (o *OneShot) initialSize(inputLen int, policy GrowthPolicy) int {
	size := inputLen * policy.InitialMultiplier
	if size == 0 {
		size = 64
	}
	return size
}

// inflate runs the bounded retry loop. Every attempt uses a fresh session,
// because a failed attempt leaves engine state mid-stream.
func (o *OneShot) inflate(op string, data []byte, size, maxSize int, policy GrowthPolicy) ([]byte, int, error) {
	if maxSize < size {
		maxSize = size
	}

	growth := policy.GrowthFactor
	if growth < 2 {
		growth = 2
	}

	var lastStatus domain.Status
	var lastMsg string
	for {
		session, err := o.engine.NewInflate(domain.DefaultParams())
		if err != nil {
			return nil, 0, errors.NewDecompressionError(op, domain.StatusStreamError, err.Error())
		}

		out := make([]byte, size)
		consumed, produced, status := session.Step(data, out, domain.FlushFinish)
		msg := session.Message()
		session.End()

		switch status {
		case domain.StatusStreamEnd:
			return out[:produced:produced], consumed, nil
		case domain.StatusOK, domain.StatusBufError:
			// Output buffer too small; grow and redo from the start.
			lastStatus, lastMsg = domain.StatusBufError, msg
		default:
			return nil, consumed, errors.FromStatus(op, status, msg, errors.ErrorDecompression)
		}

		if size >= maxSize {
			return nil, 0, errors.NewDecompressionError(op, lastStatus, lastMsg)
		}
		size *= growth
		if size > maxSize {
			size = maxSize
		}
	}
}
