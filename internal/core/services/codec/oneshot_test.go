package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/zstream/internal/adapters/engine"
	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/pkg/errors"
)

func TestOneShotRoundTrip(t *testing.T) {
	o := NewOneShot(engine.New(nil))

	data := []byte("hello world")
	compressed, err := o.Compress(data, domain.LevelBestCompression)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	plain, err := o.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, plain)
}

func TestOneShotEmptyInput(t *testing.T) {
	o := NewOneShot(engine.New(nil))

	compressed, err := o.Compress(nil, domain.LevelDefault)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	plain, err := o.Decompress(compressed)
	require.NoError(t, err)
	require.Empty(t, plain)
}

func TestOneShotGrowthLoop(t *testing.T) {
	// Force the guess-and-grow loop: start at 1x the compressed size and
	// leave plenty of headroom in the cap.
	o := NewOneShotWithPolicy(engine.New(nil), GrowthPolicy{
		InitialMultiplier: 1,
		GrowthFactor:      2,
		MaxMultiplier:     1 << 20,
	})

	data := bytes.Repeat([]byte{0xAB}, 64*1024)
	compressed, err := o.Compress(data, domain.LevelDefault)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data)/10)

	plain, err := o.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, plain)
}

func TestOneShotGrowthExhaustion(t *testing.T) {
	// A tiny cap turns a highly expanding input into a deterministic
	// exhaustion failure instead of unbounded allocation.
	o := NewOneShotWithPolicy(engine.New(nil), GrowthPolicy{
		InitialMultiplier: 1,
		GrowthFactor:      2,
		MaxMultiplier:     2,
	})

	data := bytes.Repeat([]byte{0xAB}, 64*1024)
	compressed, err := o.Compress(data, domain.LevelDefault)
	require.NoError(t, err)

	_, err = o.Decompress(compressed)
	require.Error(t, err)
	ce := errors.AsCodecError(err)
	require.NotNil(t, ce)
	require.Equal(t, errors.ErrorDecompression, ce.Category)
	require.Equal(t, domain.StatusBufError, ce.Status)
}

func TestOneShotCorruptInput(t *testing.T) {
	o := NewOneShot(engine.New(nil))
	_, err := o.Decompress([]byte{0x00, 0x01, 0x02, 0x03})
	require.Error(t, err)
	require.True(t, errors.IsDataError(err))
}

func TestDecompressPartial(t *testing.T) {
	o := NewOneShot(engine.New(nil))

	data := bytes.Repeat([]byte("partial consumption protocol "), 100)
	compressed, err := o.Compress(data, domain.LevelDefault)
	require.NoError(t, err)

	// A hint covering the whole output decodes everything and reports full
	// consumption.
	out, consumed, err := o.DecompressPartial(compressed, len(data)+64)
	require.NoError(t, err)
	require.Equal(t, data, out)
	require.Equal(t, len(compressed), consumed)

	_, _, err = o.DecompressPartial(compressed, 0)
	require.Error(t, err)
}

func TestDecompressPartialUsesOwnGrowthPolicy(t *testing.T) {
	// The instance policy governs whole-buffer decompression only; a
	// degenerate growth factor there must not leak into the partial path.
	o := NewOneShotWithPolicy(engine.New(nil), GrowthPolicy{
		InitialMultiplier: 1,
		GrowthFactor:      1 << 62,
		MaxMultiplier:     1,
	})

	data := bytes.Repeat([]byte{0xAB}, 4096)
	compressed, err := o.Compress(data, domain.LevelDefault)
	require.NoError(t, err)

	// A hint below the output size forces several growth rounds, all under
	// the partial policy.
	out, consumed, err := o.DecompressPartial(compressed, 512)
	require.NoError(t, err)
	require.Equal(t, data, out)
	require.Equal(t, len(compressed), consumed)
}

func TestOneShotInvalidLevel(t *testing.T) {
	o := NewOneShot(engine.New(nil))
	_, err := o.Compress([]byte("data"), 42)
	require.Error(t, err)
}
