package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/zstream/internal/adapters/engine"
	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/pkg/errors"
)

// chunkedProvider returns an InputFunc serving data in fixed-size pieces.
func chunkedProvider(data []byte, size int) InputFunc {
	off := 0
	return func() ([]byte, error) {
		if off >= len(data) {
			return nil, nil
		}
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]
		off = end
		return chunk, nil
	}
}

func TestChunkProcessorRoundTrip(t *testing.T) {
	eng := engine.New(nil)
	p := NewChunkProcessor(eng)
	params := domain.ZlibParams(domain.LevelDefault)
	data := bytes.Repeat([]byte("pull input, push output, constant memory. "), 2000)

	var compressed bytes.Buffer
	err := p.Compress(params, chunkedProvider(data, 1000), func(chunk []byte) bool {
		compressed.Write(chunk)
		return true
	})
	require.NoError(t, err)
	require.NotEmpty(t, compressed.Bytes())

	var plain bytes.Buffer
	err = p.Decompress(params, chunkedProvider(compressed.Bytes(), 777), func(chunk []byte) bool {
		plain.Write(chunk)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, data, plain.Bytes())
}

func TestChunkProcessorCancellation(t *testing.T) {
	p := NewChunkProcessor(engine.New(nil))
	params := domain.ZlibParams(domain.LevelDefault)
	data := bytes.Repeat([]byte("cancel after the first output chunk "), 5000)

	calls := 0
	err := p.Compress(params, chunkedProvider(data, 1000), func(chunk []byte) bool {
		calls++
		return false
	})
	require.Error(t, err)
	require.True(t, errors.IsCancelled(err))
	require.Equal(t, 1, calls)
}

func TestChunkProcessorProviderError(t *testing.T) {
	p := NewChunkProcessor(engine.New(nil))
	params := domain.ZlibParams(domain.LevelDefault)

	err := p.Compress(params, func() ([]byte, error) {
		return nil, errors.NewInvalidDataError("provider", "source unavailable")
	}, func([]byte) bool { return true })
	require.Error(t, err)
	require.True(t, errors.IsStreamError(err))
}

func TestChunkProcessorTruncatedStream(t *testing.T) {
	eng := engine.New(nil)
	p := NewChunkProcessor(eng)
	params := domain.ZlibParams(domain.LevelDefault)

	o := NewOneShot(eng)
	data := bytes.Repeat([]byte("truncation detection "), 500)
	compressed, err := o.Compress(data, domain.LevelDefault)
	require.NoError(t, err)

	truncated := compressed[:len(compressed)/2]
	err = p.Decompress(params, chunkedProvider(truncated, 100), func([]byte) bool { return true })
	require.Error(t, err)
}

func TestChunkProcessorBufferHelpers(t *testing.T) {
	p := NewChunkProcessorSize(engine.New(nil), 512)
	params := domain.GzipParams(domain.LevelDefault)
	data := bytes.Repeat([]byte("materializing convenience wrappers "), 400)

	compressed, err := p.CompressBuffer(params, data)
	require.NoError(t, err)

	plain, err := p.DecompressBuffer(params, compressed)
	require.NoError(t, err)
	require.Equal(t, data, plain)
}
