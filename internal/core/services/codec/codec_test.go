package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/iamNilotpal/zstream/internal/adapters/engine"
	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/pkg/errors"
)

type CodecTestSuite struct {
	suite.Suite
	engine *engine.Engine
}

func (suite *CodecTestSuite) SetupSuite() {
	suite.engine = engine.New(nil)
}

func (suite *CodecTestSuite) compress(params domain.CompressionParams, data []byte) []byte {
	c := NewCompressor(suite.engine)
	suite.Require().NoError(c.Initialize(params))
	defer c.Close()
	out, err := c.Compress(data, domain.FlushFinish)
	suite.Require().NoError(err)
	return out
}

func (suite *CodecTestSuite) decompress(params domain.CompressionParams, data []byte) []byte {
	d := NewDecompressor(suite.engine)
	suite.Require().NoError(d.Initialize(params))
	defer d.Close()
	out, err := d.Decompress(data, domain.FlushFinish)
	suite.Require().NoError(err)
	return out
}

func (suite *CodecTestSuite) TestHelloWorldBestCompression() {
	data := []byte("hello world")
	params := domain.ZlibParams(domain.LevelBestCompression)

	compressed := suite.compress(params, data)
	suite.Require().NotEmpty(compressed)
	suite.Require().Equal(data, suite.decompress(params, compressed))
}

func (suite *CodecTestSuite) TestEmptyInputRawFraming() {
	params := domain.RawParams(domain.LevelDefault)

	c := NewCompressor(suite.engine)
	suite.Require().NoError(c.Initialize(params))
	defer c.Close()

	compressed, err := c.Finish()
	suite.Require().NoError(err)
	suite.Require().NotEmpty(compressed, "even an empty stream has a final block")

	suite.Require().Empty(suite.decompress(params, compressed))
}

func (suite *CodecTestSuite) TestLargeHighlyCompressibleBuffer() {
	data := bytes.Repeat([]byte{0xAB}, 10<<20)
	params := domain.ZlibParams(domain.LevelDefault)

	compressed := suite.compress(params, data)
	suite.Require().Less(len(compressed), len(data)/100, "10MB of one byte should compress below 1%")

	suite.Require().Equal(data, suite.decompress(params, compressed))
}

func (suite *CodecTestSuite) TestOneByteAtATimeDecompression() {
	data := bytes.Repeat([]byte("step loop boundary conditions, one byte per call. "), 400)
	params := domain.ZlibParams(domain.LevelDefault)
	compressed := suite.compress(params, data)

	d := NewDecompressor(suite.engine)
	suite.Require().NoError(d.Initialize(params))
	defer d.Close()

	var plain bytes.Buffer
	for i := 0; i < len(compressed); i++ {
		out, err := d.Decompress(compressed[i:i+1], domain.FlushNone)
		suite.Require().NoError(err, "byte %d of %d", i, len(compressed))
		plain.Write(out)
	}
	suite.Require().Equal(data, plain.Bytes())
	suite.Require().Equal(int64(len(compressed)), d.TotalIn())
	suite.Require().Equal(int64(len(data)), d.TotalOut())
}

func (suite *CodecTestSuite) TestTruncatedStreamFailsOnFinish() {
	data := bytes.Repeat([]byte("a truncated stream must never decompress cleanly "), 300)
	params := domain.ZlibParams(domain.LevelDefault)
	compressed := suite.compress(params, data)

	d := NewDecompressor(suite.engine)
	suite.Require().NoError(d.Initialize(params))
	defer d.Close()

	_, err := d.Decompress(compressed[:len(compressed)/2], domain.FlushFinish)
	suite.Require().Error(err)
	suite.Require().Equal(domain.StatusBufError, errors.StatusOf(err))

	// The same prefix without finish is just an incomplete stream waiting
	// for the rest of its input.
	d2 := NewDecompressor(suite.engine)
	suite.Require().NoError(d2.Initialize(params))
	defer d2.Close()
	head, err := d2.Decompress(compressed[:len(compressed)/2], domain.FlushNone)
	suite.Require().NoError(err)
	tail, err := d2.Decompress(compressed[len(compressed)/2:], domain.FlushFinish)
	suite.Require().NoError(err)
	suite.Require().Equal(data, append(head, tail...))
}

func (suite *CodecTestSuite) TestDictionaryFlow() {
	dict := []byte("test dictionary")
	data := []byte("test dictionary driven content referencing the test dictionary")
	params := domain.ZlibParams(domain.LevelDefault)

	c := NewCompressor(suite.engine)
	suite.Require().NoError(c.Initialize(params))
	defer c.Close()
	suite.Require().NoError(c.SetDictionary(dict))
	compressed, err := c.Compress(data, domain.FlushFinish)
	suite.Require().NoError(err)

	// Without the dictionary, decompression must stop with NeedDictionary.
	d := NewDecompressor(suite.engine)
	suite.Require().NoError(d.Initialize(params))
	defer d.Close()
	_, err = d.Decompress(compressed, domain.FlushFinish)
	suite.Require().Error(err)
	suite.Require().True(errors.IsNeedDictionary(err))

	// The unconsumed input stayed buffered: installing the dictionary and
	// calling again resumes at the point of failure.
	suite.Require().NoError(d.SetDictionary(dict))
	plain, err := d.Decompress(nil, domain.FlushFinish)
	suite.Require().NoError(err)
	suite.Require().Equal(data, plain)

	// Supplying the dictionary up front handles the retry internally.
	d2 := NewDecompressor(suite.engine)
	suite.Require().NoError(d2.Initialize(params))
	defer d2.Close()
	plain, err = d2.DecompressWithDictionary(compressed, domain.FlushFinish, dict)
	suite.Require().NoError(err)
	suite.Require().Equal(data, plain)
}

func (suite *CodecTestSuite) TestDictionaryCompressionDeterministic() {
	dict := []byte("determinism dictionary")
	data := []byte("determinism dictionary referencing payload")
	params := domain.ZlibParams(domain.LevelBestCompression)

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		c := NewCompressor(suite.engine)
		suite.Require().NoError(c.Initialize(params))
		suite.Require().NoError(c.SetDictionary(dict))
		out, err := c.Compress(data, domain.FlushFinish)
		suite.Require().NoError(err)
		suite.Require().NoError(c.Close())
		outputs = append(outputs, out)
	}
	suite.Require().Equal(outputs[0], outputs[1])
}

func (suite *CodecTestSuite) TestChunkingInvariance() {
	data := bytes.Repeat([]byte("chunk boundaries must not affect the decompressed content "), 300)
	params := domain.ZlibParams(domain.LevelDefault)

	for _, chunkSize := range []int{1, 3, 100, 4096, len(data)} {
		c := NewCompressor(suite.engine)
		suite.Require().NoError(c.Initialize(params))

		var compressed bytes.Buffer
		for off := 0; off < len(data); off += chunkSize {
			end := off + chunkSize
			if end > len(data) {
				end = len(data)
			}
			out, err := c.Compress(data[off:end], domain.FlushNone)
			suite.Require().NoError(err)
			compressed.Write(out)
		}
		out, err := c.Finish()
		suite.Require().NoError(err)
		compressed.Write(out)
		suite.Require().NoError(c.Close())

		plain := suite.decompress(params, compressed.Bytes())
		suite.Require().Equal(data, plain, "chunk size %d", chunkSize)
	}
}

func (suite *CodecTestSuite) TestUninitializedOperationsFail() {
	c := NewCompressor(suite.engine)
	_, err := c.Compress([]byte("data"), domain.FlushNone)
	suite.Require().True(errors.IsStreamError(err))
	suite.Require().True(errors.IsStreamError(c.SetDictionary([]byte("d"))))
	suite.Require().True(errors.IsStreamError(c.Reset()))
	_, _, err = c.Pending()
	suite.Require().True(errors.IsStreamError(err))

	d := NewDecompressor(suite.engine)
	_, err = d.Decompress([]byte("data"), domain.FlushNone)
	suite.Require().True(errors.IsStreamError(err))
	_, err = d.GzipHeader()
	suite.Require().True(errors.IsStreamError(err))
}

func (suite *CodecTestSuite) TestCompressorCountersAndReset() {
	data := bytes.Repeat([]byte("counters "), 1000)
	params := domain.ZlibParams(domain.LevelDefault)

	c := NewCompressor(suite.engine)
	suite.Require().NoError(c.Initialize(params))
	defer c.Close()

	first, err := c.Compress(data, domain.FlushFinish)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(len(data)), c.TotalIn())
	suite.Require().Equal(int64(len(first)), c.TotalOut())

	// Finished streams reject further input until a reset.
	_, err = c.Compress(data, domain.FlushNone)
	suite.Require().True(errors.IsStreamError(err))

	suite.Require().NoError(c.Reset())
	suite.Require().Zero(c.TotalIn())
	second, err := c.Compress(data, domain.FlushFinish)
	suite.Require().NoError(err)
	suite.Require().Equal(data, suite.decompress(params, second))
}

func (suite *CodecTestSuite) TestListenersObserveSteps() {
	data := []byte("observability hooks")
	params := domain.ZlibParams(domain.LevelDefault)

	var steps int
	var resets int
	c := NewCompressorWithListeners(suite.engine, domain.StreamListeners{
		OnStep:  func(op string, consumed, produced int) { steps++ },
		OnReset: func() { resets++ },
	})
	suite.Require().NoError(c.Initialize(params))
	defer c.Close()

	_, err := c.Compress(data, domain.FlushFinish)
	suite.Require().NoError(err)
	suite.Require().Positive(steps)

	suite.Require().NoError(c.Reset())
	suite.Require().Equal(1, resets)
}

func TestCodecTestSuite(t *testing.T) {
	suite.Run(t, new(CodecTestSuite))
}
