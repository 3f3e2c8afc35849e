package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/iamNilotpal/zstream/internal/adapters/engine"
	"github.com/iamNilotpal/zstream/internal/adapters/fs"
	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/pkg/errors"
)

type PipelineTestSuite struct {
	suite.Suite
	engine *engine.Engine
	fs     *fs.LocalFileSystem
}

func (suite *PipelineTestSuite) SetupSuite() {
	suite.engine = engine.New(nil)
	suite.fs = fs.NewLocalFileSystem()
}

func (suite *PipelineTestSuite) writeSource(data []byte) (dir, src string) {
	dir = suite.T().TempDir()
	src = filepath.Join(dir, "source.bin")
	suite.Require().NoError(os.WriteFile(src, data, 0o644))
	return dir, src
}

func (suite *PipelineTestSuite) TestFileRoundTrip() {
	data := bytes.Repeat([]byte("file pipeline round trip payload, chunked. "), 20000)
	dir, src := suite.writeSource(data)
	compressed := filepath.Join(dir, "out.z")
	restored := filepath.Join(dir, "restored.bin")

	p := New(suite.engine, suite.fs, Options{ChunkSize: 64 * 1024, ReportInterval: time.Millisecond})
	params := domain.ZlibParams(domain.LevelDefault)

	var snapshots []domain.Progress
	err := p.CompressFile(context.Background(), src, compressed, params, func(snap domain.Progress) bool {
		snapshots = append(snapshots, snap)
		return true
	})
	suite.Require().NoError(err)

	// Progress is monotonically non-decreasing and ends in the finished
	// phase with the full source size.
	suite.Require().NotEmpty(snapshots)
	for i := 1; i < len(snapshots); i++ {
		suite.Require().GreaterOrEqual(snapshots[i].Processed, snapshots[i-1].Processed)
	}
	last := snapshots[len(snapshots)-1]
	suite.Require().Equal(domain.PhaseFinished, last.Phase)
	suite.Require().Equal(int64(len(data)), last.Processed)
	suite.Require().InDelta(100.0, last.Percent, 0.01)

	err = p.DecompressFile(context.Background(), compressed, restored, params, nil)
	suite.Require().NoError(err)

	got, err := os.ReadFile(restored)
	suite.Require().NoError(err)
	suite.Require().Equal(data, got)
}

func (suite *PipelineTestSuite) TestCallbackCancellation() {
	data := bytes.Repeat([]byte("cancel me "), 100000)
	dir, src := suite.writeSource(data)
	dst := filepath.Join(dir, "out.z")

	p := New(suite.engine, suite.fs, Options{ChunkSize: 4 * 1024, ReportInterval: time.Nanosecond})
	err := p.CompressFile(context.Background(), src, dst, domain.ZlibParams(domain.LevelDefault),
		func(domain.Progress) bool { return false })
	suite.Require().Error(err)
	suite.Require().True(errors.IsCancelled(err))

	// No partial output is left behind.
	exists, err := suite.fs.Exists(dst)
	suite.Require().NoError(err)
	suite.Require().False(exists)
}

func (suite *PipelineTestSuite) TestContextCancellation() {
	data := bytes.Repeat([]byte("context cancellation "), 50000)
	dir, src := suite.writeSource(data)
	dst := filepath.Join(dir, "out.z")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(suite.engine, suite.fs, Options{})
	err := p.CompressFile(ctx, src, dst, domain.ZlibParams(domain.LevelDefault), nil)
	suite.Require().Error(err)
	suite.Require().True(errors.IsCancelled(err))
}

func (suite *PipelineTestSuite) TestMissingSource() {
	dir := suite.T().TempDir()
	p := New(suite.engine, suite.fs, Options{})
	err := p.CompressFile(context.Background(),
		filepath.Join(dir, "missing.bin"), filepath.Join(dir, "out.z"),
		domain.ZlibParams(domain.LevelDefault), nil)
	suite.Require().Error(err)
	suite.Require().True(errors.IsStreamError(err))
}

func (suite *PipelineTestSuite) TestExistingDestinationWithoutForce() {
	data := []byte("destination already present")
	dir, src := suite.writeSource(data)
	dst := filepath.Join(dir, "out.z")
	suite.Require().NoError(os.WriteFile(dst, []byte("occupied"), 0o644))

	p := New(suite.engine, suite.fs, Options{})
	err := p.CompressFile(context.Background(), src, dst, domain.ZlibParams(domain.LevelDefault), nil)
	suite.Require().Error(err)

	forced := New(suite.engine, suite.fs, Options{Force: true})
	err = forced.CompressFile(context.Background(), src, dst, domain.ZlibParams(domain.LevelDefault), nil)
	suite.Require().NoError(err)
}

func (suite *PipelineTestSuite) TestEmptyFile() {
	dir, src := suite.writeSource(nil)
	compressed := filepath.Join(dir, "out.z")
	restored := filepath.Join(dir, "restored.bin")

	p := New(suite.engine, suite.fs, Options{})
	params := domain.ZlibParams(domain.LevelDefault)
	suite.Require().NoError(p.CompressFile(context.Background(), src, compressed, params, nil))
	suite.Require().NoError(p.DecompressFile(context.Background(), compressed, restored, params, nil))

	got, err := os.ReadFile(restored)
	suite.Require().NoError(err)
	suite.Require().Empty(got)
}

func (suite *PipelineTestSuite) TestTruncatedCompressedFile() {
	data := bytes.Repeat([]byte("truncation must surface as an error "), 30000)
	dir, src := suite.writeSource(data)
	compressed := filepath.Join(dir, "out.z")
	restored := filepath.Join(dir, "restored.bin")

	p := New(suite.engine, suite.fs, Options{})
	params := domain.ZlibParams(domain.LevelDefault)
	suite.Require().NoError(p.CompressFile(context.Background(), src, compressed, params, nil))

	// Cut the compressed file in half mid-stream.
	whole, err := os.ReadFile(compressed)
	suite.Require().NoError(err)
	suite.Require().NoError(os.WriteFile(compressed, whole[:len(whole)/2], 0o644))

	err = p.DecompressFile(context.Background(), compressed, restored, params, nil)
	suite.Require().Error(err)

	// The partial destination is not left behind.
	exists, err := suite.fs.Exists(restored)
	suite.Require().NoError(err)
	suite.Require().False(exists)
}

func (suite *PipelineTestSuite) TestAsyncRun() {
	data := bytes.Repeat([]byte("async progress channel "), 30000)
	dir, src := suite.writeSource(data)
	compressed := filepath.Join(dir, "out.z")
	restored := filepath.Join(dir, "restored.bin")

	p := New(suite.engine, suite.fs, Options{ReportInterval: time.Millisecond})
	params := domain.ZlibParams(domain.LevelDefault)

	progressCh, errCh := p.CompressFileAsync(context.Background(), src, compressed, params)

	var lastProcessed int64
	for snap := range progressCh {
		suite.Require().GreaterOrEqual(snap.Processed, lastProcessed)
		lastProcessed = snap.Processed
	}
	suite.Require().NoError(<-errCh)

	suite.Require().NoError(p.DecompressFile(context.Background(), compressed, restored, params, nil))
	got, err := os.ReadFile(restored)
	suite.Require().NoError(err)
	suite.Require().Equal(data, got)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	suite.Require().NoError(p.Close(ctx))
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
