package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/zstream/pkg/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, validateConfig(cfg))
	require.Equal(t, -1, cfg.Codec.Level)
	require.Equal(t, 15, cfg.Codec.WindowBits)
	require.Equal(t, 64*1024, cfg.Pipeline.ChunkSize)
}

func TestLoadConfig(t *testing.T) {
	contents := `
codec:
  level: 9
  window_bits: 31
  strategy: huffman
pipeline:
  chunk_size: 8192
  report_interval: 250ms
  force: true
verbose: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9, cfg.Codec.Level)
	require.Equal(t, 31, cfg.Codec.WindowBits)
	require.Equal(t, "huffman", cfg.Codec.Strategy)
	require.Equal(t, 8192, cfg.Pipeline.ChunkSize)
	require.Equal(t, 250*time.Millisecond, time.Duration(cfg.Pipeline.ReportInterval))
	require.True(t, cfg.Pipeline.Force)
	require.True(t, cfg.Verbose)

	// Omitted keys keep their defaults.
	require.Equal(t, 8, cfg.Codec.MemLevel)
}

func TestLoadConfigIntervalAsNanoseconds(t *testing.T) {
	contents := "pipeline:\n  report_interval: 250000000\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, time.Duration(cfg.Pipeline.ReportInterval))
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	for name, tc := range map[string]struct {
		contents string
		field    string
	}{
		"bad-level":       {"codec:\n  level: 12\n", "codec.level"},
		"bad-window-bits": {"codec:\n  window_bits: 20\n", "codec.window_bits"},
		"bad-strategy":    {"codec:\n  strategy: turbo\n", "codec.strategy"},
		"bad-chunk-size":  {"pipeline:\n  chunk_size: -1\n", "pipeline.chunk_size"},
	} {
		path := filepath.Join(t.TempDir(), name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(tc.contents), 0o644))
		_, err := LoadConfig(path)
		require.Error(t, err, name)
		require.True(t, errors.IsValidationError(err), name)
		require.Equal(t, tc.field, errors.AsValidationError(err).Field, name)
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	contents := "pipeline:\n  report_interval: soon\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
