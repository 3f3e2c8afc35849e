package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/iamNilotpal/zstream/config"
	"github.com/iamNilotpal/zstream/internal/adapters/engine"
	"github.com/iamNilotpal/zstream/internal/adapters/fs"
	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/internal/core/services/pipeline"
	"github.com/iamNilotpal/zstream/internal/serialize"
	"github.com/iamNilotpal/zstream/pkg/errors"
	"github.com/iamNilotpal/zstream/pkg/logger"
)

type summary struct {
	Mode        string  `json:"mode"`
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	BytesRead   int64   `json:"bytes_read"`
	BytesWrote  int64   `json:"bytes_wrote"`
	Ratio       float64 `json:"ratio"`
}

func main() {
	logger := logger.New("zpipe")
	defer logger.Sync()

	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "usage: zpipe <compress|decompress> <src> <dst> [config.yaml]")
		os.Exit(2)
	}
	mode, src, dst := os.Args[1], os.Args[2], os.Args[3]

	cfg := config.DefaultConfig()
	if len(os.Args) > 4 {
		loaded, err := config.LoadConfig(os.Args[4])
		if err != nil {
			if errors.IsValidationError(err) {
				ve := errors.AsValidationError(err)
				logger.Infow("config error", "field", ve.Field, "value", ve.Value, "error", ve.Err)
			} else {
				logger.Infow("config error", "error", err)
			}
			os.Exit(1)
		}
		cfg = loaded
	}

	params := domain.DefaultParams()
	params.Level = cfg.Codec.Level
	params.WindowBits = cfg.Codec.WindowBits
	params.MemLevel = cfg.Codec.MemLevel
	params.Strategy = strategyOf(cfg.Codec.Strategy)

	p := pipeline.New(engine.New(nil), fs.NewLocalFileSystem(), pipeline.Options{
		ChunkSize:      cfg.Pipeline.ChunkSize,
		ReportInterval: time.Duration(cfg.Pipeline.ReportInterval),
		Force:          cfg.Pipeline.Force,
		Listeners: domain.PipelineListeners{
			OnPhase: func(phase domain.Phase) {
				if cfg.Verbose {
					logger.Debugw("phase", "phase", phase)
				}
			},
		},
	})

	var read, wrote int64
	onProgress := func(snap domain.Progress) bool {
		logger.Infow("progress",
			"processed", snap.Processed,
			"total", snap.Total,
			"percent", fmt.Sprintf("%.1f", snap.Percent),
			"phase", snap.Phase,
		)
		return true
	}

	ctx := context.Background()
	var err error
	switch mode {
	case "compress":
		err = p.CompressFile(ctx, src, dst, params, onProgress)
	case "decompress":
		// Auto-detect zlib or gzip framing on the read side.
		params.WindowBits = domain.AutoWindowOffset + domain.WindowBitsDefault
		err = p.DecompressFile(ctx, src, dst, params, onProgress)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		os.Exit(2)
	}
	if err != nil {
		logger.Infow("pipeline error", "mode", mode, "error", err)
		os.Exit(1)
	}

	lfs := fs.NewLocalFileSystem()
	read, _ = lfs.Size(src)
	wrote, _ = lfs.Size(dst)

	s := summary{Mode: mode, Source: src, Destination: dst, BytesRead: read, BytesWrote: wrote}
	if read > 0 {
		s.Ratio = float64(wrote) / float64(read)
	}
	if out, err := serialize.MarshalIndentJSON(s); err == nil {
		fmt.Println(string(out))
	}
}

func strategyOf(name string) domain.Strategy {
	switch name {
	case "filtered":
		return domain.StrategyFiltered
	case "huffman":
		return domain.StrategyHuffman
	case "rle":
		return domain.StrategyRLE
	case "fixed":
		return domain.StrategyFixed
	default:
		return domain.StrategyDefault
	}
}
