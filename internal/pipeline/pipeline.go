// Package pipeline orchestrates one background-removal request:
// decode → resize → prepare tensor → infer → composite → write.
//
// The pipeline is strictly sequential; every stage consumes the prior
// stage's complete output, and no buffer is shared between requests.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/AnyUserName/cutout-cli/internal/compositor"
	"github.com/AnyUserName/cutout-cli/internal/engine"
	"github.com/AnyUserName/cutout-cli/internal/hasher"
	"github.com/AnyUserName/cutout-cli/internal/imgio"
	"github.com/AnyUserName/cutout-cli/internal/resample"
	"github.com/AnyUserName/cutout-cli/internal/tensor"
)

// Config holds the per-process pipeline parameters.
type Config struct {
	// InputSize is the square model input resolution. 0 means the
	// default (tensor.InputSize).
	InputSize int
	// Logger receives stage-level progress. nil disables logging.
	Logger *zap.Logger
}

// Result describes one successfully written output image.
type Result struct {
	// OutputPath is the resolved absolute path of the written file.
	OutputPath string
	// Bytes is the number of bytes written.
	Bytes int
	// Hash is a short xxHash64 of the written bytes.
	Hash string
	// Width and Height are the source image dimensions.
	Width  int
	Height int
}

// Pipeline runs background-removal requests against one engine.
type Pipeline struct {
	cfg Config
	eng engine.Engine
	log *zap.Logger
}

// New creates a configured pipeline.
func New(cfg Config, eng engine.Engine) *Pipeline {
	if cfg.InputSize <= 0 {
		cfg.InputSize = tensor.InputSize
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, eng: eng, log: log}
}

// Remove runs the full pipeline for one image and writes the
// transparent result to outputPath. The first stage error aborts the
// request; nothing is retried here.
func (p *Pipeline) Remove(ctx context.Context, imagePath, outputPath string) (*Result, error) {
	size := p.cfg.InputSize

	rgba, w, h, err := imgio.DecodeOriented(imagePath)
	if err != nil {
		return nil, err
	}
	p.log.Debug("decoded source",
		zap.String("image", imagePath),
		zap.Int("width", w),
		zap.Int("height", h))

	// Direct stretch to the model square; the network has no
	// letterboxing convention.
	resized, err := resample.ResizeRGBA(rgba, w, h, size, size)
	if err != nil {
		return nil, err
	}

	input, shape, err := tensor.Prepare(resized, size, size)
	if err != nil {
		return nil, err
	}

	raw, outShape, err := p.eng.Infer(ctx, input, shape)
	if err != nil {
		return nil, err
	}
	p.log.Debug("inference complete",
		zap.Int64s("output_shape", outShape),
		zap.Int("floats", len(raw)))

	// The original rgba buffer from decode is reused for compositing;
	// the source file is not decoded a second time.
	out, err := compositor.Postprocess(raw, outShape, rgba, w, h)
	if err != nil {
		return nil, err
	}

	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.WriteFile(absOut, out, 0o644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	res := &Result{
		OutputPath: absOut,
		Bytes:      len(out),
		Hash:       hasher.ContentHash(out, 16),
		Width:      w,
		Height:     h,
	}
	p.log.Info("background removed",
		zap.String("output", res.OutputPath),
		zap.Int("bytes", res.Bytes),
		zap.String("hash", res.Hash))
	return res, nil
}
