// Package engine is the inference boundary: a synchronous call that
// accepts the prepared input tensor and returns the raw output tensor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Engine runs one synchronous inference over the segmentation network.
// Implementations must not retain the input slice after returning.
type Engine interface {
	Infer(ctx context.Context, data []float32, shape []int64) ([]float32, []int64, error)
}

// MaxModelBytes is the model artifact size ceiling. Files strictly
// larger than this are rejected as invalid. Callers depend on this
// exact threshold semantic; see DESIGN.md before changing it.
const MaxModelBytes int64 = 256 << 20

var (
	// ErrMissingModel reports an absent model artifact.
	ErrMissingModel = errors.New("model file not found")
	// ErrInvalidModel reports a model artifact failing size validation.
	ErrInvalidModel = errors.New("invalid model file")
)

// ValidateModelFile checks that the model artifact exists and passes
// the size ceiling before any inference session is created.
func ValidateModelFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMissingModel, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidModel, path)
	}
	if info.Size() > MaxModelBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrInvalidModel, path, info.Size(), MaxModelBytes)
	}
	return nil
}
