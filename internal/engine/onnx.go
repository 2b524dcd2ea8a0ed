package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	onnxrt "github.com/yalue/onnxruntime_go"
)

// sharedLibraryEnv optionally points at the onnxruntime shared library
// when it is not on the default loader path.
const sharedLibraryEnv = "ONNXRUNTIME_SHARED_LIBRARY"

var initOnce sync.Once
var initErr error

func initRuntime() error {
	initOnce.Do(func() {
		if p := os.Getenv(sharedLibraryEnv); p != "" {
			onnxrt.SetSharedLibraryPath(p)
		}
		initErr = onnxrt.InitializeEnvironment()
	})
	return initErr
}

// ONNXEngine runs the segmentation network through ONNX Runtime. One
// engine owns one session; Infer is synchronous and not safe for
// concurrent use, matching the one-request-at-a-time pipeline contract.
type ONNXEngine struct {
	session    *onnxrt.DynamicAdvancedSession
	inputName  string
	outputName string
}

// NewONNXEngine validates the model artifact and opens an inference
// session, discovering the model's input and output names.
func NewONNXEngine(modelPath string) (*ONNXEngine, error) {
	if err := ValidateModelFile(modelPath); err != nil {
		return nil, err
	}
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", modelPath, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: %s declares %d inputs, %d outputs", ErrInvalidModel, modelPath, len(inputs), len(outputs))
	}

	session, err := onnxrt.NewDynamicAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", modelPath, err)
	}

	return &ONNXEngine{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
	}, nil
}

// Infer runs one forward pass and returns the first output tensor's
// data and shape.
func (e *ONNXEngine) Infer(ctx context.Context, data []float32, shape []int64) ([]float32, []int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	input, err := onnxrt.NewTensor(onnxrt.NewShape(shape...), data)
	if err != nil {
		return nil, nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = input.Destroy() }()

	outs := []onnxrt.Value{nil}
	if err := e.session.Run([]onnxrt.Value{input}, outs); err != nil {
		return nil, nil, fmt.Errorf("run inference: %w", err)
	}
	if len(outs) == 0 || outs[0] == nil {
		return nil, nil, errors.New("run inference: no output tensor")
	}
	defer func() { _ = outs[0].Destroy() }()

	out, ok := outs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return nil, nil, errors.New("run inference: output is not a float32 tensor")
	}

	outShape := out.GetShape()
	outData := make([]float32, len(out.GetData()))
	copy(outData, out.GetData())

	dims := make([]int64, len(outShape))
	copy(dims, outShape)
	return outData, dims, nil
}

// Close releases the inference session.
func (e *ONNXEngine) Close() error {
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}
