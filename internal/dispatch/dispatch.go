// Package dispatch implements the caller-facing request/response
// contract: one JSON request object in, one JSON response object out,
// handled strictly one at a time.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AnyUserName/cutout-cli/internal/engine"
	"github.com/AnyUserName/cutout-cli/internal/pipeline"
)

// ActionRemoveBackground is the only action the dispatcher accepts.
const ActionRemoveBackground = "removeBackground"

// Request is one caller invocation.
type Request struct {
	Action string            `json:"action"`
	Args   map[string]string `json:"args"`
}

// Response is the single reply for a request. Exactly one of Error or
// the success fields is populated.
type Response struct {
	OutputPath string `json:"outputPath,omitempty"`
	Bytes      int    `json:"bytes,omitempty"`
	Hash       string `json:"hash,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ErrInvalidRequest reports a malformed or unknown request.
var ErrInvalidRequest = errors.New("invalid request")

// MissingArgumentError reports a required argument that is absent or
// empty.
type MissingArgumentError struct {
	Key string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Key)
}

// Runner executes one validated background-removal request. It exists
// so the dispatcher can be tested without a real pipeline, and so a
// future queued dispatcher can wrap the same pipeline unchanged.
type Runner func(ctx context.Context, imagePath, modelPath, outputPath string) (*pipeline.Result, error)

// Dispatcher validates requests and maps results and errors into
// responses.
type Dispatcher struct {
	run Runner
}

// New creates a dispatcher around a runner.
func New(run Runner) *Dispatcher {
	return &Dispatcher{run: run}
}

// requiredArg fetches a required, non-empty argument.
func requiredArg(args map[string]string, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == "" {
		return "", &MissingArgumentError{Key: key}
	}
	return v, nil
}

// Handle processes one request and always produces a response; every
// pipeline error surfaces as a single descriptive message.
func (d *Dispatcher) Handle(ctx context.Context, req *Request) Response {
	if req.Action != ActionRemoveBackground {
		return errResponse(fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, req.Action))
	}

	imagePath, err := requiredArg(req.Args, "imagePath")
	if err != nil {
		return errResponse(err)
	}
	modelPath, err := requiredArg(req.Args, "modelPath")
	if err != nil {
		return errResponse(err)
	}
	outputPath, err := requiredArg(req.Args, "outputPath")
	if err != nil {
		return errResponse(err)
	}

	if err := engine.ValidateModelFile(modelPath); err != nil {
		return errResponse(err)
	}

	res, err := d.run(ctx, imagePath, modelPath, outputPath)
	if err != nil {
		return errResponse(err)
	}
	return Response{OutputPath: res.OutputPath, Bytes: res.Bytes, Hash: res.Hash}
}

// Serve reads JSON requests from r and writes one JSON response per
// request to w until EOF. Requests run serially; a second request is
// not read before the first response is written.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// A malformed frame still gets a response, but the stream
			// position is unrecoverable afterwards.
			_ = enc.Encode(errResponse(fmt.Errorf("%w: %v", ErrInvalidRequest, err)))
			return fmt.Errorf("decode request: %w", err)
		}

		resp := d.Handle(ctx, &req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

func errResponse(err error) Response {
	return Response{Error: err.Error()}
}
