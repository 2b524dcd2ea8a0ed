package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnyUserName/cutout-cli/internal/dispatch"
	"github.com/AnyUserName/cutout-cli/internal/engine"
	"github.com/AnyUserName/cutout-cli/internal/logging"
	"github.com/AnyUserName/cutout-cli/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve removeBackground requests as JSON over stdin/stdout",
	Long: `Reads JSON request objects from stdin and writes one JSON response
per request to stdout. Requests are handled strictly one at a time.

Request:  {"action":"removeBackground","args":{"imagePath":"...","modelPath":"...","outputPath":"..."}}
Response: {"outputPath":"...","bytes":12345,"hash":"..."} or {"error":"..."}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	log, err := logging.New(verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Requests are serial, so one cached engine per model path is
	// enough; a model switch closes the previous session.
	var (
		eng      *engine.ONNXEngine
		engModel string
	)
	defer func() {
		if eng != nil {
			_ = eng.Close()
		}
	}()

	run := func(ctx context.Context, imagePath, modelPath, outputPath string) (*pipeline.Result, error) {
		if eng == nil || engModel != modelPath {
			if eng != nil {
				_ = eng.Close()
				eng = nil
			}
			e, err := engine.NewONNXEngine(modelPath)
			if err != nil {
				return nil, err
			}
			eng = e
			engModel = modelPath
			log.Info("model loaded", zap.String("model", modelPath))
		}
		p := pipeline.New(pipeline.Config{Logger: log}, eng)
		return p.Remove(ctx, imagePath, outputPath)
	}

	d := dispatch.New(run)
	log.Info("serving requests on stdin")
	return d.Serve(context.Background(), os.Stdin, os.Stdout)
}
