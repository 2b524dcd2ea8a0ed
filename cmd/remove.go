package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/cutout-cli/internal/engine"
	"github.com/AnyUserName/cutout-cli/internal/logging"
	"github.com/AnyUserName/cutout-cli/internal/pipeline"
)

var (
	removeModel string
	removeOut   string
	removeSize  int
)

var removeCmd = &cobra.Command{
	Use:   "remove <image>",
	Short: "Remove the background from one image and write a transparent PNG",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	removeCmd.Flags().StringVarP(&removeModel, "model", "m", "", "path to the ONNX segmentation model (required)")
	removeCmd.Flags().StringVarP(&removeOut, "out", "o", "", "output path (default: <image>.cutout.png)")
	removeCmd.Flags().IntVar(&removeSize, "input-size", 0, "model input resolution (0 = model default)")
	_ = removeCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(_ *cobra.Command, args []string) error {
	imagePath := args[0]
	start := time.Now()

	outPath := removeOut
	if outPath == "" {
		ext := filepath.Ext(imagePath)
		outPath = strings.TrimSuffix(imagePath, ext) + ".cutout.png"
	}

	logVerbose("image:  %s", imagePath)
	logVerbose("model:  %s", removeModel)
	logVerbose("output: %s", outPath)

	log, err := logging.New(verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	eng, err := engine.NewONNXEngine(removeModel)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	p := pipeline.New(pipeline.Config{InputSize: removeSize, Logger: log}, eng)
	res, err := p.Remove(context.Background(), imagePath, outPath)
	if err != nil {
		return err
	}

	fmt.Printf("  ✓ %s (%d bytes, hash %s, %s)\n",
		res.OutputPath, res.Bytes, res.Hash, time.Since(start).Round(time.Millisecond))
	return nil
}
