package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cutout",
	Short: "Background removal for photographs via a segmentation network",
	Long: `cutout — strips the background from a photograph and writes a
transparent PNG.

Decodes any common image format (orientation-aware), feeds a
fixed-resolution ONNX segmentation model, and composites the predicted
mask back into the original image's alpha channel.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"cutout %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[cutout] "+format+"\n", args...)
	}
}
