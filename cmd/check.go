package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/cutout-cli/internal/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check <model_path>",
	Short: "Validate a model artifact (existence and size ceiling)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	modelPath := args[0]

	if err := engine.ValidateModelFile(modelPath); err != nil {
		fmt.Printf("  ✗ %v\n", err)
		return err
	}

	info, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("stat model: %w", err)
	}
	fmt.Printf("  ✓ %s is valid (%d bytes, ceiling %d)\n", modelPath, info.Size(), engine.MaxModelBytes)
	return nil
}
