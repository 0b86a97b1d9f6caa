package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SwapLabsInc/ChadGI-sub003/internal/statedir"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/color"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a ChadGI state directory",
	Long: `Initialize a ChadGI state directory in the current directory.

This creates:
  - .chadgi/ with the locks/ subdirectory
  - format_version file (version 1)
  - config.yaml with default settings`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fmtErr("cannot get current directory: %v", err)
			os.Exit(1)
		}

		state, err := statedir.Init(cwd)
		if err != nil {
			fmtErr("failed to initialize state directory: %v", err)
			os.Exit(1)
		}
		if err := config.Save(state.Root, config.Default()); err != nil {
			fmtErr("write default config: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(map[string]any{
				"state_root":     state.Root,
				"format_version": state.FormatVersion,
				"instance_id":    state.InstanceID,
			})
		} else {
			fmt.Printf("Initialized ChadGI state directory in %s\n", color.Success(state.Root))
			fmt.Printf("  Lock directory: %s\n", color.Highlight(state.LockDir()))
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
