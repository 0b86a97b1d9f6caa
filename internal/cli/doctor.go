package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SwapLabsInc/ChadGI-sub003/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check state directory health",
	Long: `Check state directory health.

Runs diagnostic checks on the lock state directory and reports any issues:
missing directories, leftover temp files, corrupt lock records, and stale
locks awaiting cleanup.`,
	Run: func(cmd *cobra.Command, args []string) {
		state, cfg := requireState()

		doc := doctor.NewDoctor(state, cfg.Policy())
		result, err := doc.Check()
		if err != nil {
			fmtErr("doctor: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(result)
			if !result.Healthy {
				os.Exit(1)
			}
			return
		}

		if len(result.Findings) == 0 {
			fmt.Println("State directory is healthy.")
			return
		}

		fmt.Printf("Findings (%d):\n", len(result.Findings))
		for _, f := range result.Findings {
			fmt.Printf("  [%s] %s: %s\n", f.Severity, f.Category, f.Description)
		}

		if !result.Healthy {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
