package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/color"
)

var (
	jsonOutput bool
	noColor    bool
	rootCmd    = &cobra.Command{
		Use:   "chadgi",
		Short: "ChadGI - automated issue processing",
		Long: `ChadGI dispatches tracker issues to coding-agent worker sessions across
many processes and hosts sharing a state directory. Mutual exclusion over
issues is enforced through persisted task locks with heartbeat-based
staleness detection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Init(noColor)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// outputJSON prints v as JSON if --json flag is set, otherwise does nothing.
func outputJSON(v any) error {
	if !jsonOutput {
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
