package cmd

import (
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adaptiq",
	Short: "Adaptive assessment and scoring engine",
	Long: "adaptiq runs computerized adaptive tests on a calibrated item bank, " +
		"estimates ability under the 3PL model and reports EIQ, IQ and placement.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ADAPTIQ_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ADAPTIQ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
