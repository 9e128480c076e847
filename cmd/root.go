package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "vitality",
	Short: "Progression and vitality simulation engine",
	Long: `Vitality tracks XP, ranks, energy and capacity for life-management apps.

Activities cost energy and earn seasonal XP; daily and weekly ticks move
capacity up or down and gate work while a user is burnt out.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VITALITY_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to TOML config file (default: vitality.toml if present)")
	rootCmd.PersistentFlags().String("at", "", "Evaluate at this RFC 3339 time instead of now")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON instead of styled output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file, then VITALITY_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
