package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "feelio",
	Short: "Emotion-recognition practice for kids",
	Long: "Feelio is a terminal app where children read short stories, name the " +
		"emotion a character feels and get gentle feedback. Caregivers can review " +
		"and correct their children's answers.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to the YAML config file (default $XDG_CONFIG_HOME/feelio/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides FEELIO_DB env var)")
	pf.String("api", "", "Backend base URL (overrides FEELIO_API_BASE env var)")

	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome screen")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(childrenCmd)
	rootCmd.AddCommand(impersonateCmd)
	rootCmd.AddCommand(returnCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
