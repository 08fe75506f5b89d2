package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "webaudit",
	Short: "Heuristic quality audits for student web projects",
	Long: `Audit the HTML and CSS of a small site and grade it on imports
organization, CSS variables, typography, colors, BEM discipline and
images. Reports are stored as JSON and can be aggregated into
class-wide statistics.`,
	// Default behavior: run audit when no subcommand is given.
	// loadConfig must be called here because PreRunE of auditCmd is
	// not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runAudit(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show criterion breakdowns")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress terminal output (JSON report only)")
	rootCmd.PersistentFlags().Bool("color", false, "Force color output")
	rootCmd.PersistentFlags().String("reports-dir", "reports", "Directory holding JSON reports")
	rootCmd.PersistentFlags().String("config", ".webaudit.yaml", "Config file path")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
