package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd builds the top-level dispatch command.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Custom action execution engine",
		Long: "dispatch executes user-authored custom actions: validated, " +
			"credential-injected outbound HTTP calls resolved through their " +
			"dependency graph.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	cmd.AddCommand(serveCmd())
	return cmd
}
