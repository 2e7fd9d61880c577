package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd is the root command of the operator CLI.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "starfitctl",
		Short:        "starfitctl checks, queues and administers StarFit jobs.",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		validateCmd(),
		hashPasswordCmd(),
		enqueueCmd(),
	)
	return cmd
}
