package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/selgo-dev/selgo-web/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd assembles the selgo command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "selgo",
		Short: "Selgo - marketplace admin tool",
		Long: `Selgo CLI - seed the catalog, manage accounts and inspect route guarding.

Commands read the same environment (.env, DATABASE_URL, SITE_CONFIG) as the
web server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "selgo version %s\n", version)
		},
	})

	root.AddCommand(commands.NewSeedCmd())
	root.AddCommand(commands.NewRotateCmd())
	root.AddCommand(commands.NewScheduleCmd())
	root.AddCommand(commands.NewListCmd())
	root.AddCommand(commands.NewUserCmd())
	root.AddCommand(commands.NewGuardCmd())

	return root
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
