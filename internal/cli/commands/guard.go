package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/selgo-dev/selgo-web/internal/config"
	"github.com/selgo-dev/selgo-web/internal/guard"
)

// NewGuardCmd creates the guard command group
func NewGuardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guard",
		Short: "Inspect protected routes",
	}
	cmd.AddCommand(newGuardCheckCmd())
	cmd.AddCommand(newGuardRoutesCmd())
	return cmd
}

func newGuardCheckCmd() *cobra.Command {
	var withToken bool

	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Show what the guard does for a navigation to path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			routes, err := guard.NewRoutes(cfg.Site.ProtectedRoutes...)
			if err != nil {
				return err
			}

			target := args[0]
			u, err := url.Parse(target)
			if err != nil {
				return fmt.Errorf("invalid path %q: %w", target, err)
			}

			out := cmd.OutOrStdout()
			decision := routes.Decide(u.Path, withToken)
			fmt.Fprintf(out, "%s: %s\n", target, decision)
			if decision == guard.Redirect {
				fmt.Fprintf(out, "Location: %s\n", guard.SignInURL(target))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withToken, "token", false, "Assume the visitor has a session cookie")
	return cmd
}

func newGuardRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List protected route patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			for _, p := range cfg.Site.ProtectedRoutes {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
