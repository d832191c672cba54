package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/selgo-dev/selgo-web/internal/auth"
	"github.com/selgo-dev/selgo-web/internal/users"
)

// NewUserCmd creates the user command group
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account and print a session token for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("SELGO_PASSWORD")
			}
			if password == "" {
				if !term.IsTerminal(int(syscall.Stdin)) {
					return fmt.Errorf("password is required in non-interactive mode (use --password flag or SELGO_PASSWORD env var)")
				}
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(bytePassword)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if len(password) < auth.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
			}

			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			secret := env.cfg.Auth.JWTSecret
			if secret == "" {
				// same secret the server generates, so the token works there
				secret, err = users.EnsureJWTSecret(cmd.Context(), env.db)
				if err != nil {
					return err
				}
			}
			issuer := auth.NewIssuer(secret, env.cfg.Auth.TokenTTL)
			user, token, err := users.NewService(env.db, issuer, nil, 0, env.logger).Register(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created user %s (%s)\n", user.ID, user.Email)
			fmt.Fprintf(out, "Session token: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Password (or SELGO_PASSWORD; prompted when interactive)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
