package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selgo-dev/selgo-web/internal/catalog"
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	var perVertical int
	var seed uint64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill empty verticals with generated listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if perVertical <= 0 {
				return fmt.Errorf("--per-vertical must be positive")
			}

			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			created, err := catalog.NewRepository(env.db, env.logger).Seed(cmd.Context(), perVertical, seed)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d listings\n", created)
			return nil
		},
	}

	cmd.Flags().IntVar(&perVertical, "per-vertical", 40, "Listings to generate per vertical")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Generator seed")

	return cmd
}

// NewRotateCmd creates the rotate-featured command
func NewRotateCmd() *cobra.Command {
	var perVertical int
	var seed uint64

	cmd := &cobra.Command{
		Use:   "rotate-featured",
		Short: "Re-pick featured listings without waiting for the worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			if perVertical <= 0 {
				perVertical = env.cfg.Site.FeaturedPerPage
			}

			picked, err := catalog.NewRepository(env.db, env.logger).RotateFeatured(cmd.Context(), perVertical, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Featured %d listings\n", picked)
			return nil
		},
	}

	cmd.Flags().IntVar(&perVertical, "per-vertical", 0, "Featured listings per vertical (default: site featured_per_page)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Shuffle seed")

	return cmd
}
