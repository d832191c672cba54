package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/selgo-dev/selgo-web/internal/config"
	"github.com/selgo-dev/selgo-web/internal/workers"
)

// NewScheduleCmd creates the schedule command
func NewScheduleCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show when the worker will next rotate featured listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schedule: %s (%d per vertical)\n", cfg.Site.RotateSchedule, cfg.Site.FeaturedPerPage)

			next := time.Now()
			for i := 0; i < count; i++ {
				next, err = workers.NextRun(cfg.Site.RotateSchedule, next)
				if err != nil {
					return fmt.Errorf("invalid rotate schedule %q: %w", cfg.Site.RotateSchedule, err)
				}
				fmt.Fprintln(out, next.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of upcoming runs to print")
	return cmd
}
