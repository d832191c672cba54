package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/selgo-dev/selgo-web/internal/catalog"
	"github.com/selgo-dev/selgo-web/internal/tasks"
)

// HandleRecordView increments the view counter of the listing in the task
func HandleRecordView(ctx context.Context, t *asynq.Task, repo *catalog.Repository, logger zerolog.Logger) error {
	payload, err := tasks.ParseRecordView(t)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := repo.IncrementViews(ctx, payload.ListingID); err != nil {
		if errors.Is(err, catalog.ErrListingNotFound) {
			// listing deleted since the view; nothing to retry
			logger.Debug().Str("listing_id", payload.ListingID).Msg("Skipping view for missing listing")
			return nil
		}
		return err
	}
	return nil
}

// HandleRotateFeatured re-picks the featured listings of every vertical
func HandleRotateFeatured(ctx context.Context, t *asynq.Task, repo *catalog.Repository, logger zerolog.Logger) error {
	payload, err := tasks.ParseRotateFeatured(t)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	picked, err := repo.RotateFeatured(ctx, payload.PerVertical, payload.Seed)
	if err != nil {
		return err
	}

	logger.Info().
		Int("per_vertical", payload.PerVertical).
		Int("picked", picked).
		Msg("Featured rotation complete")
	return nil
}
