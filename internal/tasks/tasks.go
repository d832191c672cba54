package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeRecordView     = "listing:record_view"
	TypeRotateFeatured = "catalog:rotate_featured"
)

// Queue names
const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// RecordViewPayload identifies the listing that was viewed
type RecordViewPayload struct {
	ListingID string `json:"listing_id"`
}

// RotateFeaturedPayload configures a featured rotation
type RotateFeaturedPayload struct {
	PerVertical int    `json:"per_vertical"`
	Seed        uint64 `json:"seed"`
}

// NewRecordViewTask creates a task incrementing a listing's view counter
func NewRecordViewTask(listingID string) (*asynq.Task, error) {
	payload, err := json.Marshal(RecordViewPayload{ListingID: listingID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeRecordView, payload, asynq.Queue(QueueLow), asynq.MaxRetry(3)), nil
}

// NewRotateFeaturedTask creates a task re-picking featured listings
func NewRotateFeaturedTask(perVertical int, seed uint64) (*asynq.Task, error) {
	payload, err := json.Marshal(RotateFeaturedPayload{PerVertical: perVertical, Seed: seed})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeRotateFeatured, payload, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}

// ParseRecordView parses a record_view payload
func ParseRecordView(task *asynq.Task) (RecordViewPayload, error) {
	var payload RecordViewPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.ListingID == "" {
		return payload, fmt.Errorf("record_view payload missing listing_id")
	}
	return payload, nil
}

// ParseRotateFeatured parses a rotate_featured payload
func ParseRotateFeatured(task *asynq.Task) (RotateFeaturedPayload, error) {
	var payload RotateFeaturedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.PerVertical <= 0 {
		return payload, fmt.Errorf("rotate_featured payload needs per_vertical > 0")
	}
	return payload, nil
}
