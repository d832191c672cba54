package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordViewTask(t *testing.T) {
	task, err := NewRecordViewTask("01ABC")
	require.NoError(t, err)
	assert.Equal(t, TypeRecordView, task.Type())

	payload, err := ParseRecordView(task)
	require.NoError(t, err)
	assert.Equal(t, "01ABC", payload.ListingID)

	_, err = ParseRecordView(asynq.NewTask(TypeRecordView, []byte(`{}`)))
	assert.Error(t, err)
}

func TestRotateFeaturedTask(t *testing.T) {
	task, err := NewRotateFeaturedTask(4, 17)
	require.NoError(t, err)

	payload, err := ParseRotateFeatured(task)
	require.NoError(t, err)
	assert.Equal(t, RotateFeaturedPayload{PerVertical: 4, Seed: 17}, payload)

	_, err = ParseRotateFeatured(asynq.NewTask(TypeRotateFeatured, []byte(`not json`)))
	assert.Error(t, err)
	_, err = ParseRotateFeatured(asynq.NewTask(TypeRotateFeatured, []byte(`{"per_vertical":0}`)))
	assert.Error(t, err)
}
