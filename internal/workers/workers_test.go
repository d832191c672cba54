package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selgo-dev/selgo-web/internal/catalog"
	"github.com/selgo-dev/selgo-web/internal/database"
	"github.com/selgo-dev/selgo-web/internal/models"
	"github.com/selgo-dev/selgo-web/internal/tasks"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func newTestRepository(t *testing.T) *catalog.Repository {
	t.Helper()
	db, err := database.Open(database.MemoryURL, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return catalog.NewRepository(db, zerolog.Nop())
}

func TestHandleRecordView(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	l := &models.Listing{Vertical: "car", Title: "Volvo V90", Price: 350_000}
	require.NoError(t, repo.Create(ctx, l))

	task, err := tasks.NewRecordViewTask(l.ID)
	require.NoError(t, err)
	require.NoError(t, HandleRecordView(ctx, task, repo, zerolog.Nop()))

	got, err := repo.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)

	missing, err := tasks.NewRecordViewTask("gone")
	require.NoError(t, err)
	assert.NoError(t, HandleRecordView(ctx, missing, repo, zerolog.Nop()))

	bad := asynq.NewTask(tasks.TypeRecordView, []byte(`{}`))
	assert.True(t, errors.Is(HandleRecordView(ctx, bad, repo, zerolog.Nop()), asynq.SkipRetry))
}

func TestHandleRotateFeatured(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_, err := repo.Seed(ctx, 5, 3)
	require.NoError(t, err)

	task, err := tasks.NewRotateFeaturedTask(2, 11)
	require.NoError(t, err)
	require.NoError(t, HandleRotateFeatured(ctx, task, repo, zerolog.Nop()))

	featured, err := repo.Featured(ctx, "", 100)
	require.NoError(t, err)
	assert.Len(t, featured, 2*len(catalog.Slugs()))
}

func TestScheduler(t *testing.T) {
	enq := &recordingEnqueuer{}
	s, err := NewScheduler("0 */6 * * *", 4, enq, zerolog.Nop())
	require.NoError(t, err)

	s.enqueueRotation()
	require.Len(t, enq.tasks, 1)
	payload, err := tasks.ParseRotateFeatured(enq.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, 4, payload.PerVertical)

	enq.err = errors.New("redis down")
	s.enqueueRotation()
	assert.Len(t, enq.tasks, 1)

	_, err = NewScheduler("every tuesday", 4, enq, zerolog.Nop())
	assert.Error(t, err)
}

func TestNextRun(t *testing.T) {
	from := time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)
	next, err := NextRun("0 */6 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), next)

	_, err = NextRun("bogus", from)
	assert.Error(t, err)
}
