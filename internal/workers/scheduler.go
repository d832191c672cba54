package workers

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/selgo-dev/selgo-web/internal/tasks"
)

// Enqueuer is the part of asynq.Client the scheduler needs
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler enqueues featured rotations on a cron schedule
type Scheduler struct {
	cron        *cron.Cron
	client      Enqueuer
	perVertical int
	logger      zerolog.Logger
}

// NewScheduler validates expr (5-field cron) and prepares a scheduler
func NewScheduler(expr string, perVertical int, client Enqueuer, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:        cron.New(cron.WithParser(scheduleParser)),
		client:      client,
		perVertical: perVertical,
		logger:      logger,
	}
	if _, err := s.cron.AddFunc(expr, s.enqueueRotation); err != nil {
		return nil, fmt.Errorf("invalid rotate schedule %q: %w", expr, err)
	}
	return s, nil
}

// Start runs the schedule in the background
func (s *Scheduler) Start() {
	for _, e := range s.cron.Entries() {
		s.logger.Info().Time("next_run", e.Schedule.Next(time.Now())).Msg("Featured rotation scheduled")
	}
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) enqueueRotation() {
	task, err := tasks.NewRotateFeaturedTask(s.perVertical, uint64(time.Now().UnixNano()))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create rotate task")
		return
	}

	// one rotation per window, duplicates are dropped by asynq
	info, err := s.client.Enqueue(task, asynq.Unique(30*time.Minute))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue rotate task")
		return
	}
	s.logger.Info().Str("task_id", info.ID).Msg("Featured rotation enqueued")
}

// NextRun returns the next time expr fires after from
func NextRun(expr string, from time.Time) (time.Time, error) {
	schedule, err := scheduleParser.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(from), nil
}
