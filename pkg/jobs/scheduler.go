package jobs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type enqueuer interface {
	Enqueue(job Job) error
}

// Scheduler enqueues jobs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	queue  enqueuer
	logger *zap.Logger
}

// NewScheduler builds a scheduler feeding queue.
func NewScheduler(queue enqueuer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		queue:  queue,
		logger: logger,
	}
}

// Every enqueues a job of the given type and key each time spec fires.
// spec accepts standard five-field expressions and descriptors such as "@every 30m".
func (s *Scheduler) Every(spec, jobType, key string) error {
	_, err := s.cron.AddFunc(spec, func() {
		job := Job{ID: uuid.NewString(), Type: jobType, Key: key, Payload: "scheduled"}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("scheduled job not enqueued", zap.String("type", jobType), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.logger.Info("job scheduled", zap.String("type", jobType), zap.String("schedule", spec))
	return nil
}

// Entries reports how many schedules are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for running callbacks.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
