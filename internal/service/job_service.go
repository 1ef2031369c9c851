package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"quickpark/internal/db"
	"quickpark/internal/metrics"
)

type JobService struct {
	Repo    JobStore
	metrics *metrics.Metrics
	log     *logrus.Logger
}

func NewJobService(repo JobStore, m *metrics.Metrics, log *logrus.Logger) *JobService {
	return &JobService{Repo: repo, metrics: m, log: log}
}

// CompleteFinishedReservations moves active reservations whose end has passed to completada.
func (s *JobService) CompleteFinishedReservations(ctx context.Context) (int64, error) {
	ids, err := s.Repo.GetActiveReservationIDsPastEndTime(ctx)
	if err != nil {
		return 0, fmt.Errorf("completion job: list finished reservations: %w", err)
	}
	if len(ids) == 0 {
		s.log.Debug("completion job: nothing to complete")
		return 0, nil
	}
	if !CanTransition(db.StatusActive, db.StatusCompleted) {
		return 0, fmt.Errorf("completion job: %s to %s is not a valid transition", db.StatusActive, db.StatusCompleted)
	}

	n, err := s.Repo.UpdateReservationStatuses(ctx, ids, db.StatusActive, db.StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("completion job: update statuses: %w", err)
	}
	s.metrics.ReservationsCompleted(n)
	s.log.WithFields(logrus.Fields{"found": len(ids), "completed": n}).Info("completion job: reservations completed")
	return n, nil
}

// Schedule registers the completion job on c. Runs never overlap.
func (s *JobService) Schedule(c *cron.Cron, spec string, timeout time.Duration) (cron.EntryID, error) {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := s.CompleteFinishedReservations(ctx); err != nil {
			s.log.WithError(err).Error("completion job failed")
		}
	}))
	id, err := c.AddJob(spec, job)
	if err != nil {
		return 0, fmt.Errorf("schedule completion job %q: %w", spec, err)
	}
	return id, nil
}
