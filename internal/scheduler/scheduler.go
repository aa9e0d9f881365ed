package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stargazer/internal/models"
	"stargazer/internal/services"
)

// Evaluator produces a forecast report. Satisfied by services.Forecaster.
type Evaluator interface {
	Evaluate(ctx context.Context) (*models.Report, error)
}

// Notifier delivers a stargazing alert for a non-empty set of dates.
type Notifier interface {
	Send(ctx context.Context, dates []string) error
}

// Scheduler evaluates the forecast on a cron schedule and notifies when
// qualifying dates are found. Run is also usable directly for one-shot
// invocations.
type Scheduler struct {
	forecaster Evaluator
	notifier   Notifier
	store      *services.ReportStore
	logger     *zap.Logger
	cron       *cron.Cron
	schedule   string
	timeout    time.Duration
	mu         sync.Mutex
	entryID    cron.EntryID
	running    bool
	lastRun    time.Time
}

func NewScheduler(forecaster Evaluator, notifier Notifier, store *services.ReportStore, schedule string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		forecaster: forecaster,
		notifier:   notifier,
		store:      store,
		logger:     logger,
		cron:       cron.New(cron.WithLocation(time.UTC)),
		schedule:   schedule,
		timeout:    60 * time.Second,
	}
}

// Start registers the cron entry, runs one evaluation immediately, and
// begins the schedule.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	entryID, err := s.cron.AddFunc(s.schedule, s.runScheduled)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}
	s.entryID = entryID

	s.logger.Info("Scheduler started", zap.String("schedule", s.schedule))

	// Evaluate immediately on start
	go s.runScheduled()

	s.cron.Start()
	return nil
}

func (s *Scheduler) runScheduled() {
	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		s.logger.Error("Scheduled forecast evaluation failed", zap.Error(err))
	}
}

// Run performs one full evaluation: compute the report, retain it for the
// API, and either send a notification or log the empty result.
func (s *Scheduler) Run(ctx context.Context) error {
	report, err := s.forecaster.Evaluate(ctx)
	if err != nil {
		return err
	}

	if len(report.StargazingDates) > 0 {
		if err := s.notifier.Send(ctx, report.StargazingDates); err != nil {
			s.store.Set(report)
			return err
		}
		report.NotificationSent = true
	} else {
		s.logger.Info("No upcoming stargazing dates!")
	}

	s.store.Set(report)
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.logger.Info("Stopping scheduler")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
}

// NextRun reports when the cron entry fires next; zero before Start.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// LastRun reports when the last scheduled evaluation began.
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
