package reminder

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"medminder/internal/metrics"
	"medminder/internal/notify"
	"medminder/internal/store"
)

// DoseNotifier receives the alerts the scheduler fires.
type DoseNotifier interface {
	NotifyDose(alert notify.DoseAlert)
}

// Scheduler fires dose reminders. Once per minute it compares the current
// wall-clock HH:MM against every pending medication's scheduled time and
// notifies on an exact match. A reminder therefore fires for at most the one
// minute the times are equal; there is no catch-up for missed ticks.
type Scheduler struct {
	store    *store.Store
	notifier DoseNotifier
	cron     *cron.Cron
	loc      *time.Location
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// NewScheduler creates a scheduler in the given location.
func NewScheduler(st *store.Store, notifier DoseNotifier, loc *time.Location, logger *zap.Logger, collector *metrics.Collector) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		store:    st,
		notifier: notifier,
		cron:     cron.New(cron.WithLocation(loc)),
		loc:      loc,
		logger:   logger,
		metrics:  collector,
	}
}

// Start registers the minute tick and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", func() {
		s.CheckDue(time.Now().In(s.loc))
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("dose reminder scheduler started")
	return nil
}

// Stop halts the cron loop and waits for any in-flight tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("dose reminder scheduler stopped")
}

// CheckDue runs a single tick against the given clock reading.
func (s *Scheduler) CheckDue(now time.Time) {
	current := now.Format("15:04")

	meds, err := s.store.DueAt(current)
	if err != nil {
		s.logger.Error("reminder tick failed", zap.Error(err))
		return
	}

	for _, med := range meds {
		s.logger.Info("dose due",
			zap.Uint("id", med.ID),
			zap.String("name", med.Name),
			zap.String("time", med.Time))
		s.notifier.NotifyDose(notify.NewDoseAlert(med))
		s.metrics.RecordReminder()
	}
}
