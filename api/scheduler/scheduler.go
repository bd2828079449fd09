package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/linesmerrill/wepass-api/access"
	"github.com/linesmerrill/wepass-api/databases"
)

// DefaultSchedule runs the capacity check every fifteen minutes
const DefaultSchedule = "*/15 * * * *"

// Scheduler handles periodic background jobs for the access code engine
type Scheduler struct {
	cron      *cron.Cron
	LeaseDB   databases.AccessCodeLeaseDatabase
	Clock     access.Clock
	Schedule  string
	WarnRatio float64
}

// NewScheduler creates a new scheduler instance
func NewScheduler(leaseDB databases.AccessCodeLeaseDatabase, clock access.Clock, schedule string, warnRatio float64) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(clock.Location())),
		LeaseDB:   leaseDB,
		Clock:     clock,
		Schedule:  schedule,
		WarnRatio: warnRatio,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.Schedule, func() {
		s.CheckCapacity(context.Background())
	})
	if err != nil {
		zap.S().Errorw("failed to register capacity job", "error", err)
		return err
	}

	s.cron.Start()
	zap.S().Infow("Access code scheduler started", "schedule", s.Schedule)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Access code scheduler stopped")
}

// CheckCapacity counts the codes currently held by a lease and warns once the
// share of the code space in use reaches WarnRatio. It returns the share in use.
func (s *Scheduler) CheckCapacity(ctx context.Context) float64 {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	active, err := s.LeaseDB.CountDocuments(ctx, bson.M{"expiresAt": bson.M{"$gt": s.Clock.Now()}})
	if err != nil {
		zap.S().Errorw("failed to count active access codes", "error", err)
		return 0
	}

	ratio := float64(active) / float64(access.CodeSpace)
	if s.WarnRatio > 0 && ratio >= s.WarnRatio {
		zap.S().Warnw("access code space running low",
			"active", active,
			"capacity", access.CodeSpace,
			"ratio", ratio)
		return ratio
	}
	zap.S().Debugw("access code capacity", "active", active, "ratio", ratio)
	return ratio
}
