// Package scheduler drives the periodic settlement sweep. It guarantees only
// one run at a time: the next tick waits for the previous run to finish.
package scheduler

import (
	"context"
	"time"

	"gavel/internal/service"

	"github.com/sirupsen/logrus"
)

type Scheduler struct {
	settlementSvc *service.SettlementService
	interval      time.Duration
}

func New(settlementSvc *service.SettlementService, interval time.Duration) *Scheduler {
	return &Scheduler{settlementSvc: settlementSvc, interval: interval}
}

// Run sweeps until ctx is cancelled. Each sweep injects the current time.
func (s *Scheduler) Run(ctx context.Context) {
	logrus.WithField("interval", s.interval.String()).Info("settlement scheduler started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("settlement scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.settlementSvc.RunBatch(ctx, time.Now()); err != nil {
				logrus.WithError(err).Error("settlement sweep failed")
			}
		}
	}
}
