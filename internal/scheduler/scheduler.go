package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type SurveyLifecycleProvider interface {
	ActivateScheduledSurveys(ctx context.Context, now time.Time) (int64, error)
	CloseExpiredSurveys(ctx context.Context, now time.Time) (int64, error)
}

// SurveyScheduler flips survey windows on a ticker: draft surveys whose
// starts_at passed become active, active surveys past ends_at close.
type SurveyScheduler struct {
	provider SurveyLifecycleProvider
	interval time.Duration
}

func NewSurveyScheduler(provider SurveyLifecycleProvider, interval time.Duration) *SurveyScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SurveyScheduler{provider: provider, interval: interval}
}

func (s *SurveyScheduler) Start(ctx context.Context) {
	if s.provider == nil {
		slog.Warn("survey scheduler skipped: no provider configured")
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *SurveyScheduler) run(ctx context.Context) {
	now := time.Now().UTC()
	if opened, err := s.provider.ActivateScheduledSurveys(ctx, now); err != nil {
		slog.Error("activate scheduled surveys failed", "err", err)
	} else if opened > 0 {
		slog.Info("surveys activated", "count", opened)
	}
	if closed, err := s.provider.CloseExpiredSurveys(ctx, now); err != nil {
		slog.Error("close expired surveys failed", "err", err)
	} else if closed > 0 {
		slog.Info("surveys closed", "count", closed)
	}
}
