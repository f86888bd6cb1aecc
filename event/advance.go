// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"
	"time"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/phase"
)

// AutoAdvance moves the event one step when auto-close is on and the
// voting deadline has passed. It reports whether a transition happened.
func (s *Service) AutoAdvance(ctx context.Context, now time.Time) (bool, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return false, err
	}

	next, due := phase.DueForAdvance(ev, now)
	if !due {
		return false, nil
	}

	if _, err := s.transition(ctx, ev, next); err != nil {
		return false, err
	}
	s.logger.Info("event auto-advanced", "from", ev.Status, "to", next)
	return true, nil
}

// Run checks the deadline every interval until ctx is cancelled
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.AutoAdvance(ctx, s.now()); err != nil && ctx.Err() == nil {
				s.logger.Error("auto-advance failed", "error", err)
			}
		}
	}
}
