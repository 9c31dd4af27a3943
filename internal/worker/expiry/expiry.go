// Package expiry runs the mapping-expiry sweeper. Exhausted mappings
// carry an expires_at column; the sweeper periodically flips the
// overdue ones to expired so the state change survives restarts instead
// of living in an in-memory timer.
package expiry

import (
	"context"
	"fitcoach/platform/internal/repository"
	"log"
	"time"
)

// Sweeper flips accepted mappings whose grace period has elapsed.
type Sweeper struct {
	mappingRepo repository.MappingRepository
	interval    time.Duration
}

// NewSweeper creates a sweeper ticking at interval.
func NewSweeper(mappingRepo repository.MappingRepository, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{mappingRepo: mappingRepo, interval: interval}
}

// Run sweeps until ctx is cancelled. An initial sweep happens
// immediately so rows overdue across a restart do not wait a full tick.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("Mapping expiry sweeper started (interval %s)", s.interval)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Mapping expiry sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. Idempotent; safe to call from tests
// or an admin trigger.
func (s *Sweeper) RunOnce(ctx context.Context) {
	expired, err := s.mappingRepo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("ERROR: mapping expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Mapping expiry sweep flipped %d mapping(s) to expired", expired)
	}
}
