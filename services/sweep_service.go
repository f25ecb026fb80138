package services

import (
	"context"
	"log"
	"time"
)

// SweepService periodically flushes the caches to durable storage.
// Each sweep runs the cache-mode integrity check first so that repaired
// records are what gets persisted, then saves stores in dependency
// order: users, matches, chatrooms.
type SweepService struct {
	Integrity *IntegrityService
	Users     *UserStore
	Matches   *MatchStore
	Chatrooms *ChatroomStore

	Interval time.Duration
}

// Run loops until ctx is cancelled, then performs one final synchronous
// sweep so a graceful shutdown never loses cached writes.
func (s *SweepService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Printf("SweepService: running every %s", s.Interval)
	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			log.Println("SweepService: shutting down, final sweep")
			// The loop context is gone; the final flush gets its own.
			s.Sweep(context.Background())
			return
		}
	}
}

// Sweep executes one integrity-check-then-persist cycle.
func (s *SweepService) Sweep(ctx context.Context) {
	report := s.Integrity.RunCacheCheck(ctx)
	if !report.Success {
		log.Printf("SweepService: integrity check incomplete (%d/%d): %v", report.ChecksCompleted, report.TotalChecks, report.Errors)
	}

	usersSaved, usersFailed := s.Users.SaveAll(ctx)
	matchesSaved, matchesFailed := s.Matches.SaveAll(ctx)
	roomsSaved, roomsFailed := s.Chatrooms.SaveAll(ctx)

	if usersFailed+matchesFailed+roomsFailed > 0 {
		log.Printf("SweepService: persisted users=%d matches=%d chatrooms=%d with failures users=%d matches=%d chatrooms=%d",
			usersSaved, matchesSaved, roomsSaved, usersFailed, matchesFailed, roomsFailed)
		return
	}
	log.Printf("SweepService: persisted users=%d matches=%d chatrooms=%d", usersSaved, matchesSaved, roomsSaved)
}
