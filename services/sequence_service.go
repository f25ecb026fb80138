package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"lovelush_server/utils"
)

// Sequencer hands out monotonically increasing identifiers for one
// entity kind. It is seeded once from the kind's DynamoDB table and is
// valid for a single process only; running two processes against the
// same tables will collide.
type Sequencer struct {
	Dynamo       *DynamoService
	Table        string
	KeyAttribute string

	initOnce    sync.Once
	initialized atomic.Bool
	counter     atomic.Int64
}

// Initialize seeds the counter with the maximum identifier currently in
// the table. A scan failure or an empty table falls back to a
// microsecond timestamp so identifiers never collide with records the
// scan could not see. Safe to call more than once; only the first call
// seeds.
func (s *Sequencer) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		s.counter.Store(s.seed(ctx))
		s.initialized.Store(true)
	})
}

func (s *Sequencer) seed(ctx context.Context) int64 {
	items, err := s.Dynamo.ScanAllItems(ctx, s.Table)
	if err != nil {
		seed := time.Now().UnixMicro()
		log.Printf("Sequencer for '%s': scan failed (%v), falling back to timestamp seed %d", s.Table, err, seed)
		return seed
	}
	if len(items) == 0 {
		seed := time.Now().UnixMicro()
		log.Printf("Sequencer for '%s': table empty, using timestamp seed %d", s.Table, seed)
		return seed
	}

	var max int64
	for _, item := range items {
		if id, ok := utils.ExtractNumber(item, s.KeyAttribute); ok && id > max {
			max = id
		}
	}
	log.Printf("Sequencer for '%s': seeded from max stored id %d", s.Table, max)
	return max
}

// Next returns the next identifier. Calling Next before Initialize is a
// programming error and panics rather than handing out a colliding id.
func (s *Sequencer) Next() int64 {
	if !s.initialized.Load() {
		panic(fmt.Sprintf("sequencer for '%s' used before initialization", s.Table))
	}
	return s.counter.Add(1)
}
