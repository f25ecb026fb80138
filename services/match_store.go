package services

import (
	"context"
	"log"
	"sync"
	"time"

	"lovelush_server/models"
)

// MatchSetUpdater is the collaboration contract MatchStore uses to keep
// user match sets in step with match creation and deletion. UserStore
// implements it; tests substitute their own.
type MatchSetUpdater interface {
	AppendMatchRef(userID, matchID int64) bool
	RemoveMatchRef(userID, matchID int64) bool
}

// MatchStore is the authoritative in-memory cache for match records,
// mirrored into the Matches table.
type MatchStore struct {
	Dynamo   *DynamoService
	Sequence *Sequencer
	Users    MatchSetUpdater

	mu      sync.Mutex
	matches map[int64]*models.Match
}

func NewMatchStore(dynamo *DynamoService, sequence *Sequencer, users MatchSetUpdater) *MatchStore {
	return &MatchStore{
		Dynamo:   dynamo,
		Sequence: sequence,
		Users:    users,
		matches:  make(map[int64]*models.Match),
	}
}

// LoadAll replays the Matches table into the cache. Call once at startup.
func (ms *MatchStore) LoadAll(ctx context.Context) error {
	var records []models.Match
	if err := ms.Dynamo.ScanAllInto(ctx, models.MatchesTable, &records); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	for i := range records {
		match := records[i]
		if match.GameScores == nil {
			match.GameScores = map[string]int{}
		}
		ms.matches[match.MatchID] = &match
	}
	log.Printf("MatchStore: loaded %d matches from storage", len(records))
	return nil
}

// CreateMatch records a new match and appends its id to both
// participants' match sets. A missing participant is logged, not fatal;
// the integrity checker prunes a match that never finds its users. Pure
// in-memory; the sweep persists.
func (ms *MatchStore) CreateMatch(userID1, userID2 int64, reason1, reason2 string, score int) models.Match {
	match := &models.Match{
		MatchID:            ms.Sequence.Next(),
		UserID1:            userID1,
		UserID2:            userID2,
		DescriptionToUser1: reason1,
		DescriptionToUser2: reason2,
		MatchScore:         score,
		GameScores:         map[string]int{},
		CreatedAt:          time.Now().UTC().Format(time.RFC3339),
	}

	ms.mu.Lock()
	ms.matches[match.MatchID] = match
	ms.mu.Unlock()

	if !ms.Users.AppendMatchRef(userID1, match.MatchID) {
		log.Printf("MatchStore: user %d absent while linking match %d", userID1, match.MatchID)
	}
	if !ms.Users.AppendMatchRef(userID2, match.MatchID) {
		log.Printf("MatchStore: user %d absent while linking match %d", userID2, match.MatchID)
	}

	log.Printf("MatchStore: created match %d between users %d and %d (score %d)", match.MatchID, userID1, userID2, score)
	return *match
}

// GetMatch returns a copy of the match record.
func (ms *MatchStore) GetMatch(matchID int64) (models.Match, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	match, ok := ms.matches[matchID]
	if !ok {
		return models.Match{}, false
	}
	return *match, true
}

// GetMatchesForUser returns every match the user participates in.
// Linear scan; the working set is small enough that an index is not
// worth carrying.
func (ms *MatchStore) GetMatchesForUser(userID int64) []models.Match {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var result []models.Match
	for _, match := range ms.matches {
		if match.HasParticipant(userID) {
			result = append(result, *match)
		}
	}
	return result
}

// GetMatchInfo returns the requester-relative view of a match: the
// target user and the description addressed to the requester rather
// than the raw symmetric record.
func (ms *MatchStore) GetMatchInfo(requesterID, matchID int64) (models.MatchInfo, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	match, ok := ms.matches[matchID]
	if !ok {
		return models.MatchInfo{}, ErrMatchNotFound
	}
	return models.MatchInfo{
		MatchID:      match.MatchID,
		TargetUserID: match.TargetUser(requesterID),
		Description:  match.DescriptionFor(requesterID),
		IsLiked:      match.IsLiked,
		MatchScore:   match.MatchScore,
		ChatroomID:   match.ChatroomID,
	}, nil
}

// ToggleLike flips the liked flag and returns the new value.
func (ms *MatchStore) ToggleLike(matchID int64) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	match, ok := ms.matches[matchID]
	if !ok {
		return false, ErrMatchNotFound
	}
	match.IsLiked = !match.IsLiked
	return match.IsLiked, nil
}

// SetChatroomID links a chatroom to the match in memory.
func (ms *MatchStore) SetChatroomID(matchID, chatroomID int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	match, ok := ms.matches[matchID]
	if !ok {
		return ErrMatchNotFound
	}
	match.ChatroomID = &chatroomID
	return nil
}

// ClearChatroomID removes the chatroom link, used to unwind a failed
// chatroom creation.
func (ms *MatchStore) ClearChatroomID(matchID int64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if match, ok := ms.matches[matchID]; ok {
		match.ChatroomID = nil
	}
}

// SaveMatch upserts one match record into the Matches table.
func (ms *MatchStore) SaveMatch(ctx context.Context, matchID int64) error {
	ms.mu.Lock()
	match, ok := ms.matches[matchID]
	if !ok {
		ms.mu.Unlock()
		return ErrMatchNotFound
	}
	snapshot := *match
	ms.mu.Unlock()

	return ms.Dynamo.PutItem(ctx, models.MatchesTable, snapshot)
}

// SaveAll upserts every cached match, logging and skipping failures.
func (ms *MatchStore) SaveAll(ctx context.Context) (saved, failed int) {
	ms.mu.Lock()
	snapshots := make([]models.Match, 0, len(ms.matches))
	for _, match := range ms.matches {
		snapshots = append(snapshots, *match)
	}
	ms.mu.Unlock()

	for i := range snapshots {
		if err := ms.Dynamo.PutItem(ctx, models.MatchesTable, snapshots[i]); err != nil {
			log.Printf("MatchStore: failed to persist match %d: %v", snapshots[i].MatchID, err)
			failed++
			continue
		}
		saved++
	}
	return saved, failed
}

// All returns a snapshot of every cached match.
func (ms *MatchStore) All() []models.Match {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	result := make([]models.Match, 0, len(ms.matches))
	for _, match := range ms.matches {
		result = append(result, *match)
	}
	return result
}

// DeleteMatch removes the match from memory and durable storage.
func (ms *MatchStore) DeleteMatch(ctx context.Context, matchID int64) error {
	ms.mu.Lock()
	delete(ms.matches, matchID)
	ms.mu.Unlock()

	return ms.Dynamo.DeleteItem(ctx, models.MatchesTable, NumericKey("matchId", matchID))
}
