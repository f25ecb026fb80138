package services

import (
	"context"
	"log"
	"sync"

	"lovelush_server/models"
)

// UserStore is the authoritative in-memory cache for user records,
// mirrored into the Users table. Construct exactly one per process and
// inject it wherever user data is needed.
//
// Cross-store rule shared by all stores: a store never calls into
// another store while holding its own mutex.
type UserStore struct {
	Dynamo *DynamoService

	// Matches and Chatrooms are wired in main after all stores exist;
	// they are only exercised by the deactivation cascade.
	Matches   *MatchStore
	Chatrooms *ChatroomStore

	mu       sync.Mutex
	users    map[int64]*models.User
	byGender map[int]map[int64]*models.User
}

// UserStats summarizes the cache for monitoring endpoints.
type UserStats struct {
	TotalUsers  int `json:"totalUsers"`
	MaleUsers   int `json:"maleUsers"`
	FemaleUsers int `json:"femaleUsers"`
}

func NewUserStore(dynamo *DynamoService) *UserStore {
	return &UserStore{
		Dynamo:   dynamo,
		users:    make(map[int64]*models.User),
		byGender: make(map[int]map[int64]*models.User),
	}
}

// LoadAll replays the Users table into the cache. Identifiers are
// preserved from storage, never regenerated. Call once at startup.
func (us *UserStore) LoadAll(ctx context.Context) error {
	var records []models.User
	if err := us.Dynamo.ScanAllInto(ctx, models.UsersTable, &records); err != nil {
		return err
	}

	us.mu.Lock()
	defer us.mu.Unlock()
	for i := range records {
		user := records[i]
		if user.MatchIDs == nil {
			user.MatchIDs = []int64{}
		}
		if user.BlockedUserIDs == nil {
			user.BlockedUserIDs = []int64{}
		}
		us.insertLocked(&user)
	}
	log.Printf("UserStore: loaded %d users from storage", len(records))
	return nil
}

func (us *UserStore) insertLocked(user *models.User) {
	us.users[user.UserID] = user
	bucket, ok := us.byGender[user.Gender]
	if !ok {
		bucket = make(map[int64]*models.User)
		us.byGender[user.Gender] = bucket
	}
	bucket[user.UserID] = user
}

// CreateUser registers a user under the externally supplied id. Pure
// in-memory; the persistence sweep (or an explicit SaveUser) mirrors it.
func (us *UserStore) CreateUser(userID int64, displayName string, gender int) int64 {
	us.mu.Lock()
	defer us.mu.Unlock()

	user := &models.User{
		UserID:         userID,
		DisplayName:    displayName,
		Gender:         gender,
		MatchIDs:       []int64{},
		BlockedUserIDs: []int64{},
	}
	us.insertLocked(user)
	log.Printf("UserStore: created user %d (%s)", userID, displayName)
	return userID
}

// GetUser returns a copy of the user record. Absence is reported, not
// an error; lookups never reach durable storage.
func (us *UserStore) GetUser(userID int64) (models.User, bool) {
	us.mu.Lock()
	defer us.mu.Unlock()

	user, ok := us.users[userID]
	if !ok {
		return models.User{}, false
	}
	return *user, true
}

// EditAge overwrites the user's age.
func (us *UserStore) EditAge(userID int64, age int) error {
	us.mu.Lock()
	defer us.mu.Unlock()

	user, ok := us.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Age = &age
	return nil
}

// EditTargetGender overwrites the user's target-gender preference.
func (us *UserStore) EditTargetGender(userID int64, targetGender int) error {
	us.mu.Lock()
	defer us.mu.Unlock()

	user, ok := us.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.TargetGender = &targetGender
	return nil
}

// EditSummary overwrites the user's personality summary.
func (us *UserStore) EditSummary(userID int64, summary string) error {
	us.mu.Lock()
	defer us.mu.Unlock()

	user, ok := us.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PersonalitySummary = summary
	return nil
}

// BlockUser appends blockedID to the user's block list.
func (us *UserStore) BlockUser(userID, blockedID int64) error {
	us.mu.Lock()
	defer us.mu.Unlock()

	user, ok := us.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	for _, id := range user.BlockedUserIDs {
		if id == blockedID {
			return nil
		}
	}
	user.BlockedUserIDs = append(user.BlockedUserIDs, blockedID)
	return nil
}

// AppendMatchRef adds matchID to the user's match set. Returns false if
// the user is absent. Part of the MatchSetUpdater contract used by
// MatchStore.
func (us *UserStore) AppendMatchRef(userID, matchID int64) bool {
	us.mu.Lock()
	defer us.mu.Unlock()

	user, ok := us.users[userID]
	if !ok {
		return false
	}
	if user.HasMatch(matchID) {
		return true
	}
	user.MatchIDs = append(user.MatchIDs, matchID)
	return true
}

// RemoveMatchRef removes matchID from the user's match set. Returns
// false if the user is absent or the id was not present.
func (us *UserStore) RemoveMatchRef(userID, matchID int64) bool {
	us.mu.Lock()
	defer us.mu.Unlock()

	user, ok := us.users[userID]
	if !ok {
		return false
	}
	for i, id := range user.MatchIDs {
		if id == matchID {
			user.MatchIDs = append(user.MatchIDs[:i], user.MatchIDs[i+1:]...)
			return true
		}
	}
	return false
}

// RetainMatchRefs drops every match id the keep predicate rejects and
// reports how many were removed. Used by the integrity checker.
func (us *UserStore) RetainMatchRefs(userID int64, keep func(int64) bool) int {
	us.mu.Lock()
	defer us.mu.Unlock()

	user, ok := us.users[userID]
	if !ok {
		return 0
	}

	kept := user.MatchIDs[:0]
	removed := 0
	for _, id := range user.MatchIDs {
		if keep(id) {
			kept = append(kept, id)
		} else {
			removed++
		}
	}
	user.MatchIDs = kept
	return removed
}

// SaveUser upserts one user record into the Users table.
func (us *UserStore) SaveUser(ctx context.Context, userID int64) error {
	us.mu.Lock()
	user, ok := us.users[userID]
	if !ok {
		us.mu.Unlock()
		return ErrUserNotFound
	}
	snapshot := *user
	us.mu.Unlock()

	return us.Dynamo.PutItem(ctx, models.UsersTable, snapshot)
}

// SaveAll upserts every cached user. A failure for one record is logged
// and does not abort the rest.
func (us *UserStore) SaveAll(ctx context.Context) (saved, failed int) {
	us.mu.Lock()
	snapshots := make([]models.User, 0, len(us.users))
	for _, user := range us.users {
		snapshots = append(snapshots, *user)
	}
	us.mu.Unlock()

	for i := range snapshots {
		if err := us.Dynamo.PutItem(ctx, models.UsersTable, snapshots[i]); err != nil {
			log.Printf("UserStore: failed to persist user %d: %v", snapshots[i].UserID, err)
			failed++
			continue
		}
		saved++
	}
	return saved, failed
}

// UserIDs returns a snapshot of all cached user ids.
func (us *UserStore) UserIDs() []int64 {
	us.mu.Lock()
	defer us.mu.Unlock()

	ids := make([]int64, 0, len(us.users))
	for id := range us.users {
		ids = append(ids, id)
	}
	return ids
}

// Stats reports cache totals per gender partition.
func (us *UserStore) Stats() UserStats {
	us.mu.Lock()
	defer us.mu.Unlock()

	return UserStats{
		TotalUsers:  len(us.users),
		MaleUsers:   len(us.byGender[models.GenderMale]),
		FemaleUsers: len(us.byGender[models.GenderFemale]),
	}
}

// DeactivateUser removes the user and cascades through every match,
// chatroom and message that depends on it. Best effort: each step logs
// its own failure and the cascade keeps going, because a half-deleted
// but invisible user is recoverable by the integrity checker while a
// visible one is not. Returns false only when the user did not exist.
func (us *UserStore) DeactivateUser(ctx context.Context, userID int64) bool {
	us.mu.Lock()
	user, ok := us.users[userID]
	if !ok {
		us.mu.Unlock()
		return false
	}
	gender := user.Gender
	matchIDs := append([]int64(nil), user.MatchIDs...)
	us.mu.Unlock()

	log.Printf("UserStore: deactivating user %d with %d matches", userID, len(matchIDs))

	for _, matchID := range matchIDs {
		match, ok := us.Matches.GetMatch(matchID)
		if !ok {
			log.Printf("UserStore: match %d missing during deactivation of user %d", matchID, userID)
			continue
		}
		otherID := match.TargetUser(userID)

		if match.ChatroomID != nil {
			if err := us.Chatrooms.DeleteChatroomAndMessages(ctx, *match.ChatroomID); err != nil {
				log.Printf("UserStore: failed to delete chatroom %d during deactivation: %v", *match.ChatroomID, err)
			}
		}

		if us.RemoveMatchRef(otherID, matchID) {
			if err := us.SaveUser(ctx, otherID); err != nil {
				log.Printf("UserStore: failed to persist user %d after match removal: %v", otherID, err)
			}
		}

		if err := us.Matches.DeleteMatch(ctx, matchID); err != nil {
			log.Printf("UserStore: failed to delete match %d during deactivation: %v", matchID, err)
		}
	}

	us.mu.Lock()
	delete(us.users, userID)
	if bucket, ok := us.byGender[gender]; ok {
		delete(bucket, userID)
	}
	us.mu.Unlock()

	if err := us.Dynamo.DeleteItem(ctx, models.UsersTable, NumericKey("userId", userID)); err != nil {
		log.Printf("UserStore: failed to delete user %d from storage: %v", userID, err)
	}
	return true
}
