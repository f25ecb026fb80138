package services

import (
	"context"
	"fmt"
	"log"

	"lovelush_server/models"
)

// IntegrityService detects and repairs dangling cross-entity
// references. Live operations assume referential validity and never run
// these rules themselves; the checker is the required companion that
// makes the best-effort cascades eventually consistent.
//
// The four rules run in a fixed order because later rules assume
// earlier ones have pruned invalid parents:
//
//	A: every match's participants exist, else the match is deleted
//	B: user match sets reference existing matches only, and every
//	   match appears in both participants' sets (repaired both ways)
//	C: every chatroom's participants and match exist, else deleted
//	D: every stored message's sender, receiver and chatroom exist,
//	   else deleted; chatroom message lists reference stored messages
//
// A rule's internal error is recorded and the next rule still runs.
type IntegrityService struct {
	Dynamo    *DynamoService
	Users     *UserStore
	Matches   *MatchStore
	Chatrooms *ChatroomStore
}

// IntegrityReport aggregates the outcome of one checker run.
type IntegrityReport struct {
	Success            bool     `json:"success"`
	ChecksCompleted    int      `json:"checksCompleted"`
	TotalChecks        int      `json:"totalChecks"`
	MatchesDeleted     int      `json:"matchesDeleted"`
	MatchRefsAdded     int      `json:"matchRefsAdded"`
	MatchRefsRemoved   int      `json:"matchRefsRemoved"`
	ChatroomsDeleted   int      `json:"chatroomsDeleted"`
	MessagesDeleted    int      `json:"messagesDeleted"`
	MessageRefsRemoved int      `json:"messageRefsRemoved"`
	Errors             []string `json:"errors,omitempty"`
}

func (r *IntegrityReport) record(name string, err error) {
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", name, err))
		return
	}
	r.ChecksCompleted++
}

// RunCacheCheck runs all rules against the live in-memory caches. Cheap
// enough to run on every persistence sweep.
func (s *IntegrityService) RunCacheCheck(ctx context.Context) IntegrityReport {
	report := IntegrityReport{TotalChecks: 4}

	report.record("matches", s.checkCachedMatches(ctx, &report))
	report.record("user_match_refs", s.checkCachedMatchRefs(ctx, &report))
	report.record("chatrooms", s.checkCachedChatrooms(ctx, &report))
	report.record("messages", s.checkCachedMessages(ctx, &report))

	report.Success = report.ChecksCompleted == report.TotalChecks
	return report
}

// Rule A, cache mode: prune matches whose participants are gone, then
// repair missing match references on both participants of every
// surviving match.
func (s *IntegrityService) checkCachedMatches(ctx context.Context, report *IntegrityReport) error {
	for _, match := range s.Matches.All() {
		_, ok1 := s.Users.GetUser(match.UserID1)
		_, ok2 := s.Users.GetUser(match.UserID2)
		if !ok1 || !ok2 {
			log.Printf("Integrity: match %d references missing user (user1=%v user2=%v), deleting", match.MatchID, ok1, ok2)
			if err := s.Matches.DeleteMatch(ctx, match.MatchID); err != nil {
				log.Printf("Integrity: failed to delete match %d: %v", match.MatchID, err)
			}
			report.MatchesDeleted++
			continue
		}

		for _, userID := range []int64{match.UserID1, match.UserID2} {
			user, _ := s.Users.GetUser(userID)
			if user.HasMatch(match.MatchID) {
				continue
			}
			s.Users.AppendMatchRef(userID, match.MatchID)
			if err := s.Users.SaveUser(ctx, userID); err != nil {
				log.Printf("Integrity: failed to persist repaired user %d: %v", userID, err)
			}
			report.MatchRefsAdded++
		}
	}
	return nil
}

// Rule B, cache mode: drop match ids that resolve to no match.
func (s *IntegrityService) checkCachedMatchRefs(ctx context.Context, report *IntegrityReport) error {
	existing := make(map[int64]struct{})
	for _, match := range s.Matches.All() {
		existing[match.MatchID] = struct{}{}
	}

	for _, userID := range s.Users.UserIDs() {
		removed := s.Users.RetainMatchRefs(userID, func(id int64) bool {
			_, ok := existing[id]
			return ok
		})
		if removed == 0 {
			continue
		}
		log.Printf("Integrity: removed %d dangling match refs from user %d", removed, userID)
		if err := s.Users.SaveUser(ctx, userID); err != nil {
			log.Printf("Integrity: failed to persist repaired user %d: %v", userID, err)
		}
		report.MatchRefsRemoved += removed
	}
	return nil
}

// Rule C, cache mode: delete chatrooms whose participants or match are
// gone.
func (s *IntegrityService) checkCachedChatrooms(ctx context.Context, report *IntegrityReport) error {
	for _, room := range s.Chatrooms.All() {
		_, ok1 := s.Users.GetUser(room.UserID1)
		_, ok2 := s.Users.GetUser(room.UserID2)
		_, okMatch := s.Matches.GetMatch(room.MatchID)
		if ok1 && ok2 && okMatch {
			continue
		}
		log.Printf("Integrity: chatroom %d invalid (user1=%v user2=%v match=%v), deleting", room.ChatroomID, ok1, ok2, okMatch)
		if err := s.Chatrooms.DeleteChatroom(ctx, room.ChatroomID); err != nil {
			log.Printf("Integrity: failed to delete chatroom %d: %v", room.ChatroomID, err)
		}
		report.ChatroomsDeleted++
	}
	return nil
}

// Rule D, cache mode: delete stored messages whose sender, receiver or
// chatroom is gone, then drop chatroom message refs that point at
// nothing.
func (s *IntegrityService) checkCachedMessages(ctx context.Context, report *IntegrityReport) error {
	var messages []models.Message
	if err := s.Dynamo.ScanAllInto(ctx, models.MessagesTable, &messages); err != nil {
		return err
	}

	rooms := make(map[int64]struct{})
	for _, room := range s.Chatrooms.All() {
		rooms[room.ChatroomID] = struct{}{}
	}

	surviving := make(map[int64]struct{}, len(messages))
	for _, message := range messages {
		_, senderOK := s.Users.GetUser(message.SenderID)
		_, receiverOK := s.Users.GetUser(message.ReceiverID)
		_, roomOK := rooms[message.ChatroomID]
		if senderOK && receiverOK && roomOK {
			surviving[message.MessageID] = struct{}{}
			continue
		}
		log.Printf("Integrity: message %d invalid (sender=%v receiver=%v chatroom=%v), deleting", message.MessageID, senderOK, receiverOK, roomOK)
		if err := s.Dynamo.DeleteItem(ctx, models.MessagesTable, NumericKey("messageId", message.MessageID)); err != nil {
			log.Printf("Integrity: failed to delete message %d: %v", message.MessageID, err)
		}
		report.MessagesDeleted++
	}

	for _, room := range s.Chatrooms.All() {
		removed := s.Chatrooms.RetainMessageRefs(room.ChatroomID, func(id int64) bool {
			_, ok := surviving[id]
			return ok
		})
		if removed == 0 {
			continue
		}
		log.Printf("Integrity: removed %d dangling message refs from chatroom %d", removed, room.ChatroomID)
		if err := s.Chatrooms.SaveChatroom(ctx, room.ChatroomID); err != nil {
			log.Printf("Integrity: failed to persist repaired chatroom %d: %v", room.ChatroomID, err)
		}
		report.MessageRefsRemoved += removed
	}
	return nil
}

// RunStorageCheck runs the same rules directly against durable storage,
// without touching the caches. Expensive (full scans of all four
// tables); intended for offline or admin-triggered repair.
func (s *IntegrityService) RunStorageCheck(ctx context.Context) IntegrityReport {
	report := IntegrityReport{TotalChecks: 4}

	var users []models.User
	var matches []models.Match
	var chatrooms []models.Chatroom
	var messages []models.Message

	if err := s.Dynamo.ScanAllInto(ctx, models.UsersTable, &users); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("scan users: %v", err))
		return report
	}
	if err := s.Dynamo.ScanAllInto(ctx, models.MatchesTable, &matches); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("scan matches: %v", err))
		return report
	}
	if err := s.Dynamo.ScanAllInto(ctx, models.ChatroomsTable, &chatrooms); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("scan chatrooms: %v", err))
		return report
	}
	if err := s.Dynamo.ScanAllInto(ctx, models.MessagesTable, &messages); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("scan messages: %v", err))
		return report
	}

	userByID := make(map[int64]*models.User, len(users))
	for i := range users {
		userByID[users[i].UserID] = &users[i]
	}

	// Rule A: matches with missing users go; surviving matches must
	// appear in both participants' stored match sets.
	validMatches := make(map[int64]*models.Match)
	dirtyUsers := make(map[int64]struct{})
	for i := range matches {
		match := &matches[i]
		_, ok1 := userByID[match.UserID1]
		_, ok2 := userByID[match.UserID2]
		if !ok1 || !ok2 {
			log.Printf("Integrity(storage): match %d references missing user, deleting", match.MatchID)
			if err := s.Dynamo.DeleteItem(ctx, models.MatchesTable, NumericKey("matchId", match.MatchID)); err != nil {
				log.Printf("Integrity(storage): failed to delete match %d: %v", match.MatchID, err)
			}
			report.MatchesDeleted++
			continue
		}
		validMatches[match.MatchID] = match

		for _, userID := range []int64{match.UserID1, match.UserID2} {
			user := userByID[userID]
			if user.HasMatch(match.MatchID) {
				continue
			}
			user.MatchIDs = append(user.MatchIDs, match.MatchID)
			dirtyUsers[userID] = struct{}{}
			report.MatchRefsAdded++
		}
	}
	report.ChecksCompleted++

	// Rule B: stored match sets reference surviving matches only.
	for _, user := range userByID {
		kept := user.MatchIDs[:0]
		for _, id := range user.MatchIDs {
			if _, ok := validMatches[id]; ok {
				kept = append(kept, id)
			} else {
				report.MatchRefsRemoved++
				dirtyUsers[user.UserID] = struct{}{}
			}
		}
		user.MatchIDs = kept
	}
	for userID := range dirtyUsers {
		if err := s.Dynamo.PutItem(ctx, models.UsersTable, *userByID[userID]); err != nil {
			log.Printf("Integrity(storage): failed to persist repaired user %d: %v", userID, err)
		}
	}
	report.ChecksCompleted++

	// Rule C: chatrooms with missing users or matches go.
	validRooms := make(map[int64]*models.Chatroom)
	for i := range chatrooms {
		room := &chatrooms[i]
		_, ok1 := userByID[room.UserID1]
		_, ok2 := userByID[room.UserID2]
		_, okMatch := validMatches[room.MatchID]
		if ok1 && ok2 && okMatch {
			validRooms[room.ChatroomID] = room
			continue
		}
		log.Printf("Integrity(storage): chatroom %d invalid, deleting", room.ChatroomID)
		if err := s.Dynamo.DeleteItem(ctx, models.ChatroomsTable, NumericKey("chatroomId", room.ChatroomID)); err != nil {
			log.Printf("Integrity(storage): failed to delete chatroom %d: %v", room.ChatroomID, err)
		}
		report.ChatroomsDeleted++
	}
	report.ChecksCompleted++

	// Rule D: messages with missing endpoints or rooms go; surviving
	// message ids bound the rooms' message lists.
	survivingMessages := make(map[int64]struct{}, len(messages))
	for i := range messages {
		message := &messages[i]
		_, senderOK := userByID[message.SenderID]
		_, receiverOK := userByID[message.ReceiverID]
		_, roomOK := validRooms[message.ChatroomID]
		if senderOK && receiverOK && roomOK {
			survivingMessages[message.MessageID] = struct{}{}
			continue
		}
		log.Printf("Integrity(storage): message %d invalid, deleting", message.MessageID)
		if err := s.Dynamo.DeleteItem(ctx, models.MessagesTable, NumericKey("messageId", message.MessageID)); err != nil {
			log.Printf("Integrity(storage): failed to delete message %d: %v", message.MessageID, err)
		}
		report.MessagesDeleted++
	}

	for _, room := range validRooms {
		kept := room.MessageIDs[:0]
		removed := 0
		for _, id := range room.MessageIDs {
			if _, ok := survivingMessages[id]; ok {
				kept = append(kept, id)
			} else {
				removed++
			}
		}
		if removed == 0 {
			continue
		}
		room.MessageIDs = kept
		report.MessageRefsRemoved += removed
		if err := s.Dynamo.PutItem(ctx, models.ChatroomsTable, *room); err != nil {
			log.Printf("Integrity(storage): failed to persist repaired chatroom %d: %v", room.ChatroomID, err)
		}
	}
	report.ChecksCompleted++

	report.Success = report.ChecksCompleted == report.TotalChecks
	return report
}
