package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"lovelush_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// ChatroomStore is the authoritative in-memory cache for chatrooms.
// Message bodies are never cached: a chatroom only keeps the ordered
// message id list, and history reads go straight to the Messages table.
type ChatroomStore struct {
	Dynamo          *DynamoService
	Sequence        *Sequencer
	MessageSequence *Sequencer
	Users           *UserStore
	Matches         *MatchStore

	mu        sync.Mutex
	chatrooms map[int64]*models.Chatroom
}

// SendReceipt reports the outcome of SendMessage back to the adapter.
type SendReceipt struct {
	Delivered bool   `json:"delivered"`
	MatchID   int64  `json:"matchId"`
	MessageID int64  `json:"messageId,omitempty"`
	SentAt    string `json:"sentAt,omitempty"`
}

func NewChatroomStore(dynamo *DynamoService, sequence, messageSequence *Sequencer, users *UserStore, matches *MatchStore) *ChatroomStore {
	return &ChatroomStore{
		Dynamo:          dynamo,
		Sequence:        sequence,
		MessageSequence: messageSequence,
		Users:           users,
		Matches:         matches,
		chatrooms:       make(map[int64]*models.Chatroom),
	}
}

// LoadAll replays the Chatrooms table into the cache. Call once at startup.
func (cs *ChatroomStore) LoadAll(ctx context.Context) error {
	var records []models.Chatroom
	if err := cs.Dynamo.ScanAllInto(ctx, models.ChatroomsTable, &records); err != nil {
		return err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	for i := range records {
		room := records[i]
		if room.MessageIDs == nil {
			room.MessageIDs = []int64{}
		}
		cs.chatrooms[room.ChatroomID] = &room
	}
	log.Printf("ChatroomStore: loaded %d chatrooms from storage", len(records))
	return nil
}

// GetChatroom returns a copy of the chatroom record.
func (cs *ChatroomStore) GetChatroom(chatroomID int64) (models.Chatroom, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	room, ok := cs.chatrooms[chatroomID]
	if !ok {
		return models.Chatroom{}, false
	}
	return *room, true
}

// GetOrCreateChatroom returns the chatroom for a match, creating it on
// first use. Idempotent: a match that already carries a chatroom id
// gets that id back unchanged.
//
// Persistence order matters. The chatroom is persisted before the match
// link: if the chatroom write fails the whole creation unwinds, but if
// only the match write fails the chatroom stays — a durably saved
// chatroom is real data, while the missing link is recoverable by
// retry or by the next sweep.
func (cs *ChatroomStore) GetOrCreateChatroom(ctx context.Context, userID1, userID2, matchID int64) (int64, error) {
	match, ok := cs.Matches.GetMatch(matchID)
	if !ok {
		return 0, ErrMatchNotFound
	}
	if match.ChatroomID != nil {
		return *match.ChatroomID, nil
	}

	if _, ok := cs.Users.GetUser(userID1); !ok {
		return 0, ErrUserNotFound
	}
	if _, ok := cs.Users.GetUser(userID2); !ok {
		return 0, ErrUserNotFound
	}

	room := &models.Chatroom{
		ChatroomID: cs.Sequence.Next(),
		UserID1:    userID1,
		UserID2:    userID2,
		MatchID:    matchID,
		MessageIDs: []int64{},
	}

	cs.mu.Lock()
	cs.chatrooms[room.ChatroomID] = room
	cs.mu.Unlock()

	if err := cs.Matches.SetChatroomID(matchID, room.ChatroomID); err != nil {
		cs.mu.Lock()
		delete(cs.chatrooms, room.ChatroomID)
		cs.mu.Unlock()
		return 0, err
	}

	if err := cs.Dynamo.PutItem(ctx, models.ChatroomsTable, *room); err != nil {
		cs.mu.Lock()
		delete(cs.chatrooms, room.ChatroomID)
		cs.mu.Unlock()
		cs.Matches.ClearChatroomID(matchID)
		return 0, fmt.Errorf("failed to persist chatroom: %w", err)
	}

	if err := cs.Matches.SaveMatch(ctx, matchID); err != nil {
		log.Printf("ChatroomStore: chatroom %d persisted but match %d link was not: %v", room.ChatroomID, matchID, err)
	}

	log.Printf("ChatroomStore: created chatroom %d for match %d (users %d, %d)", room.ChatroomID, matchID, userID1, userID2)
	return room.ChatroomID, nil
}

// SendMessage persists a message and appends it to the chatroom's id
// list. The message is made durable before the list is touched: a crash
// in between leaves an orphaned stored message for the integrity
// checker, never a dangling id in the chatroom.
func (cs *ChatroomStore) SendMessage(ctx context.Context, chatroomID, senderID int64, content string) (SendReceipt, error) {
	cs.mu.Lock()
	room, ok := cs.chatrooms[chatroomID]
	if !ok {
		cs.mu.Unlock()
		return SendReceipt{}, ErrChatroomNotFound
	}
	if !room.HasParticipant(senderID) {
		cs.mu.Unlock()
		return SendReceipt{MatchID: room.MatchID}, ErrNotParticipant
	}
	matchID := room.MatchID
	receiverID := room.OtherParticipant(senderID)
	cs.mu.Unlock()

	message := models.Message{
		MessageID:  cs.MessageSequence.Next(),
		Content:    content,
		SentAt:     time.Now().UTC().Format(time.RFC3339),
		SenderID:   senderID,
		ReceiverID: receiverID,
		ChatroomID: chatroomID,
	}

	if err := cs.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return SendReceipt{Delivered: false, MatchID: matchID}, fmt.Errorf("failed to persist message: %w", err)
	}

	cs.mu.Lock()
	if room, ok := cs.chatrooms[chatroomID]; ok {
		room.MessageIDs = append(room.MessageIDs, message.MessageID)
	}
	cs.mu.Unlock()

	if err := cs.SaveChatroom(ctx, chatroomID); err != nil {
		// The message is already durable; the id list catches up on the
		// next sweep.
		log.Printf("ChatroomStore: message %d sent but chatroom %d not persisted: %v", message.MessageID, chatroomID, err)
	}

	return SendReceipt{Delivered: true, MatchID: matchID, MessageID: message.MessageID, SentAt: message.SentAt}, nil
}

// GetHistory loads the chatroom's messages from durable storage in
// identifier order. The requesting user's own messages carry the
// SelfSenderName sentinel instead of their display name.
func (cs *ChatroomStore) GetHistory(ctx context.Context, chatroomID, requesterID int64) ([]models.ChatHistoryEntry, error) {
	cs.mu.Lock()
	room, ok := cs.chatrooms[chatroomID]
	if !ok {
		cs.mu.Unlock()
		return nil, ErrChatroomNotFound
	}
	messageIDs := append([]int64(nil), room.MessageIDs...)
	cs.mu.Unlock()

	// Stored order defines history.
	sort.Slice(messageIDs, func(i, j int) bool { return messageIDs[i] < messageIDs[j] })

	history := make([]models.ChatHistoryEntry, 0, len(messageIDs))
	for _, messageID := range messageIDs {
		item, err := cs.Dynamo.GetItem(ctx, models.MessagesTable, NumericKey("messageId", messageID))
		if err != nil {
			log.Printf("ChatroomStore: message %d unavailable while reading history of chatroom %d: %v", messageID, chatroomID, err)
			continue
		}

		var message models.Message
		if err := attributevalue.UnmarshalMap(item, &message); err != nil {
			log.Printf("ChatroomStore: failed to decode message %d: %v", messageID, err)
			continue
		}

		senderName := models.SelfSenderName
		if message.SenderID != requesterID {
			if sender, ok := cs.Users.GetUser(message.SenderID); ok {
				senderName = sender.DisplayName
			} else {
				senderName = strconv.FormatInt(message.SenderID, 10)
			}
		}

		history = append(history, models.ChatHistoryEntry{
			Content:    message.Content,
			SentAt:     message.SentAt,
			SenderID:   message.SenderID,
			SenderName: senderName,
		})
	}
	return history, nil
}

// SaveChatroom upserts one chatroom record into the Chatrooms table.
func (cs *ChatroomStore) SaveChatroom(ctx context.Context, chatroomID int64) error {
	cs.mu.Lock()
	room, ok := cs.chatrooms[chatroomID]
	if !ok {
		cs.mu.Unlock()
		return ErrChatroomNotFound
	}
	snapshot := *room
	cs.mu.Unlock()

	return cs.Dynamo.PutItem(ctx, models.ChatroomsTable, snapshot)
}

// SaveAll upserts every cached chatroom, logging and skipping failures.
func (cs *ChatroomStore) SaveAll(ctx context.Context) (saved, failed int) {
	cs.mu.Lock()
	snapshots := make([]models.Chatroom, 0, len(cs.chatrooms))
	for _, room := range cs.chatrooms {
		snapshots = append(snapshots, *room)
	}
	cs.mu.Unlock()

	for i := range snapshots {
		if err := cs.Dynamo.PutItem(ctx, models.ChatroomsTable, snapshots[i]); err != nil {
			log.Printf("ChatroomStore: failed to persist chatroom %d: %v", snapshots[i].ChatroomID, err)
			failed++
			continue
		}
		saved++
	}
	return saved, failed
}

// All returns a snapshot of every cached chatroom.
func (cs *ChatroomStore) All() []models.Chatroom {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	result := make([]models.Chatroom, 0, len(cs.chatrooms))
	for _, room := range cs.chatrooms {
		result = append(result, *room)
	}
	return result
}

// DeleteChatroom removes the chatroom from memory and durable storage,
// leaving its messages for the integrity checker's message rule.
func (cs *ChatroomStore) DeleteChatroom(ctx context.Context, chatroomID int64) error {
	cs.mu.Lock()
	delete(cs.chatrooms, chatroomID)
	cs.mu.Unlock()

	return cs.Dynamo.DeleteItem(ctx, models.ChatroomsTable, NumericKey("chatroomId", chatroomID))
}

// DeleteChatroomAndMessages removes the chatroom together with all of
// its stored messages, used by the deactivation cascade.
func (cs *ChatroomStore) DeleteChatroomAndMessages(ctx context.Context, chatroomID int64) error {
	cs.mu.Lock()
	room, ok := cs.chatrooms[chatroomID]
	var messageIDs []int64
	if ok {
		messageIDs = append([]int64(nil), room.MessageIDs...)
	}
	delete(cs.chatrooms, chatroomID)
	cs.mu.Unlock()

	if err := cs.Dynamo.BatchDeleteByID(ctx, models.MessagesTable, "messageId", messageIDs); err != nil {
		log.Printf("ChatroomStore: failed to delete messages of chatroom %d: %v", chatroomID, err)
	}
	return cs.Dynamo.DeleteItem(ctx, models.ChatroomsTable, NumericKey("chatroomId", chatroomID))
}

// RetainMessageRefs drops every message id the keep predicate rejects
// and reports how many were removed. Used by the integrity checker.
func (cs *ChatroomStore) RetainMessageRefs(chatroomID int64, keep func(int64) bool) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	room, ok := cs.chatrooms[chatroomID]
	if !ok {
		return 0
	}

	kept := room.MessageIDs[:0]
	removed := 0
	for _, id := range room.MessageIDs {
		if keep(id) {
			kept = append(kept, id)
		} else {
			removed++
		}
	}
	room.MessageIDs = kept
	return removed
}
