package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lovelush_server/services"
)

// MessageNotifier pushes sent messages to connected clients. The socket
// server implements it; tests leave it nil.
type MessageNotifier interface {
	NotifyNewMessage(chatroomID, messageID, senderID int64, content, sentAt string)
}

// ChatroomController handles chatroom and message requests.
type ChatroomController struct {
	Chatrooms *services.ChatroomStore
	Notifier  MessageNotifier
}

func NewChatroomController(chatrooms *services.ChatroomStore, notifier MessageNotifier) *ChatroomController {
	return &ChatroomController{Chatrooms: chatrooms, Notifier: notifier}
}

func (c *ChatroomController) GetOrCreateChatroom(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID1 int64 `json:"userId1"`
		UserID2 int64 `json:"userId2"`
		MatchID int64 `json:"matchId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	chatroomID, err := c.Chatrooms.GetOrCreateChatroom(r.Context(), payload.UserID1, payload.UserID2, payload.MatchID)
	if err != nil {
		log.Printf("GetOrCreateChatroom: failed for match %d: %v", payload.MatchID, err)
		http.Error(w, "Failed to get or create chatroom", notFoundStatus(err))
		return
	}
	json.NewEncoder(w).Encode(map[string]int64{"chatroomId": chatroomID})
}

func (c *ChatroomController) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatroomID, err := pathID(r, "chatroomId")
	if err != nil {
		http.Error(w, "Invalid chatroom id", http.StatusBadRequest)
		return
	}

	var payload struct {
		SenderID int64  `json:"senderId"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Content == "" {
		http.Error(w, "Missing message content", http.StatusBadRequest)
		return
	}

	receipt, err := c.Chatrooms.SendMessage(r.Context(), chatroomID, payload.SenderID, payload.Content)
	if err != nil {
		if errors.Is(err, services.ErrNotParticipant) {
			http.Error(w, "Sender is not a participant", http.StatusForbidden)
			return
		}
		log.Printf("SendMessage: failed in chatroom %d: %v", chatroomID, err)
		http.Error(w, "Failed to send message", notFoundStatus(err))
		return
	}

	if c.Notifier != nil {
		c.Notifier.NotifyNewMessage(chatroomID, receipt.MessageID, payload.SenderID, payload.Content, receipt.SentAt)
	}
	json.NewEncoder(w).Encode(receipt)
}

func (c *ChatroomController) GetHistory(w http.ResponseWriter, r *http.Request) {
	chatroomID, err := pathID(r, "chatroomId")
	if err != nil {
		http.Error(w, "Invalid chatroom id", http.StatusBadRequest)
		return
	}
	requesterID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	history, err := c.Chatrooms.GetHistory(r.Context(), chatroomID, requesterID)
	if err != nil {
		http.Error(w, "Chatroom not found", notFoundStatus(err))
		return
	}
	json.NewEncoder(w).Encode(history)
}

func (c *ChatroomController) SaveChatroom(w http.ResponseWriter, r *http.Request) {
	chatroomID, err := pathID(r, "chatroomId")
	if err != nil {
		http.Error(w, "Invalid chatroom id", http.StatusBadRequest)
		return
	}

	if err := c.Chatrooms.SaveChatroom(r.Context(), chatroomID); err != nil {
		log.Printf("SaveChatroom: failed to persist chatroom %d: %v", chatroomID, err)
		http.Error(w, "Failed to save chatroom", notFoundStatus(err))
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
