package socket

import (
	"fmt"
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// Server wraps the Socket.IO server that pushes chat events to
// connected clients. Clients join a room per chatroom and receive
// "newMessage" events when the other participant sends.
type Server struct {
	io *socketio.Server
}

func NewServer() *Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		log.Printf("Socket connected: %s", s.ID())
		return nil
	})

	io.OnEvent("/", "join", func(s socketio.Conn, chatroomID string) {
		s.Join(roomName(chatroomID))
		log.Printf("Socket %s joined chatroom %s", s.ID(), chatroomID)
	})

	io.OnEvent("/", "leave", func(s socketio.Conn, chatroomID string) {
		s.Leave(roomName(chatroomID))
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("Socket disconnected: %s (%s)", s.ID(), reason)
	})

	return &Server{io: io}
}

func roomName(chatroomID string) string {
	return "chatroom:" + chatroomID
}

// NotifyNewMessage pushes a message event to everyone in the chatroom's
// room.
func (s *Server) NotifyNewMessage(chatroomID, messageID, senderID int64, content, sentAt string) {
	s.io.BroadcastToRoom("/", roomName(fmt.Sprintf("%d", chatroomID)), "newMessage", map[string]interface{}{
		"chatroomId": chatroomID,
		"messageId":  messageID,
		"senderId":   senderID,
		"content":    content,
		"sentAt":     sentAt,
	})
}

// Serve runs the Socket.IO event loop. Call in a goroutine.
func (s *Server) Serve() error {
	return s.io.Serve()
}

// Close stops the event loop.
func (s *Server) Close() error {
	return s.io.Close()
}

// Handler exposes the underlying HTTP handler for router registration.
func (s *Server) Handler() *socketio.Server {
	return s.io
}
