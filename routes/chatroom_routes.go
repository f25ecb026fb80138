package routes

import (
	"lovelush_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterChatroomRoutes sets up routes for chatroom and message operations.
func RegisterChatroomRoutes(r *mux.Router, c *controllers.ChatroomController) {
	r.HandleFunc("/chatrooms", c.GetOrCreateChatroom).Methods("POST")
	r.HandleFunc("/chatrooms/{chatroomId}/messages", c.SendMessage).Methods("POST")
	r.HandleFunc("/chatrooms/{chatroomId}/history/{userId}", c.GetHistory).Methods("GET")
	r.HandleFunc("/chatrooms/{chatroomId}/save", c.SaveChatroom).Methods("POST")
}
