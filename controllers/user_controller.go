package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"lovelush_server/services"

	"github.com/gorilla/mux"
)

// UserController handles user lifecycle requests.
type UserController struct {
	Users *services.UserStore
}

func NewUserController(users *services.UserStore) *UserController {
	return &UserController{Users: users}
}

func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID      int64  `json:"userId"`
		DisplayName string `json:"displayName"`
		Gender      int    `json:"gender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.UserID == 0 || payload.DisplayName == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	userID := c.Users.CreateUser(payload.UserID, payload.DisplayName, payload.Gender)
	json.NewEncoder(w).Encode(map[string]interface{}{"userId": userID})
}

func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, ok := c.Users.GetUser(userID)
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(user)
}

func (c *UserController) EditAge(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Age int `json:"age"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Users.EditAge(userID, payload.Age); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (c *UserController) EditTargetGender(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var payload struct {
		TargetGender int `json:"targetGender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Users.EditTargetGender(userID, payload.TargetGender); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (c *UserController) EditSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Users.EditSummary(userID, payload.Summary); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (c *UserController) BlockUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var payload struct {
		BlockedUserID int64 `json:"blockedUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Users.BlockUser(userID, payload.BlockedUserID); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (c *UserController) SaveUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := c.Users.SaveUser(r.Context(), userID); err != nil {
		log.Printf("SaveUser: failed to persist user %d: %v", userID, err)
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (c *UserController) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if !c.Users.DeactivateUser(r.Context(), userID) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (c *UserController) GetStats(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(c.Users.Stats())
}

// pathID parses a numeric path variable shared by all controllers.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
