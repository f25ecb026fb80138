package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lovelush_server/models"
	"lovelush_server/services"
)

// MatchController handles match lifecycle and recommendation requests.
type MatchController struct {
	Matches         *services.MatchStore
	Users           *services.UserStore
	Recommendations *services.RecommendationService
}

func NewMatchController(matches *services.MatchStore, users *services.UserStore, recommendations *services.RecommendationService) *MatchController {
	return &MatchController{Matches: matches, Users: users, Recommendations: recommendations}
}

func (c *MatchController) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID1 int64  `json:"userId1"`
		UserID2 int64  `json:"userId2"`
		Reason1 string `json:"reason1"`
		Reason2 string `json:"reason2"`
		Score   int    `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.UserID1 == 0 || payload.UserID2 == 0 {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	match := c.Matches.CreateMatch(payload.UserID1, payload.UserID2, payload.Reason1, payload.Reason2, payload.Score)
	json.NewEncoder(w).Encode(match)
}

func (c *MatchController) GetMatchInfo(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "matchId")
	if err != nil {
		http.Error(w, "Invalid match id", http.StatusBadRequest)
		return
	}
	requesterID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	info, err := c.Matches.GetMatchInfo(requesterID, matchID)
	if err != nil {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(info)
}

func (c *MatchController) GetMatchesForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	matches := c.Matches.GetMatchesForUser(userID)
	infos := make([]models.MatchInfo, 0, len(matches))
	for _, match := range matches {
		info, err := c.Matches.GetMatchInfo(userID, match.MatchID)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	json.NewEncoder(w).Encode(infos)
}

func (c *MatchController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "matchId")
	if err != nil {
		http.Error(w, "Invalid match id", http.StatusBadRequest)
		return
	}

	liked, err := c.Matches.ToggleLike(matchID)
	if err != nil {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"isLiked": liked})
}

// FetchRecommendations asks the recommendation webhook for candidates
// and records each one as a match.
func (c *MatchController) FetchRecommendations(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID int64 `json:"userId"`
		Count  int   `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Count <= 0 {
		payload.Count = 1
	}
	if _, ok := c.Users.GetUser(payload.UserID); !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	candidates, err := c.Recommendations.FetchCandidates(r.Context(), payload.UserID, payload.Count)
	if err != nil {
		log.Printf("FetchRecommendations: webhook call failed for user %d: %v", payload.UserID, err)
		http.Error(w, "Failed to fetch recommendations", http.StatusBadGateway)
		return
	}

	created := make([]models.Match, 0, len(candidates))
	for _, candidate := range candidates {
		match := c.Matches.CreateMatch(candidate.UserID1, candidate.UserID2, candidate.Reason1, candidate.Reason2, candidate.MatchScore)
		created = append(created, match)
	}
	json.NewEncoder(w).Encode(created)
}

// notFoundStatus maps a store sentinel to 404, anything else to 500.
func notFoundStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrChatroomNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
