package routes

import (
	"lovelush_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for match operations.
func RegisterMatchRoutes(r *mux.Router, c *controllers.MatchController) {
	r.HandleFunc("/matches", c.CreateMatch).Methods("POST")
	r.HandleFunc("/matches/recommendations", c.FetchRecommendations).Methods("POST")
	r.HandleFunc("/matches/{matchId}/like", c.ToggleLike).Methods("POST")
	r.HandleFunc("/matches/{matchId}/info/{userId}", c.GetMatchInfo).Methods("GET")
	r.HandleFunc("/matches/user/{userId}", c.GetMatchesForUser).Methods("GET")
}
