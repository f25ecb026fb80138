package routes

import (
	"lovelush_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterUserRoutes sets up routes for user operations.
func RegisterUserRoutes(r *mux.Router, c *controllers.UserController) {
	r.HandleFunc("/users", c.CreateUser).Methods("POST")
	r.HandleFunc("/users/stats", c.GetStats).Methods("GET")
	r.HandleFunc("/users/{userId}", c.GetUser).Methods("GET")
	r.HandleFunc("/users/{userId}/age", c.EditAge).Methods("PUT")
	r.HandleFunc("/users/{userId}/target-gender", c.EditTargetGender).Methods("PUT")
	r.HandleFunc("/users/{userId}/summary", c.EditSummary).Methods("PUT")
	r.HandleFunc("/users/{userId}/block", c.BlockUser).Methods("POST")
	r.HandleFunc("/users/{userId}/save", c.SaveUser).Methods("POST")
	r.HandleFunc("/users/{userId}", c.DeactivateUser).Methods("DELETE")
}
