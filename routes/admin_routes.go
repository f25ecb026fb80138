package routes

import (
	"lovelush_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterAdminRoutes sets up maintenance routes.
func RegisterAdminRoutes(r *mux.Router, c *controllers.AdminController) {
	r.HandleFunc("/admin/integrity-check", c.RunIntegrityCheck).Methods("POST")
	r.HandleFunc("/admin/sweep", c.TriggerSweep).Methods("POST")
}
