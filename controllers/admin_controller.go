package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"lovelush_server/services"
)

// AdminController exposes maintenance operations.
type AdminController struct {
	Integrity *services.IntegrityService
	Sweep     *services.SweepService
}

func NewAdminController(integrity *services.IntegrityService, sweep *services.SweepService) *AdminController {
	return &AdminController{Integrity: integrity, Sweep: sweep}
}

// RunIntegrityCheck triggers a checker run. mode=storage scans durable
// storage directly; anything else checks the live caches.
func (c *AdminController) RunIntegrityCheck(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	log.Printf("RunIntegrityCheck: mode=%q", mode)

	var report services.IntegrityReport
	if mode == "storage" {
		report = c.Integrity.RunStorageCheck(r.Context())
	} else {
		report = c.Integrity.RunCacheCheck(r.Context())
	}
	json.NewEncoder(w).Encode(report)
}

// TriggerSweep forces one persistence sweep outside the normal cadence.
func (c *AdminController) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	c.Sweep.Sweep(r.Context())
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
