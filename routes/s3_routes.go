package routes

import (
	"lovelush_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for S3-related operations.
func RegisterS3Routes(r *mux.Router, c *controllers.S3Controller) {
	r.HandleFunc("/generate-presigned-url", c.GeneratePresignedURL).Methods("POST")
	r.HandleFunc("/get-presigned-read-url", c.GetPresignedReadURL).Methods("POST")
}
