package handlers

import (
	"net/http"
	"time"

	"github.com/example/auditplus/internal/version"
)

// Health responds with basic service status.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.String(),
		"time":    time.Now().UTC(),
	})
}
