package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nexfone/invtrack/internal/middleware"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/recon"
	"github.com/nexfone/invtrack/internal/store"
	"gorm.io/datatypes"
)

// triggerSheetSync runs one sheet reconciliation pass and returns the
// run summary. A collision with an in-progress run is rejected with 409.
func (r *Router) triggerSheetSync(w http.ResponseWriter, req *http.Request) {
	r.runSync(w, req, "sheets", r.engine.SyncSheets)
}

// triggerOutboundSync runs one outbound shipment match pass
func (r *Router) triggerOutboundSync(w http.ResponseWriter, req *http.Request) {
	r.runSync(w, req, "outbound", r.engine.SyncOutbound)
}

func (r *Router) runSync(w http.ResponseWriter, req *http.Request, kind string,
	fn func(ctx context.Context, triggeredBy *string) (*models.SyncRun, error)) {

	actor := middleware.UserIDFrom(req.Context())
	r.logSyncTrigger(req, kind)

	run, err := fn(req.Context(), actor)
	if errors.Is(err, recon.ErrSyncInProgress) {
		respondJSON(w, http.StatusConflict, map[string]string{
			"message": "A sync run is already in progress",
		})
		return
	}
	if run == nil {
		respondError(w, http.StatusInternalServerError, "Failed to start sync")
		return
	}
	// A failed run is a valid outcome; the run status carries the result.
	respondJSON(w, http.StatusOK, run)
}

// syncStatus returns the active run, or the most recent one
func (r *Router) syncStatus(w http.ResponseWriter, req *http.Request) {
	run, err := r.engine.Status(req.Context())
	if err == store.ErrNotFound {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "never_run",
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load sync status")
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// logSyncTrigger records who pressed the button. Best effort; a failed
// audit write never blocks the sync itself.
func (r *Router) logSyncTrigger(req *http.Request, kind string) {
	claims := middleware.ClaimsFrom(req.Context())
	entry := &models.ActivityLogEntry{
		UserID: middleware.UserIDFrom(req.Context()),
		Action: models.ActivitySyncTrigger,
	}
	if claims != nil {
		if email, ok := claims["email"].(string); ok {
			entry.UserEmail = email
		}
	}
	if meta, err := json.Marshal(map[string]string{"kind": kind}); err == nil {
		entry.Metadata = datatypes.JSON(meta)
	}
	_ = r.store.AppendActivity(req.Context(), entry)
}
