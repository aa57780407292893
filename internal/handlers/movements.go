package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nexfone/invtrack/internal/imei"
	"github.com/nexfone/invtrack/internal/ledger"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
)

// listMovements returns one page of the ledger, newest first.
// Filters: movementType, imei, source, from, to (RFC3339).
func (r *Router) listMovements(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	filter := store.MovementFilter{
		Type:   models.MovementType(q.Get("movementType")),
		Source: models.MovementSource(q.Get("source")),
	}
	if raw := q.Get("imei"); raw != "" {
		filter.IMEI = imei.Normalize(raw)
	}

	var err error
	if filter.From, err = parseTimeParam(q.Get("from")); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'from' timestamp, expected RFC3339")
		return
	}
	if filter.To, err = parseTimeParam(q.Get("to")); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'to' timestamp, expected RFC3339")
		return
	}

	limit := parseIntParam(q.Get("limit"), ledger.DefaultLimit)
	offset := parseIntParam(q.Get("offset"), 0)

	page, err := r.ledger.Query(req.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to query movements")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"movements": page.Movements,
		"pagination": map[string]interface{}{
			"total":   page.Total,
			"limit":   limit,
			"offset":  offset,
			"hasMore": page.HasMore,
		},
	})
}

// movementHistory returns the full movement trail for one device
func (r *Router) movementHistory(w http.ResponseWriter, req *http.Request) {
	id := imei.Normalize(mux.Vars(req)["imei"])
	if !imei.Valid(id) {
		respondError(w, http.StatusBadRequest, "IMEI must be exactly 15 digits")
		return
	}

	movements, err := r.ledger.History(req.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"found":     len(movements) > 0,
		"imei":      id,
		"movements": movements,
	})
}

func parseIntParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
