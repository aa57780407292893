package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nexfone/invtrack/internal/imei"
	"github.com/nexfone/invtrack/internal/store"
)

// searchIMEI looks up one device by IMEI and returns its current state
// with its latest movement. The Luhn check result is advisory: a failing
// checksum is reported but never blocks the lookup.
func (r *Router) searchIMEI(w http.ResponseWriter, req *http.Request) {
	id := imei.Normalize(mux.Vars(req)["imei"])
	if !imei.Valid(id) {
		respondError(w, http.StatusBadRequest, "IMEI must be exactly 15 digits")
		return
	}

	result := map[string]interface{}{
		"imei":      id,
		"found":     false,
		"luhnValid": imei.LuhnValid(id),
	}

	item, err := r.store.GetItem(req.Context(), id)
	if err == store.ErrNotFound {
		respondJSON(w, http.StatusOK, result)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up device")
		return
	}

	result["found"] = true
	result["item"] = item

	last, err := r.store.LastMovement(req.Context(), id)
	if err != nil && err != store.ErrNotFound {
		respondError(w, http.StatusInternalServerError, "Failed to load last movement")
		return
	}
	if last != nil {
		result["lastMovement"] = last
	}

	respondJSON(w, http.StatusOK, result)
}
