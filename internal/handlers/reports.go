package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nexfone/invtrack/internal/imei"
	"github.com/nexfone/invtrack/internal/ledger"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/printer"
	"github.com/nexfone/invtrack/internal/store"
)

// movementReportPDF renders a filtered slice of the ledger as a PDF.
// Accepts the same movementType/imei/from/to filters as the JSON listing.
func (r *Router) movementReportPDF(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	filter := store.MovementFilter{
		Type: models.MovementType(q.Get("movementType")),
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

	page, err := r.ledger.Query(req.Context(), filter, ledger.MaxLimit, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to query movements")
		return
	}

	pdf, err := printer.GenerateMovementReportPDF(page.Movements, filter.From, filter.To)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="movements.pdf"`)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// deviceLabel renders a QR label for one device. format=png (default)
// returns the bare QR image; format=pdf returns a printable label card.
func (r *Router) deviceLabel(w http.ResponseWriter, req *http.Request) {
	id := imei.Normalize(mux.Vars(req)["imei"])
	if !imei.Valid(id) {
		respondError(w, http.StatusBadRequest, "IMEI must be exactly 15 digits")
		return
	}

	item, err := r.store.GetItem(req.Context(), id)
	if err == store.ErrNotFound {
		respondError(w, http.StatusNotFound, "Device not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up device")
		return
	}

	switch req.URL.Query().Get("format") {
	case "pdf":
		pdf, err := printer.GenerateLabelPDF(item)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to render label")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(http.StatusOK)
		w.Write(pdf)
	default:
		png, err := printer.GenerateLabelPNG(item.IMEI, parseIntParam(req.URL.Query().Get("size"), 256))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to render label")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
