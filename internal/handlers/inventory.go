package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"gorm.io/datatypes"

	"github.com/nexfone/invtrack/internal/imei"
	"github.com/nexfone/invtrack/internal/middleware"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/reports"
	"github.com/nexfone/invtrack/internal/store"
)

// listInventory returns one page of current-state devices.
// Filters: status, grade, model, batch.
func (r *Router) listInventory(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filter := store.ItemFilter{
		Status: models.ItemStatus(q.Get("status")),
		Grade:  q.Get("grade"),
		Model:  q.Get("model"),
		Batch:  q.Get("batch"),
	}

	limit := parseIntParam(q.Get("limit"), 50)
	offset := parseIntParam(q.Get("offset"), 0)

	items, total, err := r.store.ListItems(req.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list inventory")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":   items,
		"total":   total,
		"hasMore": int64(offset+len(items)) < total,
	})
}

// inventorySummary returns the grouped dashboard stats, recomputed from
// current state on every call.
func (r *Router) inventorySummary(w http.ResponseWriter, req *http.Request) {
	items, err := r.store.AllItems(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load inventory")
		return
	}
	respondJSON(w, http.StatusOK, reports.BuildSummary(items))
}

// BulkAddRequest carries manually-entered devices
type BulkAddRequest struct {
	Items []models.InventoryItem `json:"items"`
}

// bulkAddItems inserts manually-entered devices, ledgering each as an
// added movement. Rows with invalid IMEIs are rejected per row, not
// per request.
func (r *Router) bulkAddItems(w http.ResponseWriter, req *http.Request) {
	var body BulkAddRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(body.Items) == 0 {
		respondError(w, http.StatusBadRequest, "No items provided")
		return
	}

	actor := middleware.UserIDFrom(req.Context())
	now := time.Now().UTC()

	added := 0
	var rejected []string
	for i := range body.Items {
		item := body.Items[i]
		item.IMEI = imei.Normalize(item.IMEI)
		if !imei.Valid(item.IMEI) {
			rejected = append(rejected, item.IMEI)
			continue
		}
		if item.Status == "" {
			item.Status = models.ItemStatusInStock
		}
		item.LastUpdated = now

		if err := r.store.SaveItem(req.Context(), &item); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save item "+item.IMEI)
			return
		}
		if err := r.appendManualMovement(req, models.MovementAdded, &item, actor, now, "manual bulk add"); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to record movement for "+item.IMEI)
			return
		}
		added++
	}

	r.logItemActivity(req, models.ActivityBulkAdd, added, map[string]interface{}{"rejected": rejected})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"added":    added,
		"rejected": rejected,
	})
}

// BulkDeleteRequest names the devices to remove
type BulkDeleteRequest struct {
	IMEIs []string `json:"imeis"`
}

// bulkDeleteItems removes devices from current state. This is the only
// path besides clear that drops a row; each removal is ledgered.
func (r *Router) bulkDeleteItems(w http.ResponseWriter, req *http.Request) {
	var body BulkDeleteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(body.IMEIs) == 0 {
		respondError(w, http.StatusBadRequest, "No IMEIs provided")
		return
	}

	actor := middleware.UserIDFrom(req.Context())
	now := time.Now().UTC()

	// Delete first, ledger after: the append-only ledger must never
	// record a removal for a device still sitting in inventory.
	var removed []string
	notFound := 0
	for _, raw := range body.IMEIs {
		id := imei.Normalize(raw)
		item, err := r.store.GetItem(req.Context(), id)
		if err == store.ErrNotFound {
			notFound++
			continue
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to look up "+id)
			return
		}

		n, err := r.store.DeleteItems(req.Context(), []string{id})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to delete "+id)
			return
		}
		if n == 0 {
			notFound++
			continue
		}
		if err := r.appendManualMovement(req, models.MovementRemoved, item, actor, now, "manual bulk delete"); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to record movement for "+id)
			return
		}
		removed = append(removed, id)
	}

	r.logItemActivity(req, models.ActivityBulkDelete, len(removed), map[string]interface{}{"imeis": removed})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deleted":  len(removed),
		"notFound": notFound,
	})
}

// clearItems wipes the current-state table. The movement ledger is
// untouched; history survives a clear.
func (r *Router) clearItems(w http.ResponseWriter, req *http.Request) {
	cleared, err := r.store.ClearItems(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clear inventory")
		return
	}

	r.logItemActivity(req, models.ActivityClear, int(cleared), nil)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cleared": cleared,
	})
}

// appendManualMovement ledgers a manual add or removal with the full
// record embedded as the audit snapshot.
func (r *Router) appendManualMovement(req *http.Request, mt models.MovementType,
	item *models.InventoryItem, actor *string, at time.Time, notes string) error {

	m := &models.Movement{
		MovementType: mt,
		IMEI:         item.IMEI,
		Source:       models.SourceManual,
		PerformedBy:  actor,
		PerformedAt:  at,
		Notes:        notes,
	}
	switch mt {
	case models.MovementAdded:
		m.ToStatus = string(item.Status)
	case models.MovementRemoved:
		m.FromStatus = string(item.Status)
	}
	if blob, err := json.Marshal(map[string]interface{}{"item": item}); err == nil {
		m.Snapshot = datatypes.JSON(blob)
	}
	_, err := r.ledger.Append(req.Context(), m)
	return err
}

// logItemActivity records a bulk item operation in the admin audit trail
func (r *Router) logItemActivity(req *http.Request, action models.ActivityAction, count int, meta map[string]interface{}) {
	claims := middleware.ClaimsFrom(req.Context())
	entry := &models.ActivityLogEntry{
		UserID:    middleware.UserIDFrom(req.Context()),
		Action:    action,
		ItemCount: count,
	}
	if claims != nil {
		if email, ok := claims["email"].(string); ok {
			entry.UserEmail = email
		}
	}
	if meta != nil {
		if blob, err := json.Marshal(meta); err == nil {
			entry.Metadata = datatypes.JSON(blob)
		}
	}
	_ = r.store.AppendActivity(req.Context(), entry)
}
