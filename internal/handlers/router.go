// Package handlers exposes the dashboard HTTP API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nexfone/invtrack/internal/ledger"
	"github.com/nexfone/invtrack/internal/middleware"
	"github.com/nexfone/invtrack/internal/recon"
	"github.com/nexfone/invtrack/internal/store"
	ws "github.com/nexfone/invtrack/internal/websocket"
)

// Router wraps the mux router with the service dependencies
type Router struct {
	*mux.Router
	store     store.Store
	ledger    *ledger.Ledger
	engine    *recon.Engine
	hub       *ws.Hub
	jwtSecret string
}

// NewRouter creates the HTTP router with all routes registered
func NewRouter(s store.Store, l *ledger.Ledger, engine *recon.Engine, hub *ws.Hub, jwtSecret string) *Router {
	r := &Router{
		Router:    mux.NewRouter(),
		store:     s,
		ledger:    l,
		engine:    engine,
		hub:       hub,
		jwtSecret: jwtSecret,
	}

	// Public endpoints
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.HandleFunc("/auth/login", r.login).Methods("POST")
	r.HandleFunc("/ws", r.serveWS)

	// Authenticated API
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(jwtSecret))

	api.HandleFunc("/movements", r.listMovements).Methods("GET")
	api.HandleFunc("/movements/{imei}/history", r.movementHistory).Methods("GET")

	api.HandleFunc("/sync/sheets", r.triggerSheetSync).Methods("POST")
	api.HandleFunc("/sync/outbound", r.triggerOutboundSync).Methods("POST")
	api.HandleFunc("/sync/status", r.syncStatus).Methods("GET")

	api.HandleFunc("/search/imei/{imei}", r.searchIMEI).Methods("GET")

	api.HandleFunc("/inventory", r.listInventory).Methods("GET")
	api.HandleFunc("/inventory/summary", r.inventorySummary).Methods("GET")

	api.HandleFunc("/items/bulk", r.bulkAddItems).Methods("POST")
	api.HandleFunc("/items/bulk", r.bulkDeleteItems).Methods("DELETE")
	api.HandleFunc("/items/clear", r.clearItems).Methods("POST")

	api.HandleFunc("/reports/movements.pdf", r.movementReportPDF).Methods("GET")
	api.HandleFunc("/labels/{imei}", r.deviceLabel).Methods("GET")

	// Admin-only API
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/users", r.listUsers).Methods("GET")
	admin.HandleFunc("/users", r.createUser).Methods("POST")
	admin.HandleFunc("/users/{id}", r.updateUser).Methods("PATCH")
	admin.HandleFunc("/activity", r.listActivity).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// serveWS upgrades the connection and attaches it to the event hub
func (r *Router) serveWS(w http.ResponseWriter, req *http.Request) {
	ws.ServeWS(r.hub, w, req)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"message": message,
	})
}
