// Package handlers exposes the application to the local UI over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeotronix/fieldops/internal/config"
	"github.com/jeotronix/fieldops/internal/middleware"
	"github.com/jeotronix/fieldops/internal/services"
	"github.com/jeotronix/fieldops/internal/store"
	syncengine "github.com/jeotronix/fieldops/internal/sync"
	"github.com/jeotronix/fieldops/internal/websocket"
)

// Router wraps the mux router and the application components
type Router struct {
	*mux.Router
	cfg     *config.Config
	service *services.Service
	store   *store.Store
	engine  *syncengine.Engine
	hub     *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(cfg *config.Config, svc *services.Service, st *store.Store, engine *syncengine.Engine, hub *websocket.Hub) *Router {
	r := &Router{
		Router:  mux.NewRouter(),
		cfg:     cfg,
		service: svc,
		store:   st,
		engine:  engine,
		hub:     hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// Live status frames
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(hub, w, req)
	})

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))

	api.HandleFunc("/logs", r.listServiceLogs).Methods("GET")
	api.HandleFunc("/logs", r.createServiceLog).Methods("POST")
	api.HandleFunc("/logs/{id}", r.getServiceLog).Methods("GET")
	api.HandleFunc("/logs/{id}", r.updateServiceLog).Methods("PUT")
	api.HandleFunc("/logs/{id}", r.deleteServiceLog).Methods("DELETE")

	api.HandleFunc("/clients", r.listClients).Methods("GET")
	api.HandleFunc("/clients", r.createClient).Methods("POST")
	api.HandleFunc("/clients/{id}", r.getClient).Methods("GET")
	api.HandleFunc("/clients/{id}", r.updateClient).Methods("PUT")
	api.HandleFunc("/clients/{id}", r.deleteClient).Methods("DELETE")

	api.HandleFunc("/kb", r.listArticles).Methods("GET")
	api.HandleFunc("/kb", r.createArticle).Methods("POST")
	api.HandleFunc("/kb/search", r.searchArticles).Methods("GET")
	api.HandleFunc("/kb/reindex", r.rebuildIndex).Methods("POST")
	api.HandleFunc("/kb/attachment", r.getAttachment).Methods("GET")
	api.HandleFunc("/kb/{id}", r.getArticle).Methods("GET")
	api.HandleFunc("/kb/{id}", r.updateArticle).Methods("PUT")
	api.HandleFunc("/kb/{id}", r.deleteArticle).Methods("DELETE")
	api.HandleFunc("/kb/{id}/pin", r.togglePin).Methods("POST")
	api.HandleFunc("/kb/{id}/attachments", r.listAttachments).Methods("GET")
	api.HandleFunc("/kb/{id}/attachments", r.addAttachment).Methods("POST")

	api.HandleFunc("/sync/status", r.syncStatus).Methods("GET")
	api.HandleFunc("/sync/now", r.syncNow).Methods("POST")
	api.HandleFunc("/sync/dead", r.listDeadItems).Methods("GET")
	api.HandleFunc("/sync/dead/{id}/retry", r.retryDeadItem).Methods("POST")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"server": "local",
	})
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
		"error": message,
	})
}

// respondStoreError maps store errors onto HTTP statuses
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrNoActor):
		respondError(w, http.StatusUnauthorized, "Sign in required")
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}
