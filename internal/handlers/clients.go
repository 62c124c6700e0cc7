package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeotronix/fieldops/internal/middleware"
	"github.com/jeotronix/fieldops/internal/models"
)

func (r *Router) listClients(w http.ResponseWriter, req *http.Request) {
	clients, err := r.service.ListClients()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (r *Router) createClient(w http.ResponseWriter, req *http.Request) {
	var c models.Client
	if err := json.NewDecoder(req.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	localID, err := r.service.AddClient(middleware.ActorFrom(req.Context()), &c)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"localId": localID})
}

func (r *Router) getClient(w http.ResponseWriter, req *http.Request) {
	c, err := r.service.GetClient(mux.Vars(req)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (r *Router) updateClient(w http.ResponseWriter, req *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := r.service.UpdateClient(middleware.ActorFrom(req.Context()), mux.Vars(req)["id"], fields)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (r *Router) deleteClient(w http.ResponseWriter, req *http.Request) {
	if err := r.service.DeleteClient(middleware.ActorFrom(req.Context()), mux.Vars(req)["id"]); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
