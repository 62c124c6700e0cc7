package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jeotronix/fieldops/internal/middleware"
	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/store"
)

func (r *Router) listServiceLogs(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	f := store.ServiceLogFilter{
		Status:   q.Get("status"),
		JobType:  q.Get("jobType"),
		ClientID: q.Get("clientId"),
		Search:   q.Get("q"),
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = t
		}
	}

	logs, err := r.service.ListServiceLogs(f)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (r *Router) createServiceLog(w http.ResponseWriter, req *http.Request) {
	var l models.ServiceLog
	if err := json.NewDecoder(req.Body).Decode(&l); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	localID, err := r.service.AddServiceLog(middleware.ActorFrom(req.Context()), &l)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"localId": localID})
}

func (r *Router) getServiceLog(w http.ResponseWriter, req *http.Request) {
	l, err := r.service.GetServiceLog(mux.Vars(req)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (r *Router) updateServiceLog(w http.ResponseWriter, req *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := r.service.UpdateServiceLog(middleware.ActorFrom(req.Context()), mux.Vars(req)["id"], fields)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (r *Router) deleteServiceLog(w http.ResponseWriter, req *http.Request) {
	if err := r.service.DeleteServiceLog(middleware.ActorFrom(req.Context()), mux.Vars(req)["id"]); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
