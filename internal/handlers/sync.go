package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (r *Router) syncStatus(w http.ResponseWriter, req *http.Request) {
	if r.engine == nil {
		respondError(w, http.StatusServiceUnavailable, "Sync is not configured")
		return
	}
	respondJSON(w, http.StatusOK, r.engine.Status())
}

// syncNow requests an immediate cycle. The call returns right away; the
// status endpoint and websocket frames report progress.
func (r *Router) syncNow(w http.ResponseWriter, req *http.Request) {
	if r.engine == nil {
		respondError(w, http.StatusServiceUnavailable, "Sync is not configured")
		return
	}
	r.engine.RequestSync()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "requested"})
}

func (r *Router) listDeadItems(w http.ResponseWriter, req *http.Request) {
	items, err := r.store.DeadQueueItems()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// retryDeadItem puts a parked mutation back into the queue and kicks a
// cycle so it is retried immediately.
func (r *Router) retryDeadItem(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid queue item id")
		return
	}

	if err := r.store.ReviveQueueItem(uint(id)); err != nil {
		respondStoreError(w, err)
		return
	}
	if r.engine != nil {
		r.engine.RequestSync()
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "requeued"})
}
