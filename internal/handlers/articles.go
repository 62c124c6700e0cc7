package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeotronix/fieldops/internal/middleware"
	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/store"
)

func (r *Router) listArticles(w http.ResponseWriter, req *http.Request) {
	f := store.ArticleFilter{Category: req.URL.Query().Get("category")}
	articles, err := r.service.ListArticles(f)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, articles)
}

func (r *Router) createArticle(w http.ResponseWriter, req *http.Request) {
	var a models.Article
	if err := json.NewDecoder(req.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	localID, err := r.service.AddArticle(middleware.ActorFrom(req.Context()), &a)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"localId": localID})
}

func (r *Router) searchArticles(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	f := store.ArticleFilter{Category: q.Get("category")}
	articles, err := r.service.SearchArticles(q.Get("q"), f)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	respondJSON(w, http.StatusOK, articles)
}

func (r *Router) getArticle(w http.ResponseWriter, req *http.Request) {
	a, err := r.service.GetArticle(mux.Vars(req)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (r *Router) updateArticle(w http.ResponseWriter, req *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := r.service.UpdateArticle(middleware.ActorFrom(req.Context()), mux.Vars(req)["id"], fields)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (r *Router) deleteArticle(w http.ResponseWriter, req *http.Request) {
	if err := r.service.DeleteArticle(middleware.ActorFrom(req.Context()), mux.Vars(req)["id"]); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (r *Router) togglePin(w http.ResponseWriter, req *http.Request) {
	a, err := r.service.TogglePin(mux.Vars(req)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (r *Router) rebuildIndex(w http.ResponseWriter, req *http.Request) {
	if err := r.service.RebuildSearchIndex(); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rebuilt"})
}

func (r *Router) addAttachment(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Name     string `json:"name"`
		MimeType string `json:"mimeType"`
		Data     []byte `json:"data"` // base64 in transit
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	a, err := r.service.AddAttachment(middleware.ActorFrom(req.Context()), mux.Vars(req)["id"], body.Name, body.MimeType, body.Data)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (r *Router) listAttachments(w http.ResponseWriter, req *http.Request) {
	atts, err := r.service.ListAttachments(mux.Vars(req)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, atts)
}

// getAttachment streams an attachment binary, fetching it on demand when
// the cache is cold. The storage path arrives as a query parameter because
// it contains slashes.
func (r *Router) getAttachment(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Query().Get("path")
	if path == "" {
		respondError(w, http.StatusBadRequest, "path query parameter required")
		return
	}

	a, err := r.service.GetAttachmentData(path)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if a.MimeType != "" {
		w.Header().Set("Content-Type", a.MimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(a.Data)
}
