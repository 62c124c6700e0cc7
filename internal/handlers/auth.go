package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jeotronix/fieldops/internal/auth"
	"github.com/jeotronix/fieldops/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a technician registration request
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// login handles technician login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	tech, err := r.store.GetTechnicianByEmail(loginReq.Email)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !auth.CheckPasswordHash(loginReq.Password, tech.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(tech, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"technician": tech,
	})
}

// register creates a technician account on this device
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if regReq.Email == "" || regReq.Password == "" || regReq.DisplayName == "" {
		respondError(w, http.StatusBadRequest, "email, password and displayName are required")
		return
	}

	hash, err := auth.HashPassword(regReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	tech := models.Technician{
		ID:           uuid.NewString(),
		Email:        regReq.Email,
		DisplayName:  regReq.DisplayName,
		PasswordHash: hash,
	}
	if err := r.store.InsertTechnician(&tech); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create technician (email might exist)")
		return
	}

	token, err := auth.GenerateToken(&tech, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token":      token,
		"technician": tech,
	})
}
