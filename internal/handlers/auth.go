package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
	"github.com/nexfone/invtrack/internal/utils"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles dashboard login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := r.store.GetUserByEmail(req.Context(), loginReq.Email)
	if err == store.ErrNotFound {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up user")
		return
	}

	if !user.IsActive {
		respondError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	user.LoginCount++
	if err := r.store.SaveUser(req.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update login state")
		return
	}

	token, err := utils.GenerateToken(user, r.jwtSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	_ = r.store.AppendActivity(req.Context(), &models.ActivityLogEntry{
		UserID:    &user.ID,
		UserEmail: user.Email,
		Action:    models.ActivityLogin,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
