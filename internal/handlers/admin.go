package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"

	"github.com/nexfone/invtrack/internal/middleware"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
	"github.com/nexfone/invtrack/internal/utils"
)

// listUsers returns all dashboard accounts
func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	users, err := r.store.ListUsers(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// CreateUserRequest provisions a new dashboard account
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// createUser provisions a new account. Only admins reach this handler.
func (r *Router) createUser(w http.ResponseWriter, req *http.Request) {
	var body CreateUserRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Email == "" || body.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	role := models.UserRole(body.Role)
	if role == "" {
		role = models.RolePowerUser
	}
	if role != models.RolePowerUser && role != models.RoleAdmin {
		respondError(w, http.StatusBadRequest, "Unknown role")
		return
	}

	if _, err := r.store.GetUserByEmail(req.Context(), body.Email); err == nil {
		respondError(w, http.StatusConflict, "Email already registered")
		return
	}

	hashed, err := utils.HashPassword(body.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &models.User{
		Email:    body.Email,
		Password: hashed,
		Name:     body.Name,
		Role:     role,
		IsActive: true,
	}
	if err := r.store.SaveUser(req.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// UpdateUserRequest is a partial account update
type UpdateUserRequest struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// updateUser changes an account's role or active flag, auditing each change
func (r *Router) updateUser(w http.ResponseWriter, req *http.Request) {
	var body UpdateUserRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	id := mux.Vars(req)["id"]
	user, err := r.store.GetUserByID(req.Context(), id)
	if err == store.ErrNotFound {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up user")
		return
	}

	if body.Role != nil {
		role := models.UserRole(*body.Role)
		if role != models.RolePowerUser && role != models.RoleAdmin {
			respondError(w, http.StatusBadRequest, "Unknown role")
			return
		}
		if role != user.Role {
			r.logUserChange(req, models.ActivityRoleChange, user, string(user.Role), string(role))
			user.Role = role
		}
	}
	if body.IsActive != nil && *body.IsActive != user.IsActive {
		from, to := "active", "inactive"
		if *body.IsActive {
			from, to = "inactive", "active"
		}
		r.logUserChange(req, models.ActivityStatusChange, user, from, to)
		user.IsActive = *body.IsActive
	}

	if err := r.store.SaveUser(req.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// listActivity returns the admin audit trail, newest first
func (r *Router) listActivity(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	limit := parseIntParam(q.Get("limit"), 50)
	offset := parseIntParam(q.Get("offset"), 0)

	entries, total, err := r.store.ListActivity(req.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list activity")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
		"hasMore": int64(offset+len(entries)) < total,
	})
}

func (r *Router) logUserChange(req *http.Request, action models.ActivityAction, target *models.User, from, to string) {
	claims := middleware.ClaimsFrom(req.Context())
	entry := &models.ActivityLogEntry{
		UserID: middleware.UserIDFrom(req.Context()),
		Action: action,
	}
	if claims != nil {
		if email, ok := claims["email"].(string); ok {
			entry.UserEmail = email
		}
	}
	meta := map[string]string{
		"targetUserId": target.ID,
		"targetEmail":  target.Email,
		"from":         from,
		"to":           to,
	}
	if blob, err := json.Marshal(meta); err == nil {
		entry.Metadata = datatypes.JSON(blob)
	}
	_ = r.store.AppendActivity(req.Context(), entry)
}
