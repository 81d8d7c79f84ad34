package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
)

type createUserBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type profileBody struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type roleBody struct {
	Role string `json:"role"`
}

type passwordBody struct {
	Password string `json:"password"`
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Users.GetUser(r.Context(), ctxutil.ActorID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.ListUsers(r.Context(), primary.UserFilters{
		Role:            r.URL.Query().Get("role"),
		IncludeInactive: queryBool(r, "inactive"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body createUserBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	user, err := h.svc.Users.CreateUser(r.Context(), primary.CreateUserRequest{
		Username: body.Username,
		Password: body.Password,
		FullName: body.FullName,
		Email:    body.Email,
		Role:     body.Role,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body profileBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	err := h.svc.Users.UpdateProfile(r.Context(), primary.UpdateProfileRequest{
		UserID:   chi.URLParam(r, "id"),
		FullName: body.FullName,
		Email:    body.Email,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var body roleBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.svc.Users.ChangeRole(r.Context(), chi.URLParam(r, "id"), body.Role); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Users.DeactivateUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Users.ActivateUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body passwordBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.svc.Users.ResetPassword(r.Context(), chi.URLParam(r, "id"), body.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
