package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/hollowbeak/storefront/internal/domain/user"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrMissingFields):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "email already registered")
		default:
			h.internalError(w, r, "register", err)
		}
		return
	}

	token, err := h.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		h.internalError(w, r, "issue token", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u, token))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidLogin) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.internalError(w, r, "login", err)
		return
	}

	token, err := h.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		h.internalError(w, r, "issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u, token))
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, r, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u, ""))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req updateProfileRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), claims.UserID, req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "email already registered")
		case errors.Is(err, user.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.internalError(w, r, "update profile", err)
		}
		return
	}

	// Re-issue so the token reflects a changed email/role immediately.
	token, err := h.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		h.internalError(w, r, "issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u, token))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list users", err)
		return
	}

	resp := make([]userResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i], "")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, r, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u, ""))
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.users.UpdateProfile(r.Context(), id, req.Name, req.Email, "")
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "email already registered")
		case errors.Is(err, user.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.internalError(w, r, "update user", err)
		}
		return
	}

	if req.IsAdmin != nil && *req.IsAdmin != u.IsAdmin {
		if u, err = h.users.SetAdmin(r.Context(), id, *req.IsAdmin); err != nil {
			h.internalError(w, r, "set admin", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toUserResponse(u, ""))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.users.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
