package api

import (
	"errors"
	"io"
	"net/http"

	"medstock/m/domain"
)

type signInRequest struct {
	Role domain.Role `json:"role,omitempty"`
}

type authResponse struct {
	Token    string      `json:"token"`
	User     domain.User `json:"user"`
	HomePath string      `json:"home_path"`
}

func (h *Handler) signInWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Session.SignInWithGoogle(r.Context(), req.Role)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Session.SignOut(r.Context()); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	user, ok := h.svc.Session.Current()
	if !ok || user.UID != claims.UID {
		respondError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"home_path": user.Role.HomePath(),
		"loading":   h.svc.Session.Loading(),
	})
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role domain.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, changed, err := h.svc.Session.SetUserRole(r.Context(), req.Role)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if !changed {
		respondError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, status int, user domain.User) {
	token, err := h.svc.Tokens.Issue(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, status, authResponse{Token: token, User: user, HomePath: user.Role.HomePath()})
}
