// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/drawmaster/hub/internal/middleware"
	"github.com/drawmaster/hub/internal/service"
)

func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

// Register handles POST /api/users/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	user, token, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	}, clientInfo(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondToken(w, http.StatusCreated, token, user)
}

// Login handles POST /api/users/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	user, token, err := h.users.Login(r.Context(), service.LoginInput{
		Email:    body.Email,
		Password: body.Password,
	}, clientInfo(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondToken(w, http.StatusOK, token, user)
}

// Logout handles POST /api/users/logout. Revokes the presented token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.LogoutByHash(r.Context(), middleware.GetTokenHash(r)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, struct{}{})
}

// Me handles GET /api/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, middleware.GetUser(r))
}

// UpdateDetails handles PUT /api/users/updatedetails.
func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	user, err := h.users.UpdateDetails(r.Context(), middleware.GetUser(r), service.UpdateDetailsInput{
		Name:  body.Name,
		Email: body.Email,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, user)
}

// UpdatePassword handles PUT /api/users/updatepassword.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	err := h.users.UpdatePassword(r.Context(), middleware.GetUser(r), service.UpdatePasswordInput{
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	}, middleware.GetTokenHash(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, struct{}{})
}

// ListUsers handles GET /api/users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondList(w, len(users), users)
}
