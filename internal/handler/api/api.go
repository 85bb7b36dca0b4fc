// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for the contest hub.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drawmaster/hub/internal/middleware"
	"github.com/drawmaster/hub/internal/service"
)

// Rate limit for the credential endpoints (register, login).
const (
	authRateRPS   = 1
	authRateBurst = 10
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db          *sql.DB
	log         *slog.Logger
	users       *service.UserService
	contests    *service.ContestService
	submissions *service.SubmissionService
	winners     *service.WinnerService
	images      *service.ImageStore
	maxUpload   int64
}

// NewHandler creates a new API handler and its service graph.
func NewHandler(db *sql.DB, log *slog.Logger, images *service.ImageStore, maxUpload int64, tokenTTL time.Duration) *Handler {
	contests := service.NewContestService(db, log)
	return &Handler{
		db:          db,
		log:         log,
		users:       service.NewUserService(db, log, tokenTTL),
		contests:    contests,
		submissions: service.NewSubmissionService(db, contests, images, log),
		winners:     service.NewWinnerService(db, contests, log),
		images:      images,
		maxUpload:   maxUpload,
	}
}

// Routes returns the API router mounted under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(authRateRPS, authRateBurst))
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.db))
			r.Get("/me", h.Me)
			r.Put("/updatedetails", h.UpdateDetails)
			r.Put("/updatepassword", h.UpdatePassword)
			r.Post("/logout", h.Logout)
			r.With(middleware.RequireAdmin).Get("/", h.ListUsers)
		})
	})

	r.Route("/contests", func(r chi.Router) {
		r.Get("/", h.ListContests)
		r.Get("/{id}", h.GetContest)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.db), middleware.RequireAdmin)
			r.Post("/", h.CreateContest)
			r.Put("/{id}", h.UpdateContest)
			r.Delete("/{id}", h.DeleteContest)
			r.Put("/{id}/announce-winners", h.AnnounceWinners)
		})
	})

	r.Route("/submissions", func(r chi.Router) {
		r.Get("/{id}", h.GetSubmission)
		r.Get("/contest/{contestId}", h.ListContestSubmissions)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.db))
			r.Get("/", h.ListSubmissions)
			r.Post("/", h.CreateSubmission)
			r.Put("/{id}", h.UpdateSubmission)
			r.Delete("/{id}", h.DeleteSubmission)
			r.With(middleware.RequireAdmin).Put("/{id}/status", h.UpdateSubmissionStatus)
			r.Put("/{id}/rate", h.RateSubmission)
		})
	})

	r.Route("/winners", func(r chi.Router) {
		r.Get("/{contestId}", h.ListContestWinners)
		r.With(middleware.Authenticate(h.db), middleware.RequireAdmin).Post("/", h.SelectWinner)
	})

	return r
}

// successResponse is the JSON envelope for successful responses. Count is
// set on list responses.
type successResponse struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data"`
	Token   string `json:"token,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes a successful data response.
func respond(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, successResponse{Success: true, Data: data})
}

// respondList writes a successful list response with its element count.
func respondList(w http.ResponseWriter, count int, data any) {
	writeJSON(w, http.StatusOK, successResponse{Success: true, Count: &count, Data: data})
}

// respondToken writes an auth response carrying a bearer token.
func respondToken(w http.ResponseWriter, statusCode int, token string, data any) {
	writeJSON(w, statusCode, successResponse{Success: true, Data: data, Token: token})
}

// writeServiceError maps a service error onto the HTTP status taxonomy and
// writes the error envelope.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var status int
	switch service.KindOf(err) {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindAuthentication:
		status = http.StatusUnauthorized
	case service.KindAuthorization:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		h.log.Error("unhandled service error", "error", err)
	}
	middleware.WriteError(w, status, service.MessageOf(err))
}

// decodeJSON decodes a JSON request body into v. Returns false with a 400
// written when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// parseIDParam parses the named chi URL parameter as an int64.
func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
