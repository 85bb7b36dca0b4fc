// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, rate limiting, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/store"
)

// ContextKey is the type for context keys set by this package.
type ContextKey string

// Context keys for the authenticated request.
const (
	ContextKeyUser      ContextKey = "user"
	ContextKeyTokenHash ContextKey = "token_hash"
)

// errorResponse is the JSON error envelope shared with the API handlers.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteError writes a JSON error response in the API envelope.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{Success: false, Error: message})
}

// resolveUser parses the Authorization header and resolves the bearer token
// to its user. The third return value reports whether an error response
// was written.
func resolveUser(w http.ResponseWriter, r *http.Request, queries *store.Queries) (*model.User, string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return nil, "", true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		WriteError(w, http.StatusUnauthorized, "Invalid Authorization header format. Use: Bearer <token>")
		return nil, "", true
	}

	tokenHash := model.HashToken(parts[1])
	token, err := queries.GetAuthTokenByHash(r.Context(), tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		} else {
			slog.Error("failed to resolve auth token", "error", err)
			WriteError(w, http.StatusInternalServerError, "Server Error")
		}
		return nil, "", true
	}

	if token.IsExpired(time.Now()) {
		WriteError(w, http.StatusUnauthorized, "Token has expired")
		return nil, "", true
	}

	user, err := queries.GetUserByID(r.Context(), token.UserID)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return nil, "", true
	}

	updateTokenLastUsed(queries, token.ID)
	return &user, tokenHash, false
}

// Authenticate creates middleware requiring a valid bearer token. The
// resolved user and the token's hash are placed on the request context.
func Authenticate(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, tokenHash, errorWritten := resolveUser(w, r, queries)
			if errorWritten {
				return
			}
			serveWithUser(next, w, r, user, tokenHash)
		})
	}
}

// RequireAdmin creates middleware rejecting non-admin users. Must run
// after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}
		if !user.IsAdmin() {
			WriteError(w, http.StatusForbidden, "User role is not authorized to access this route")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser retrieves the authenticated user from the request context, or
// nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetTokenHash retrieves the hash of the presented bearer token, or ""
// for anonymous requests.
func GetTokenHash(r *http.Request) string {
	hash, _ := r.Context().Value(ContextKeyTokenHash).(string)
	return hash
}

func serveWithUser(next http.Handler, w http.ResponseWriter, r *http.Request, user *model.User, tokenHash string) {
	ctx := context.WithValue(r.Context(), ContextKeyUser, *user)
	ctx = context.WithValue(ctx, ContextKeyTokenHash, tokenHash)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// updateTokenLastUsed records token use in a background goroutine so the
// request path never waits on the write.
func updateTokenLastUsed(queries *store.Queries, tokenID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queries.UpdateAuthTokenLastUsed(ctx, store.UpdateAuthTokenLastUsedParams{
			ID:         tokenID,
			LastUsedAt: sql.NullTime{Time: time.Now(), Valid: true},
		})
	}()
}
