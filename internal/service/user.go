// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/drawmaster/hub/internal/auth"
	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/store"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ClientInfo carries request metadata recorded on auth audit events.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// UserService handles registration, login, and account management.
type UserService struct {
	db       *sql.DB
	queries  *store.Queries
	log      *slog.Logger
	tokenTTL time.Duration
}

// NewUserService creates a user service issuing tokens with the given TTL.
func NewUserService(db *sql.DB, log *slog.Logger, tokenTTL time.Duration) *UserService {
	return &UserService{db: db, queries: store.New(db), log: log, tokenTTL: tokenTTL}
}

// RegisterInput holds the fields for Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new account with the user role and issues a bearer
// token. The role is fixed at registration; there is no upgrade flow.
func (s *UserService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (model.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" {
		return model.User{}, "", ValidationError("Please add a name")
	}
	if !emailRegex.MatchString(in.Email) {
		return model.User{}, "", ValidationError("Please add a valid email")
	}
	if len(in.Password) < MinPasswordLength {
		return model.User{}, "", ValidationError("Password must be at least %d characters", MinPasswordLength)
	}

	count, err := s.queries.CountUsersByEmail(ctx, in.Email)
	if err != nil {
		return model.User{}, "", InternalError("Server Error", err)
	}
	if count > 0 {
		return model.User{}, "", ConflictError("An account with that email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, "", InternalError("Server Error", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, "", ConflictError("An account with that email already exists")
		}
		return model.User{}, "", InternalError("Server Error", err)
	}

	token, err := s.issueToken(ctx, user.ID, now)
	if err != nil {
		return model.User{}, "", err
	}

	s.recordAuthEvent(ctx, model.EventLevelInfo, "user registered", user.ID, client)
	return user, token, nil
}

// LoginInput holds the fields for Login.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a bearer token. Unknown emails and
// wrong passwords produce the same error so the response does not reveal
// which accounts exist.
func (s *UserService) Login(ctx context.Context, in LoginInput, client ClientInfo) (model.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return model.User{}, "", ValidationError("Please provide an email and password")
	}

	user, err := s.queries.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.recordAuthEvent(ctx, model.EventLevelWarning, "login failed: unknown email "+in.Email, 0, client)
			return model.User{}, "", AuthenticationError("Invalid credentials")
		}
		return model.User{}, "", InternalError("Server Error", err)
	}

	ok, err := auth.CheckPassword(in.Password, user.PasswordHash)
	if err != nil || !ok {
		s.recordAuthEvent(ctx, model.EventLevelWarning, "login failed: wrong password", user.ID, client)
		return model.User{}, "", AuthenticationError("Invalid credentials")
	}

	token, err := s.issueToken(ctx, user.ID, time.Now())
	if err != nil {
		return model.User{}, "", err
	}

	s.recordAuthEvent(ctx, model.EventLevelInfo, "user logged in", user.ID, client)
	return user, token, nil
}

// LogoutByHash revokes the bearer token with the given hash. The raw token
// never leaves the transport layer; the auth middleware hands its hash on.
func (s *UserService) LogoutByHash(ctx context.Context, tokenHash string) error {
	if err := s.queries.DeleteAuthToken(ctx, tokenHash); err != nil {
		return InternalError("Server Error", err)
	}
	return nil
}

// Get returns the user with the given ID.
func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, NotFoundError("User")
		}
		return model.User{}, InternalError("Server Error", err)
	}
	return user, nil
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, InternalError("Server Error", err)
	}
	return users, nil
}

// UpdateDetailsInput holds the fields for UpdateDetails.
type UpdateDetailsInput struct {
	Name  string
	Email string
}

// UpdateDetails updates the actor's own name and email.
func (s *UserService) UpdateDetails(ctx context.Context, actor *model.User, in UpdateDetailsInput) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" {
		return model.User{}, ValidationError("Please add a name")
	}
	if !emailRegex.MatchString(in.Email) {
		return model.User{}, ValidationError("Please add a valid email")
	}

	if in.Email != actor.Email {
		count, err := s.queries.CountUsersByEmail(ctx, in.Email)
		if err != nil {
			return model.User{}, InternalError("Server Error", err)
		}
		if count > 0 {
			return model.User{}, ConflictError("An account with that email already exists")
		}
	}

	user, err := s.queries.UpdateUserDetails(ctx, store.UpdateUserDetailsParams{
		ID:        actor.ID,
		Name:      in.Name,
		Email:     in.Email,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ConflictError("An account with that email already exists")
		}
		return model.User{}, InternalError("Server Error", err)
	}
	return user, nil
}

// UpdatePasswordInput holds the fields for UpdatePassword.
type UpdatePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// UpdatePassword verifies the actor's current password, stores a new hash,
// and revokes every other token the actor holds. The presented token,
// identified by its hash, stays valid.
func (s *UserService) UpdatePassword(ctx context.Context, actor *model.User, in UpdatePasswordInput, currentTokenHash string) error {
	if len(in.NewPassword) < MinPasswordLength {
		return ValidationError("Password must be at least %d characters", MinPasswordLength)
	}

	// Verify against the stored hash, not the request-scoped copy, in case
	// another session changed the password since this actor was resolved.
	user, err := s.Get(ctx, actor.ID)
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(in.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		return AuthenticationError("Password is incorrect")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return InternalError("Server Error", err)
	}

	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		ID:           actor.ID,
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
	}); err != nil {
		return InternalError("Server Error", err)
	}

	if err := s.queries.DeleteUserTokensExcept(ctx, store.DeleteUserTokensExceptParams{
		UserID:    actor.ID,
		TokenHash: currentTokenHash,
	}); err != nil {
		return InternalError("Server Error", err)
	}
	return nil
}

func (s *UserService) issueToken(ctx context.Context, userID int64, now time.Time) (string, error) {
	raw, err := model.GenerateToken()
	if err != nil {
		return "", InternalError("Server Error", err)
	}
	if _, err := s.queries.CreateAuthToken(ctx, store.CreateAuthTokenParams{
		TokenHash: model.HashToken(raw),
		UserID:    userID,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}); err != nil {
		return "", InternalError("Server Error", err)
	}
	return raw, nil
}

// recordAuthEvent writes an auth audit entry with parsed client metadata.
// Audit failures are logged, never surfaced to the caller.
func (s *UserService) recordAuthEvent(ctx context.Context, level, message string, userID int64, client ClientInfo) {
	metadata := "{}"
	if client.UserAgent != "" || client.IP != "" {
		ua := useragent.Parse(client.UserAgent)
		data, err := json.Marshal(map[string]string{
			"ip":      client.IP,
			"browser": ua.Name,
			"os":      ua.OS,
			"device":  ua.Device,
		})
		if err == nil {
			metadata = string(data)
		}
	}

	var uid sql.NullInt64
	if userID != 0 {
		uid = sql.NullInt64{Int64: userID, Valid: true}
	}

	if _, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  model.EventCategoryAuth,
		Message:   message,
		UserID:    uid,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}); err != nil {
		s.log.Error("failed to record auth event", "error", err)
	}
}

// isUniqueViolation reports whether err is a SQLite unique-index failure.
// Both the modernc and mattn drivers surface it in the message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
