// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the DrawMaster Hub
// project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/drawmaster/hub/internal/auth"
	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/store"
)

// TestLogger creates a quiet test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Tests run against the cgo sqlite3 driver; the runtime uses the pure-Go
// driver through store.NewDB.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "hub-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateUser inserts a user with the given role and returns it. The
// password for every test user is "password123".
func CreateUser(t *testing.T, db *sql.DB, email, role string) model.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	now := time.Now()
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// CreateContest inserts a contest with the given dates and stored status
// and returns it.
func CreateContest(t *testing.T, db *sql.DB, createdBy int64, status string, start, deadline time.Time) model.Contest {
	t.Helper()

	now := time.Now()
	contest, err := store.New(db).CreateContest(context.Background(), store.CreateContestParams{
		Title:       "Test Contest",
		Description: "A test contest",
		Rules:       "Draw something",
		StartDate:   start,
		Deadline:    deadline,
		Status:      status,
		Prizes:      "[]",
		Categories:  "[]",
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateContest: %v", err)
	}
	return contest
}

// CreateSubmission inserts a pending submission and returns it.
func CreateSubmission(t *testing.T, db *sql.DB, contestID, userID int64) model.Submission {
	t.Helper()

	now := time.Now()
	sub, err := store.New(db).CreateSubmission(context.Background(), store.CreateSubmissionParams{
		Title:       "Test Artwork",
		Description: "A test submission",
		ImageURL:    "https://example.com/art.png",
		ContestID:   contestID,
		UserID:      userID,
		SubmittedAt: now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	return sub
}

// ApproveSubmission flips a submission to approved status.
func ApproveSubmission(t *testing.T, db *sql.DB, id int64) model.Submission {
	t.Helper()

	sub, err := store.New(db).UpdateSubmissionStatus(context.Background(), store.UpdateSubmissionStatusParams{
		ID:        id,
		Status:    model.SubmissionStatusApproved,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpdateSubmissionStatus: %v", err)
	}
	return sub
}
