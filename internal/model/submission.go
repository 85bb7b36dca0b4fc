// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Submission statuses
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Rating bounds for submission reviews.
const (
	RatingMin = 0
	RatingMax = 10
)

// ValidSubmissionStatus reports whether status is one of the known
// submission moderation statuses.
func ValidSubmissionStatus(status string) bool {
	switch status {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

// Submission represents a user's artwork entry tied to exactly one contest.
// At most one submission exists per (contest, user) pair.
type Submission struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ImageURL    string        `json:"image_url"`
	ImageWidth  sql.NullInt64 `json:"-"`
	ImageHeight sql.NullInt64 `json:"-"`
	ContestID   int64         `json:"contest_id"`
	UserID      int64         `json:"user_id"`
	Rating      float64       `json:"rating"`
	ReviewCount int64         `json:"review_count"`
	Status      string        `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NextRating folds one accepted rating into the running mean.
func NextRating(oldAvg float64, oldCount int64, rating int) (float64, int64) {
	newCount := oldCount + 1
	return (oldAvg*float64(oldCount) + float64(rating)) / float64(newCount), newCount
}
