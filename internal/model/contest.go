// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// Contest statuses
const (
	ContestStatusDraft     = "draft"
	ContestStatusActive    = "active"
	ContestStatusCompleted = "completed"
	ContestStatusCancelled = "cancelled"
)

// ValidContestStatus reports whether status is one of the known contest statuses.
func ValidContestStatus(status string) bool {
	switch status {
	case ContestStatusDraft, ContestStatusActive, ContestStatusCompleted, ContestStatusCancelled:
		return true
	}
	return false
}

// Prize describes one prize tier of a contest.
type Prize struct {
	Rank        int    `json:"rank"`
	Description string `json:"description"`
}

// Contest represents a time-boxed drawing competition.
type Contest struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Rules           string    `json:"rules"`
	StartDate       time.Time `json:"start_date"`
	Deadline        time.Time `json:"deadline"`
	Status          string    `json:"status"`
	Prizes          string    `json:"-"` // JSON array stored as string
	Categories      string    `json:"-"` // JSON array stored as string
	CreatedBy       int64     `json:"created_by"`
	WinnerAnnounced bool      `json:"winner_announced"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DeriveStatus computes the effective contest status from the stored status
// and the contest dates at the given instant. Past the deadline the contest
// is completed; past the start date it is active; before the start date the
// stored status (draft or cancelled) stands. The computation is idempotent
// and runs before every status-dependent check and on every persistence op.
func DeriveStatus(stored string, startDate, deadline, now time.Time) string {
	switch {
	case now.After(deadline):
		return ContestStatusCompleted
	case now.After(startDate):
		return ContestStatusActive
	default:
		return stored
	}
}

// DerivedStatus returns the contest's effective status at the given instant.
func (c *Contest) DerivedStatus(now time.Time) string {
	return DeriveStatus(c.Status, c.StartDate, c.Deadline, now)
}

// GetPrizes parses the JSON prizes string into a slice.
func (c *Contest) GetPrizes() []Prize {
	var prizes []Prize
	if c.Prizes == "" || c.Prizes == "[]" {
		return prizes
	}
	_ = json.Unmarshal([]byte(c.Prizes), &prizes)
	return prizes
}

// GetCategories parses the JSON categories string into a slice.
func (c *Contest) GetCategories() []string {
	var categories []string
	if c.Categories == "" || c.Categories == "[]" {
		return categories
	}
	_ = json.Unmarshal([]byte(c.Categories), &categories)
	return categories
}

// PrizesToJSON converts a slice of prizes to a JSON string.
func PrizesToJSON(prizes []Prize) string {
	if len(prizes) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(prizes)
	return string(data)
}

// CategoriesToJSON converts a slice of categories to a JSON string.
func CategoriesToJSON(categories []string) string {
	if len(categories) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(categories)
	return string(data)
}
