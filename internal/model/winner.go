// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Medal labels for podium ranks.
const (
	MedalGold   = "gold"
	MedalSilver = "silver"
	MedalBronze = "bronze"
)

// PodiumSize is the number of ranks rendered with medal semantics.
const PodiumSize = 3

// Winner links one approved submission to its contest at a given rank.
// Ranks and submissions are unique per contest.
type Winner struct {
	ID           int64     `json:"id"`
	ContestID    int64     `json:"contest_id"`
	SubmissionID int64     `json:"submission_id"`
	Rank         int64     `json:"rank"`
	SelectedBy   int64     `json:"selected_by"`
	AnnouncedAt  time.Time `json:"announced_at"`
}

// Medal returns the medal label for the winner's rank, or "" for
// honorable mentions (rank > 3).
func (w *Winner) Medal() string {
	switch w.Rank {
	case 1:
		return MedalGold
	case 2:
		return MedalSilver
	case 3:
		return MedalBronze
	}
	return ""
}

// PrizeLabel returns the display label for the winner's rank.
// Rank 1 is the grand prize; other podium ranks use ordinal place names.
func (w *Winner) PrizeLabel() string {
	switch w.Rank {
	case 1:
		return "Grand Prize"
	case 2:
		return "Second Place"
	case 3:
		return "Third Place"
	}
	return "Honorable Mention"
}

// PartitionWinners splits winners, already ordered by ascending rank, into
// the podium (ranks 1-3) and honorable mentions (rank > 3).
func PartitionWinners(winners []Winner) (podium, mentions []Winner) {
	for _, w := range winners {
		if w.Rank <= PodiumSize {
			podium = append(podium, w)
		} else {
			mentions = append(mentions, w)
		}
	}
	return podium, mentions
}
