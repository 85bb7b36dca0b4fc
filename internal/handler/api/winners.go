// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/drawmaster/hub/internal/middleware"
	"github.com/drawmaster/hub/internal/model"
)

// winnerView is the winner representation served to clients: the stored
// row plus its derived medal and prize label.
type winnerView struct {
	model.Winner
	Medal      string `json:"medal,omitempty"`
	PrizeLabel string `json:"prize_label"`
}

func winnerViews(winners []model.Winner) []winnerView {
	views := make([]winnerView, 0, len(winners))
	for _, w := range winners {
		views = append(views, winnerView{
			Winner:     w,
			Medal:      w.Medal(),
			PrizeLabel: w.PrizeLabel(),
		})
	}
	return views
}

// winnerBoard groups a contest's winners into the podium (ranks 1-3) and
// honorable mentions.
type winnerBoard struct {
	Podium            []winnerView `json:"podium"`
	HonorableMentions []winnerView `json:"honorable_mentions"`
}

// ListContestWinners handles GET /api/winners/{contestId}. Winners come
// back grouped into podium and honorable mentions, ordered by rank.
func (h *Handler) ListContestWinners(w http.ResponseWriter, r *http.Request) {
	contestID, err := parseIDParam(r, "contestId")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid contest ID")
		return
	}

	winners, err := h.winners.ListByContest(r.Context(), contestID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	podium, mentions := model.PartitionWinners(winners)
	respondList(w, len(winners), winnerBoard{
		Podium:            winnerViews(podium),
		HonorableMentions: winnerViews(mentions),
	})
}

// SelectWinner handles POST /api/winners. Admin only; assigns one
// approved submission a rank in a completed contest.
func (h *Handler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContestID    int64 `json:"contestId"`
		SubmissionID int64 `json:"submissionId"`
		Rank         int64 `json:"rank"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	winner, err := h.winners.Select(r.Context(), middleware.GetUser(r), body.ContestID, body.SubmissionID, body.Rank)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusCreated, winnerView{
		Winner:     winner,
		Medal:      winner.Medal(),
		PrizeLabel: winner.PrizeLabel(),
	})
}
