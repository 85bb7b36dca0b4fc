// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/drawmaster/hub/internal/middleware"
	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/service"
)

// contestView is the contest representation served to clients: the stored
// fields plus parsed prize/category lists and pre-rendered HTML for the
// Markdown-authored description and rules.
type contestView struct {
	model.Contest
	Prizes          []model.Prize `json:"prizes"`
	Categories      []string      `json:"categories"`
	DescriptionHTML string        `json:"description_html,omitempty"`
	RulesHTML       string        `json:"rules_html,omitempty"`
}

// contestDetail adds the populated submission and winner lists served on
// the single-contest read.
type contestDetail struct {
	contestView
	Submissions []model.Submission `json:"submissions"`
	Winners     []winnerView       `json:"winners,omitempty"`
}

func (h *Handler) contestToView(c model.Contest) contestView {
	v := contestView{
		Contest:    c,
		Prizes:     c.GetPrizes(),
		Categories: c.GetCategories(),
	}
	if html, err := service.RenderMarkdown(c.Description); err == nil {
		v.DescriptionHTML = html
	}
	if html, err := service.RenderMarkdown(c.Rules); err == nil {
		v.RulesHTML = html
	}
	return v
}

// contestInput is the admin-supplied request body for contest writes.
type contestInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Rules       string        `json:"rules"`
	StartDate   time.Time     `json:"start_date"`
	Deadline    time.Time     `json:"deadline"`
	Status      string        `json:"status"`
	Prizes      []model.Prize `json:"prizes"`
	Categories  []string      `json:"categories"`
}

func (in contestInput) toService() service.ContestInput {
	return service.ContestInput{
		Title:       in.Title,
		Description: in.Description,
		Rules:       in.Rules,
		StartDate:   in.StartDate,
		Deadline:    in.Deadline,
		Status:      in.Status,
		Prizes:      in.Prizes,
		Categories:  in.Categories,
	}
}

// ListContests handles GET /api/contests. The status query parameter
// filters on the effective status.
func (h *Handler) ListContests(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contests.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	views := make([]contestView, 0, len(contests))
	for _, c := range contests {
		views = append(views, h.contestToView(c))
	}
	respondList(w, len(views), views)
}

// GetContest handles GET /api/contests/{id}. The response populates the
// contest's approved submissions and, once announced, its winners.
func (h *Handler) GetContest(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid contest ID")
		return
	}

	contest, err := h.contests.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	submissions, err := h.submissions.ListApprovedByContest(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	detail := contestDetail{
		contestView: h.contestToView(contest),
		Submissions: submissions,
	}
	if contest.WinnerAnnounced {
		winners, err := h.winners.ListByContest(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		detail.Winners = winnerViews(winners)
	}
	respond(w, http.StatusOK, detail)
}

// CreateContest handles POST /api/contests. Admin only.
func (h *Handler) CreateContest(w http.ResponseWriter, r *http.Request) {
	var body contestInput
	if !decodeJSON(w, r, &body) {
		return
	}

	contest, err := h.contests.Create(r.Context(), middleware.GetUser(r), body.toService())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusCreated, h.contestToView(contest))
}

// UpdateContest handles PUT /api/contests/{id}. Admin only.
func (h *Handler) UpdateContest(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid contest ID")
		return
	}
	var body contestInput
	if !decodeJSON(w, r, &body) {
		return
	}

	contest, err := h.contests.Update(r.Context(), middleware.GetUser(r), id, body.toService())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, h.contestToView(contest))
}

// DeleteContest handles DELETE /api/contests/{id}. Admin only; blocked
// when submissions reference the contest.
func (h *Handler) DeleteContest(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid contest ID")
		return
	}

	if err := h.contests.Delete(r.Context(), middleware.GetUser(r), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, struct{}{})
}

// AnnounceWinners handles PUT /api/contests/{id}/announce-winners. Admin
// only; replaces the contest's winner list wholesale.
func (h *Handler) AnnounceWinners(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid contest ID")
		return
	}
	var body struct {
		Winners []struct {
			Rank       int64 `json:"rank"`
			Submission int64 `json:"submission"`
		} `json:"winners"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	entries := make([]service.WinnerEntry, 0, len(body.Winners))
	for _, e := range body.Winners {
		entries = append(entries, service.WinnerEntry{Rank: e.Rank, SubmissionID: e.Submission})
	}

	winners, err := h.winners.Announce(r.Context(), middleware.GetUser(r), id, entries)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondList(w, len(winners), winnerViews(winners))
}
