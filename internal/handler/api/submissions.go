// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/drawmaster/hub/internal/middleware"
	"github.com/drawmaster/hub/internal/service"
)

// GetSubmission handles GET /api/submissions/{id}.
func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	sub, err := h.submissions.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, sub)
}

// ListContestSubmissions handles GET /api/submissions/contest/{contestId}.
// Only approved submissions are publicly listed.
func (h *Handler) ListContestSubmissions(w http.ResponseWriter, r *http.Request) {
	contestID, err := parseIDParam(r, "contestId")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid contest ID")
		return
	}

	subs, err := h.submissions.ListApprovedByContest(r.Context(), contestID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondList(w, len(subs), subs)
}

// ListSubmissions handles GET /api/submissions. Users see their own
// entries; admins see everything and may narrow to one user with ?user=.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	var filterUserID *int64
	if raw := r.URL.Query().Get("user"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		filterUserID = &id
	}

	subs, err := h.submissions.ListForActor(r.Context(), middleware.GetUser(r), filterUserID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondList(w, len(subs), subs)
}

// storeUpload saves the multipart file field "image", when present, into
// the image store. Returns nil without error when the field is absent.
func (h *Handler) storeUpload(r *http.Request) (*service.StoredImage, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, service.ValidationError("Invalid image upload")
	}
	defer file.Close()
	return h.images.Save(file, header)
}

// CreateSubmission handles POST /api/submissions. Accepts either a JSON
// body with a hosted image URL or a multipart form with an image file.
func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var in service.CreateSubmissionInput

	if isMultipart(r) {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		in.Title = r.FormValue("title")
		in.Description = r.FormValue("description")
		in.ContestID, _ = strconv.ParseInt(r.FormValue("contest"), 10, 64)

		stored, err := h.storeUpload(r)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		if stored != nil {
			in.ImageURL = stored.URL
			in.Uploaded = stored
		}
	} else {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Contest     int64  `json:"contest"`
			ImageURL    string `json:"imageUrl"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		in = service.CreateSubmissionInput{
			Title:       body.Title,
			Description: body.Description,
			ContestID:   body.Contest,
			ImageURL:    body.ImageURL,
		}
	}

	sub, err := h.submissions.Create(r.Context(), middleware.GetUser(r), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusCreated, sub)
}

// UpdateSubmission handles PUT /api/submissions/{id}. Fields absent from
// the request keep their current value.
func (h *Handler) UpdateSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	var in service.UpdateSubmissionInput

	if isMultipart(r) {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if vals, ok := r.MultipartForm.Value["title"]; ok && len(vals) > 0 {
			in.Title = &vals[0]
		}
		if vals, ok := r.MultipartForm.Value["description"]; ok && len(vals) > 0 {
			in.Description = &vals[0]
		}

		stored, err := h.storeUpload(r)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		in.Uploaded = stored
	} else {
		var body struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			ImageURL    *string `json:"imageUrl"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		in = service.UpdateSubmissionInput{
			Title:       body.Title,
			Description: body.Description,
			ImageURL:    body.ImageURL,
		}
	}

	sub, err := h.submissions.Update(r.Context(), middleware.GetUser(r), id, in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, sub)
}

// DeleteSubmission handles DELETE /api/submissions/{id}.
func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	if err := h.submissions.Delete(r.Context(), middleware.GetUser(r), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, struct{}{})
}

// UpdateSubmissionStatus handles PUT /api/submissions/{id}/status. Admin
// only.
func (h *Handler) UpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	sub, err := h.submissions.SetStatus(r.Context(), middleware.GetUser(r), id, body.Status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, sub)
}

// RateSubmission handles PUT /api/submissions/{id}/rate.
func (h *Handler) RateSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}
	var body struct {
		Rating int `json:"rating"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	sub, err := h.submissions.Rate(r.Context(), middleware.GetUser(r), id, body.Rating)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respond(w, http.StatusOK, sub)
}
