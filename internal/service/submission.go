// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/policy"
	"github.com/drawmaster/hub/internal/store"
)

// SubmissionService handles the submission lifecycle: creation, owner
// edits, moderation, and rating aggregation.
type SubmissionService struct {
	db       *sql.DB
	queries  *store.Queries
	contests *ContestService
	images   *ImageStore
	log      *slog.Logger
}

// NewSubmissionService creates a submission service.
func NewSubmissionService(db *sql.DB, contests *ContestService, images *ImageStore, log *slog.Logger) *SubmissionService {
	return &SubmissionService{
		db:       db,
		queries:  store.New(db),
		contests: contests,
		images:   images,
		log:      log,
	}
}

// CreateSubmissionInput holds the fields for Create. ImageURL is either a
// pre-hosted URL from the request body or the URL of an image stored by
// the handler; Uploaded carries the stored file's metadata in the latter
// case so failures can release it.
type CreateSubmissionInput struct {
	Title       string
	Description string
	ContestID   int64
	ImageURL    string
	Uploaded    *StoredImage
}

// Create enters the actor's artwork into a contest. The contest must be
// active and the actor must not have an existing entry; the entry starts
// in pending moderation status. Any uploaded file is removed on failure
// so no orphaned blobs remain.
func (s *SubmissionService) Create(ctx context.Context, actor *model.User, in CreateSubmissionInput) (model.Submission, error) {
	sub, err := s.create(ctx, actor, in)
	if err != nil && in.Uploaded != nil {
		if cleanupErr := s.images.Delete(in.Uploaded.URL); cleanupErr != nil {
			s.log.Error("failed to clean up uploaded file", "url", in.Uploaded.URL, "error", cleanupErr)
		}
	}
	return sub, err
}

func (s *SubmissionService) create(ctx context.Context, actor *model.User, in CreateSubmissionInput) (model.Submission, error) {
	if actor == nil {
		return model.Submission{}, AuthenticationError("authentication required")
	}
	if in.Title == "" {
		return model.Submission{}, ValidationError("Please add a title")
	}
	if len(in.Title) > MaxTitleLength {
		return model.Submission{}, ValidationError("Title cannot be more than %d characters", MaxTitleLength)
	}
	if in.Description == "" {
		return model.Submission{}, ValidationError("Please add a description")
	}
	if in.ImageURL == "" {
		return model.Submission{}, ValidationError("Please add an image")
	}

	contest, err := s.contests.Get(ctx, in.ContestID)
	if err != nil {
		return model.Submission{}, err
	}

	_, err = s.queries.GetSubmissionForContestUser(ctx, store.GetSubmissionForContestUserParams{
		ContestID: contest.ID,
		UserID:    actor.ID,
	})
	switch {
	case err == nil:
		return model.Submission{}, ConflictError("You have already submitted to this contest")
	case !errors.Is(err, sql.ErrNoRows):
		return model.Submission{}, InternalError("Server Error", err)
	}

	if d := policy.CanCreateSubmission(actor, contest.Status, false); !d.Allowed {
		return model.Submission{}, denyError(d)
	}

	var width, height sql.NullInt64
	if in.Uploaded != nil {
		width = sql.NullInt64{Int64: int64(in.Uploaded.Width), Valid: true}
		height = sql.NullInt64{Int64: int64(in.Uploaded.Height), Valid: true}
	}

	now := time.Now()
	sub, err := s.queries.CreateSubmission(ctx, store.CreateSubmissionParams{
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		ImageWidth:  width,
		ImageHeight: height,
		ContestID:   contest.ID,
		UserID:      actor.ID,
		SubmittedAt: now,
		UpdatedAt:   now,
	})
	if err != nil {
		// The unique index backstops the pre-check under concurrent creates.
		if isUniqueViolation(err) {
			return model.Submission{}, ConflictError("You have already submitted to this contest")
		}
		return model.Submission{}, InternalError("Server Error", err)
	}

	s.log.Info("submission created", "submission_id", sub.ID, "contest_id", contest.ID, "user_id", actor.ID)
	return sub, nil
}

// Get returns the submission with the given ID.
func (s *SubmissionService) Get(ctx context.Context, id int64) (model.Submission, error) {
	sub, err := s.queries.GetSubmissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Submission{}, NotFoundError("Submission")
		}
		return model.Submission{}, InternalError("Server Error", err)
	}
	return sub, nil
}

// ListForActor returns the actor's own submissions. Admins see all
// submissions, optionally narrowed to one user via filterUserID.
func (s *SubmissionService) ListForActor(ctx context.Context, actor *model.User, filterUserID *int64) ([]model.Submission, error) {
	if actor == nil {
		return nil, AuthenticationError("authentication required")
	}

	if !actor.IsAdmin() {
		if filterUserID != nil && *filterUserID != actor.ID {
			return nil, denyError(policy.CanListAllSubmissions(actor))
		}
		subs, err := s.queries.ListSubmissionsByUser(ctx, actor.ID)
		if err != nil {
			return nil, InternalError("Server Error", err)
		}
		return subs, nil
	}

	if filterUserID != nil {
		subs, err := s.queries.ListSubmissionsByUser(ctx, *filterUserID)
		if err != nil {
			return nil, InternalError("Server Error", err)
		}
		return subs, nil
	}
	subs, err := s.queries.ListSubmissions(ctx)
	if err != nil {
		return nil, InternalError("Server Error", err)
	}
	return subs, nil
}

// ListApprovedByContest returns a contest's approved submissions, the only
// ones publicly visible. Moderation status gates this read path.
func (s *SubmissionService) ListApprovedByContest(ctx context.Context, contestID int64) ([]model.Submission, error) {
	if _, err := s.contests.Get(ctx, contestID); err != nil {
		return nil, err
	}
	subs, err := s.queries.ListApprovedSubmissionsByContest(ctx, contestID)
	if err != nil {
		return nil, InternalError("Server Error", err)
	}
	return subs, nil
}

// UpdateSubmissionInput holds the partial fields for Update; nil pointers
// leave the current value in place.
type UpdateSubmissionInput struct {
	Title       *string
	Description *string
	ImageURL    *string
	Uploaded    *StoredImage
}

// Update edits a submission. The owner may edit while the contest is
// active; admins may edit at any time. A replaced image file is deleted
// from the store, but external image URLs are left alone.
func (s *SubmissionService) Update(ctx context.Context, actor *model.User, id int64, in UpdateSubmissionInput) (model.Submission, error) {
	sub, err := s.update(ctx, actor, id, in)
	if err != nil && in.Uploaded != nil {
		if cleanupErr := s.images.Delete(in.Uploaded.URL); cleanupErr != nil {
			s.log.Error("failed to clean up uploaded file", "url", in.Uploaded.URL, "error", cleanupErr)
		}
	}
	return sub, err
}

func (s *SubmissionService) update(ctx context.Context, actor *model.User, id int64, in UpdateSubmissionInput) (model.Submission, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return model.Submission{}, err
	}
	contest, err := s.contests.Get(ctx, sub.ContestID)
	if err != nil {
		return model.Submission{}, err
	}
	if d := policy.CanUpdateSubmission(actor, &sub, contest.Status); !d.Allowed {
		return model.Submission{}, denyError(d)
	}

	title := sub.Title
	if in.Title != nil {
		title = *in.Title
	}
	if title == "" {
		return model.Submission{}, ValidationError("Please add a title")
	}
	if len(title) > MaxTitleLength {
		return model.Submission{}, ValidationError("Title cannot be more than %d characters", MaxTitleLength)
	}

	description := sub.Description
	if in.Description != nil {
		description = *in.Description
	}
	if description == "" {
		return model.Submission{}, ValidationError("Please add a description")
	}

	imageURL := sub.ImageURL
	width, height := sub.ImageWidth, sub.ImageHeight
	if in.ImageURL != nil && *in.ImageURL != "" {
		imageURL = *in.ImageURL
		width, height = sql.NullInt64{}, sql.NullInt64{}
	}
	if in.Uploaded != nil {
		imageURL = in.Uploaded.URL
		width = sql.NullInt64{Int64: int64(in.Uploaded.Width), Valid: true}
		height = sql.NullInt64{Int64: int64(in.Uploaded.Height), Valid: true}
	}

	updated, err := s.queries.UpdateSubmission(ctx, store.UpdateSubmissionParams{
		ID:          sub.ID,
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		ImageWidth:  width,
		ImageHeight: height,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		return model.Submission{}, InternalError("Server Error", err)
	}

	if imageURL != sub.ImageURL && IsStored(sub.ImageURL) {
		if err := s.images.Delete(sub.ImageURL); err != nil {
			s.log.Error("failed to delete replaced image", "url", sub.ImageURL, "error", err)
		}
	}

	s.log.Info("submission updated", "submission_id", sub.ID, "user_id", actor.ID)
	return updated, nil
}

// Delete removes a submission and its stored image. The owner may delete
// while the contest is active; admins may delete at any time.
func (s *SubmissionService) Delete(ctx context.Context, actor *model.User, id int64) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	contest, err := s.contests.Get(ctx, sub.ContestID)
	if err != nil {
		return err
	}
	if d := policy.CanDeleteSubmission(actor, &sub, contest.Status); !d.Allowed {
		return denyError(d)
	}

	if err := s.queries.DeleteSubmission(ctx, sub.ID); err != nil {
		return InternalError("Server Error", err)
	}

	if IsStored(sub.ImageURL) {
		if err := s.images.Delete(sub.ImageURL); err != nil {
			s.log.Error("failed to delete submission image", "url", sub.ImageURL, "error", err)
		}
	}

	s.log.Warn("submission deleted", "submission_id", sub.ID, "user_id", actor.ID)
	return nil
}

// SetStatus changes a submission's moderation status. Admin only; this is
// the gate controlling public visibility and winner eligibility.
func (s *SubmissionService) SetStatus(ctx context.Context, actor *model.User, id int64, status string) (model.Submission, error) {
	if d := policy.CanModerateSubmission(actor); !d.Allowed {
		return model.Submission{}, denyError(d)
	}
	if !model.ValidSubmissionStatus(status) {
		return model.Submission{}, ValidationError("Invalid submission status: %s", status)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return model.Submission{}, err
	}

	sub, err := s.queries.UpdateSubmissionStatus(ctx, store.UpdateSubmissionStatusParams{
		ID:        id,
		Status:    status,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return model.Submission{}, InternalError("Server Error", err)
	}

	s.log.Info("submission moderated", "submission_id", id, "status", status, "user_id", actor.ID)
	return sub, nil
}

// Rate folds one rating into the submission's running mean. Raters must
// not own the submission and the contest must be completed. Repeat ratings
// by the same user are accepted and each counts toward the mean.
func (s *SubmissionService) Rate(ctx context.Context, actor *model.User, id int64, rating int) (model.Submission, error) {
	if rating < model.RatingMin || rating > model.RatingMax {
		return model.Submission{}, ValidationError("Please provide a rating between %d and %d", model.RatingMin, model.RatingMax)
	}

	sub, err := s.Get(ctx, id)
	if err != nil {
		return model.Submission{}, err
	}
	contest, err := s.contests.Get(ctx, sub.ContestID)
	if err != nil {
		return model.Submission{}, err
	}
	if d := policy.CanRateSubmission(actor, &sub, contest.Status); !d.Allowed {
		return model.Submission{}, denyError(d)
	}

	newAvg, newCount := model.NextRating(sub.Rating, sub.ReviewCount, rating)
	updated, err := s.queries.UpdateSubmissionRating(ctx, store.UpdateSubmissionRatingParams{
		ID:          sub.ID,
		Rating:      newAvg,
		ReviewCount: newCount,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		return model.Submission{}, InternalError("Server Error", err)
	}
	return updated, nil
}
