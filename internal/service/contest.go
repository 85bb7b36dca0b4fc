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

// MaxTitleLength caps contest and submission titles.
const MaxTitleLength = 100

// ContestService handles the contest lifecycle: creation, status
// derivation, updates, and deletion.
type ContestService struct {
	db      *sql.DB
	queries *store.Queries
	log     *slog.Logger
}

// NewContestService creates a contest service.
func NewContestService(db *sql.DB, log *slog.Logger) *ContestService {
	return &ContestService{db: db, queries: store.New(db), log: log}
}

// ContestInput holds the admin-supplied contest fields.
type ContestInput struct {
	Title       string
	Description string
	Rules       string
	StartDate   time.Time
	Deadline    time.Time
	Status      string
	Prizes      []model.Prize
	Categories  []string
}

func validateContestInput(in ContestInput) error {
	if in.Title == "" {
		return ValidationError("Please add a title")
	}
	if len(in.Title) > MaxTitleLength {
		return ValidationError("Title cannot be more than %d characters", MaxTitleLength)
	}
	if in.Description == "" {
		return ValidationError("Please add a description")
	}
	if in.StartDate.IsZero() || in.Deadline.IsZero() {
		return ValidationError("Please add a start date and deadline")
	}
	if !in.Deadline.After(in.StartDate) {
		return ValidationError("Deadline must be after the start date")
	}
	if in.Status != "" && !model.ValidContestStatus(in.Status) {
		return ValidationError("Invalid contest status: %s", in.Status)
	}
	for _, p := range in.Prizes {
		if p.Rank < 1 {
			return ValidationError("Prize rank must be at least 1")
		}
	}
	return nil
}

// Create creates a contest. Admin only. The stored status starts from the
// supplied value (default draft) and is immediately derived from the dates,
// so a contest created with a past start date is active from the first read.
func (s *ContestService) Create(ctx context.Context, actor *model.User, in ContestInput) (model.Contest, error) {
	if d := policy.CanManageContests(actor); !d.Allowed {
		return model.Contest{}, denyError(d)
	}
	if err := validateContestInput(in); err != nil {
		return model.Contest{}, err
	}

	status := in.Status
	if status == "" {
		status = model.ContestStatusDraft
	}
	now := time.Now()
	status = model.DeriveStatus(status, in.StartDate, in.Deadline, now)

	contest, err := s.queries.CreateContest(ctx, store.CreateContestParams{
		Title:       in.Title,
		Description: in.Description,
		Rules:       in.Rules,
		StartDate:   in.StartDate,
		Deadline:    in.Deadline,
		Status:      status,
		Prizes:      model.PrizesToJSON(in.Prizes),
		Categories:  model.CategoriesToJSON(in.Categories),
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Contest{}, InternalError("Server Error", err)
	}

	s.log.Info("contest created", "contest_id", contest.ID, "title", contest.Title, "user_id", actor.ID)
	return contest, nil
}

// Get returns a contest with its effective status. A stale stored status
// is written back before the contest is returned.
func (s *ContestService) Get(ctx context.Context, id int64) (model.Contest, error) {
	contest, err := s.queries.GetContestByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Contest{}, NotFoundError("Contest")
		}
		return model.Contest{}, InternalError("Server Error", err)
	}
	return s.refresh(ctx, contest)
}

// List returns contests newest start date first, with statuses derived.
// status filters on the effective status; empty means all.
func (s *ContestService) List(ctx context.Context, status string) ([]model.Contest, error) {
	if status != "" && !model.ValidContestStatus(status) {
		return nil, ValidationError("Invalid contest status: %s", status)
	}

	contests, err := s.queries.ListContests(ctx)
	if err != nil {
		return nil, InternalError("Server Error", err)
	}

	filtered := make([]model.Contest, 0, len(contests))
	for _, c := range contests {
		c, err := s.refresh(ctx, c)
		if err != nil {
			return nil, err
		}
		if status == "" || c.Status == status {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// Update replaces a contest's mutable fields. Admin only. The status is
// re-derived from the new dates, so past-deadline contests stay completed
// regardless of the supplied status.
func (s *ContestService) Update(ctx context.Context, actor *model.User, id int64, in ContestInput) (model.Contest, error) {
	if d := policy.CanManageContests(actor); !d.Allowed {
		return model.Contest{}, denyError(d)
	}
	if err := validateContestInput(in); err != nil {
		return model.Contest{}, err
	}

	if _, err := s.queries.GetContestByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Contest{}, NotFoundError("Contest")
		}
		return model.Contest{}, InternalError("Server Error", err)
	}

	status := in.Status
	if status == "" {
		status = model.ContestStatusDraft
	}
	now := time.Now()
	status = model.DeriveStatus(status, in.StartDate, in.Deadline, now)

	contest, err := s.queries.UpdateContest(ctx, store.UpdateContestParams{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Rules:       in.Rules,
		StartDate:   in.StartDate,
		Deadline:    in.Deadline,
		Status:      status,
		Prizes:      model.PrizesToJSON(in.Prizes),
		Categories:  model.CategoriesToJSON(in.Categories),
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Contest{}, InternalError("Server Error", err)
	}

	s.log.Info("contest updated", "contest_id", contest.ID, "user_id", actor.ID)
	return contest, nil
}

// Delete removes a contest. Admin only; contests with submissions cannot
// be deleted.
func (s *ContestService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if d := policy.CanManageContests(actor); !d.Allowed {
		return denyError(d)
	}

	if _, err := s.queries.GetContestByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotFoundError("Contest")
		}
		return InternalError("Server Error", err)
	}

	count, err := s.queries.CountSubmissionsByContest(ctx, id)
	if err != nil {
		return InternalError("Server Error", err)
	}
	if count > 0 {
		return ConflictError("Cannot delete a contest that has submissions")
	}

	if err := s.queries.DeleteContest(ctx, id); err != nil {
		return InternalError("Server Error", err)
	}

	s.log.Warn("contest deleted", "contest_id", id, "user_id", actor.ID)
	return nil
}

// refresh recomputes the contest's effective status and writes back any
// change. Runs before every status-dependent check so readers always see
// a time-consistent status without a background scheduler.
func (s *ContestService) refresh(ctx context.Context, contest model.Contest) (model.Contest, error) {
	now := time.Now()
	derived := contest.DerivedStatus(now)
	if derived == contest.Status {
		return contest, nil
	}

	if err := s.queries.UpdateContestStatus(ctx, store.UpdateContestStatusParams{
		ID:        contest.ID,
		Status:    derived,
		UpdatedAt: now,
	}); err != nil {
		return model.Contest{}, InternalError("Server Error", err)
	}
	contest.Status = derived
	contest.UpdatedAt = now
	return contest, nil
}

// denyError maps a policy denial onto the error taxonomy.
func denyError(d policy.Decision) *Error {
	if d.Reason == "authentication required" {
		return AuthenticationError(d.Reason)
	}
	return AuthorizationError(d.Reason)
}
