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

// WinnerService handles winner selection and announcement. Each mutation
// runs in a single transaction covering the winner rows and the contest's
// winner_announced flag, so readers never observe one without the other.
type WinnerService struct {
	db       *sql.DB
	queries  *store.Queries
	contests *ContestService
	log      *slog.Logger
}

// NewWinnerService creates a winner service.
func NewWinnerService(db *sql.DB, contests *ContestService, log *slog.Logger) *WinnerService {
	return &WinnerService{db: db, queries: store.New(db), contests: contests, log: log}
}

// Select assigns one approved submission a rank in a completed contest.
// Admin only. Duplicate ranks and double-winning are rejected by the
// winners table's unique indexes. Every successful selection marks the
// contest's winners announced.
func (s *WinnerService) Select(ctx context.Context, actor *model.User, contestID, submissionID int64, rank int64) (model.Winner, error) {
	if rank < 1 {
		return model.Winner{}, ValidationError("Rank must be at least 1")
	}

	contest, err := s.contests.Get(ctx, contestID)
	if err != nil {
		return model.Winner{}, err
	}
	sub, err := s.queries.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Winner{}, NotFoundError("Submission")
		}
		return model.Winner{}, InternalError("Server Error", err)
	}

	if d := policy.CanSelectWinner(actor, &contest, contest.Status, &sub); !d.Allowed {
		return model.Winner{}, denyError(d)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Winner{}, InternalError("Server Error", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now()

	winner, err := qtx.CreateWinner(ctx, store.CreateWinnerParams{
		ContestID:    contest.ID,
		SubmissionID: sub.ID,
		Rank:         rank,
		SelectedBy:   actor.ID,
		AnnouncedAt:  now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return model.Winner{}, ConflictError("A winner with that rank or submission already exists for this contest")
		}
		return model.Winner{}, InternalError("Server Error", err)
	}

	if err := qtx.SetContestWinnerAnnounced(ctx, store.SetContestWinnerAnnouncedParams{
		ID:              contest.ID,
		WinnerAnnounced: true,
		UpdatedAt:       now,
	}); err != nil {
		return model.Winner{}, InternalError("Server Error", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Winner{}, InternalError("Server Error", err)
	}

	s.log.Info("winner selected", "contest_id", contest.ID, "submission_id", sub.ID,
		"rank", rank, "user_id", actor.ID)
	return winner, nil
}

// WinnerEntry names one submission and its rank in a bulk announcement.
type WinnerEntry struct {
	Rank         int64
	SubmissionID int64
}

// Announce replaces a contest's winner list wholesale and marks winners
// announced. Admin only, once per contest, after completion. Every entry
// must reference a distinct approved submission of the contest with a
// distinct rank.
func (s *WinnerService) Announce(ctx context.Context, actor *model.User, contestID int64, entries []WinnerEntry) ([]model.Winner, error) {
	if len(entries) == 0 {
		return nil, ValidationError("Please provide at least one winner")
	}

	contest, err := s.contests.Get(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanAnnounceWinners(actor, &contest, contest.Status); !d.Allowed {
		return nil, denyError(d)
	}

	seenRanks := make(map[int64]bool, len(entries))
	seenSubs := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if e.Rank < 1 {
			return nil, ValidationError("Rank must be at least 1")
		}
		if seenRanks[e.Rank] {
			return nil, ValidationError("Duplicate rank %d in winner list", e.Rank)
		}
		if seenSubs[e.SubmissionID] {
			return nil, ValidationError("Duplicate submission %d in winner list", e.SubmissionID)
		}
		seenRanks[e.Rank] = true
		seenSubs[e.SubmissionID] = true

		sub, err := s.queries.GetSubmissionByID(ctx, e.SubmissionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, NotFoundError("Submission")
			}
			return nil, InternalError("Server Error", err)
		}
		if d := policy.CanSelectWinner(actor, &contest, contest.Status, &sub); !d.Allowed {
			return nil, denyError(d)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, InternalError("Server Error", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now()

	if err := qtx.DeleteWinnersByContest(ctx, contest.ID); err != nil {
		return nil, InternalError("Server Error", err)
	}

	winners := make([]model.Winner, 0, len(entries))
	for _, e := range entries {
		w, err := qtx.CreateWinner(ctx, store.CreateWinnerParams{
			ContestID:    contest.ID,
			SubmissionID: e.SubmissionID,
			Rank:         e.Rank,
			SelectedBy:   actor.ID,
			AnnouncedAt:  now,
		})
		if err != nil {
			return nil, InternalError("Server Error", err)
		}
		winners = append(winners, w)
	}

	if err := qtx.SetContestWinnerAnnounced(ctx, store.SetContestWinnerAnnouncedParams{
		ID:              contest.ID,
		WinnerAnnounced: true,
		UpdatedAt:       now,
	}); err != nil {
		return nil, InternalError("Server Error", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, InternalError("Server Error", err)
	}

	s.log.Info("winners announced", "contest_id", contest.ID, "count", len(winners), "user_id", actor.ID)
	return winners, nil
}

// ListByContest returns a contest's winners ordered by rank ascending.
func (s *WinnerService) ListByContest(ctx context.Context, contestID int64) ([]model.Winner, error) {
	if _, err := s.contests.Get(ctx, contestID); err != nil {
		return nil, err
	}
	winners, err := s.queries.ListWinnersByContest(ctx, contestID)
	if err != nil {
		return nil, InternalError("Server Error", err)
	}
	return winners, nil
}
