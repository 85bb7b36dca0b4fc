// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs: purging expired auth
// tokens and pruning old event log entries.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/drawmaster/hub/internal/store"
)

// EventRetention is how long event log entries are kept.
const EventRetention = 90 * 24 * time.Hour

// Scheduler handles scheduled maintenance tasks.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the maintenance jobs and begins the scheduler: expired
// tokens are purged hourly and the event log is pruned daily.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", func() {
		if err := s.purgeExpiredTokens(); err != nil {
			s.logger.Error("failed to purge expired tokens", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("@daily", func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune event log", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// purgeExpiredTokens removes bearer tokens whose expiry has passed.
func (s *Scheduler) purgeExpiredTokens() error {
	count, err := store.New(s.db).DeleteExpiredAuthTokens(context.Background(), time.Now())
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("purged expired tokens", "count", count)
	}
	return nil
}

// pruneEvents removes event log entries older than the retention window.
func (s *Scheduler) pruneEvents() error {
	count, err := store.New(s.db).DeleteEventsBefore(context.Background(), time.Now().Add(-EventRetention))
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("pruned event log", "count", count)
	}
	return nil
}
