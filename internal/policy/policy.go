// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package policy implements the authorization rules gating every mutation:
// role, ownership, and contest-state checks. All checks are pure; callers
// pass the actor, the resource, and the contest's effective status, and get
// back an allow/deny decision with a reason.
package policy

import (
	"fmt"

	"github.com/drawmaster/hub/internal/model"
)

// Decision is the outcome of a policy check. Reason is set on deny.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanManageContests reports whether the actor may create, update, delete
// contests, or announce their winners.
func CanManageContests(actor *model.User) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if !actor.IsAdmin() {
		return deny("only administrators can manage contests")
	}
	return allow()
}

// CanCreateSubmission reports whether the actor may submit to a contest.
// contestStatus is the contest's effective (date-derived) status and
// alreadySubmitted whether the actor has an existing entry in the contest.
func CanCreateSubmission(actor *model.User, contestStatus string, alreadySubmitted bool) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if contestStatus != model.ContestStatusActive {
		return deny(fmt.Sprintf("cannot submit to a contest that is %s", contestStatus))
	}
	if alreadySubmitted {
		return deny("you have already submitted to this contest")
	}
	return allow()
}

// CanUpdateSubmission reports whether the actor may edit a submission.
// The owner may edit only while the contest is active; admins may edit at
// any time. The admin bypass mirrors the delete rule so the two mutations
// stay consistent.
func CanUpdateSubmission(actor *model.User, sub *model.Submission, contestStatus string) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if actor.IsAdmin() {
		return allow()
	}
	if sub.UserID != actor.ID {
		return deny("not authorized to update this submission")
	}
	if contestStatus != model.ContestStatusActive {
		return deny("cannot update submission after contest deadline")
	}
	return allow()
}

// CanDeleteSubmission reports whether the actor may delete a submission.
// The owner may delete only while the contest is active; admins may delete
// at any time.
func CanDeleteSubmission(actor *model.User, sub *model.Submission, contestStatus string) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if actor.IsAdmin() {
		return allow()
	}
	if sub.UserID != actor.ID {
		return deny("not authorized to delete this submission")
	}
	if contestStatus != model.ContestStatusActive {
		return deny("cannot delete submission after contest deadline")
	}
	return allow()
}

// CanModerateSubmission reports whether the actor may change a submission's
// moderation status.
func CanModerateSubmission(actor *model.User) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if !actor.IsAdmin() {
		return deny("only administrators can moderate submissions")
	}
	return allow()
}

// CanRateSubmission reports whether the actor may rate a submission.
// Owners cannot rate their own work, and rating opens only once the
// contest is completed.
func CanRateSubmission(actor *model.User, sub *model.Submission, contestStatus string) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if sub.UserID == actor.ID {
		return deny("you cannot rate your own submission")
	}
	if contestStatus != model.ContestStatusCompleted {
		return deny("submissions can only be rated after the contest deadline")
	}
	return allow()
}

// CanSelectWinner reports whether the actor may select the given submission
// as a winner of the given contest. Requires an admin actor, a completed
// contest, and an approved submission belonging to that contest.
func CanSelectWinner(actor *model.User, contest *model.Contest, contestStatus string, sub *model.Submission) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if !actor.IsAdmin() {
		return deny("only administrators can select winners")
	}
	if contestStatus != model.ContestStatusCompleted {
		return deny("winners can only be selected for completed contests")
	}
	if sub.ContestID != contest.ID {
		return deny("this submission does not belong to the specified contest")
	}
	if sub.Status != model.SubmissionStatusApproved {
		return deny("only approved submissions can be selected as winners")
	}
	return allow()
}

// CanAnnounceWinners reports whether the actor may bulk-announce winners
// for a contest. Announcements happen once, after completion.
func CanAnnounceWinners(actor *model.User, contest *model.Contest, contestStatus string) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if !actor.IsAdmin() {
		return deny("only administrators can announce winners")
	}
	if contestStatus != model.ContestStatusCompleted {
		return deny("only completed contests can have winners announced")
	}
	if contest.WinnerAnnounced {
		return deny("winners have already been announced for this contest")
	}
	return allow()
}

// CanListAllSubmissions reports whether the actor may list submissions
// beyond their own.
func CanListAllSubmissions(actor *model.User) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if !actor.IsAdmin() {
		return deny("only administrators can list other users' submissions")
	}
	return allow()
}
