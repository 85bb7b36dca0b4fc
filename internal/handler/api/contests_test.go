package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/testutil"
)

func TestContestEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	adminToken := s.token(t, admin.ID)

	body := map[string]any{
		"title":       "Spring Sketch-Off",
		"description": "# Rules\nDraw **spring**.",
		"rules":       "One entry per artist.",
		"start_date":  time.Now().Add(-time.Hour).Format(time.RFC3339),
		"deadline":    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"prizes":      []model.Prize{{Rank: 1, Description: "Tablet"}},
		"categories":  []string{"traditional", "digital"},
	}

	// Contest writes are admin-only.
	rr := s.do(t, http.MethodPost, "/contests/", "", body)
	wantStatus(t, rr, http.StatusUnauthorized)
	rr = s.do(t, http.MethodPost, "/contests/", s.token(t, alice.ID), body)
	wantStatus(t, rr, http.StatusForbidden)

	rr = s.do(t, http.MethodPost, "/contests/", adminToken, body)
	wantStatus(t, rr, http.StatusCreated)
	var created contestView
	decodeData(t, rr, &created)
	if created.Status != model.ContestStatusActive {
		t.Errorf("Status = %q, want active (start date has passed)", created.Status)
	}
	if len(created.Prizes) != 1 || len(created.Categories) != 2 {
		t.Errorf("prizes = %v, categories = %v", created.Prizes, created.Categories)
	}

	// The listing is public and carries the element count.
	rr = s.do(t, http.MethodGet, "/contests/", "", nil)
	wantStatus(t, rr, http.StatusOK)
	if env := decodeEnvelope(t, rr); env.Count == nil || *env.Count != 1 {
		t.Errorf("count = %v, want 1", env.Count)
	}

	// The detail view renders the Markdown fields to HTML.
	rr = s.do(t, http.MethodGet, fmt.Sprintf("/contests/%d", created.ID), "", nil)
	wantStatus(t, rr, http.StatusOK)
	var detail contestDetail
	decodeData(t, rr, &detail)
	if !strings.Contains(detail.DescriptionHTML, "<strong>spring</strong>") {
		t.Errorf("DescriptionHTML = %q, want rendered markdown", detail.DescriptionHTML)
	}
	if len(detail.Submissions) != 0 {
		t.Errorf("Submissions = %v, want none", detail.Submissions)
	}

	// Update changes fields in place.
	body["title"] = "Spring Sketch-Off II"
	body["status"] = created.Status
	rr = s.do(t, http.MethodPut, fmt.Sprintf("/contests/%d", created.ID), adminToken, body)
	wantStatus(t, rr, http.StatusOK)
	var updated contestView
	decodeData(t, rr, &updated)
	if updated.Title != "Spring Sketch-Off II" {
		t.Errorf("Title = %q", updated.Title)
	}

	// Delete, then the contest is gone.
	rr = s.do(t, http.MethodDelete, fmt.Sprintf("/contests/%d", created.ID), adminToken, nil)
	wantStatus(t, rr, http.StatusOK)
	rr = s.do(t, http.MethodGet, fmt.Sprintf("/contests/%d", created.ID), "", nil)
	wantStatus(t, rr, http.StatusNotFound)
}

func TestListContestsStatusFilter(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	now := time.Now()
	testutil.CreateContest(t, s.db, admin.ID, model.ContestStatusActive,
		now.Add(-time.Hour), now.Add(24*time.Hour))
	testutil.CreateContest(t, s.db, admin.ID, model.ContestStatusActive,
		now.Add(-48*time.Hour), now.Add(-24*time.Hour))

	rr := s.do(t, http.MethodGet, "/contests/?status=completed", "", nil)
	wantStatus(t, rr, http.StatusOK)
	if env := decodeEnvelope(t, rr); env.Count == nil || *env.Count != 1 {
		t.Errorf("count = %v, want 1 completed", env.Count)
	}

	rr = s.do(t, http.MethodGet, "/contests/?status=bogus", "", nil)
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestGetContestPopulatesWinners(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	now := time.Now()
	contest := testutil.CreateContest(t, s.db, admin.ID, model.ContestStatusActive,
		now.Add(-48*time.Hour), now.Add(-time.Hour))
	sub := testutil.CreateSubmission(t, s.db, contest.ID, alice.ID)
	testutil.ApproveSubmission(t, s.db, sub.ID)

	path := fmt.Sprintf("/contests/%d/announce-winners", contest.ID)
	rr := s.do(t, http.MethodPut, path, s.token(t, admin.ID), map[string]any{
		"winners": []map[string]int64{{"rank": 1, "submission": sub.ID}},
	})
	wantStatus(t, rr, http.StatusOK)

	rr = s.do(t, http.MethodGet, fmt.Sprintf("/contests/%d", contest.ID), "", nil)
	wantStatus(t, rr, http.StatusOK)
	var detail contestDetail
	decodeData(t, rr, &detail)
	if len(detail.Submissions) != 1 {
		t.Errorf("Submissions = %d, want 1 approved", len(detail.Submissions))
	}
	if len(detail.Winners) != 1 || detail.Winners[0].Medal != model.MedalGold {
		t.Errorf("Winners = %+v, want one gold", detail.Winners)
	}
}

func TestAnnounceWinnersEndpoint(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	bob := testutil.CreateUser(t, s.db, "bob@example.com", model.RoleUser)
	adminToken := s.token(t, admin.ID)

	now := time.Now()
	contest := testutil.CreateContest(t, s.db, admin.ID, model.ContestStatusActive,
		now.Add(-48*time.Hour), now.Add(-time.Hour))
	first := testutil.CreateSubmission(t, s.db, contest.ID, alice.ID)
	second := testutil.CreateSubmission(t, s.db, contest.ID, bob.ID)
	testutil.ApproveSubmission(t, s.db, first.ID)
	testutil.ApproveSubmission(t, s.db, second.ID)

	path := fmt.Sprintf("/contests/%d/announce-winners", contest.ID)
	rr := s.do(t, http.MethodPut, path, adminToken, map[string]any{
		"winners": []map[string]int64{
			{"rank": 2, "submission": second.ID},
			{"rank": 1, "submission": first.ID},
		},
	})
	wantStatus(t, rr, http.StatusOK)
	var winners []winnerView
	env := decodeData(t, rr, &winners)
	if env.Count == nil || *env.Count != 2 {
		t.Errorf("count = %v, want 2", env.Count)
	}

	// Announcing twice is rejected.
	rr = s.do(t, http.MethodPut, path, adminToken, map[string]any{
		"winners": []map[string]int64{{"rank": 1, "submission": first.ID}},
	})
	wantStatus(t, rr, http.StatusForbidden)
}
