package api

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/testutil"
)

// activeContest inserts a contest currently accepting submissions.
func activeContest(t *testing.T, s *testServer, createdBy int64) model.Contest {
	t.Helper()
	now := time.Now()
	return testutil.CreateContest(t, s.db, createdBy, model.ContestStatusActive,
		now.Add(-time.Hour), now.Add(24*time.Hour))
}

// completedContest inserts a contest past its deadline.
func completedContest(t *testing.T, s *testServer, createdBy int64) model.Contest {
	t.Helper()
	now := time.Now()
	return testutil.CreateContest(t, s.db, createdBy, model.ContestStatusActive,
		now.Add(-48*time.Hour), now.Add(-time.Hour))
}

func TestCreateSubmissionJSON(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	contest := activeContest(t, s, admin.ID)
	token := s.token(t, alice.ID)

	body := map[string]any{
		"title":       "Sunrise",
		"description": "Watercolor sunrise",
		"contest":     contest.ID,
		"imageUrl":    "https://example.com/sunrise.png",
	}

	rr := s.do(t, http.MethodPost, "/submissions/", "", body)
	wantStatus(t, rr, http.StatusUnauthorized)

	rr = s.do(t, http.MethodPost, "/submissions/", token, body)
	wantStatus(t, rr, http.StatusCreated)
	var sub model.Submission
	decodeData(t, rr, &sub)
	if sub.Status != model.SubmissionStatusPending {
		t.Errorf("Status = %q, want pending", sub.Status)
	}
	if sub.UserID != alice.ID || sub.ContestID != contest.ID {
		t.Errorf("sub = %+v", sub)
	}

	// One entry per artist per contest.
	rr = s.do(t, http.MethodPost, "/submissions/", token, body)
	wantStatus(t, rr, http.StatusConflict)
}

func TestCreateSubmissionMultipart(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	contest := activeContest(t, s, admin.ID)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Sunrise")
	_ = mw.WriteField("description", "Watercolor sunrise")
	_ = mw.WriteField("contest", fmt.Sprint(contest.ID))
	fw, err := mw.CreateFormFile("image", "sunrise.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if err := png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 32, 24))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/submissions/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(t, alice.ID))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	wantStatus(t, rr, http.StatusCreated)
	var sub model.Submission
	decodeData(t, rr, &sub)
	if !strings.HasPrefix(sub.ImageURL, "/uploads/") {
		t.Errorf("ImageURL = %q, want stored under /uploads/", sub.ImageURL)
	}
}

func TestCreateSubmissionClosedContest(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	contest := completedContest(t, s, admin.ID)

	rr := s.do(t, http.MethodPost, "/submissions/", s.token(t, alice.ID), map[string]any{
		"title":       "Too late",
		"description": "Past the deadline",
		"contest":     contest.ID,
		"imageUrl":    "https://example.com/late.png",
	})
	wantStatus(t, rr, http.StatusForbidden)
}

func TestUpdateAndDeleteSubmissionEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	bob := testutil.CreateUser(t, s.db, "bob@example.com", model.RoleUser)
	contest := activeContest(t, s, admin.ID)
	sub := testutil.CreateSubmission(t, s.db, contest.ID, alice.ID)
	path := fmt.Sprintf("/submissions/%d", sub.ID)

	// Partial update by the owner; the description stays.
	rr := s.do(t, http.MethodPut, path, s.token(t, alice.ID), map[string]string{
		"title": "Renamed",
	})
	wantStatus(t, rr, http.StatusOK)
	var updated model.Submission
	decodeData(t, rr, &updated)
	if updated.Title != "Renamed" || updated.Description != sub.Description {
		t.Errorf("updated = %+v", updated)
	}

	// Another user cannot touch it.
	rr = s.do(t, http.MethodPut, path, s.token(t, bob.ID), map[string]string{"title": "Stolen"})
	wantStatus(t, rr, http.StatusForbidden)
	rr = s.do(t, http.MethodDelete, path, s.token(t, bob.ID), nil)
	wantStatus(t, rr, http.StatusForbidden)

	rr = s.do(t, http.MethodDelete, path, s.token(t, alice.ID), nil)
	wantStatus(t, rr, http.StatusOK)
	rr = s.do(t, http.MethodGet, path, "", nil)
	wantStatus(t, rr, http.StatusNotFound)
}

func TestSubmissionModerationEndpoint(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	contest := activeContest(t, s, admin.ID)
	sub := testutil.CreateSubmission(t, s.db, contest.ID, alice.ID)
	path := fmt.Sprintf("/submissions/%d/status", sub.ID)

	rr := s.do(t, http.MethodPut, path, s.token(t, alice.ID), map[string]string{"status": "approved"})
	wantStatus(t, rr, http.StatusForbidden)

	rr = s.do(t, http.MethodPut, path, s.token(t, admin.ID), map[string]string{"status": "approved"})
	wantStatus(t, rr, http.StatusOK)
	var moderated model.Submission
	decodeData(t, rr, &moderated)
	if moderated.Status != model.SubmissionStatusApproved {
		t.Errorf("Status = %q, want approved", moderated.Status)
	}

	// Approved submissions show up in the public contest listing.
	rr = s.do(t, http.MethodGet, fmt.Sprintf("/submissions/contest/%d", contest.ID), "", nil)
	wantStatus(t, rr, http.StatusOK)
	if env := decodeEnvelope(t, rr); env.Count == nil || *env.Count != 1 {
		t.Errorf("count = %v, want 1", env.Count)
	}
}

func TestRateSubmissionEndpoint(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	bob := testutil.CreateUser(t, s.db, "bob@example.com", model.RoleUser)
	contest := completedContest(t, s, admin.ID)
	sub := testutil.CreateSubmission(t, s.db, contest.ID, alice.ID)
	testutil.ApproveSubmission(t, s.db, sub.ID)
	path := fmt.Sprintf("/submissions/%d/rate", sub.ID)

	rr := s.do(t, http.MethodPut, path, s.token(t, bob.ID), map[string]int{"rating": 8})
	wantStatus(t, rr, http.StatusOK)
	var rated model.Submission
	decodeData(t, rr, &rated)
	if rated.Rating != 8.0 || rated.ReviewCount != 1 {
		t.Errorf("rating = %v/%d, want 8.0/1", rated.Rating, rated.ReviewCount)
	}

	// Owners cannot rate their own work.
	rr = s.do(t, http.MethodPut, path, s.token(t, alice.ID), map[string]int{"rating": 10})
	wantStatus(t, rr, http.StatusForbidden)

	// Out-of-range ratings are rejected.
	rr = s.do(t, http.MethodPut, path, s.token(t, bob.ID), map[string]int{"rating": 11})
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestListSubmissionsEndpoint(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin@example.com", model.RoleAdmin)
	alice := testutil.CreateUser(t, s.db, "alice@example.com", model.RoleUser)
	bob := testutil.CreateUser(t, s.db, "bob@example.com", model.RoleUser)
	contest := activeContest(t, s, admin.ID)
	testutil.CreateSubmission(t, s.db, contest.ID, alice.ID)
	testutil.CreateSubmission(t, s.db, contest.ID, bob.ID)

	// Users see only their own entries.
	rr := s.do(t, http.MethodGet, "/submissions/", s.token(t, alice.ID), nil)
	wantStatus(t, rr, http.StatusOK)
	if env := decodeEnvelope(t, rr); env.Count == nil || *env.Count != 1 {
		t.Errorf("own count = %v, want 1", env.Count)
	}

	// Foreign user filters are an admin capability.
	rr = s.do(t, http.MethodGet, fmt.Sprintf("/submissions/?user=%d", bob.ID), s.token(t, alice.ID), nil)
	wantStatus(t, rr, http.StatusForbidden)

	adminToken := s.token(t, admin.ID)
	rr = s.do(t, http.MethodGet, "/submissions/", adminToken, nil)
	wantStatus(t, rr, http.StatusOK)
	if env := decodeEnvelope(t, rr); env.Count == nil || *env.Count != 2 {
		t.Errorf("admin count = %v, want 2", env.Count)
	}
	rr = s.do(t, http.MethodGet, fmt.Sprintf("/submissions/?user=%d", bob.ID), adminToken, nil)
	wantStatus(t, rr, http.StatusOK)
	if env := decodeEnvelope(t, rr); env.Count == nil || *env.Count != 1 {
		t.Errorf("filtered count = %v, want 1", env.Count)
	}
}
