package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/service"
	"github.com/drawmaster/hub/internal/store"
	"github.com/drawmaster/hub/internal/testutil"
)

// testServer wires a handler with a temp database and image store and
// serves its routes directly.
type testServer struct {
	db     *sql.DB
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.TestDB(t)
	images := service.NewImageStore(t.TempDir(), 10<<20)
	h := NewHandler(db, testutil.TestLogger(), images, 10<<20, time.Hour)
	return &testServer{db: db, router: h.Routes()}
}

// token issues a bearer token for the given user, bypassing the login
// endpoint.
func (s *testServer) token(t *testing.T, userID int64) string {
	t.Helper()
	raw, err := model.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	now := time.Now()
	if _, err := store.New(s.db).CreateAuthToken(context.Background(), store.CreateAuthTokenParams{
		TokenHash: model.HashToken(raw),
		UserID:    userID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateAuthToken: %v", err)
	}
	return raw
}

// do sends a JSON request through the router. An empty token leaves the
// request anonymous.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// envelope is the decoded response envelope. Data stays raw so each test
// unmarshals it into the shape it expects.
type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v\nbody: %s", err, rr.Body.String())
	}
	return env
}

// decodeData unmarshals the envelope's data field into v.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v any) envelope {
	t.Helper()
	env := decodeEnvelope(t, rr)
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decoding data: %v\ndata: %s", err, env.Data)
	}
	return env
}

// wantStatus fails the test with the response body when the status code
// does not match.
func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d\nbody: %s", rr.Code, want, rr.Body.String())
	}
}
