// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package api

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vicinity/internal/neighbor"
	"github.com/tomtom215/vicinity/internal/similarity"
	"github.com/tomtom215/vicinity/internal/store"
)

type testServer struct {
	router http.Handler
	store  *store.Store
}

func setupServer(t *testing.T, k int) *testServer {
	t.Helper()

	s, err := store.Open(store.Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("store.Close() error = %v", err)
		}
	})

	finder, err := neighbor.NewFinder(s, s, similarity.Cosine{}, similarity.Identity{}, k, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFinder() error = %v", err)
	}

	h := NewHandler(finder, s, zerolog.Nop())
	router := NewRouter(h, RouterConfig{
		CORSOrigins:       []string{"*"},
		RateLimitDisabled: true,
	})

	return &testServer{router: router, store: s}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response envelope: %v (body %s)", err, w.Body.String())
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := setupServer(t, 1)

	w := ts.do(t, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Status != "success" {
		t.Errorf("Status = %q, want success", resp.Status)
	}
}

func TestAddRatingAndReadBack(t *testing.T) {
	ts := setupServer(t, 1)

	w := ts.do(t, http.MethodPost, "/api/v1/ratings", RatingRequest{
		UserID: 7, ItemID: 100, Value: 4.5, Timestamp: 1000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /ratings status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/api/v1/users/7/ratings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET ratings status = %d, want 200", w.Code)
	}
	resp := decodeEnvelope(t, w)
	data, _ := json.Marshal(resp.Data)
	var ratings RatingsResponse
	if err := json.Unmarshal(data, &ratings); err != nil {
		t.Fatalf("decode ratings: %v", err)
	}
	if len(ratings.Events) != 1 || ratings.Events[0].ItemID != 100 || ratings.Events[0].Value != 4.5 {
		t.Errorf("Events = %+v, want one event for item 100 value 4.5", ratings.Events)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/items/100/raters", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET raters status = %d, want 200", w.Code)
	}
	resp = decodeEnvelope(t, w)
	data, _ = json.Marshal(resp.Data)
	var raters RatersResponse
	if err := json.Unmarshal(data, &raters); err != nil {
		t.Fatalf("decode raters: %v", err)
	}
	if len(raters.Users) != 1 || raters.Users[0] != 7 {
		t.Errorf("Users = %v, want [7]", raters.Users)
	}
}

func TestNeighborhoods_EndToEnd(t *testing.T) {
	ts := setupServer(t, 1)
	ctx := context.Background()

	// User 2 rated items 1 and 3; user 3 rated item 1 with the query
	// user's exact profile shape, so cosine puts user 3 first.
	seed := []struct {
		userID int64
		event  neighbor.RatingEvent
	}{
		{2, neighbor.RatingEvent{ItemID: 1, Value: 4, Timestamp: 10}},
		{2, neighbor.RatingEvent{ItemID: 3, Value: 2, Timestamp: 11}},
		{3, neighbor.RatingEvent{ItemID: 1, Value: 5, Timestamp: 12}},
	}
	for _, r := range seed {
		if err := ts.store.AddRating(ctx, r.userID, r.event); err != nil {
			t.Fatalf("AddRating() error = %v", err)
		}
	}

	w := ts.do(t, http.MethodPost, "/api/v1/neighborhoods", NeighborhoodRequest{
		UserID: 1,
		Events: []neighbor.RatingEvent{{ItemID: 1, Value: 4.5, Timestamp: 20}},
		Items:  []int64{1},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	resp := decodeEnvelope(t, w)
	data, _ := json.Marshal(resp.Data)
	var nr NeighborhoodResponse
	if err := json.Unmarshal(data, &nr); err != nil {
		t.Fatalf("decode neighborhoods: %v", err)
	}

	if nr.K != 1 {
		t.Errorf("K = %d, want 1", nr.K)
	}
	got := nr.Neighborhoods[1]
	if len(got) != 1 {
		t.Fatalf("neighborhood for item 1 = %v, want exactly one neighbor", got)
	}
	if got[0].UserID != 3 {
		t.Errorf("neighbor = user %d, want user 3 (higher cosine)", got[0].UserID)
	}
	if math.Abs(got[0].Score-1.0) > 1e-9 {
		t.Errorf("Score = %v, want 1.0", got[0].Score)
	}
}

func TestNeighborhoods_EmptyItems(t *testing.T) {
	ts := setupServer(t, 5)

	w := ts.do(t, http.MethodPost, "/api/v1/neighborhoods", NeighborhoodRequest{
		UserID: 1,
		Events: []neighbor.RatingEvent{{ItemID: 1, Value: 3}},
		Items:  []int64{},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for empty item set", w.Code)
	}

	resp := decodeEnvelope(t, w)
	data, _ := json.Marshal(resp.Data)
	var nr NeighborhoodResponse
	if err := json.Unmarshal(data, &nr); err != nil {
		t.Fatalf("decode neighborhoods: %v", err)
	}
	if len(nr.Neighborhoods) != 0 {
		t.Errorf("Neighborhoods = %v, want empty", nr.Neighborhoods)
	}
}

func TestNeighborhoods_BadRequests(t *testing.T) {
	ts := setupServer(t, 1)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "missing items",
			body:     `{"user_id":1,"events":[]}`,
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "negative user id",
			body:     `{"user_id":-5,"events":[],"items":[1]}`,
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "malformed json",
			body:     `{"user_id":`,
			wantCode: "INVALID_JSON",
		},
		{
			name:     "unknown field",
			body:     `{"user_id":1,"items":[1],"neighbours":true}`,
			wantCode: "INVALID_JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/neighborhoods", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			ts.router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			resp := decodeEnvelope(t, w)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestItemRaters_BadID(t *testing.T) {
	ts := setupServer(t, 1)

	w := ts.do(t, http.MethodGet, "/api/v1/items/not-a-number/raters", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", decodeEnvelope(t, w).Error)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	ts := setupServer(t, 1)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want fixed-id", got)
	}

	// Absent header gets a generated ID.
	w = ts.do(t, http.MethodGet, "/healthz", nil)
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("X-Request-ID missing from response")
	}
}

func TestRateLimit_Enforced(t *testing.T) {
	s, err := store.Open(store.Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	finder, err := neighbor.NewFinder(s, s, similarity.Cosine{}, similarity.Identity{}, 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFinder() error = %v", err)
	}
	router := NewRouter(NewHandler(finder, s, zerolog.Nop()), RouterConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   2,
		RateLimitWindow: time.Minute,
	})

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/1/ratings", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}
