package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckMappingParsesExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/check-trainer-member-mapping/t1/m1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"exists": true}`))
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL)
	exists, err := c.CheckMapping(context.Background(), "tok", "t1", "m1")
	if err != nil {
		t.Fatalf("CheckMapping returned error: %v", err)
	}
	if !exists {
		t.Error("exists = false, want true")
	}
}

func TestCheckMappingTreats404AsNotMapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL)
	exists, err := c.CheckMapping(context.Background(), "tok", "t1", "m1")
	if err != nil {
		t.Fatalf("CheckMapping returned error: %v", err)
	}
	if exists {
		t.Error("exists = true, want false on peer 404")
	}
}

func TestAdjustSessionsPropagatesPeerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"not enough remaining sessions"}`))
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL)
	_, err := c.AdjustSessions(context.Background(), "tok", "t1", "m1", -1)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusConflict {
		t.Errorf("code = %d, want 409", statusErr.Code)
	}
	if statusErr.Body == "" {
		t.Error("peer body was not captured")
	}
}

func TestAdjustSessionsSendsDeltaAndParsesBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if r.URL.Path != "/api/v1/trainer-member-mapping/m1/update-sessions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"remaining_sessions": 4}`))
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL)
	remaining, err := c.AdjustSessions(context.Background(), "tok", "t1", "m1", -1)
	if err != nil {
		t.Fatalf("AdjustSessions returned error: %v", err)
	}
	if remaining != 4 {
		t.Errorf("remaining = %d, want 4", remaining)
	}
}
