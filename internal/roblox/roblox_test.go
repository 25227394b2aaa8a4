package roblox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logx "sessionbot/pkg/logx"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, RatePerSec: 100}, logx.Nop())
}

func TestResolveSuccess(t *testing.T) {
	t.Parallel()
	var gotReq usernamesRequest
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/usernames/users" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 42, "name": "ValidUser"}},
		})
	})

	id, ok, err := c.Resolve(context.Background(), "validUser")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected found")
	}
	if id.ID != 42 || id.Name != "ValidUser" {
		t.Fatalf("identity = %+v", id)
	}
	if len(gotReq.Usernames) != 1 || gotReq.Usernames[0] != "validUser" {
		t.Fatalf("request usernames = %v", gotReq.Usernames)
	}
	if !gotReq.ExcludeBannedUsers {
		t.Fatal("banned users must be excluded")
	}
}

func TestResolveUnknownUsername(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	_, ok, err := c.Resolve(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Fatal("empty result set must read as not found")
	}
}

func TestResolveNon2xxIsNotFound(t *testing.T) {
	t.Parallel()
	tests := []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError}
	for _, code := range tests {
		code := code
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})
		_, ok, err := c.Resolve(context.Background(), "anyone")
		if err != nil {
			t.Fatalf("status %d: Resolve error: %v", code, err)
		}
		if ok {
			t.Fatalf("status %d must read as not found", code)
		}
	}
}

func TestResolveTransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(Config{BaseURL: srv.URL, Timeout: time.Second, RatePerSec: 100}, logx.Nop())
	_, ok, err := c.Resolve(context.Background(), "anyone")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if ok {
		t.Fatal("found must be false on transport failure")
	}
}

func TestResolveContextCancelled(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := c.Resolve(ctx, "anyone"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
