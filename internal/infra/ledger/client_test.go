package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreditReleaseSendsIdempotencyKey(t *testing.T) {
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", time.Second, nil)
	if err := c.CreditRelease(context.Background(), "item-1", "user-1"); err != nil {
		t.Fatalf("CreditRelease: %v", err)
	}
	if gotKey != "item-1" {
		t.Fatalf("expected idempotency key item-1, got %q", gotKey)
	}
	if gotPath != "/v1/credits/release" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestCreditReleaseTreatsConflictAsApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, nil)
	if err := c.CreditRelease(context.Background(), "item-1", "user-1"); err != nil {
		t.Fatalf("409 must count as applied, got %v", err)
	}
}

func TestCreditReleaseSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, nil)
	if err := c.CreditRelease(context.Background(), "item-1", "user-1"); err == nil {
		t.Fatal("expected error on 500")
	}
}
