package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func userinfoServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if r.URL.Path != "/oauth/userinfo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"sub":"auth-123","email":"asha@example.com","given_name":"Asha","family_name":"Rao"}`)
	}))
}

func TestVerifyResolvesIdentity(t *testing.T) {
	hits := 0
	srv := userinfoServer(t, &hits)
	defer srv.Close()

	v := NewVerifier(Config{IssuerURL: srv.URL}, nil)

	identity, err := v.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.ID != "auth-123" || identity.Email != "asha@example.com" {
		t.Errorf("unexpected identity: %+v", identity)
	}
	if got := identity.DisplayName(); got != "Asha Rao" {
		t.Errorf("expected display name Asha Rao, got %q", got)
	}
}

func TestVerifyCachesToken(t *testing.T) {
	hits := 0
	srv := userinfoServer(t, &hits)
	defer srv.Close()

	v := NewVerifier(Config{IssuerURL: srv.URL, CacheTTL: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		if _, err := v.Verify(context.Background(), "good-token"); err != nil {
			t.Fatalf("Verify #%d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("expected one provider call, got %d", hits)
	}
}

func TestVerifyRejectsBadToken(t *testing.T) {
	hits := 0
	srv := userinfoServer(t, &hits)
	defer srv.Close()

	v := NewVerifier(Config{IssuerURL: srv.URL}, nil)

	if _, err := v.Verify(context.Background(), "forged"); err == nil {
		t.Fatal("expected rejection for a bad token")
	}
	if _, err := v.Verify(context.Background(), ""); err == nil {
		t.Fatal("expected rejection for an empty token")
	}
}
