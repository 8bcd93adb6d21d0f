package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aurasutra/patient-api/pkg/circuitbreaker"
)

func testBreaker(t *testing.T) *circuitbreaker.CircuitBreaker {
	t.Helper()
	breaker, err := circuitbreaker.New(circuitbreaker.MailerConfig(), nil)
	if err != nil {
		t.Fatalf("create breaker: %v", err)
	}
	return breaker
}

func TestSendDeliversEmail(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test_key" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{
		APIKey:  "re_test_key",
		From:    "AuraSutra <care@aurasutra.in>",
		BaseURL: srv.URL,
	}, testBreaker(t), nil)

	err := client.Send(context.Background(), Message{
		To:      "asha@example.com",
		Subject: "Your prescription is ready",
		HTML:    "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got["from"] != "AuraSutra <care@aurasutra.in>" {
		t.Errorf("from = %v", got["from"])
	}
	to, ok := got["to"].([]any)
	if !ok || len(to) != 1 || to[0] != "asha@example.com" {
		t.Errorf("to = %v", got["to"])
	}
	if got["subject"] != "Your prescription is ready" {
		t.Errorf("subject = %v", got["subject"])
	}
}

func TestSendProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid recipient"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, testBreaker(t), nil)

	err := client.Send(context.Background(), Message{To: "nobody@example.com", Subject: "x"})
	if err == nil {
		t.Fatal("expected error for rejected email")
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:0"}, testBreaker(t), nil)

	if err := client.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestSendShedsLoadWhenProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	breaker, err := circuitbreaker.New(circuitbreaker.Config{
		Name:             "mailer-test",
		FailureThreshold: 2,
		MinRequests:      100,
	}, nil)
	if err != nil {
		t.Fatalf("create breaker: %v", err)
	}
	client := NewClient(Config{BaseURL: srv.URL}, breaker, nil)

	msg := Message{To: "asha@example.com", Subject: "x"}
	for i := 0; i < 3; i++ {
		if err := client.Send(context.Background(), msg); err == nil {
			t.Fatalf("send %d: expected error", i)
		}
	}
	if breaker.IsClosed() {
		t.Error("breaker still closed after consecutive provider failures")
	}
}
