package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExpoPushSendReportsDeadTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var messages []expoPushMessage
		if err := json.NewDecoder(r.Body).Decode(&messages); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(messages))
		}
		if messages[0].Title != "Cuidador chegou!" {
			t.Fatalf("unexpected title %q", messages[0].Title)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"status":"ok"},
			{"status":"error","message":"gone","details":{"error":"DeviceNotRegistered"}}
		]}`))
	}))
	defer server.Close()

	service := NewExpoPushService(server.URL)
	dead, err := service.Send(context.Background(), []string{"token-a", "token-b"}, "Cuidador chegou!", "msg", nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(dead) != 1 || dead[0] != "token-b" {
		t.Fatalf("expected token-b reported dead, got %v", dead)
	}
}

func TestExpoPushSendSkipsEmptyTokenList(t *testing.T) {
	service := NewExpoPushService("http://push.invalid")
	dead, err := service.Send(context.Background(), nil, "t", "m", nil)
	if err != nil {
		t.Fatalf("Send with no tokens: %v", err)
	}
	if dead != nil {
		t.Fatalf("expected no dead tokens, got %v", dead)
	}
}

func TestExpoPushBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewExpoPushService(server.URL)
	for i := 0; i < 5; i++ {
		if _, err := service.Send(context.Background(), []string{"token"}, "t", "m", nil); err == nil {
			t.Fatalf("attempt %d: expected gateway error", i)
		}
	}

	// Breaker is open now; the request must fail fast without reaching the
	// gateway.
	server.Close()
	if _, err := service.Send(context.Background(), []string{"token"}, "t", "m", nil); err == nil {
		t.Fatal("expected open-circuit error")
	}
}
