package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// ExpoPushService delivers notifications through the Expo push gateway.
// The gateway is a shared external dependency, so calls go through a
// circuit breaker: after repeated failures delivery is skipped instead of
// stalling the dispatch worker on a dead endpoint.
type ExpoPushService struct {
	gatewayURL string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewExpoPushService(gatewayURL string) *ExpoPushService {
	return &ExpoPushService{
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "expo-push",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type expoPushMessage struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
	Sound string         `json:"sound"`
}

type expoPushTicket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

// Send pushes one message per token and returns the tokens Expo reported as
// unregistered.
func (s *ExpoPushService) Send(ctx context.Context, tokens []string, title, message string, data map[string]any) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	messages := make([]expoPushMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, expoPushMessage{
			To:    token,
			Title: title,
			Body:  message,
			Data:  data,
			Sound: "default",
		})
	}

	result, err := s.breaker.Execute(func() (any, error) {
		return s.post(ctx, messages)
	})
	if err != nil {
		return nil, err
	}

	tickets := result.([]expoPushTicket)
	dead := make([]string, 0)
	for i, ticket := range tickets {
		if i >= len(tokens) {
			break
		}
		if ticket.Status == "error" && ticket.Details.Error == "DeviceNotRegistered" {
			dead = append(dead, tokens[i])
		}
	}
	return dead, nil
}

func (s *ExpoPushService) post(ctx context.Context, messages []expoPushMessage) ([]expoPushTicket, error) {
	body, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("send push: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var response struct {
		Data []expoPushTicket `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}

	return response.Data, nil
}
