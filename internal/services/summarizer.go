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

	"github.com/danielagrograos-wq/senior/internal/models"
)

const summarizerSystemPrompt = "Você é um assistente que resume registros de cuidados com idosos para familiares. " +
	"Seja breve, carinhoso e informativo. Responda em português brasileiro."

// Summarizer turns a day of care log entries into a short family-facing text.
type Summarizer interface {
	Summarize(ctx context.Context, entries []models.CareLog) (string, error)
}

// LLMSummarizer calls an OpenAI-compatible chat completions endpoint.
type LLMSummarizer struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewLLMSummarizer(endpoint, apiKey, model string) *LLMSummarizer {
	return &LLMSummarizer{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, entries []models.CareLog) (string, error) {
	var logsText strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&logsText, "- %s: %s\n", entry.EntryType, entry.Description)
	}

	payload := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": summarizerSystemPrompt},
			{"role": "user", "content": "Resuma os seguintes registros de cuidado do dia para enviar à família:\n\n" + logsText.String()},
		},
		"max_tokens": 300,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal summary payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build summary request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("request summary: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode summary response: %w", err)
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("summary missing from response")
	}

	return response.Choices[0].Message.Content, nil
}
