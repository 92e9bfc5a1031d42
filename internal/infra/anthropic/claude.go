package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
	"dictation-pdf/internal/infra"
)

var _ application.EntityRecognizer = (*ClaudeClient)(nil)

const systemPrompt = `You are a named entity recognizer for dictated business documents.

Find every entity in the user's text with one of these labels:
- PERSON: names of people
- DATE: dates, including relative ones ("next Monday")
- ORG: companies, agencies, institutions
- GPE: cities, states, countries, street addresses
- MONEY: monetary amounts

Copy each entity's text EXACTLY as it appears. List entities in the order they occur.

Respond ONLY with a valid JSON array (no markdown, no backticks):
[{"text": "John Smith", "label": "PERSON"}, {"text": "April 10, 2025", "label": "DATE"}]

Respond with [] if there are no entities.`

type ClaudeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return NewClaudeClientWithURL(apiKey, model, "https://api.anthropic.com/v1")
}

func NewClaudeClientWithURL(apiKey, model, baseURL string) *ClaudeClient {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type parsedEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Recognize asks Claude for the entities in text. Labels outside the known
// set are dropped.
func (c *ClaudeClient) Recognize(ctx context.Context, text string) ([]domain.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	reqBody := request{
		Model:     c.model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: text},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if err := infra.CheckResponse("claude", resp); err != nil {
		return nil, err
	}

	var result response
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Content) == 0 {
		return nil, fmt.Errorf("empty response from claude")
	}

	responseText := strings.TrimSpace(result.Content[0].Text)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var parsed []parsedEntity
	if err = json.Unmarshal([]byte(responseText), &parsed); err != nil {
		return nil, fmt.Errorf("parsing entities JSON (%s): %w", responseText, err)
	}

	return locate(text, parsed), nil
}

// locate finds each entity in text, searching forward from the previous
// match, and returns them sorted by offset. Entities that cannot be found
// keep Start -1 and go last.
func locate(text string, parsed []parsedEntity) []domain.Entity {
	entities := make([]domain.Entity, 0, len(parsed))
	cursor := 0

	for _, p := range parsed {
		label := domain.EntityLabel(strings.ToUpper(p.Label))
		if _, ok := label.FieldFor(); !ok || strings.TrimSpace(p.Text) == "" {
			continue
		}

		start := -1
		if i := strings.Index(text[cursor:], p.Text); i >= 0 {
			start = cursor + i
			cursor = start + len(p.Text)
		} else if i := strings.Index(text, p.Text); i >= 0 {
			start = i
		}

		entities = append(entities, domain.Entity{Text: p.Text, Label: label, Start: start})
	}

	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i].Start, entities[j].Start
		if a < 0 || b < 0 {
			return a >= 0 && b < 0
		}
		return a < b
	})

	return entities
}
