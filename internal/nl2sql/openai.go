package nl2sql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"queryforge/internal/core"
)

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

// OpenAITranslator talks to any OpenAI-compatible chat-completions endpoint.
// The caller bounds each call with a context deadline.
type OpenAITranslator struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAITranslator{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{},
	}, nil
}

var _ core.Translator = (*OpenAITranslator)(nil)

func (t *OpenAITranslator) Translate(ctx context.Context, question string, dialect core.Dialect, schemaHints string) (string, error) {
	payload := buildChatPayload(t.model, t.temperature, question, dialect, schemaHints)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", &TranslationError{Reason: fmt.Sprintf("translation request failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TranslationError{Reason: fmt.Sprintf("read translation response: %v", err)}
	}
	if resp.StatusCode >= 400 {
		return "", &TranslationError{Reason: fmt.Sprintf("translation failed status=%d body=%s", resp.StatusCode, string(rawBody))}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return "", &TranslationError{Reason: fmt.Sprintf("decode translation response: %v", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &TranslationError{Reason: "model returned no choices"}
	}

	sqlText := stripMarkdownSQL(parsed.Choices[0].Message.Content)
	if strings.TrimSpace(sqlText) == "" {
		return "", &TranslationError{Reason: "model returned empty SQL"}
	}
	return sqlText, nil
}

func buildChatPayload(model string, temperature float64, question string, dialect core.Dialect, schemaHints string) map[string]any {
	systemPrompt := fmt.Sprintf(
		"You convert natural language questions into a single %s SQL query. "+
			"Return ONLY SQL. No markdown, no explanation.", dialectLabel(dialect))

	var user strings.Builder
	if strings.TrimSpace(schemaHints) != "" {
		fmt.Fprintf(&user, "Schema context:\n%s\n\n", strings.TrimSpace(schemaHints))
	}
	fmt.Fprintf(&user, "Question:\n%s\n\nRules:\n- Output a single SQL statement only.\n- Prefer explicit columns over SELECT *.", strings.TrimSpace(question))

	return map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": user.String()},
		},
		"temperature": temperature,
	}
}

func dialectLabel(dialect core.Dialect) string {
	switch dialect {
	case core.DialectPostgres:
		return "PostgreSQL"
	case core.DialectMySQL:
		return "MySQL"
	case core.DialectMSSQL:
		return "Microsoft SQL Server (T-SQL)"
	}
	return string(dialect)
}

func stripMarkdownSQL(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
