package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenAIClient is a minimal chat-completions client. Configured entirely from
// the environment; when no API key is present the bridge falls back to the
// rule-based parser.
type OpenAIClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func NewOpenAIFromEnv() *OpenAIClient {
	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}
	base := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:   model,
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OpenAIClient) Enabled() bool {
	return c != nil && c.APIKey != ""
}

type ChatMessage struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	Name         string        `json:"name,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type FunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type completionRequest struct {
	Model        string        `json:"model"`
	Messages     []ChatMessage `json:"messages"`
	Functions    []FunctionDef `json:"functions,omitempty"`
	FunctionCall string        `json:"function_call,omitempty"`
	MaxTokens    int           `json:"max_tokens,omitempty"`
	Temperature  float64       `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs one chat completion and returns the assistant message.
func (c *OpenAIClient) Complete(ctx context.Context, messages []ChatMessage, functions []FunctionDef) (ChatMessage, error) {
	reqBody := completionRequest{
		Model:       c.Model,
		Messages:    messages,
		Functions:   functions,
		MaxTokens:   500,
		Temperature: 0.7,
	}
	if len(functions) > 0 {
		reqBody.FunctionCall = "auto"
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return ChatMessage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return ChatMessage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return ChatMessage{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return ChatMessage{}, err
	}
	if res.StatusCode >= 300 {
		return ChatMessage{}, &openAIHTTPError{Status: res.StatusCode, Body: string(body)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ChatMessage{}, err
	}
	if parsed.Error != nil {
		return ChatMessage{}, errors.New(parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return ChatMessage{}, errors.New("empty completion")
	}
	return parsed.Choices[0].Message, nil
}

type openAIHTTPError struct {
	Status int
	Body   string
}

func (e *openAIHTTPError) Error() string {
	return "openai request failed"
}
