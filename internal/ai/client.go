package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/example/vocabsheet/pkg/models"
)

// Failure taxonomy: callers must be able to distinguish an unreachable or
// misbehaving service from a payload that came back but could not be parsed.
var (
	// ErrService indicates a transport, HTTP or API-level failure
	ErrService = errors.New("enrichment service error")
	// ErrParse indicates the service answered with a malformed payload
	ErrParse = errors.New("malformed enrichment payload")
)

// Client talks to an OpenAI-compatible chat completions endpoint and turns a
// word into structured sense groups.
type Client struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	http        *http.Client
}

// Config holds the client settings. Passed in explicitly, never read from
// ambient globals.
type Config struct {
	APIKey      string
	APIURL      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// New creates an enrichment client
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("enrichment API key is not set")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 900
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3 // низкая температура для точных словарных данных
	}
	return &Client{
		apiKey:      cfg.APIKey,
		apiURL:      cfg.APIURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		http:        &http.Client{},
	}, nil
}

// Message represents a message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You are an English dictionary assistant. " +
	"You always answer with valid JSON and nothing else."

// Lookup fetches sense groups for a word, one per part of speech
func (c *Client) Lookup(ctx context.Context, word string) ([]models.SenseGroup, error) {
	prompt := fmt.Sprintf(
		"Describe the English word %q as a JSON array with one object per part of speech. "+
			"Each object has: part_of_speech (string), "+
			"meanings (array of {definition, example, translation} with Russian translations), "+
			"general_examples (array of {example, translation}), "+
			"synonyms (array of strings), antonyms (array of strings), notes (array of strings), "+
			"pronunciation ({uk, us} phonetic transcriptions), "+
			"related_forms (array of {word, part_of_speech}). "+
			"Return only the JSON array.",
		word,
	)

	request := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrService, resp.StatusCode)
	}

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrService, response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response choices returned", ErrService)
	}

	return parseSenseGroups(response.Choices[0].Message.Content)
}

// parseSenseGroups extracts the JSON array from the model's answer. The model
// is told to return bare JSON but tends to wrap it in markdown fences or a
// sentence of prose, so everything outside the outermost brackets is dropped.
func parseSenseGroups(content string) ([]models.SenseGroup, error) {
	payload := extractJSONArray(content)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON array in response", ErrParse)
	}

	var groups []models.SenseGroup
	if err := json.Unmarshal([]byte(payload), &groups); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(groups) == 0 {
		// An empty array would flatten into blank content and silently wipe
		// whatever the row already holds.
		return nil, fmt.Errorf("%w: empty sense group array", ErrParse)
	}
	return groups, nil
}

func extractJSONArray(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}
