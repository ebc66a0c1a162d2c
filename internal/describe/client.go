// Package describe enriches asset records with model-written descriptions.
package describe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrRateLimited is returned on HTTP 429.
	ErrRateLimited = errors.New("describe: rate limited")
	// ErrResponseInvalid is returned when the reply has no usable text.
	ErrResponseInvalid = errors.New("describe: invalid response")
	// ErrMissingKey is returned when no API key was supplied.
	ErrMissingKey = errors.New("describe: missing api key")
)

// Options configure an OpenAI-compatible chat completions client.
type Options struct {
	BaseURL        string
	Model          string
	APIKey         string
	TimeoutSeconds int
}

func (o *Options) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://openrouter.ai/api/v1"
	}
	if o.Model == "" {
		o.Model = "mistralai/mistral-small-3.2-24b-instruct:free"
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 120
	}
}

// Client sends one multi-part user message per call.
type Client struct {
	url    string
	apiKey string
	model  string
	do     func(*http.Request) (*http.Response, error)
}

// New returns a client for opts.
func New(opts Options) (*Client, error) {
	opts.defaults()
	if opts.APIKey == "" {
		return nil, ErrMissingKey
	}
	hc := &http.Client{Timeout: time.Duration(opts.TimeoutSeconds) * time.Second}
	return &Client{
		url:    strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		apiKey: opts.APIKey,
		model:  opts.Model,
		do:     hc.Do,
	}, nil
}

// Model returns the model name sent with every request.
func (c *Client) Model() string { return c.model }

// Usage holds the counters reported for one call.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost"`
	TotalCost        float64 `json:"total_cost"`
}

// Amount returns the reported cost, whichever field the provider used.
func (u Usage) Amount() float64 {
	if u.TotalCost != 0 {
		return u.TotalCost
	}
	return u.Cost
}

// Reply is the generated text and its usage.
type Reply struct {
	Text  string
	Usage Usage
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Generate sends parts as a single user message and returns the trimmed
// text of the first choice.
func (c *Client) Generate(ctx context.Context, parts []ContentPart) (Reply, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: parts}},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("describe: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("describe: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Reply{}, ctx.Err()
		}
		return Reply{}, fmt.Errorf("describe: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Reply{}, ErrRateLimited
	}
	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Reply{}, fmt.Errorf("describe: upstream %d: %s", resp.StatusCode, strings.TrimSpace(string(slurp)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Reply{}, fmt.Errorf("%w: decode: %v", ErrResponseInvalid, err)
	}
	if len(cr.Choices) == 0 {
		return Reply{}, fmt.Errorf("%w: no choices", ErrResponseInvalid)
	}
	text := strings.TrimSpace(cr.Choices[0].Message.Content)
	if text == "" {
		return Reply{}, fmt.Errorf("%w: empty description", ErrResponseInvalid)
	}
	reply := Reply{Text: text}
	if cr.Usage != nil {
		reply.Usage = *cr.Usage
	}
	return reply, nil
}
