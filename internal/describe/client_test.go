package describe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api/v1/", APIKey: "test-key", Model: "test/model"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestGenerateSuccess(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  A wooden crate.\n"}}],
			"usage":{"prompt_tokens":1200,"completion_tokens":30,"total_tokens":1230,"total_cost":0.0042}}`))
	})

	reply, err := c.Generate(context.Background(), []ContentPart{TextPart("hello"), ImagePart("data:image/png;base64,AAAA")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply.Text != "A wooden crate." {
		t.Errorf("text = %q", reply.Text)
	}
	if reply.Usage.PromptTokens != 1200 || reply.Usage.TotalTokens != 1230 || reply.Usage.Amount() != 0.0042 {
		t.Errorf("usage = %+v", reply.Usage)
	}
	if got.Model != "test/model" || len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("request = %+v", got)
	}
	parts := got.Messages[0].Content
	if len(parts) != 2 || parts[0].Type != "text" || parts[1].Type != "image_url" || parts[1].ImageURL.URL != "data:image/png;base64,AAAA" {
		t.Errorf("parts = %+v", parts)
	}
}

func TestGenerateCostField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"Barrel."}}],"usage":{"total_tokens":10,"cost":0.5}}`))
	})
	reply, err := c.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply.Usage.Amount() != 0.5 {
		t.Errorf("cost = %v", reply.Usage.Amount())
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrRateLimited, ""},
		{"server error", http.StatusBadGateway, `upstream down`, nil, "upstream down"},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrResponseInvalid, ""},
		{"empty text", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, ErrResponseInvalid, ""},
		{"bad json", http.StatusOK, `{"choices":`, ErrResponseInvalid, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Generate(context.Background(), []ContentPart{TextPart("x")})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestGenerateCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Generate(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrMissingKey) {
		t.Errorf("err = %v, want ErrMissingKey", err)
	}
	c, err := New(Options{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if c.url != "https://openrouter.ai/api/v1/chat/completions" || c.Model() != "mistralai/mistral-small-3.2-24b-instruct:free" {
		t.Errorf("defaults = %s %s", c.url, c.Model())
	}
}
