package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		want         string
		wantErr      bool
	}{
		{
			name:         "Success",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"La lluvia pide \"Holocene\" de Bon Iver."}}`,
			want:         `La lluvia pide "Holocene" de Bon Iver.`,
		},
		{
			name:         "Strips thinking block",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"<think>rain, calm</think>\nSol tibio."}}`,
			want:         "Sol tibio.",
		},
		{
			name:         "Empty content",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"  "}}`,
			wantErr:      true,
		},
		{
			name:         "Server error",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":"bad"}`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if r.Method != http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "")
			text, err := client.Generate(context.Background(), "test prompt")

			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if gotRequest.Model != DefaultModel {
				t.Fatalf("expected model %s, got %q", DefaultModel, gotRequest.Model)
			}
			if gotRequest.Stream {
				t.Fatalf("expected non-streaming request")
			}
			if gotRequest.Options != generationOptions {
				t.Fatalf("options: got %+v, want %+v", gotRequest.Options, generationOptions)
			}
			if len(gotRequest.Messages) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(gotRequest.Messages))
			}
			if gotRequest.Messages[0].Role != "system" || gotRequest.Messages[0].Content != systemPrompt {
				t.Fatalf("system prompt mismatch")
			}
			if gotRequest.Messages[1].Role != "user" || gotRequest.Messages[1].Content != "test prompt" {
				t.Fatalf("user message mismatch")
			}
			if text != tt.want {
				t.Fatalf("text: got %q, want %q", text, tt.want)
			}
		})
	}
}

func TestClient_GenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"missing\" not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "missing").Generate(context.Background(), "p")
	var upstream *ports.UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != http.StatusNotFound || upstream.Message == "" {
		t.Fatalf("expected UpstreamError 404 with message, got %v", err)
	}
}

func TestClient_GenerateBusyServer(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"server busy"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Generate(context.Background(), "p")
	if !errors.Is(err, ports.ErrModelLoading) {
		t.Fatalf("expected ErrModelLoading, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestStripThinking(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Hola  ", want: "Hola"},
		{in: "<think>x</think> Sol", want: "Sol"},
		{in: "<think>never closed", want: ""},
	}
	for _, tt := range tests {
		if got := stripThinking(tt.in); got != tt.want {
			t.Fatalf("stripThinking(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
