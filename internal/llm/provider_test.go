package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"musicmem/internal/core"
)

const sampleSuggestions = `[{"song": "Hurt", "artist": "Johnny Cash"}]`

func sampleRequest() core.CompletionRequest {
	return core.CompletionRequest{
		Messages: []core.ChatMessage{
			{Role: core.RoleSystem, Content: "You are a music therapist."},
			{Role: core.RoleAssistant, Content: `[{"song": "Imagine", "artist": "John Lennon"}]`},
			{Role: core.RoleUser, Content: "Songs in jazz between 1957 and 1977."},
		},
		MaxTokens: 300,
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  core.LLMConfig
		wantErr bool
	}{
		{"OpenAI", core.LLMConfig{Provider: "openai", APIKey: "sk-test"}, false},
		{"OpenAI without key", core.LLMConfig{Provider: "openai"}, true},
		{"Anthropic", core.LLMConfig{Provider: "anthropic", APIKey: "sk-ant"}, false},
		{"Anthropic without key", core.LLMConfig{Provider: "anthropic"}, true},
		{"Ollama", core.LLMConfig{Provider: "ollama"}, false},
		{"None", core.LLMConfig{Provider: "none"}, false},
		{"Unknown", core.LLMConfig{Provider: "gemini"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(&tt.config, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && provider == nil {
				t.Error("Expected a provider")
			}
		})
	}
}

func TestNoOpClient(t *testing.T) {
	if _, err := (&NoOpClient{}).Complete(context.Background(), sampleRequest()); err == nil {
		t.Error("Expected unconfigured provider to fail")
	}
}

func TestSplitSystem(t *testing.T) {
	system, turns := splitSystem(sampleRequest().Messages)
	if system != "You are a music therapist." {
		t.Errorf("Unexpected system text %q", system)
	}
	if len(turns) != 2 || turns[0].Role != core.RoleAssistant || turns[1].Role != core.RoleUser {
		t.Errorf("Unexpected turns %+v", turns)
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	var body struct {
		Model     string            `json:"model"`
		MaxTokens int               `json:"max_tokens"`
		Messages  []json.RawMessage `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": "  " + sampleSuggestions + "\n"},
			}},
		})
	}))
	defer server.Close()

	client, err := NewOpenAIClient(&core.LLMConfig{APIKey: "sk-test", BaseURL: server.URL + "/"}, zap.NewNop(),
		openaioption.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewOpenAIClient() unexpected error: %v", err)
	}

	text, err := client.Complete(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if text != sampleSuggestions {
		t.Errorf("Complete() = %q, expected %q", text, sampleSuggestions)
	}
	if body.Model != defaultOpenAIModel || body.MaxTokens != 300 || len(body.Messages) != 3 {
		t.Errorf("Unexpected request %+v", body)
	}
}

func TestOpenAIClient_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := NewOpenAIClient(&core.LLMConfig{APIKey: "sk-test", BaseURL: server.URL + "/"}, zap.NewNop(),
		openaioption.WithMaxRetries(0))
	if _, err := client.Complete(context.Background(), sampleRequest()); err == nil {
		t.Error("Expected backend error")
	}
}

func TestAnthropicClient_Complete(t *testing.T) {
	var body struct {
		Model     string            `json:"model"`
		MaxTokens int               `json:"max_tokens"`
		System    []json.RawMessage `json:"system"`
		Messages  []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       defaultAnthropicModel,
			"stop_reason": "end_turn",
			"content":     []map[string]string{{"type": "text", "text": sampleSuggestions}},
			"usage":       map[string]int{"input_tokens": 10, "output_tokens": 10},
		})
	}))
	defer server.Close()

	client, err := NewAnthropicClient(&core.LLMConfig{APIKey: "sk-ant", BaseURL: server.URL + "/"}, zap.NewNop(),
		anthropicoption.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewAnthropicClient() unexpected error: %v", err)
	}

	text, err := client.Complete(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if text != sampleSuggestions {
		t.Errorf("Complete() = %q, expected %q", text, sampleSuggestions)
	}
	if len(body.System) != 1 {
		t.Errorf("Expected system prompt sent separately, got %d blocks", len(body.System))
	}
	if len(body.Messages) != 2 || body.Messages[0].Role != "assistant" || body.Messages[1].Role != "user" {
		t.Errorf("Unexpected messages %+v", body.Messages)
	}
	if body.MaxTokens != 300 {
		t.Errorf("Expected max tokens 300, got %d", body.MaxTokens)
	}
}

func TestOllamaClient_Complete(t *testing.T) {
	var received OllamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(OllamaResponse{
			Message: OllamaMessage{Role: "assistant", Content: sampleSuggestions},
			Done:    true,
		})
	}))
	defer server.Close()

	client, _ := NewOllamaClient(&core.LLMConfig{BaseURL: server.URL + "/", Model: "llama3.2"}, zap.NewNop())

	text, err := client.Complete(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if text != sampleSuggestions {
		t.Errorf("Complete() = %q, expected %q", text, sampleSuggestions)
	}
	if received.Stream || len(received.Messages) != 3 || received.Messages[0].Role != "system" {
		t.Errorf("Unexpected request %+v", received)
	}
	if n, ok := received.Options["num_predict"].(float64); !ok || int(n) != 300 {
		t.Errorf("Expected num_predict 300, got %v", received.Options["num_predict"])
	}
}

func TestOllamaClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := NewOllamaClient(&core.LLMConfig{BaseURL: server.URL}, zap.NewNop())
	if _, err := client.Complete(context.Background(), sampleRequest()); err == nil {
		t.Error("Expected status error")
	}
}
