package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docstruct/docstruct/internal/common"
	"github.com/docstruct/docstruct/internal/llm"
)

func completionResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func TestExtractPairs_OK(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse(
			`{"extracted_data":[{"Key":"Revenue Growth","Value":"Revenue grew 20%","Comment":"in Q3."}]}`,
		)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "llama-3.3-70b-versatile"}, nil)
	pairs, raw, err := c.ExtractPairs(context.Background(), llm.ExtractRequest{DocumentText: "Revenue grew 20% in Q3."})
	if err != nil {
		t.Fatalf("ExtractPairs() error = %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1", len(pairs))
	}
	want := llm.ExtractedPair{Key: "Revenue Growth", Value: "Revenue grew 20%", Comment: "in Q3."}
	if pairs[0] != want {
		t.Errorf("pair = %+v, want %+v", pairs[0], want)
	}
	if len(raw) == 0 {
		t.Error("raw content not returned")
	}

	// request contract: fixed model, temperature 0, json_object format, two messages
	if gotBody["model"] != "llama-3.3-70b-versatile" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if temp, ok := gotBody["temperature"].(float64); !ok || temp != 0 {
		t.Errorf("temperature = %v, want 0", gotBody["temperature"])
	}
	rf, _ := gotBody["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", gotBody["response_format"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	userMsg, _ := msgs[1].(map[string]any)
	if userMsg["role"] != "user" || userMsg["content"] != llm.UserDirective {
		t.Errorf("user message = %v", userMsg)
	}
}

func TestExtractPairs_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode string
	}{
		{
			name: "http status error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
			},
			wantCode: common.CodeConnectivity,
		},
		{
			name: "response body not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantCode: common.CodeModelAdherence,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			wantCode: common.CodeModelAdherence,
		},
		{
			name: "content is prose not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(completionResponse("Sure! Here is the JSON you asked for.")))
			},
			wantCode: common.CodeModelAdherence,
		},
		{
			name: "content has wrong top-level key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(completionResponse(`{"wrong_key":[]}`)))
			},
			wantCode: common.CodeModelAdherence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
			pairs, _, err := c.ExtractPairs(context.Background(), llm.ExtractRequest{DocumentText: "x"})
			if err == nil {
				t.Fatal("ExtractPairs() expected error")
			}
			if pairs != nil {
				t.Error("ExtractPairs() returned pairs on failure")
			}
			var ae *common.AppError
			if !errors.As(err, &ae) {
				t.Fatalf("error %v is not an AppError", err)
			}
			if ae.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", ae.Code, tt.wantCode)
			}
		})
	}
}

func TestExtractPairs_NoKeyConfigured(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, nil)
	_, _, err := c.ExtractPairs(context.Background(), llm.ExtractRequest{DocumentText: "x"})
	var ae *common.AppError
	if !errors.As(err, &ae) || ae.Code != common.CodeConnectivity {
		t.Fatalf("error = %v, want connectivity error", err)
	}
}

func TestCheckConnection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, wantErr: false},
		{name: "bad key", status: http.StatusUnauthorized, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					t.Errorf("path = %q, want /models", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"data":[]}`))
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
			err := c.CheckConnection(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckConnection() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
