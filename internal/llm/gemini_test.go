package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiProvider_Structured(t *testing.T) {
	var path string
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"feedback":"Luar biasa!"}`}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount":     12,
				"candidatesTokenCount": 8,
				"totalTokenCount":      20,
			},
			"modelVersion": "gemini-2.0-flash-001",
		})
	}))
	defer server.Close()

	p, err := newGeminiProvider(context.Background(), GeminiConfig{APIKey: "k", Model: "gemini-flash"}, server.URL)
	if err != nil {
		t.Fatalf("newGeminiProvider: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		System:   "mentor",
		Messages: UserMessage("Cerita..."),
		Schema:   mentorSchema,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(path, "gemini-2.0-flash:generateContent") {
		t.Errorf("path = %s", path)
	}
	if resp.Usage.TotalTokens != 20 || resp.Model != "gemini-2.0-flash-001" {
		t.Errorf("resp = %+v", resp)
	}
	gc, _ := body["generationConfig"].(map[string]any)
	if gc["responseMimeType"] != "application/json" {
		t.Errorf("generationConfig = %v", gc)
	}
}

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{"type": "string", "description": "2-3 kalimat"},
			"tone":     map[string]any{"type": "string", "enum": []string{"warm", "playful"}},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"feedback"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["feedback"].Description != "2-3 kalimat" {
		t.Errorf("description lost")
	}
	if len(schema.Properties["tone"].Enum) != 2 {
		t.Errorf("expected []string enum to be carried, got %v", schema.Properties["tone"].Enum)
	}
	if schema.Properties["tags"].Items.Type != "STRING" {
		t.Errorf("items type = %s", schema.Properties["tags"].Items.Type)
	}
	if len(schema.Required) != 1 {
		t.Errorf("required = %v", schema.Required)
	}
}
