package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := ChatResponse{
			Choices: []ChatChoice{
				{Message: ChatChoiceMessage{Role: "assistant", Content: content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerate_ParsesConfidence(t *testing.T) {
	server := newChatServer(t, "Total institutions: **4,538** as of March 31, 2024.\n\nCONFIDENCE: 9/10")
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model")
	result, err := client.Generate(context.Background(), "How many institutions?", []string{"Total FDIC-insured institutions: 4,538"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.SelfConfidence != 9 {
		t.Errorf("SelfConfidence = %f, want 9", result.SelfConfidence)
	}
	if strings.Contains(result.Answer, "CONFIDENCE") {
		t.Errorf("confidence line not stripped from answer: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "4,538") {
		t.Errorf("answer lost the figure: %q", result.Answer)
	}
	if !result.FoundInformation {
		t.Error("FoundInformation = false, want true")
	}
}

func TestGenerate_NegativeAnswerSetsFlag(t *testing.T) {
	server := newChatServer(t, "The provided documents do not contain information on this question.\nCONFIDENCE: 9/10")
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model")
	result, err := client.Generate(context.Background(), "How do I play football?", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.FoundInformation {
		t.Error("FoundInformation = true, want false for a no-information answer")
	}
}

func TestGenerate_MissingConfidenceDefaultsToFive(t *testing.T) {
	server := newChatServer(t, "An answer without a score line.")
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model")
	result, err := client.Generate(context.Background(), "question", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.SelfConfidence != 5 {
		t.Errorf("SelfConfidence = %f, want default 5", result.SelfConfidence)
	}
}

func TestGenerate_ErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model")
	_, err := client.Generate(context.Background(), "question", nil)
	if err == nil {
		t.Fatal("Generate() expected error, got nil")
	}
	if !IsTransient(err) {
		t.Errorf("503 should classify as transient, got %v", err)
	}
}

func TestExtractConfidence(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     float64
	}{
		{name: "standard format", response: "Answer.\nCONFIDENCE: 8/10", want: 8},
		{name: "lowercase", response: "Answer.\nconfidence: 7 / 10", want: 7},
		{name: "decimal", response: "CONFIDENCE: 8.5/10", want: 8.5},
		{name: "no slash", response: "Confidence: 6", want: 5}, // needs the /10 scale marker
		{name: "missing", response: "Answer without score.", want: 5},
		{name: "clamped high", response: "CONFIDENCE: 15/10", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractConfidence(tt.response); got != tt.want {
				t.Errorf("extractConfidence() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMatchesNoInformation(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{name: "explicit negative", answer: "The provided documents do not contain information on football.", want: true},
		{name: "not mentioned", answer: "This topic is not mentioned in the context.", want: true},
		{name: "positive answer", answer: "Net interest margin was 3.2% in Q1.", want: false},
		{name: "insufficient context", answer: "The context is insufficient to answer.", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesNoInformation(tt.answer); got != tt.want {
				t.Errorf("matchesNoInformation(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}
