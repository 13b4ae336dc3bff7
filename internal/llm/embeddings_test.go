package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		resp := EmbeddingsResponse{}
		for range req.Input {
			resp.Data = append(resp.Data, EmbeddingData{Embedding: []float64{0.1, 0.2, 0.3}})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "key", "test-model", 3)
	vectors, err := client.EmbedTexts(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("EmbedTexts() returned %d vectors, want 2", len(vectors))
	}
	if len(vectors[0]) != 3 {
		t.Errorf("vector size = %d, want 3", len(vectors[0]))
	}
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost", "key", "test-model", 3)
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Error("EmbedTexts() expected error for empty input, got nil")
	}
}

func TestEmbedTexts_SizeMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := EmbeddingsResponse{Data: []EmbeddingData{{Embedding: []float64{0.1, 0.2}}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "key", "test-model", 3)
	if _, err := client.EmbedTexts(context.Background(), []string{"one"}); err == nil {
		t.Error("EmbedTexts() expected size mismatch error, got nil")
	}
}

func TestEmbedTexts_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantTransient bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantTransient: true},
		{name: "server error", status: http.StatusInternalServerError, wantTransient: true},
		{name: "service unavailable", status: http.StatusServiceUnavailable, wantTransient: true},
		{name: "unauthorized", status: http.StatusUnauthorized, wantTransient: false},
		{name: "bad request", status: http.StatusBadRequest, wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "key", "test-model", 3)
			_, err := client.EmbedTexts(context.Background(), []string{"one"})
			if err == nil {
				t.Fatal("EmbedTexts() expected error, got nil")
			}
			if IsTransient(err) != tt.wantTransient {
				t.Errorf("IsTransient() = %v, want %v (err = %v)", IsTransient(err), tt.wantTransient, err)
			}
			if IsPermanent(err) == tt.wantTransient {
				t.Errorf("IsPermanent() = %v, want %v", IsPermanent(err), !tt.wantTransient)
			}
		})
	}
}

func TestEmbedTexts_TransportFailureIsTransient(t *testing.T) {
	// Closed server to force a connection error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewEmbeddingsClient(server.URL, "key", "test-model", 3)
	_, err := client.EmbedTexts(context.Background(), []string{"one"})
	if err == nil {
		t.Fatal("EmbedTexts() expected error, got nil")
	}
	if !IsTransient(err) {
		t.Errorf("transport failure should be transient, got %v", err)
	}
}
