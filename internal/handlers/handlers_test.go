package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"corpusqa/internal/ingest"
	"corpusqa/internal/storage"
	"corpusqa/internal/tenant"
	"corpusqa/internal/vectorstore"
)

const testVectorSize = 4

type testEnv struct {
	db            *sql.DB
	manager       *tenant.Manager
	conversations *storage.ConversationRepo
	vectors       vectorstore.VectorStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	vectors := vectorstore.NewMemoryStore()
	return &testEnv{
		db: db,
		manager: tenant.NewManager(
			storage.NewTenantRepo(db),
			storage.NewSegmentRepo(db),
			vectors,
			testVectorSize,
		),
		conversations: storage.NewConversationRepo(db),
		vectors:       vectors,
	}
}

func (e *testEnv) createTenant(t *testing.T, name string) *tenant.Handle {
	t.Helper()
	h, err := e.manager.CreateOrSwitch(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateOrSwitch(%s) error = %v", name, err)
	}
	return h
}

// fakeIngestor records ingested segments without touching a provider.
type fakeIngestor struct {
	segments []ingest.Segment
	err      error
}

func (f *fakeIngestor) Ingest(ctx context.Context, h *tenant.Handle, segments []ingest.Segment) (ingest.Result, error) {
	if f.err != nil {
		return ingest.Result{Failed: len(segments)}, f.err
	}
	f.segments = append(f.segments, segments...)
	ids := make([]string, len(segments))
	for i := range segments {
		ids[i] = fmt.Sprintf("id-%d", i)
	}
	return ingest.Result{Stored: len(segments), IDs: ids}, nil
}

func (f *fakeIngestor) SuccessRate() float64 { return 1 }

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return v
}
