package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks corpusqa/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for per-tenant vector namespaces.
// A collection is one tenant's namespace; isolation between tenants is
// enforced by never mixing collections.
type VectorStore interface {
	// EnsureCollection creates the collection if missing and validates the
	// vector size if it already exists.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// DeleteCollection removes the collection and every point in it.
	// Deleting a missing collection is an error.
	DeleteCollection(ctx context.Context, collection string) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search returning up to k results
	// ordered by descending score.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)
}
