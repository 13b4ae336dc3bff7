package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"corpusqa/internal/contextutil"
	"corpusqa/internal/storage"
	"corpusqa/internal/vectorstore"
)

const collectionPrefix = "tenant_"

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// Handle identifies one tenant's isolated namespace. Handles are passed
// explicitly through every ingestion and query call; there is no
// process-wide current tenant.
type Handle struct {
	name       string
	collection string
	id         int64
	revoked    atomic.Bool
}

// Name returns the tenant name.
func (h *Handle) Name() string { return h.name }

// Collection returns the tenant's vector namespace name.
func (h *Handle) Collection() string { return h.collection }

// ID returns the tenant's database row id.
func (h *Handle) ID() int64 { return h.id }

// Record is a segment to be stored in a tenant's namespace.
type Record struct {
	Source string
	Page   int
	Seq    int
	Text   string
	Vector []float32
}

// Scored is a stored record ranked against a query embedding.
// Similarity is clamped to [0,1].
type Scored struct {
	ID         string
	Source     string
	Page       int
	Seq        int
	Text       string
	Similarity float64
}

// Info describes a tenant for listing.
type Info struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats reports corpus size for one tenant.
type Stats struct {
	Segments int `json:"segments"`
	Sources  int `json:"sources"`
}

// Manager owns the registry of tenant namespaces. Segment text lives in
// SQLite, vectors in the vector store; both are keyed by the same record id.
type Manager struct {
	mu         sync.RWMutex
	handles    map[string]*Handle
	tenants    storage.TenantStore
	segments   storage.SegmentStore
	vectors    vectorstore.VectorStore
	vectorSize int
}

// NewManager creates a tenant manager.
// vectorSize is the deployment's fixed embedding dimensionality.
func NewManager(tenants storage.TenantStore, segments storage.SegmentStore, vectors vectorstore.VectorStore, vectorSize int) *Manager {
	return &Manager{
		handles:    make(map[string]*Handle),
		tenants:    tenants,
		segments:   segments,
		vectors:    vectors,
		vectorSize: vectorSize,
	}
}

// NormalizeName sanitizes a requested tenant name the way the API accepts
// it: trimmed, spaces collapsed to underscores.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// CreateOrSwitch returns a handle for the named tenant, creating its
// namespace on first use. Existing handles are reused so concurrent
// callers share one handle per tenant.
func (m *Manager) CreateOrSwitch(ctx context.Context, name string) (*Handle, error) {
	name = NormalizeName(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.handles[name]; ok {
		return h, nil
	}

	collection := collectionPrefix + name
	record, err := m.tenants.GetOrCreateByName(ctx, name, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant %s: %w", name, err)
	}

	if err := m.vectors.EnsureCollection(ctx, collection, m.vectorSize); err != nil {
		return nil, &StorageError{Tenant: name, Err: err}
	}

	h := &Handle{name: name, collection: collection, id: record.ID}
	m.handles[name] = h

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "tenant ready", "tenant", name, "collection", collection)
	return h, nil
}

// Resolve returns a handle for an existing tenant without creating one.
// Returns ErrTenantNotFound for unknown tenants.
func (m *Manager) Resolve(ctx context.Context, name string) (*Handle, error) {
	name = NormalizeName(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	h, ok := m.handles[name]
	m.mu.RUnlock()
	if ok {
		return h, nil
	}

	// Known in the database but not yet in this process's registry
	// (e.g. after a restart).
	record, err := m.tenants.GetByName(ctx, name)
	if err == storage.ErrNotFound {
		return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up tenant %s: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.handles[name]; ok {
		return h, nil
	}
	h = &Handle{name: name, collection: record.Collection, id: record.ID}
	m.handles[name] = h
	return h, nil
}

// List returns all known tenants ordered by name.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	records, err := m.tenants.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	infos := make([]Info, 0, len(records))
	for _, record := range records {
		infos = append(infos, Info{Name: record.Name, CreatedAt: record.CreatedAt})
	}
	return infos, nil
}

// Delete synchronously removes a tenant's namespace, its stored segments
// and its conversation log. A failed delete returns a StorageError and
// never reports success; the handle stays valid until removal succeeds.
func (m *Manager) Delete(ctx context.Context, name string) error {
	name = NormalizeName(name)
	if err := validateName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.tenants.GetByName(ctx, name)
	if err == storage.ErrNotFound {
		return fmt.Errorf("%w: %s", ErrTenantNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to look up tenant %s: %w", name, err)
	}

	// Vector namespace first: if this fails nothing has been removed and
	// the delete reports failure loudly.
	if err := m.vectors.DeleteCollection(ctx, record.Collection); err != nil {
		return &StorageError{Tenant: name, Err: err}
	}

	// Row delete cascades to segments and conversations.
	if err := m.tenants.Delete(ctx, name); err != nil {
		return &StorageError{Tenant: name, Err: fmt.Errorf("namespace removed but rows remain: %w", err)}
	}

	if h, ok := m.handles[name]; ok {
		h.revoked.Store(true)
		delete(m.handles, name)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "tenant deleted", "tenant", name)
	return nil
}

// Add stores embedded records in the tenant's namespace and returns the
// assigned ids in input order. Re-adding an identical segment produces a
// duplicate record; deduplication is the caller's concern.
func (m *Manager) Add(ctx context.Context, h *Handle, records []Record) ([]string, error) {
	if h.revoked.Load() {
		return nil, fmt.Errorf("%w: %s", ErrTenantDeleted, h.name)
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, len(records))
	rows := make([]*storage.SegmentRecord, len(records))
	points := make([]vectorstore.Point, len(records))

	for i, record := range records {
		if len(record.Vector) != m.vectorSize {
			return nil, fmt.Errorf("record %d has vector size %d, expected %d", i, len(record.Vector), m.vectorSize)
		}

		id := uuid.New().String()
		ids[i] = id
		rows[i] = &storage.SegmentRecord{
			ID:       id,
			TenantID: h.id,
			Source:   record.Source,
			Page:     record.Page,
			Seq:      record.Seq,
			Text:     record.Text,
		}
		points[i] = vectorstore.Point{
			ID:  id,
			Vec: record.Vector,
			Meta: map[string]any{
				"source": record.Source,
				"page":   record.Page,
				"seq":    record.Seq,
			},
		}
	}

	if err := m.segments.InsertBatch(ctx, rows); err != nil {
		return nil, &StorageError{Tenant: h.name, Err: err}
	}
	if err := m.vectors.Upsert(ctx, h.collection, points); err != nil {
		return nil, &StorageError{Tenant: h.name, Err: err}
	}

	return ids, nil
}

// Query runs a similarity search in the tenant's namespace and returns up
// to k records ranked by similarity.
func (m *Manager) Query(ctx context.Context, h *Handle, embedding []float32, k int) ([]Scored, error) {
	if h.revoked.Load() {
		return nil, fmt.Errorf("%w: %s", ErrTenantDeleted, h.name)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	logger := contextutil.LoggerFromContext(ctx)

	results, err := m.vectors.Search(ctx, h.collection, embedding, k)
	if err != nil {
		return nil, &StorageError{Tenant: h.name, Err: err}
	}

	scored := make([]Scored, 0, len(results))
	for _, result := range results {
		segment, err := m.segments.GetByID(ctx, result.PointID)
		if err == storage.ErrNotFound {
			logger.WarnContext(ctx, "vector point has no segment row", "tenant", h.name, "id", result.PointID)
			continue
		}
		if err != nil {
			return nil, &StorageError{Tenant: h.name, Err: err}
		}

		scored = append(scored, Scored{
			ID:         segment.ID,
			Source:     segment.Source,
			Page:       segment.Page,
			Seq:        segment.Seq,
			Text:       segment.Text,
			Similarity: clampUnit(float64(result.Score)),
		})
	}

	return scored, nil
}

// Stats returns the segment and source counts for a tenant.
func (m *Manager) Stats(ctx context.Context, h *Handle) (Stats, error) {
	if h.revoked.Load() {
		return Stats{}, fmt.Errorf("%w: %s", ErrTenantDeleted, h.name)
	}

	segments, sources, err := m.segments.CountByTenant(ctx, h.id)
	if err != nil {
		return Stats{}, &StorageError{Tenant: h.name, Err: err}
	}
	return Stats{Segments: segments, Sources: sources}, nil
}

// clampUnit clamps similarity scores into [0,1]. Cosine scores from the
// vector store may be negative for dissimilar vectors.
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
