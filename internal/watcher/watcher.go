package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"corpusqa/internal/chunker"
	"corpusqa/internal/contextutil"
	"corpusqa/internal/ingest"
	"corpusqa/internal/tenant"
)

// Ingestor is the slice of the ingestion pipeline the watcher needs.
type Ingestor interface {
	Ingest(ctx context.Context, h *tenant.Handle, segments []ingest.Segment) (ingest.Result, error)
}

// TenantResolver maps inbox directory names to tenant handles.
type TenantResolver interface {
	CreateOrSwitch(ctx context.Context, name string) (*tenant.Handle, error)
}

// Watcher ingests documents dropped into a per-tenant inbox. The inbox
// root contains one directory per tenant; a markdown or text file
// written into <root>/<tenant>/ is chunked and ingested into that
// tenant's corpus. Re-dropping a file ingests it again.
type Watcher struct {
	root     string
	tenants  TenantResolver
	pipeline Ingestor
	chunker  *chunker.Chunker
	fsw      *fsnotify.Watcher
	exts     map[string]struct{}
}

// New creates an inbox watcher rooted at dir, watching existing tenant
// subdirectories and picking up new ones as they appear.
func New(dir string, tenants TenantResolver, pipeline Ingestor) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:     dir,
		tenants:  tenants,
		pipeline: pipeline,
		chunker:  chunker.New(),
		fsw:      fsw,
		exts:     map[string]struct{}{".md": {}, ".markdown": {}, ".txt": {}},
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch inbox root: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to scan inbox root: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := fsw.Add(filepath.Join(dir, entry.Name())); err != nil {
				fsw.Close()
				return nil, fmt.Errorf("failed to watch tenant inbox %s: %w", entry.Name(), err)
			}
		}
	}

	return w, nil
}

// Run processes inbox events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "inbox watcher started", "root", w.root)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "inbox watch error", "error", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	logger := contextutil.LoggerFromContext(ctx)

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")

	// A new directory directly under the root is a new tenant inbox.
	if len(parts) == 1 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				logger.WarnContext(ctx, "failed to watch new tenant inbox", "path", event.Name, "error", err)
			}
		}
		return
	}

	if len(parts) != 2 || !w.watchable(parts[1]) {
		return
	}

	tenantName, filename := parts[0], parts[1]
	if err := w.ingestFile(ctx, tenantName, event.Name, filename); err != nil {
		logger.ErrorContext(ctx, "inbox ingestion failed",
			"tenant", tenantName, "file", filename, "error", err)
	}
}

func (w *Watcher) watchable(filename string) bool {
	if strings.HasPrefix(filename, ".") || strings.HasSuffix(filename, "~") {
		return false
	}
	_, ok := w.exts[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func (w *Watcher) ingestFile(ctx context.Context, tenantName, path, filename string) error {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	segments := w.chunker.Chunk(content, filename)
	if len(segments) == 0 {
		logger.DebugContext(ctx, "no segments in dropped file", "tenant", tenantName, "file", filename)
		return nil
	}

	h, err := w.tenants.CreateOrSwitch(ctx, tenantName)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %s: %w", tenantName, err)
	}

	result, err := w.pipeline.Ingest(ctx, h, segments)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "inbox document ingested",
		"tenant", tenantName, "file", filename, "stored", result.Stored, "failed", result.Failed)
	return nil
}
