package ingest

import (
	"context"
	"errors"
	"fmt"

	"corpusqa/internal/contextutil"
	"corpusqa/internal/llm"
	"corpusqa/internal/tenant"
)

// BatchSize is the number of segments embedded and stored per attempt.
const BatchSize = 100

// Embedder turns segment texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Store persists embedded segments in a tenant's namespace.
type Store interface {
	Add(ctx context.Context, h *tenant.Handle, records []tenant.Record) ([]string, error)
}

// Pipeline ingests segments in fixed-size batches with retry. Each batch
// succeeds or fails independently; one bad batch never takes down its
// siblings.
type Pipeline struct {
	store    Store
	embedder Embedder
	sleeper  Sleeper
	counters counters
}

// NewPipeline creates an ingestion pipeline with real backoff sleeps.
func NewPipeline(store Store, embedder Embedder) *Pipeline {
	return &Pipeline{
		store:    store,
		embedder: embedder,
		sleeper:  realSleeper{},
	}
}

// Ingest embeds and stores segments in batches of BatchSize. Transient
// provider failures are retried up to maxAttempts times with exponential
// backoff; a batch that exhausts its attempts, or hits a permanent error,
// is counted as failed and the remaining batches still run. Re-submitting
// a segment stores it again; the pipeline does not deduplicate.
//
// A non-nil error is returned only when the whole run must stop: context
// cancellation or a deleted tenant. The partial Result is still returned.
func (p *Pipeline) Ingest(ctx context.Context, h *tenant.Handle, segments []Segment) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var result Result
	if len(segments) == 0 {
		return result, nil
	}

	batches := (len(segments) + BatchSize - 1) / BatchSize
	logger.InfoContext(ctx, "starting ingestion",
		"tenant", h.Name(), "segments", len(segments), "batches", batches)

	for start := 0; start < len(segments); start += BatchSize {
		end := start + BatchSize
		if end > len(segments) {
			end = len(segments)
		}
		batch := segments[start:end]

		if err := ctx.Err(); err != nil {
			return result, err
		}

		ids, err := p.ingestBatch(ctx, h, batch, start/BatchSize)
		if err != nil {
			result.Failed += len(batch)
			p.counters.record(len(batch), 0)

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			if errors.Is(err, tenant.ErrTenantDeleted) {
				return result, err
			}

			logger.ErrorContext(ctx, "batch failed",
				"tenant", h.Name(), "batch", start/BatchSize, "segments", len(batch), "error", err)
			continue
		}

		result.Stored += len(batch)
		result.IDs = append(result.IDs, ids...)
		p.counters.record(len(batch), len(batch))
	}

	logger.InfoContext(ctx, "ingestion completed",
		"tenant", h.Name(), "stored", result.Stored, "failed", result.Failed)
	return result, nil
}

// ingestBatch runs the embed-then-store attempt loop for one batch.
func (p *Pipeline) ingestBatch(ctx context.Context, h *tenant.Handle, batch []Segment, batchNum int) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	texts := make([]string, len(batch))
	for i, segment := range batch {
		texts[i] = segment.Text
	}

	state := statePending
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		state = stateAttempting

		ids, err := p.attemptBatch(ctx, h, batch, texts)
		if err == nil {
			state = stateSucceeded
			logger.DebugContext(ctx, "batch stored",
				"tenant", h.Name(), "batch", batchNum, "attempt", attempt, "state", state.String())
			return ids, nil
		}
		lastErr = err

		if !llm.IsTransient(err) {
			state = stateFailed
			return nil, fmt.Errorf("batch %d failed permanently on attempt %d: %w", batchNum, attempt, err)
		}
		if attempt == maxAttempts {
			break
		}

		state = stateRetryScheduled
		delay := backoffDelay(attempt)
		logger.WarnContext(ctx, "transient failure, retrying",
			"tenant", h.Name(), "batch", batchNum, "attempt", attempt, "delay", delay, "state", state.String(), "error", err)

		if err := p.sleeper.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	state = stateFailed
	return nil, fmt.Errorf("batch %d exhausted %d attempts (%s): %w", batchNum, maxAttempts, state.String(), lastErr)
}

func (p *Pipeline) attemptBatch(ctx context.Context, h *tenant.Handle, batch []Segment, texts []string) ([]string, error) {
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}

	records := make([]tenant.Record, len(batch))
	for i, segment := range batch {
		records[i] = tenant.Record{
			Source: segment.Source,
			Page:   segment.Page,
			Seq:    segment.Seq,
			Text:   segment.Text,
			Vector: vectors[i],
		}
	}

	ids, err := p.store.Add(ctx, h, records)
	if err != nil {
		return nil, fmt.Errorf("failed to store batch: %w", err)
	}
	return ids, nil
}
