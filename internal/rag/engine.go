package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"corpusqa/internal/contextutil"
	"corpusqa/internal/llm"
	"corpusqa/internal/query"
	"corpusqa/internal/storage"
	"corpusqa/internal/tenant"
)

// Engine answers questions against one tenant's corpus.
type Engine interface {
	// Ask retrieves relevant segments, generates an answer, and fuses
	// retrieval and model confidence into one score.
	Ask(ctx context.Context, req AskRequest) (AnswerResult, error)
}

// Embedder turns the question into a query vector.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from the question and retrieved context.
type Generator interface {
	Generate(ctx context.Context, question string, contextBlocks []string) (llm.GenerateResult, error)
}

// Store is the slice of the tenant manager the engine needs.
type Store interface {
	Resolve(ctx context.Context, name string) (*tenant.Handle, error)
	Searcher
}

type ragEngine struct {
	embedder      Embedder
	store         Store
	generator     Generator
	conversations storage.ConversationStore
}

// NewEngine creates the answering engine. conversations may be nil to
// disable the per-tenant exchange log.
func NewEngine(embedder Embedder, store Store, generator Generator, conversations storage.ConversationStore) Engine {
	return &ragEngine{
		embedder:      embedder,
		store:         store,
		generator:     generator,
		conversations: conversations,
	}
}

func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AnswerResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Question) == "" {
		return AnswerResult{}, fmt.Errorf("question is required")
	}

	h, err := e.store.Resolve(ctx, req.Tenant)
	if err != nil {
		return AnswerResult{}, err
	}

	k := req.K
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	intent, hints := query.Analyze(req.Question)
	logger.InfoContext(ctx, "query started",
		"tenant", h.Name(), "intent", intent.String(), "hints", hints, "k", k)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{req.Question})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return AnswerResult{}, fmt.Errorf("no embedding returned for question")
	}

	candidates, err := retrieve(ctx, e.store, h, embeddings[0], intent, k)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("retrieval failed: %w", err)
	}

	// An empty corpus or fully-filtered candidate set is a normal
	// outcome, not an error: answer that nothing was found, confidently.
	if len(candidates) == 0 {
		logger.InfoContext(ctx, "no candidates retrieved", "tenant", h.Name())
		result := AnswerResult{
			Answer:           noInformationAnswer,
			Confidence:       negativeAnswerFloor,
			ConfidenceLabel:  confidenceLabel(negativeAnswerFloor),
			Intent:           intent.String(),
			FoundInformation: false,
			Citations:        []Citation{},
		}
		e.logConversation(ctx, h, req.Question, result)
		return result, nil
	}

	contextBlocks := make([]string, len(candidates))
	for i, c := range candidates {
		contextBlocks[i] = fmt.Sprintf("[Source %d: %s, Page %d]\n%s", i+1, c.Source, c.Page, c.Text)
	}

	generated, err := e.generator.Generate(ctx, req.Question, contextBlocks)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("generation failed: %w", err)
	}

	retrieval := retrievalConfidence(candidates)
	confidence := fuseConfidence(retrieval, generated.SelfConfidence, generated.FoundInformation)

	result := AnswerResult{
		Answer:              generated.Answer,
		Confidence:          confidence,
		ConfidenceLabel:     confidenceLabel(confidence),
		RetrievalConfidence: retrieval,
		Intent:              intent.String(),
		FoundInformation:    generated.FoundInformation,
		Citations:           filterSources(candidates, generated.FoundInformation),
	}

	logger.InfoContext(ctx, "query completed",
		"tenant", h.Name(),
		"confidence", result.Confidence,
		"label", result.ConfidenceLabel,
		"citations", len(result.Citations),
		"found_information", result.FoundInformation,
	)

	e.logConversation(ctx, h, req.Question, result)
	return result, nil
}

// logConversation appends the exchange to the tenant's log. Logging is
// best-effort; a failed append never fails the request.
func (e *ragEngine) logConversation(ctx context.Context, h *tenant.Handle, question string, result AnswerResult) {
	if e.conversations == nil {
		return
	}

	citations, err := json.Marshal(result.Citations)
	if err != nil {
		citations = []byte("[]")
	}

	record := &storage.ConversationRecord{
		ID:         uuid.New().String(),
		TenantID:   h.ID(),
		Question:   question,
		Answer:     result.Answer,
		Confidence: result.Confidence,
		Citations:  string(citations),
	}
	if err := e.conversations.Append(ctx, record); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to log conversation",
			"tenant", h.Name(), "error", err)
	}
}
