// Package rag provides retrieval over the per-student chunk store,
// combining chromem-go vector search with BM25 keyword search.
package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/storage"
)

const (
	// ChunkCollectionName is the name of the chunk collection in chromem.
	ChunkCollectionName = "lecture_chunks"

	// DefaultSearchResults is the number of chunks fed into the prompt context.
	DefaultSearchResults = 5

	// MinSimilarityThreshold is the minimum cosine similarity to include
	// a result. An empty result set is a valid outcome.
	MinSimilarityThreshold float32 = 0.4

	// insertBatchSize bounds how many documents go into one AddDocuments call.
	insertBatchSize = 100

	// embedConcurrency is the number of parallel embedding calls per batch.
	embedConcurrency = 4

	deleteMaxRetries = 3
	deleteRetryDelay = 500 * time.Millisecond
)

// OwnerKey derives the stable per-student namespace key.
func OwnerKey(studentID string) uuid.UUID {
	return chunk.OwnerKey(studentID)
}

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk      chunk.Chunk
	Similarity float32
}

// VectorStore persists chunk embeddings in chromem-go, with a sqlite
// registry alongside for exact per-owner counts and id listings.
type VectorStore struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embeddingFunc chromem.EmbeddingFunc
	registry      *storage.DB
	logger        *logger.Logger
	mu            sync.RWMutex
}

// NewVectorStore opens (or creates) the persistent chunk collection.
// persistDir is the base data directory.
func NewVectorStore(persistDir string, embeddingFunc chromem.EmbeddingFunc, registry *storage.DB, log *logger.Logger) (*VectorStore, error) {
	chromemPath := filepath.Join(persistDir, "chromem", "chunks")

	db, err := chromem.NewPersistentDB(chromemPath, false)
	if err != nil {
		return nil, fmt.Errorf("create chromem database: %w", err)
	}

	collection, err := db.GetOrCreateCollection(ChunkCollectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("get/create collection: %w", err)
	}

	return &VectorStore{
		db:            db,
		collection:    collection,
		embeddingFunc: embeddingFunc,
		registry:      registry,
		logger:        log.WithModule("rag"),
	}, nil
}

// DB exposes the underlying chromem database so sibling collections
// (course names) can share one store.
func (v *VectorStore) DB() *chromem.DB {
	if v == nil {
		return nil
	}
	return v.db
}

// ReplaceAll swaps out every chunk the owner has: old chunks are
// deleted first, then the new set is embedded and inserted in batches.
// A chunk whose embedding fails is skipped; a batch whose insert fails
// is skipped. Returns the number of chunks actually stored.
func (v *VectorStore) ReplaceAll(ctx context.Context, owner uuid.UUID, chunks []chunk.Chunk) (int, error) {
	if v == nil || v.collection == nil {
		return 0, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.deleteOwnerLocked(ctx, owner); err != nil {
		return 0, fmt.Errorf("delete existing chunks: %w", err)
	}
	// The registry mirrors the collection, so the owner's rows go with
	// their documents. SaveChunksBatch alone would leave stale ids
	// behind and inflate Count.
	if _, err := v.registry.DeleteChunksByOwner(ctx, owner.String()); err != nil {
		return 0, fmt.Errorf("delete chunk registry rows: %w", err)
	}

	stored := 0
	var records []storage.ChunkRecord

	for start := 0; start < len(chunks); start += insertBatchSize {
		end := min(start+insertBatchSize, len(chunks))
		batch := chunks[start:end]

		docs, kept := v.embedBatch(ctx, owner, batch)
		if len(docs) == 0 {
			continue
		}

		if err := v.collection.AddDocuments(ctx, docs, embedConcurrency); err != nil {
			v.logger.WithError(err).WithFields(map[string]any{
				"owner": owner.String(),
				"batch": start / insertBatchSize,
				"size":  len(docs),
			}).Warn("Batch insert failed, skipping batch")
			continue
		}

		stored += len(docs)
		for _, c := range kept {
			records = append(records, storage.ChunkRecord{
				ID:        c.ID,
				Owner:     owner.String(),
				Course:    c.Course,
				ChunkType: string(c.Type),
			})
		}
	}

	if err := v.registry.SaveChunksBatch(ctx, records); err != nil {
		v.logger.WithError(err).Warn("Chunk registry update failed")
	}

	v.logger.WithFields(map[string]any{
		"owner":   owner.String(),
		"chunks":  len(chunks),
		"stored":  stored,
		"skipped": len(chunks) - stored,
	}).Info("Replaced owner chunks")

	return stored, nil
}

// embedBatch embeds each chunk eagerly so a single failure drops only
// that chunk rather than the whole AddDocuments call.
func (v *VectorStore) embedBatch(ctx context.Context, owner uuid.UUID, batch []chunk.Chunk) ([]chromem.Document, []chunk.Chunk) {
	docs := make([]chromem.Document, 0, len(batch))
	kept := make([]chunk.Chunk, 0, len(batch))
	for _, c := range batch {
		embedding, err := v.embeddingFunc(ctx, c.EmbeddingText())
		if err != nil {
			v.logger.WithError(err).WithFields(map[string]any{
				"chunk_id": c.ID,
				"course":   c.Course,
			}).Warn("Embedding failed, skipping chunk")
			continue
		}
		docs = append(docs, chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Embedding: embedding,
			Metadata:  documentMetadata(owner, c),
		})
		kept = append(kept, c)
	}
	return docs, kept
}

func documentMetadata(owner uuid.UUID, c chunk.Chunk) map[string]string {
	md := map[string]string{
		"owner":      owner.String(),
		"course":     c.Course,
		"week":       c.Week,
		"chunk_type": string(c.Type),
	}
	if c.Value != "" {
		md["value"] = c.Value
	}
	for k, val := range c.Metadata {
		if _, reserved := md[k]; !reserved {
			md[k] = val
		}
	}
	return md
}

// Search returns the owner's chunks most similar to the query, capped
// at limit and filtered by the similarity threshold.
func (v *VectorStore) Search(ctx context.Context, query string, owner uuid.UUID, limit int) ([]ScoredChunk, error) {
	if v == nil || v.collection == nil || query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchResults
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	// chromem rejects nResults above the document count, so clamp to
	// both the owner's registry count and the collection size.
	ownerCount, err := v.registry.CountChunksByOwner(ctx, owner.String())
	if err != nil {
		ownerCount = v.collection.Count()
	}
	nResults := min(limit, ownerCount, v.collection.Count())
	if nResults <= 0 {
		return nil, nil
	}

	results, err := v.collection.Query(ctx, query, nResults, map[string]string{"owner": owner.String()}, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		if r.Similarity < MinSimilarityThreshold {
			continue
		}
		scored = append(scored, ScoredChunk{
			Chunk:      chunkFromDocument(r.ID, r.Content, r.Metadata),
			Similarity: r.Similarity,
		})
	}
	return scored, nil
}

func chunkFromDocument(id, content string, metadata map[string]string) chunk.Chunk {
	c := chunk.Chunk{
		ID:       id,
		Course:   metadata["course"],
		Week:     metadata["week"],
		Type:     chunk.Type(metadata["chunk_type"]),
		Content:  content,
		Value:    metadata["value"],
		Metadata: make(map[string]string),
	}
	for k, val := range metadata {
		switch k {
		case "owner", "course", "week", "chunk_type", "value":
		default:
			c.Metadata[k] = val
		}
	}
	return c
}

// Count returns the exact number of chunks stored for the owner.
func (v *VectorStore) Count(ctx context.Context, owner uuid.UUID) (int, error) {
	if v == nil {
		return 0, nil
	}
	return v.registry.CountChunksByOwner(ctx, owner.String())
}

// DeleteAll removes every chunk the owner has. Returns the number of
// registry rows removed.
func (v *VectorStore) DeleteAll(ctx context.Context, owner uuid.UUID) (int64, error) {
	if v == nil || v.collection == nil {
		return 0, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.deleteOwnerLocked(ctx, owner); err != nil {
		return 0, err
	}
	return v.registry.DeleteChunksByOwner(ctx, owner.String())
}

// deleteOwnerLocked deletes the owner's documents with fixed-backoff
// retries. Assumes the write lock is held.
func (v *VectorStore) deleteOwnerLocked(ctx context.Context, owner uuid.UUID) error {
	var lastErr error
	for attempt := 0; attempt < deleteMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(deleteRetryDelay):
			}
		}

		lastErr = v.collection.Delete(ctx, map[string]string{"owner": owner.String()}, nil)
		if lastErr == nil {
			return nil
		}
		v.logger.WithError(lastErr).WithFields(map[string]any{
			"owner":   owner.String(),
			"attempt": attempt + 1,
		}).Warn("Owner delete failed")
	}
	return lastErr
}

// TotalCount returns the number of documents across all owners.
func (v *VectorStore) TotalCount() int {
	if v == nil || v.collection == nil {
		return 0
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.collection.Count()
}
