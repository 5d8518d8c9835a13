// Package ledger suppresses re-posting of duplicate or near-duplicate
// content across runs. The history of published post texts is persisted
// as a single JSON array in the configured object store.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"positivebot/internal/cache"
	"positivebot/internal/storage"
)

// Embedder produces one sentence-embedding vector per input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Ledger struct {
	store     storage.Store
	key       string
	embedder  Embedder
	threshold float64
	vectors   *cache.VectorCache

	entries []string
	loaded  bool
}

func New(store storage.Store, key string, embedder Embedder, threshold float64) *Ledger {
	return &Ledger{
		store:     store,
		key:       key,
		embedder:  embedder,
		threshold: threshold,
		vectors:   cache.New(1 * time.Hour),
	}
}

// Load fetches the persisted history. Fails soft: a missing, unreachable
// or malformed object yields an empty history — unknown history means "no
// duplicates known", blocking the pipeline would be worse.
func (l *Ledger) Load(ctx context.Context) []string {
	l.loaded = true
	l.entries = nil

	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Info("ledger object not found, starting with empty history", "key", l.key)
		} else {
			slog.Error("failed to load ledger, treating as empty", "key", l.key, "error", err)
		}
		return nil
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("ledger object is not a valid JSON array, treating as empty", "key", l.key, "error", err)
		return nil
	}

	l.entries = entries
	slog.Info("ledger loaded", "entries", len(entries))
	return entries
}

// IsDuplicate reports whether text was already posted, by exact match
// first and then by cosine similarity of sentence embeddings against every
// ledger entry. Embedding or transport failures are logged and count as
// "not a duplicate": an occasional repeat beats never posting again.
func (l *Ledger) IsDuplicate(ctx context.Context, text string) bool {
	if !l.loaded {
		l.Load(ctx)
	}

	for _, entry := range l.entries {
		if entry == text {
			slog.Info("candidate is an exact duplicate")
			return true
		}
	}

	if len(l.entries) == 0 || l.embedder == nil {
		return false
	}

	candidate, entryVectors, err := l.embedAll(ctx, text)
	if err != nil {
		slog.Warn("embedding failed, skipping semantic duplicate check", "error", err)
		return false
	}

	for i, v := range entryVectors {
		if sim := cosineSimilarity(candidate, v); sim > l.threshold {
			slog.Info("candidate is a semantic duplicate", "similarity", sim, "entry", l.entries[i])
			return true
		}
	}
	return false
}

// Save appends text to the in-memory history and persists the full array,
// overwriting the prior object. Concurrent runs would race here; the
// deployment schedules at most one run at a time.
func (l *Ledger) Save(ctx context.Context, text string) error {
	if !l.loaded {
		l.Load(ctx)
	}
	l.entries = append(l.entries, text)

	data, err := json.Marshal(l.entries)
	if err != nil {
		return err
	}
	return l.store.Put(ctx, l.key, data)
}

// embedAll returns the candidate vector and one vector per ledger entry,
// embedding only what the per-run cache does not already hold.
func (l *Ledger) embedAll(ctx context.Context, text string) ([]float32, [][]float32, error) {
	missing := []string{text}
	for _, entry := range l.entries {
		if _, ok := l.vectors.Get(cache.Key(entry)); !ok {
			missing = append(missing, entry)
		}
	}

	vectors, err := l.embedder.Embed(ctx, missing)
	if err != nil {
		return nil, nil, err
	}
	for i, t := range missing {
		l.vectors.Set(cache.Key(t), vectors[i])
	}

	candidate := vectors[0]
	entryVectors := make([][]float32, len(l.entries))
	for i, entry := range l.entries {
		v, _ := l.vectors.Get(cache.Key(entry))
		entryVectors[i] = v
	}
	return candidate, entryVectors, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
