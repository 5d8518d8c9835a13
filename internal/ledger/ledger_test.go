package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"positivebot/internal/storage"
)

type fakeStore struct {
	objects map[string][]byte
	getErr  error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (s *fakeStore) Put(_ context.Context, key string, data []byte) error {
	s.puts++
	s.objects[key] = data
	return nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := e.vectors[t]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func seedLedger(t *testing.T, store *fakeStore, key string, entries []string) {
	t.Helper()
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	store.objects[key] = data
}

func TestIsDuplicate_ExactMatchIgnoresEmbedder(t *testing.T) {
	store := newFakeStore()
	seedLedger(t, store, "ledger.json", []string{"Foo bar"})

	// An embedder that always fails must not affect the exact-match path.
	l := New(store, "ledger.json", &fakeEmbedder{err: fmt.Errorf("embedding service down")}, 0.9)

	if !l.IsDuplicate(context.Background(), "Foo bar") {
		t.Error("exact match must be detected even when embedding is unavailable")
	}
}

func TestIsDuplicate_SemanticMatch(t *testing.T) {
	store := newFakeStore()
	seedLedger(t, store, "ledger.json", []string{"India launches new solar park"})

	emb := &fakeEmbedder{vectors: map[string][]float32{
		"India launches new solar park":  {1, 0, 0},
		"New solar park opened in India": {0.99, 0.1, 0},
		"Completely unrelated text":      {0, 1, 0},
	}}
	l := New(store, "ledger.json", emb, 0.9)

	if !l.IsDuplicate(context.Background(), "New solar park opened in India") {
		t.Error("near-identical vector should be flagged as duplicate")
	}
	if l.IsDuplicate(context.Background(), "Completely unrelated text") {
		t.Error("orthogonal vector should not be flagged as duplicate")
	}
}

func TestIsDuplicate_EmbeddingFailureDegradesToNotDuplicate(t *testing.T) {
	store := newFakeStore()
	seedLedger(t, store, "ledger.json", []string{"Some earlier post"})

	l := New(store, "ledger.json", &fakeEmbedder{err: fmt.Errorf("timeout")}, 0.9)

	if l.IsDuplicate(context.Background(), "A fresh new post") {
		t.Error("embedding failure must degrade to 'not a duplicate'")
	}
}

func TestLoad_MissingObjectMeansEmptyHistory(t *testing.T) {
	l := New(newFakeStore(), "ledger.json", nil, 0.9)

	entries := l.Load(context.Background())
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %v", entries)
	}
	if l.IsDuplicate(context.Background(), "anything") {
		t.Error("empty history must report no duplicates")
	}
}

func TestLoad_MalformedJSONMeansEmptyHistory(t *testing.T) {
	store := newFakeStore()
	store.objects["ledger.json"] = []byte("{not json")

	l := New(store, "ledger.json", nil, 0.9)
	if entries := l.Load(context.Background()); len(entries) != 0 {
		t.Errorf("malformed object must load as empty, got %v", entries)
	}
}

func TestLoad_StoreErrorMeansEmptyHistory(t *testing.T) {
	store := newFakeStore()
	store.getErr = fmt.Errorf("connection refused")

	l := New(store, "ledger.json", nil, 0.9)
	if entries := l.Load(context.Background()); len(entries) != 0 {
		t.Errorf("unreachable store must load as empty, got %v", entries)
	}
}

func TestSave_AppendsAndPersistsFullArray(t *testing.T) {
	store := newFakeStore()
	seedLedger(t, store, "ledger.json", []string{"first post"})

	l := New(store, "ledger.json", nil, 0.9)
	if err := l.Save(context.Background(), "second post"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var persisted []string
	if err := json.Unmarshal(store.objects["ledger.json"], &persisted); err != nil {
		t.Fatalf("persisted object is not a JSON array: %v", err)
	}
	want := []string{"first post", "second post"}
	if len(persisted) != len(want) {
		t.Fatalf("persisted %v, want %v", persisted, want)
	}
	for i := range want {
		if persisted[i] != want[i] {
			t.Errorf("entry %d: got %q want %q", i, persisted[i], want[i])
		}
	}

	if !l.IsDuplicate(context.Background(), "second post") {
		t.Error("saved entry must be reported as duplicate")
	}
}

func TestEmbedAll_CachesLedgerVectors(t *testing.T) {
	store := newFakeStore()
	seedLedger(t, store, "ledger.json", []string{"entry one", "entry two"})

	emb := &fakeEmbedder{vectors: map[string][]float32{
		"entry one": {1, 0, 0},
		"entry two": {0, 1, 0},
		"candidate": {0, 0, 1},
	}}
	l := New(store, "ledger.json", emb, 0.9)

	l.IsDuplicate(context.Background(), "candidate")
	l.IsDuplicate(context.Background(), "candidate")

	// Both checks embed the candidate, but the ledger entries only once.
	if emb.calls != 2 {
		t.Errorf("expected 2 embed calls, got %d", emb.calls)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors: got %f, want ~1", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: got %f, want 0", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("mismatched dimensions: got %f, want 0", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors: got %f, want 0", got)
	}
}
