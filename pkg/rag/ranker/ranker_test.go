package ranker

import (
	"context"
	"errors"
	"testing"

	"finance-chatbot-be/pkg/corpus"
	"finance-chatbot-be/pkg/embedding"
	"finance-chatbot-be/pkg/store"
)

// fakeEmbedder returns a fixed vector for every query, or an error.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

// loadCorpus builds the knowledge base with orthogonal unit vectors so one
// entry can be made the exact semantic match of a query.
func loadCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	kb, err := corpus.Load()
	if err != nil {
		t.Fatalf("corpus.Load: %v", err)
	}
	dim := kb.Len()
	for i, e := range kb.Entries() {
		vec := make([]float32, dim)
		vec[i] = 1
		e.Vector = vec
	}
	return kb
}

// basisVector points exactly at the entry with the given category.
func basisVector(t *testing.T, kb *corpus.Corpus, category string) []float32 {
	t.Helper()
	for i, e := range kb.Entries() {
		if e.Category == category {
			vec := make([]float32, kb.Len())
			vec[i] = 1
			return vec
		}
	}
	t.Fatalf("no corpus entry with category %q", category)
	return nil
}

// plainConfig keeps only the weights under test so scores stay exact.
func plainConfig() Config {
	cfg := DefaultConfig()
	cfg.LexicalBoost = 0
	return cfg
}

func TestBestMatchThresholdIsInclusive(t *testing.T) {
	kb := loadCorpus(t)
	embedder := &fakeEmbedder{vector: basisVector(t, kb, "working_hours")}
	r := New(kb, embedder, plainConfig())

	// Perfect semantic match scores exactly 1.0 with no facts set.
	match, degraded := r.BestMatch(context.Background(), "zzz", store.Facts{}, 1.0)
	if degraded {
		t.Fatal("unexpected degraded ranking")
	}
	if match == nil {
		t.Fatal("score equal to threshold must match")
	}
	if match.Entry.Category != "working_hours" {
		t.Errorf("matched %q, want working_hours", match.Entry.Category)
	}

	match, _ = r.BestMatch(context.Background(), "zzz", store.Facts{}, 1.0001)
	if match != nil {
		t.Error("score below threshold must not match")
	}
}

func TestRankTieBreakKeepsCorpusOrder(t *testing.T) {
	kb := loadCorpus(t)
	// Zero vector: every entry scores identically.
	embedder := &fakeEmbedder{vector: make([]float32, kb.Len())}
	r := New(kb, embedder, plainConfig())

	ranked, _ := r.Rank(context.Background(), "zzz", store.Facts{})
	if len(ranked) != kb.Len() {
		t.Fatalf("ranked %d entries, want %d", len(ranked), kb.Len())
	}
	for i, s := range ranked {
		if s.Entry != kb.Entries()[i] {
			t.Fatalf("tie at position %d broke corpus order", i)
		}
	}
}

func TestNationalityPenaltyOutweighsBoost(t *testing.T) {
	cfg := plainConfig()
	if cfg.NationalityPenalty <= cfg.NationalityBoost {
		t.Fatal("penalty must exceed boost")
	}

	kb := loadCorpus(t)
	embedder := &fakeEmbedder{vector: make([]float32, kb.Len())}
	r := New(kb, embedder, cfg)

	ranked, _ := r.Rank(context.Background(), "zzz", store.Facts{Nationality: store.NationalityExpat})

	scores := map[string]float64{}
	for _, s := range ranked {
		scores[s.Entry.Category] = s.Score
	}
	qatariOnly, ok := scores["housing_finance_qatari"]
	if !ok {
		t.Fatal("missing housing_finance_qatari entry")
	}
	generic := scores["working_hours"]
	if qatariOnly >= generic {
		t.Errorf("wrong-audience entry (%v) must rank below generic (%v)", qatariOnly, generic)
	}
	if got, want := generic-qatariOnly, cfg.NationalityPenalty; got != want {
		t.Errorf("penalty gap = %v, want %v", got, want)
	}
}

func TestContextBoostsLiftMatchingEntries(t *testing.T) {
	cfg := plainConfig()
	kb := loadCorpus(t)
	embedder := &fakeEmbedder{vector: make([]float32, kb.Len())}
	r := New(kb, embedder, cfg)

	facts := store.Facts{
		Product:    store.ProductCorporate,
		SubProduct: store.SubProductCommodities,
	}
	ranked, _ := r.Rank(context.Background(), "zzz", facts)

	if got := ranked[0].Entry.Category; got != "corporate_commodities_finance" {
		t.Fatalf("top entry = %q, want corporate_commodities_finance", got)
	}
	// Product boost plus sub-product boost on a zero base.
	want := cfg.ProductBoost + cfg.SubProductBoost
	if ranked[0].Score != want {
		t.Errorf("top score = %v, want %v", ranked[0].Score, want)
	}
}

func TestRankDegradesToLexicalOnEmbedderFailure(t *testing.T) {
	kb := loadCorpus(t)
	embedder := &fakeEmbedder{err: errors.New("upstream down")}
	r := New(kb, embedder, plainConfig())

	ranked, degraded := r.Rank(context.Background(), "working hours", store.Facts{})
	if !degraded {
		t.Fatal("expected degraded ranking when the embedder fails")
	}
	if len(ranked) == 0 {
		t.Fatal("degraded ranking must still score entries")
	}
	if ranked[0].Entry.Category != "working_hours" {
		t.Errorf("lexical top entry = %q, want working_hours", ranked[0].Entry.Category)
	}
}

func TestTopKRespectsThresholdAndLimit(t *testing.T) {
	kb := loadCorpus(t)
	embedder := &fakeEmbedder{vector: basisVector(t, kb, "contact")}
	r := New(kb, embedder, plainConfig())

	top, _ := r.TopK(context.Background(), "zzz", store.Facts{}, 3, 0.70)
	if len(top) != 1 {
		t.Fatalf("TopK returned %d entries, want 1 above threshold", len(top))
	}
	if top[0].Entry.Category != "contact" {
		t.Errorf("TopK[0] = %q, want contact", top[0].Entry.Category)
	}
}
