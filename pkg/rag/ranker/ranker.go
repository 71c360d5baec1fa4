package ranker

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"finance-chatbot-be/pkg/corpus"
	"finance-chatbot-be/pkg/embedding"
	"finance-chatbot-be/pkg/store"
)

// Config tunes the contextual scoring. All weights are additive on top of the
// base similarity; the nationality penalty is deliberately larger than the
// boost so a wrong-audience entry loses to a neutral one.
type Config struct {
	TopicBoost         float64
	ProductBoost       float64
	SubProductBoost    float64
	NationalityBoost   float64
	NationalityPenalty float64
	CombinedBonus      float64
	LexicalBoost       float64

	AutoAnswerThreshold float64
	ContextThreshold    float64
	TopK                int
}

func DefaultConfig() Config {
	return Config{
		TopicBoost:          0.10,
		ProductBoost:        0.15,
		SubProductBoost:     0.20,
		NationalityBoost:    0.05,
		NationalityPenalty:  0.12,
		CombinedBonus:       0.05,
		LexicalBoost:        0.08,
		AutoAnswerThreshold: 0.85,
		ContextThreshold:    0.70,
		TopK:                3,
	}
}

// Scored pairs a corpus entry with its final contextual score.
type Scored struct {
	Entry *corpus.Entry
	Score float64
}

// Ranker scores corpus entries against a user turn: semantic similarity from
// the embedding provider, blended with session-context boosts and a lexical
// signal. When the embedder fails the ranker degrades to lexical-only scoring
// instead of erroring out.
type Ranker struct {
	corpus   *corpus.Corpus
	embedder embedding.EmbeddingProvider
	cfg      Config
}

func New(c *corpus.Corpus, embedder embedding.EmbeddingProvider, cfg Config) *Ranker {
	return &Ranker{corpus: c, embedder: embedder, cfg: cfg}
}

// Rank scores every corpus entry for the turn, highest first. Ties keep
// corpus order (first seen wins). The returned degraded flag is true when the
// embedding provider failed and scores came from the lexical signal alone.
func (r *Ranker) Rank(ctx context.Context, text string, facts store.Facts) ([]Scored, bool) {
	query := strings.ToLower(strings.TrimSpace(text))
	entries := r.corpus.Entries()

	queryVec, degraded := r.embedQuery(ctx, query)

	scored := make([]Scored, 0, len(entries))
	for _, e := range entries {
		var base float64
		if !degraded {
			base = cosineSimilarity(queryVec, e.Vector)
		} else {
			base = lexicalBase(query, e.Triggers)
		}
		score := base + r.contextAdjustment(e, facts)
		if !degraded && lexicalHit(query, e.Triggers) {
			score += r.cfg.LexicalBoost
		}
		scored = append(scored, Scored{Entry: e, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, degraded
}

// BestMatch returns the top entry when its score meets the threshold
// (inclusive), else nil.
func (r *Ranker) BestMatch(ctx context.Context, text string, facts store.Facts, threshold float64) (*Scored, bool) {
	ranked, degraded := r.Rank(ctx, text, facts)
	if len(ranked) == 0 || ranked[0].Score < threshold {
		return nil, degraded
	}
	top := ranked[0]
	return &top, degraded
}

// TopK returns up to k entries scoring at or above the threshold, best first.
func (r *Ranker) TopK(ctx context.Context, text string, facts store.Facts, k int, threshold float64) ([]Scored, bool) {
	ranked, degraded := r.Rank(ctx, text, facts)
	out := make([]Scored, 0, k)
	for _, s := range ranked {
		if len(out) == k {
			break
		}
		if s.Score < threshold {
			break
		}
		out = append(out, s)
	}
	return out, degraded
}

func (r *Ranker) embedQuery(ctx context.Context, query string) ([]float32, bool) {
	if r.embedder == nil {
		return nil, true
	}
	res, err := r.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil || len(res.Embedding.Values) == 0 {
		return nil, true
	}
	return res.Embedding.Values, false
}

// subProductCategory maps a corporate sub-product to its corpus category.
var subProductCategory = map[string]string{
	store.SubProductCommodities:     "corporate_commodities_finance",
	store.SubProductGoods:           "corporate_goods_finance",
	store.SubProductFleetEquipment:  "corporate_vehicle_equipment_finance",
	store.SubProductRevolvingCredit: "corporate_revolving_credit",
}

// contextAdjustment computes the additive session-context delta for an entry.
func (r *Ranker) contextAdjustment(e *corpus.Entry, facts store.Facts) float64 {
	var delta float64
	productMatched := false
	nationalityMatched := false

	if facts.Topic != "" && e.Category == facts.Topic {
		delta += r.cfg.TopicBoost
	}
	if facts.Product != "" && strings.Contains(e.Category, facts.Product) {
		delta += r.cfg.ProductBoost
		productMatched = true
	}
	if facts.SubProduct != "" && subProductCategory[facts.SubProduct] == e.Category {
		delta += r.cfg.SubProductBoost
	}

	// Audience-specific entries carry a nationality suffix. A matching
	// audience earns a small boost; a mismatched one is penalized harder,
	// so the generic entry outranks the wrong-audience one.
	if audience := entryAudience(e.Category); audience != "" && facts.Nationality != "" {
		if audience == facts.Nationality {
			delta += r.cfg.NationalityBoost
			nationalityMatched = true
		} else {
			delta -= r.cfg.NationalityPenalty
		}
	}

	if productMatched && nationalityMatched {
		delta += r.cfg.CombinedBonus
	}
	return delta
}

func entryAudience(category string) string {
	switch {
	case strings.HasSuffix(category, "_qatari"):
		return store.NationalityQatari
	case strings.HasSuffix(category, "_expat"):
		return store.NationalityExpat
	}
	return ""
}

// lexicalHit reports whether the query fuzzily matches any trigger phrase.
func lexicalHit(query string, triggers []string) bool {
	return len(fuzzy.Find(query, triggers)) > 0
}

// lexicalBase turns the best fuzzy match score into a [0,1] similarity for
// degraded (embedder-down) ranking. The normalization is monotonic in the raw
// score, which is all ordering needs.
func lexicalBase(query string, triggers []string) float64 {
	matches := fuzzy.Find(query, triggers)
	if len(matches) == 0 {
		return 0
	}
	best := float64(matches[0].Score)
	if best <= 0 {
		return 0
	}
	return best / (best + 50)
}

// cosineSimilarity is the standard normalized dot product. Mismatched or
// empty vectors score zero rather than erroring.
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
