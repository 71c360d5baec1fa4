package corpus

import (
	"fmt"
	"strings"

	"finance-chatbot-be/pkg/embedding"
	"finance-chatbot-be/pkg/store"
)

// Response is the tagged answer variant of a knowledge entry: either fixed
// text or a pure function of the applicant facts. Callers switch on the kind
// instead of type-asserting.
type Response struct {
	text string
	fn   func(store.ApplicantFacts) string
}

// Static returns a fixed-text response.
func Static(text string) Response {
	return Response{text: text}
}

// Computed returns a response materialized from applicant facts. The function
// must be total: zero-value facts produce a valid answer.
func Computed(fn func(store.ApplicantFacts) string) Response {
	return Response{fn: fn}
}

// IsComputed reports whether the response depends on applicant facts.
func (r Response) IsComputed() bool {
	return r.fn != nil
}

// Materialize resolves the response text for the given facts.
func (r Response) Materialize(facts store.ApplicantFacts) string {
	if r.fn != nil {
		return r.fn(facts)
	}
	return r.text
}

// Entry is one static question-category unit: trigger phrases plus a canned
// or computed answer. Entries are loaded once at startup and never mutated.
type Entry struct {
	Category string
	Triggers []string
	Response Response

	// Embedding of the joined triggers, populated by Init. Nil until then.
	Vector []float32
}

// TriggerText joins the trigger phrases for embedding, matching the document
// the entry vectors are built from.
func (e *Entry) TriggerText() string {
	return strings.Join(e.Triggers, " | ")
}

// Corpus is the immutable knowledge base plus its precomputed vectors.
type Corpus struct {
	entries []*Entry
}

// Load returns the built-in knowledge base. Triggers are validated up front
// so a malformed entry fails fast at startup instead of during a turn.
func Load() (*Corpus, error) {
	entries := knowledgeBase()
	for i, e := range entries {
		if len(e.Triggers) == 0 {
			return nil, fmt.Errorf("corpus entry %d (%s): no triggers", i, e.Category)
		}
	}
	return &Corpus{entries: entries}, nil
}

// Init embeds every entry's trigger text through the provider. Called once at
// startup; entries keep stable ordering so score ties resolve first-seen.
func (c *Corpus) Init(provider embedding.EmbeddingProvider) error {
	for _, e := range c.entries {
		res, err := provider.Generate(e.TriggerText(), "RETRIEVAL_DOCUMENT")
		if err != nil {
			return fmt.Errorf("embed corpus entry %q: %w", e.Category, err)
		}
		if len(res.Embedding.Values) == 0 {
			return fmt.Errorf("embed corpus entry %q: empty vector", e.Category)
		}
		e.Vector = res.Embedding.Values
	}
	return nil
}

// Entries returns the corpus in stable order.
func (c *Corpus) Entries() []*Entry {
	return c.entries
}

// Len returns the number of entries.
func (c *Corpus) Len() int {
	return len(c.entries)
}
