package embedding

import (
	"net/http"
	"time"
)

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations must return an error on empty vectors; callers rely on
// that to fall back to lexical matching instead of ranking on garbage.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// requestTimeout bounds every outbound embedding call so a slow upstream
// cannot stall a chat turn indefinitely.
const requestTimeout = 15 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
