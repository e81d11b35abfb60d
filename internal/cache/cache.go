package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/reglens/reglens/internal/model"
)

// Cache defines the interface for response caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the deterministic cache key for a model query. Identical
// (kind, document, query, model parameters) always map to the same key,
// which is what makes re-runs and threshold changes free on a warm cache.
func Key(kind model.AnalysisKind, documentID, queryText string, mc model.ModelConfig) string {
	payload := fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%.3f\x00%d\x00%d",
		kind, documentID, queryText, mc.Name, mc.Temperature, mc.Seed, mc.MaxTokens)
	hash := sha256.Sum256([]byte(payload))
	return "reglens:v1:" + hex.EncodeToString(hash[:])
}
