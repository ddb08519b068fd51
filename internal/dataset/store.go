package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"cosmetics-dashboard/internal/models"
)

// TableCache is the injectable backing store for parsed tables.
type TableCache interface {
	Get(key string) (*models.SalesTable, bool)
	Set(key string, table *models.SalesTable)
	Size() int
}

// Store is a content-addressed front for Normalize: tables are keyed by the
// SHA-256 of the raw upload, so identical bytes always resolve to the same
// parsed table. Normalize is deterministic, which is what makes this sound.
type Store struct {
	cache  TableCache
	logger *slog.Logger
}

func NewStore(cache TableCache, logger *slog.Logger) *Store {
	return &Store{cache: cache, logger: logger}
}

// Fingerprint returns the content address of a raw upload.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Load returns the canonical table for raw, normalizing on a cache miss.
// Normalization errors are returned as-is and nothing is cached for them.
func (s *Store) Load(raw []byte) (*models.SalesTable, string, error) {
	key := Fingerprint(raw)
	if table, ok := s.cache.Get(key); ok {
		s.logger.Debug("table cache hit", "fingerprint", key[:12], "records", table.Len())
		return table, key, nil
	}

	table, err := Normalize(raw)
	if err != nil {
		return nil, "", err
	}
	s.cache.Set(key, table)
	s.logger.Debug("table normalized and cached", "fingerprint", key[:12], "records", table.Len())
	return table, key, nil
}

// CachedTables reports the number of parsed tables currently held.
func (s *Store) CachedTables() int {
	return s.cache.Size()
}
