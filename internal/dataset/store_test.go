package dataset

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"cosmetics-dashboard/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreLoadCachesByContent(t *testing.T) {
	store := NewStore(NewTableLRU(4, time.Hour), discardLogger())
	raw := []byte(sampleCSV)

	first, key1, err := store.Load(raw)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, key2, err := store.Load(raw)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if key1 != key2 {
		t.Errorf("fingerprints differ for identical bytes: %s vs %s", key1, key2)
	}
	if first != second {
		t.Error("expected the cached table pointer on the second load")
	}
	if store.CachedTables() != 1 {
		t.Errorf("cached tables = %d, want 1", store.CachedTables())
	}
}

func TestStoreLoadErrorNotCached(t *testing.T) {
	store := NewStore(NewTableLRU(4, time.Hour), discardLogger())
	raw := []byte("Date,Country\n2022-01-15,India\n")

	if _, _, err := store.Load(raw); err == nil {
		t.Fatal("expected error for missing columns")
	}
	if store.CachedTables() != 0 {
		t.Errorf("cached tables = %d, want 0 after failed load", store.CachedTables())
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint([]byte("hello"))
	b := Fingerprint([]byte("hello"))
	c := Fingerprint([]byte("hello!"))

	if a != b {
		t.Error("identical bytes produced different fingerprints")
	}
	if a == c {
		t.Error("different bytes produced the same fingerprint")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestTableLRUEviction(t *testing.T) {
	cache := NewTableLRU(2, time.Hour)
	t1 := &models.SalesTable{}
	t2 := &models.SalesTable{}
	t3 := &models.SalesTable{}

	cache.Set("a", t1)
	cache.Set("b", t2)

	// Touch "a" so "b" is the eviction candidate.
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}
	cache.Set("c", t3)

	if _, ok := cache.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if cache.Size() != 2 {
		t.Errorf("size = %d, want 2", cache.Size())
	}
}

func TestTableLRUTTL(t *testing.T) {
	cache := NewTableLRU(4, time.Millisecond)
	cache.Set("a", &models.SalesTable{})

	time.Sleep(5 * time.Millisecond)

	if _, ok := cache.Get("a"); ok {
		t.Error("expected entry to expire")
	}
}
