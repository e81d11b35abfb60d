package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/reglens/reglens/internal/model"
)

func testModelConfig() model.ModelConfig {
	return model.ModelConfig{
		Name:        "gpt-4o-mini",
		Temperature: 0.0,
		Seed:        42,
		MaxTokens:   800,
	}
}

func TestKey_Deterministic(t *testing.T) {
	mc := testModelConfig()

	k1 := Key(model.KindSearch, "doc-1", "data protection", mc)
	k2 := Key(model.KindSearch, "doc-1", "data protection", mc)

	if k1 != k2 {
		t.Errorf("identical inputs produced different keys: %s vs %s", k1, k2)
	}
}

func TestKey_DistinguishesInputs(t *testing.T) {
	mc := testModelConfig()
	base := Key(model.KindSearch, "doc-1", "data protection", mc)

	if k := Key(model.KindTracking, "doc-1", "data protection", mc); k == base {
		t.Error("different kinds should produce different keys")
	}
	if k := Key(model.KindSearch, "doc-2", "data protection", mc); k == base {
		t.Error("different documents should produce different keys")
	}
	if k := Key(model.KindSearch, "doc-1", "customs tariffs", mc); k == base {
		t.Error("different queries should produce different keys")
	}

	other := mc
	other.Seed = 7
	if k := Key(model.KindSearch, "doc-1", "data protection", other); k == base {
		t.Error("different model parameters should produce different keys")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss on empty cache")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("expected hit with value v, got %q found=%v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("expected hit with value v, got %q found=%v", val, found)
	}

	// Expired entries are removed on read
	if err := c.Set("old", []byte("x"), -time.Minute); err != nil {
		t.Fatalf("set expired: %v", err)
	}
	if _, found := c.Get("old"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, filepath.Join(dir, "cache"), time.Minute)

	// Write via disk layer only, bypassing memory
	if err := c.disk.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("disk set: %v", err)
	}

	if _, found := c.memory.Get("k"); found {
		t.Fatal("memory should miss before first read")
	}

	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("expected layered hit, got %q found=%v", val, found)
	}

	if _, found := c.memory.Get("k"); !found {
		t.Error("disk hit should have been promoted to memory")
	}
}
