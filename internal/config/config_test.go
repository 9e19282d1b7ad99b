package config

import (
	"os"
	"path/filepath"
	"testing"

	"smile/internal/rx"
	"smile/internal/symbol"
)

func TestDefaultMatchesSpecConstants(t *testing.T) {
	cfg := Default()
	if cfg.SymbolTableCapacity != symbol.ReservedCapacity {
		t.Fatalf("got %d, want %d", cfg.SymbolTableCapacity, symbol.ReservedCapacity)
	}
	if cfg.RegexCacheCapacity != rx.MaxCacheSize {
		t.Fatalf("got %d, want %d", cfg.RegexCacheCapacity, rx.MaxCacheSize)
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RegexCacheCapacity != rx.MaxCacheSize {
		t.Fatalf("expected default regex cache capacity, got %d", cfg.RegexCacheCapacity)
	}
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smile.yaml")
	if err := os.WriteFile(path, []byte("regexCacheCapacity: 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RegexCacheCapacity != 16 {
		t.Fatalf("got %d, want 16", cfg.RegexCacheCapacity)
	}
	if cfg.SymbolTableCapacity != symbol.ReservedCapacity {
		t.Fatalf("unset field should keep default, got %d", cfg.SymbolTableCapacity)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("regexCacheCapacity: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestNewSymbolTableHonorsCapacityFloor(t *testing.T) {
	cfg := &InterpreterContext{SymbolTableCapacity: 1, RegexCacheCapacity: 8}
	tbl, known := cfg.NewSymbolTable()
	if tbl.Len() == 0 {
		t.Fatal("expected known symbols to be preloaded")
	}
	if known == nil {
		t.Fatal("expected a non-nil known-symbols snapshot")
	}
}

func TestNewRegexCacheUsesConfiguredCapacity(t *testing.T) {
	cfg := &InterpreterContext{RegexCacheCapacity: 4}
	cache := cfg.NewRegexCache()
	if cache == nil {
		t.Fatal("expected a non-nil cache")
	}
}
