// Package config implements the interpreter context: the process-wide
// state a running interpreter needs (symbol table capacity, regex cache
// capacity, closure stack sizing) factored behind one explicit, loadable
// value instead of being hardcoded inline, so multiple independently
// configured interpreters can coexist in one process.
package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"smile/internal/errs"
	"smile/internal/rx"
	"smile/internal/symbol"
)

// InterpreterContext bundles the process-wide sizing knobs an
// interpreter needs: the symbol table's reserved capacity, the regex
// cache's LRU capacity, and the VM's continuation/locals stack sizing.
// The zero value is not meaningful; use Default or Load.
type InterpreterContext struct {
	SymbolTableCapacity int `yaml:"symbolTableCapacity"`
	RegexCacheCapacity  int `yaml:"regexCacheCapacity"`
	MaxContinuations    int `yaml:"maxContinuations"`
	MaxLocalsPerClosure int `yaml:"maxLocalsPerClosure"`
}

// Default returns the package's baseline sizing: symbol.ReservedCapacity
// known-symbol slots, rx.MaxCacheSize regex cache entries, and generous
// but bounded continuation/locals limits (1024 and 256).
func Default() *InterpreterContext {
	return &InterpreterContext{
		SymbolTableCapacity: symbol.ReservedCapacity,
		RegexCacheCapacity:  rx.MaxCacheSize,
		MaxContinuations:    1024,
		MaxLocalsPerClosure: 256,
	}
}

// Load reads an InterpreterContext from a YAML file at path, defaulting
// any field left unset (zero) in the file to Default's value. A missing
// file is not an error: Load silently falls back to Default so an
// optional config file can be entirely absent.
func Load(path string) (*InterpreterContext, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errs.Wrap(errs.ConfigurationError, err, "reading config file "+path)
	}

	var loaded InterpreterContext
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, errs.Wrap(errs.ConfigurationError, err, "parsing config file "+path)
	}

	if loaded.SymbolTableCapacity > 0 {
		cfg.SymbolTableCapacity = loaded.SymbolTableCapacity
	}
	if loaded.RegexCacheCapacity > 0 {
		cfg.RegexCacheCapacity = loaded.RegexCacheCapacity
	}
	if loaded.MaxContinuations > 0 {
		cfg.MaxContinuations = loaded.MaxContinuations
	}
	if loaded.MaxLocalsPerClosure > 0 {
		cfg.MaxLocalsPerClosure = loaded.MaxLocalsPerClosure
	}
	return cfg, nil
}

// NewSymbolTable builds a symbol.Table honoring this context's reserved
// capacity and preloads the known-symbol set, returning both the table
// and the snapshot that must be copied into each independently
// configured context.
func (c *InterpreterContext) NewSymbolTable() (*symbol.Table, *symbol.KnownSymbols) {
	tbl := symbol.NewWithCapacity(c.SymbolTableCapacity)
	known := tbl.Preload()
	return tbl, known
}

// NewRegexCache builds an internal/rx cache sized to this context
// instead of the package-default rx.MaxCacheSize, so a context
// configured for a memory-constrained embedding can shrink it.
func (c *InterpreterContext) NewRegexCache() *rx.Cache {
	return rx.NewCache(c.RegexCacheCapacity)
}
