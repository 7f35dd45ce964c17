// Package config implements the layered configuration registry enumerated
// by §6 Configuration: storage backend kind, embedding provider and
// dimensions, default/max search limits, BM25 (k1, b), default fuzzy
// threshold, compaction threshold (min, fraction), hybrid weights,
// worker pool (min, max, kind, idle timeout), cache budgets, compression,
// and backup dir path. Values layer viper defaults < config file (YAML,
// with a TOML example-writer) < environment variables, the same
// precedence the teacher's viper-backed config.yaml layer uses, with an
// fsnotify watch for live reload.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// Keys, matching §6 Configuration's enumerated options one-for-one.
const (
	KeyStorageBackend       = "storage.backend"
	KeyEmbeddingProvider    = "embedding.provider"
	KeyEmbeddingDimensions  = "embedding.dimensions"
	KeySearchDefaultLimit   = "search.default_limit"
	KeySearchMaxLimit       = "search.max_limit"
	KeyBM25K1               = "bm25.k1"
	KeyBM25B                = "bm25.b"
	KeyFuzzyThreshold       = "fuzzy.threshold"
	KeyCompactionMinPending = "compaction.min_pending"
	KeyCompactionFraction   = "compaction.fraction"
	KeyHybridSemanticWeight = "hybrid.weight.semantic"
	KeyHybridLexicalWeight  = "hybrid.weight.lexical"
	KeyHybridSymbolicWeight = "hybrid.weight.symbolic"
	KeyHybridNormalise      = "hybrid.normalise"
	KeyHybridMinScore       = "hybrid.min_score"
	KeyWorkerPoolMin        = "workerpool.min"
	KeyWorkerPoolMax        = "workerpool.max"
	KeyWorkerPoolIdleTime   = "workerpool.idle_timeout"
	KeyCacheMaxSize         = "cache.max_size"
	KeyCacheTTL             = "cache.ttl"
	KeyCompressionEnabled   = "compression.enabled"
	KeyCompressionQuality   = "compression.quality"
	KeyCompressionMinSize   = "compression.min_size_to_compress"
	KeyBackupDir            = "backup.dir"
)

// EnvPrefix mirrors the teacher's BEADS_ env-override convention; here
// every key's dots become underscores under KGCORE_.
const EnvPrefix = "KGCORE"

// defaults seeds every key enumerated in §6 Configuration so a brand new
// Registry is immediately usable without a config file.
var defaults = map[string]any{
	KeyStorageBackend:       "append-only-log",
	KeyEmbeddingProvider:    "none",
	KeyEmbeddingDimensions:  256,
	KeySearchDefaultLimit:   20,
	KeySearchMaxLimit:       500,
	KeyBM25K1:               1.2,
	KeyBM25B:                0.75,
	KeyFuzzyThreshold:       0.7,
	KeyCompactionMinPending: 100,
	KeyCompactionFraction:   0.1,
	KeyHybridSemanticWeight: 0.4,
	KeyHybridLexicalWeight:  0.4,
	KeyHybridSymbolicWeight: 0.2,
	KeyHybridNormalise:      true,
	KeyHybridMinScore:       0.1,
	KeyWorkerPoolMin:        1,
	KeyWorkerPoolMax:        4,
	KeyWorkerPoolIdleTime:   "5m",
	KeyCacheMaxSize:         256,
	KeyCacheTTL:             "10m",
	KeyCompressionEnabled:   false,
	KeyCompressionQuality:   6,
	KeyCompressionMinSize:   1024,
	KeyBackupDir:            "",
}

// Registry is the core's layered config, backed by a *viper.Viper
// instance per the teacher's config.yaml pattern (cmd/bd/config.go:
// "v := viper.New(); v.SetConfigType(\"yaml\"); v.SetConfigFile(path)").
type Registry struct {
	v *viper.Viper
}

// New builds a Registry with every §6 key defaulted, environment
// variables bound under EnvPrefix, and (if path is non-empty) path read
// as the YAML config file layered on top of defaults but below env vars.
func New(path string) (*Registry, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	r := &Registry{v: v}
	if path == "" {
		return r, nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, kgerr.Wrap(kgerr.InvalidConfig, err, "read config file %s", path)
	}
	return r, nil
}

func (r *Registry) String(key string) string          { return r.v.GetString(key) }
func (r *Registry) Int(key string) int                { return r.v.GetInt(key) }
func (r *Registry) Float64(key string) float64        { return r.v.GetFloat64(key) }
func (r *Registry) Bool(key string) bool              { return r.v.GetBool(key) }
func (r *Registry) Duration(key string) time.Duration { return r.v.GetDuration(key) }

// Set overrides a key at runtime (e.g. `kg config set <key> <value>` in a
// CLI front-end), taking precedence over environment variables, the file
// and defaults, matching viper's own precedence order.
func (r *Registry) Set(key string, value any) { r.v.Set(key, value) }

// All returns every recognised key's current effective value, sorted by
// key name by the caller if needed (mirrors the teacher's `bd config
// list`, minus the per-project SQLite overlay this embeddable core
// doesn't have).
func (r *Registry) All() map[string]any {
	out := make(map[string]any, len(defaults))
	for key := range defaults {
		out[key] = r.v.Get(key)
	}
	return out
}

// IsKnownKey reports whether key is one of §6's enumerated options,
// guarding `config set` against silently-ignored typos.
func IsKnownKey(key string) bool {
	_, ok := defaults[key]
	return ok
}
