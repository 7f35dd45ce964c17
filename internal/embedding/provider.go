package embedding

import (
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// Kind enumerates the provider kinds recognised by configuration (§6:
// "embedding provider in {openai, local, none, mock}").
type Kind string

const (
	KindOpenAI Kind = "openai"
	KindLocal  Kind = "local"
	KindNone   Kind = "none"
	KindMock   Kind = "mock"
)

// Config is the subset of the core's layered configuration that selects
// and parameterises an embedding provider.
type Config struct {
	Kind        Kind
	Dimensions  int
	OpenAIKey   string
	OpenAIModel string
	Timeout     time.Duration
}

// Build constructs the configured provider, wrapped with the per-request
// timeout and oversized-batch fallback every adapter gets uniformly.
func Build(cfg Config) (Provider, error) {
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = 256
	}

	var base Provider
	switch cfg.Kind {
	case KindOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, kgerr.New(kgerr.InvalidConfig, "openai embedding provider requires an API key")
		}
		model := openai.EmbeddingModel(cfg.OpenAIModel)
		if model == "" {
			model = openai.SmallEmbedding3
		}
		base = NewOpenAI(cfg.OpenAIKey, model, dims)
	case KindLocal:
		base = NewLocal(dims)
	case KindMock:
		base = NewMock(dims)
	case KindNone, "":
		base = NewNone(dims)
	default:
		return nil, kgerr.New(kgerr.InvalidConfig, "unknown embedding provider kind %q", cfg.Kind)
	}

	wrapped := WithFallback(base)
	if cfg.Timeout > 0 {
		wrapped = WithTimeout(wrapped, cfg.Timeout)
	}
	return wrapped, nil
}
