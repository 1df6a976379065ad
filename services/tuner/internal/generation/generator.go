package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	langchainopenai "github.com/tmc/langchaingo/llms/openai"
	"go_code_tuner/services/tuner/internal/config"
	"go_code_tuner/services/tuner/internal/errors"
	"go_code_tuner/services/tuner/internal/lm"
	"go_code_tuner/services/tuner/internal/metrics"
	"go_code_tuner/services/tuner/internal/tokenizer"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

type Generator interface {
	Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error)
	Backend() string
}

// Local decodes greedily with an in-process model. The model can be swapped after a run finishes.
type Local struct {
	mu    sync.RWMutex
	model lm.LanguageModel
	tok   tokenizer.Tokenizer
}

func NewLocal(model lm.LanguageModel, tok tokenizer.Tokenizer) *Local {
	return &Local{model: model, tok: tok}
}

// LoadLocal restores a checkpoint directory written by a training run.
func LoadLocal(dir string) (*Local, error) {
	encoding, err := tokenizer.ReadEncoding(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	base, err := tokenizer.New(encoding)
	if err != nil {
		return nil, err
	}
	vocab, err := tokenizer.LoadVocabulary(dir, base)
	if err != nil {
		return nil, err
	}
	model, err := lm.LoadCheckpoint(dir)
	if err != nil {
		return nil, err
	}
	if model.VocabSize() != vocab.VocabSize() {
		return nil, fmt.Errorf("checkpoint %s: model vocabulary %d does not match tokenizer %d", dir, model.VocabSize(), vocab.VocabSize())
	}
	return NewLocal(model, vocab), nil
}

func (l *Local) Swap(model lm.LanguageModel, tok tokenizer.Tokenizer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.model = model
	l.tok = tok
}

func (l *Local) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.model != nil
}

func (l *Local) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	start := time.Now()
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.model == nil {
		return "", errors.ErrNoCheckpoint
	}
	text, err := Greedy(ctx, l.model, l.tok, prompt, maxNewTokens)
	metrics.Get().ObserveGeneration(BackendLocal, metrics.StatusOf(err), start)
	return text, err
}

func (l *Local) Backend() string {
	return BackendLocal
}

// Remote asks an OpenAI-compatible endpoint for a temperature-zero completion.
type Remote struct {
	llm llms.Model
}

func NewRemote(llm llms.Model) *Remote {
	return &Remote{llm: llm}
}

func NewRemoteFromConfig(cfg config.RemoteSection) (*Remote, error) {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("empty remote api base url")
	}
	llm, err := langchainopenai.New(
		langchainopenai.WithBaseURL(cfg.APIBaseURL),
		langchainopenai.WithModel(cfg.Model),
		langchainopenai.WithToken(cfg.OpenApiKey),
	)
	if err != nil {
		return nil, err
	}
	return NewRemote(llm), nil
}

func (r *Remote) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, r.llm, prompt,
		llms.WithTemperature(0),
		llms.WithMaxTokens(maxNewTokens),
	)
	metrics.Get().ObserveGeneration(BackendRemote, metrics.StatusOf(err), start)
	return text, err
}

func (r *Remote) Backend() string {
	return BackendRemote
}
