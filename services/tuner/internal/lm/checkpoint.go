package lm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go_code_tuner/pkg/log"
)

const (
	AdapterModelFile  = "adapter_model.json"
	AdapterConfigFile = "adapter_config.json"
)

// AdapterConfig describes an adapter and the frozen base it was trained against.
type AdapterConfig struct {
	PeftType      string   `json:"peft_type"`
	Rank          int      `json:"r"`
	Alpha         float64  `json:"lora_alpha"`
	Dropout       float64  `json:"lora_dropout"`
	TargetModules []string `json:"target_modules"`
	VocabSize     int      `json:"vocab_size"`
	EmbeddingDim  int      `json:"embedding_dim"`
	BasePath      string   `json:"base_model_name_or_path,omitempty"`
	BaseSeed      int64    `json:"base_seed"`
}

type adapterWeights struct {
	A [][]float64 `json:"lora_A"`
	B [][]float64 `json:"lora_B"`
}

func (m *LoRAModel) AdapterConfig() AdapterConfig {
	return AdapterConfig{
		PeftType:      "LORA",
		Rank:          m.rank,
		Alpha:         m.alpha,
		TargetModules: []string{"lm_head"},
		VocabSize:     m.base.VocabSize(),
		EmbeddingDim:  m.base.EmbeddingDim(),
		BasePath:      m.base.Path,
		BaseSeed:      m.base.Seed,
	}
}

func (m *LoRAModel) SaveAdapter(dir string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, AdapterConfigFile), m.AdapterConfig()); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, AdapterModelFile), adapterWeights{
		A: toRows(m.a),
		B: toRows(m.b),
	})
}

func (m *LoRAModel) LoadAdapter(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, AdapterModelFile))
	if err != nil {
		return err
	}
	var weights adapterWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return fmt.Errorf("invalid %s: %w", AdapterModelFile, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := fromRows(weights.A, m.base.EmbeddingDim(), m.rank)
	if err != nil {
		return fmt.Errorf("lora_A: %w", err)
	}
	b, err := fromRows(weights.B, m.rank, m.base.VocabSize())
	if err != nil {
		return fmt.Errorf("lora_B: %w", err)
	}
	m.a.Copy(a)
	m.b.Copy(b)
	m.merge()
	return nil
}

func ReadAdapterConfig(dir string) (AdapterConfig, error) {
	var cfg AdapterConfig
	data, err := os.ReadFile(filepath.Join(dir, AdapterConfigFile))
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", AdapterConfigFile, err)
	}
	return cfg, nil
}

// OpenBase loads the base at path, or draws a seeded random one when path is empty.
func OpenBase(path string, vocabSize, dim int, seed int64) (*Base, error) {
	if path == "" {
		log.GetLogger().WithField("seed", seed).Warn("no base model configured, using seeded random weights")
		return RandomBase(vocabSize, dim, seed)
	}

	base, err := LoadBase(path)
	if err != nil {
		return nil, err
	}
	if base.VocabSize() != vocabSize {
		return nil, fmt.Errorf("base model %s has vocabulary %d, tokenizer has %d", path, base.VocabSize(), vocabSize)
	}
	return base, nil
}

// LoadCheckpoint rebuilds the base recorded in dir's adapter config and loads the adapter on top.
func LoadCheckpoint(dir string) (*LoRAModel, error) {
	cfg, err := ReadAdapterConfig(dir)
	if err != nil {
		return nil, err
	}

	base, err := OpenBase(cfg.BasePath, cfg.VocabSize, cfg.EmbeddingDim, cfg.BaseSeed)
	if err != nil {
		return nil, err
	}
	model, err := NewLoRAModel(base, LoRAOptions{Rank: cfg.Rank, Alpha: cfg.Alpha})
	if err != nil {
		return nil, err
	}
	if err := model.LoadAdapter(dir); err != nil {
		return nil, err
	}
	return model, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
