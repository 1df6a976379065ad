package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env        string            `yaml:"env" json:"env"`
	LogLevel   string            `yaml:"log_level" json:"log_level"`
	Workspace  WorkspaceSection  `yaml:"workspace" json:"workspace"`
	Source     SourceSection     `yaml:"source" json:"source"`
	Extractor  ExtractorSection  `yaml:"extractor" json:"extractor"`
	Tokenizer  TokenizerSection  `yaml:"tokenizer" json:"tokenizer"`
	Dataset    DatasetSection    `yaml:"dataset" json:"dataset"`
	Model      ModelSection      `yaml:"model" json:"model"`
	Lora       LoraSection       `yaml:"lora" json:"lora"`
	Training   TrainingSection   `yaml:"training" json:"training"`
	Generation GenerationSection `yaml:"generation" json:"generation"`
	Server     ServerSection     `yaml:"server" json:"server"`
	Prometheus PrometheusConfig  `yaml:"prometheus" json:"prometheus"`
	Kafka      KafkaSection      `yaml:"kafka" json:"kafka"`
	Github     GithubSection     `yaml:"github" json:"github"`
}

type WorkspaceSection struct {
	Dir string `yaml:"dir" json:"dir"`
}

type SourceSection struct {
	// Repository is a clone URL or a local path. When empty, Github is resolved instead.
	Repository string   `yaml:"repository" json:"repository"`
	Owner      string   `yaml:"owner" json:"owner"`
	Repo       string   `yaml:"repo" json:"repo"`
	Branch     string   `yaml:"branch" json:"branch"`
	Bare       bool     `yaml:"bare" json:"bare"`
	Languages  []string `yaml:"languages" json:"languages"`
}

type ExtractorSection struct {
	Template string `yaml:"template" json:"template"`
	MinLines int    `yaml:"min_lines" json:"min_lines"`
	MaxChars int    `yaml:"max_chars" json:"max_chars"`
}

type TokenizerSection struct {
	Encoding  string `yaml:"encoding" json:"encoding"`
	AppendEOS bool   `yaml:"append_eos" json:"append_eos"`
}

type DatasetSection struct {
	BlockSize   int     `yaml:"block_size" json:"block_size"`
	TestSize    float64 `yaml:"test_size" json:"test_size"`
	Seed        int64   `yaml:"seed" json:"seed"`
	MaskPadding bool    `yaml:"mask_padding" json:"mask_padding"`
}

type ModelSection struct {
	BasePath     string `yaml:"base_path" json:"base_path"`
	EmbeddingDim int    `yaml:"embedding_dim" json:"embedding_dim"`
	Seed         int64  `yaml:"seed" json:"seed"`
}

type LoraSection struct {
	R     int     `yaml:"r" json:"r"`
	Alpha float64 `yaml:"alpha" json:"alpha"`
}

type TrainingSection struct {
	Epochs       int     `yaml:"epochs" json:"epochs"`
	BatchSize    int     `yaml:"batch_size" json:"batch_size"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
	WeightDecay  float64 `yaml:"weight_decay" json:"weight_decay"`
	WarmupSteps  int     `yaml:"warmup_steps" json:"warmup_steps"`
	EvalInterval int     `yaml:"eval_interval" json:"eval_interval"`
	LogInterval  int     `yaml:"log_interval" json:"log_interval"`
	OutputDir    string  `yaml:"output_dir" json:"output_dir"`
	Seed         int64   `yaml:"seed" json:"seed"`
}

type GenerationSection struct {
	MaxNewTokens int           `yaml:"max_new_tokens" json:"max_new_tokens"`
	Prompts      []string      `yaml:"prompts" json:"prompts"`
	Remote       RemoteSection `yaml:"remote" json:"remote"`
}

type RemoteSection struct {
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url"`
	OpenApiKey string `yaml:"openapi_key" json:"-"`
	Model      string `yaml:"model" json:"model"`
}

type ServerSection struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"-" json:"-"`
}

type PrometheusConfig struct {
	Address string `yaml:"address" json:"address"`
}

type KafkaSection struct {
	Brokers    string `yaml:"brokers" json:"brokers"`
	Topic      string `yaml:"topic" json:"topic"`
	GroupID    string `yaml:"group_id" json:"group_id"`
	AutoOffset string `yaml:"auto_offset" json:"auto_offset"`
}

type GithubSection struct {
	AccessToken string `yaml:"access_token" json:"-"`
}

const DefaultTemplate = "### {{.language}} function `{{.name}}`\n{{.code}}\n"

func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Generation: GenerationSection{
			Remote: RemoteSection{
				OpenApiKey: os.Getenv("LLM_OPEN_AI_API_KEY"),
			},
		},
		Github: GithubSection{
			AccessToken: os.Getenv("GITHUB_ACCESS_TOKEN"),
		},
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	config.Server.Password = os.Getenv("WORKSPACE_PASSWORD")
	config.ApplyDefaults()
	return config, nil
}

// ApplyDefaults fills zero values left by a partial config file.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Workspace.Dir == "" {
		c.Workspace.Dir = "./workspace"
	}
	if len(c.Source.Languages) == 0 {
		c.Source.Languages = []string{"go", "python"}
	}
	if c.Extractor.Template == "" {
		c.Extractor.Template = DefaultTemplate
	}
	if c.Extractor.MinLines <= 0 {
		c.Extractor.MinLines = 2
	}
	if c.Extractor.MaxChars <= 0 {
		c.Extractor.MaxChars = 4000
	}
	if c.Tokenizer.Encoding == "" {
		c.Tokenizer.Encoding = "cl100k_base"
	}
	if c.Dataset.BlockSize <= 0 {
		c.Dataset.BlockSize = 128
	}
	if c.Dataset.TestSize <= 0 {
		c.Dataset.TestSize = 0.1
	}
	if c.Dataset.Seed == 0 {
		c.Dataset.Seed = 42
	}
	if c.Model.EmbeddingDim <= 0 {
		c.Model.EmbeddingDim = 64
	}
	if c.Model.Seed == 0 {
		c.Model.Seed = 7
	}
	if c.Lora.R <= 0 {
		c.Lora.R = 8
	}
	if c.Lora.Alpha <= 0 {
		c.Lora.Alpha = 16
	}
	if c.Training.Epochs <= 0 {
		c.Training.Epochs = 3
	}
	if c.Training.BatchSize <= 0 {
		c.Training.BatchSize = 8
	}
	if c.Training.LearningRate <= 0 {
		c.Training.LearningRate = 1e-3
	}
	if c.Training.EvalInterval <= 0 {
		c.Training.EvalInterval = 50
	}
	if c.Training.LogInterval <= 0 {
		c.Training.LogInterval = 10
	}
	if c.Training.OutputDir == "" {
		c.Training.OutputDir = c.Workspace.Dir + "/checkpoints"
	}
	if c.Training.Seed == 0 {
		c.Training.Seed = c.Dataset.Seed
	}
	if c.Generation.MaxNewTokens <= 0 {
		c.Generation.MaxNewTokens = 64
	}
	if c.Server.Address == "" {
		c.Server.Address = "0.0.0.0:8888"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "training-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "tuner-watch"
	}
	if c.Kafka.AutoOffset == "" {
		c.Kafka.AutoOffset = "earliest"
	}
}
