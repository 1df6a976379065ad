package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string          `yaml:"env"`
	LogLevel  string          `yaml:"log_level"`
	Image     string          `yaml:"image"`
	GPUCount  int             `yaml:"gpu_count"`
	BasePort  int             `yaml:"base_port"`
	Prefix    string          `yaml:"prefix"`
	CacheRoot string          `yaml:"cache_root"`
	Workspace string          `yaml:"workspace"`
	Container ContainerConfig `yaml:"container"`
	Pull      PullConfig      `yaml:"pull"`
}

type ContainerConfig struct {
	// Port is where the workspace API listens inside the container.
	Port           int      `yaml:"port"`
	Command        []string `yaml:"command"`
	StopTimeoutSec int      `yaml:"stop_timeout_sec"`
	ShmSizeMB      int64    `yaml:"shm_size_mb"`
}

type PullConfig struct {
	MaxRetries   int    `yaml:"max_retries"`
	RegistryAuth string `yaml:"-"`
}

// DefaultContainerConfig is where the image bakes the tuner config, outside every bind mount.
const DefaultContainerConfig = "/etc/tuner/config.yaml"

func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Pull: PullConfig{
			RegistryAuth: os.Getenv("REGISTRY_AUTH"),
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

	config.ApplyDefaults()
	return config, nil
}

func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Image == "" {
		c.Image = "go-code-tuner:latest"
	}
	if c.GPUCount <= 0 {
		c.GPUCount = 8
	}
	if c.BasePort <= 0 {
		c.BasePort = 8000
	}
	if c.Prefix == "" {
		c.Prefix = "tuner"
	}
	if c.CacheRoot == "" {
		c.CacheRoot = "/data/cache"
	}
	if c.Workspace == "" {
		c.Workspace = "/data/workspace"
	}
	if c.Container.Port <= 0 {
		c.Container.Port = 8888
	}
	if len(c.Container.Command) == 0 {
		c.Container.Command = []string{"tuner", "serve", "--config", DefaultContainerConfig}
	}
	if c.Container.StopTimeoutSec <= 0 {
		c.Container.StopTimeoutSec = 30
	}
	if c.Container.ShmSizeMB <= 0 {
		c.Container.ShmSizeMB = 2048
	}
	if c.Pull.MaxRetries <= 0 {
		c.Pull.MaxRetries = 3
	}
}
