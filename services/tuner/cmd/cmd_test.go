package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go_code_tuner/services/tuner/internal/events"
	"go_code_tuner/services/tuner/internal/models"
	"go_code_tuner/services/tuner/testkit"
)

func writeConfig(t *testing.T, source string) string {
	t.Helper()
	workspace := t.TempDir()
	content := fmt.Sprintf(`log_level: error
workspace:
  dir: %s
source:
  repository: %s
tokenizer:
  encoding: bytes
  append_eos: true
dataset:
  block_size: 32
model:
  embedding_dim: 8
lora:
  r: 2
  alpha: 4
training:
  epochs: 1
  batch_size: 4
  learning_rate: 0.01
generation:
  max_new_tokens: 4
  prompts: ["def "]
`, workspace, source)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewTunerCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractCommand(t *testing.T) {
	configPath := writeConfig(t, testkit.WriteProject(t))
	dump := filepath.Join(t.TempDir(), "snippets.jsonl")

	out, err := execute(t, "extract", "--config", configPath, "--output", dump)
	require.NoError(t, err)
	assert.Contains(t, out, "LANGUAGE")
	assert.Regexp(t, `go\s+1\s+3`, out)
	assert.Regexp(t, `python\s+1\s+4`, out)

	file, err := os.Open(dump)
	require.NoError(t, err)
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var snippet models.Snippet
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &snippet))
		names = append(names, snippet.Name)
	}
	assert.Len(t, names, 7)
}

func TestRunThenGenerate(t *testing.T) {
	configPath := writeConfig(t, testkit.WriteProject(t))

	out, err := execute(t, "run", "--config", configPath)
	require.NoError(t, err)

	var report models.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 7, report.Snippets)
	require.Len(t, report.Checkpoints, 1)
	require.Len(t, report.Samples, 1)

	out, err = execute(t, "generate", "--config", configPath, "def")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "def"))

	out, err = execute(t, "generate", "--config", configPath, "--checkpoint", report.Checkpoints[0], "-n", "2", "func")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "func"))
}

func TestGenerateCommand_NoCheckpoint(t *testing.T) {
	configPath := writeConfig(t, t.TempDir())
	_, err := execute(t, "generate", "--config", configPath, "def")
	require.ErrorContains(t, err, "no checkpoint")
}

func TestWatchCommand_RequiresBrokers(t *testing.T) {
	configPath := writeConfig(t, t.TempDir())
	_, err := execute(t, "watch", "--config", configPath)
	require.ErrorContains(t, err, "kafka.brokers")
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestPrintEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out := &bytes.Buffer{}
	handler := printEvent(out)

	require.NoError(t, handler(events.Event{Type: events.TypeStep, RunID: "r1", Epoch: 1, Step: 10, Loss: 2.5, LearningRate: 0.001, Time: at}))
	require.NoError(t, handler(events.Event{Type: events.TypeCheckpoint, RunID: "r1", Checkpoint: "out/epoch_1", Time: at}))
	require.NoError(t, handler(events.Event{Type: events.TypeRunFailed, RunID: "r1", Message: "boom", Time: at}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-05-01T12:00:00Z  step         run=r1 epoch=1 step=10 loss=2.5000 lr=1.00e-03", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "path=out/epoch_1"))
	assert.True(t, strings.HasSuffix(lines[2], "error=boom"))
}
