package testkit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	kafkamocks "go_code_tuner/pkg/kafka/mocks"
	"go_code_tuner/services/tuner/internal/config"
	vscmock "go_code_tuner/services/tuner/internal/vsc/mocks"
)

type Mocks struct {
	VSCClient     *vscmock.MockVersionControlSystem
	KafkaProducer *kafkamocks.MockProducer
	KafkaConsumer *kafkamocks.MockConsumer
}

func NewMocks(t *testing.T) *Mocks {
	controller := gomock.NewController(t)
	return &Mocks{
		VSCClient:     vscmock.NewMockVersionControlSystem(controller),
		KafkaProducer: kafkamocks.NewMockProducer(controller),
		KafkaConsumer: kafkamocks.NewMockConsumer(controller),
	}
}

const GoSource = `package shapes

import "math"

type Circle struct {
	Radius float64
}

func (c Circle) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

func (c Circle) Perimeter() float64 {
	return 2 * math.Pi * c.Radius
}

func Scale(c Circle, factor float64) Circle {
	c.Radius *= factor
	return c
}
`

const PythonSource = `class Stack:
    def __init__(self):
        self.items = []

    def push(self, item):
        self.items.append(item)

    def pop(self):
        return self.items.pop()


def reverse(values):
    stack = Stack()
    for value in values:
        stack.push(value)
    return [stack.pop() for _ in values]
`

// WriteProject writes a small Go and Python project and returns its root.
func WriteProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"shapes/circle.go": GoSource,
		"util/stack.py":    PythonSource,
		"README.md":        "# shapes",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// NewConfig returns a config small enough to train in a unit test, reading from source.
func NewConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	workspace := t.TempDir()
	cfg := &config.Config{
		Workspace: config.WorkspaceSection{Dir: workspace},
		Source:    config.SourceSection{Repository: source},
		Tokenizer: config.TokenizerSection{Encoding: "bytes", AppendEOS: true},
		Dataset:   config.DatasetSection{BlockSize: 32, TestSize: 0.2},
		Model:     config.ModelSection{EmbeddingDim: 8},
		Lora:      config.LoraSection{R: 2, Alpha: 4},
		Training: config.TrainingSection{
			Epochs:       1,
			BatchSize:    4,
			LearningRate: 0.01,
			EvalInterval: 5,
			LogInterval:  5,
		},
		Generation: config.GenerationSection{MaxNewTokens: 8, Prompts: []string{"func "}},
	}
	cfg.ApplyDefaults()
	return cfg
}
