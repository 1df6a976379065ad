package trainer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go_code_tuner/services/tuner/internal/dataset"
	"go_code_tuner/services/tuner/internal/events"
	"go_code_tuner/services/tuner/internal/lm"
	lmmocks "go_code_tuner/services/tuner/internal/lm/mocks"
	"go_code_tuner/services/tuner/internal/models"
	"go_code_tuner/services/tuner/internal/tokenizer"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) count(eventType events.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, event := range p.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}

func testSplit(t *testing.T) (models.Split, *tokenizer.Vocabulary) {
	t.Helper()
	corpus := []string{"abcabcabcabcabcabcabcabc", "abcabcabcabcabcabc"}
	vocab := tokenizer.Compact(tokenizer.NewBytes(), tokenizer.ByteEncoding, corpus)

	seqs := make([]models.TokenSequence, 0, len(corpus))
	for _, text := range corpus {
		seqs = append(seqs, models.NewTokenSequence(vocab.Encode(text)))
	}
	blocks, err := dataset.PackBlocks(seqs, 6, dataset.PackOptions{PadTokenID: vocab.EOSTokenID()})
	require.NoError(t, err)
	split, err := dataset.Split(blocks, 0.2, 42)
	require.NoError(t, err)
	return split, vocab
}

func testOptions(t *testing.T) Options {
	return Options{
		Epochs:       2,
		BatchSize:    2,
		LearningRate: 0.05,
		WarmupSteps:  1,
		EvalInterval: 2,
		LogInterval:  1,
		OutputDir:    t.TempDir(),
		Seed:         42,
	}
}

func TestSession_Run(t *testing.T) {
	split, vocab := testSplit(t)
	base, err := lm.RandomBase(vocab.VocabSize(), 8, 1)
	require.NoError(t, err)
	model, err := lm.NewLoRAModel(base, lm.LoRAOptions{Rank: 4, Alpha: 8, Seed: 3})
	require.NoError(t, err)

	initialEval, err := model.EvalLoss(split.Test)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	opts := testOptions(t)
	session, err := NewSession("run-1", opts, model, vocab, publisher)
	require.NoError(t, err)
	defer session.Close()

	result, err := session.Run(context.Background(), split)
	require.NoError(t, err)

	stepsPerEpoch := (len(split.Train) + 1) / 2
	assert.Equal(t, 2*stepsPerEpoch, result.Steps)
	assert.Less(t, result.FinalEvalLoss, initialEval)
	require.Equal(t, []string{
		filepath.Join(opts.OutputDir, "epoch_1"),
		filepath.Join(opts.OutputDir, "epoch_2"),
	}, result.Checkpoints)

	for _, dir := range result.Checkpoints {
		for _, name := range []string{lm.AdapterModelFile, lm.AdapterConfigFile, tokenizer.VocabularyFile} {
			_, err := os.Stat(filepath.Join(dir, name))
			require.NoError(t, err, name)
		}
	}

	assert.Equal(t, 1, publisher.count(events.TypeRunStarted))
	assert.Equal(t, result.Steps, publisher.count(events.TypeStep))
	assert.Equal(t, 2, publisher.count(events.TypeCheckpoint))
	assert.Equal(t, result.Steps/2+2, publisher.count(events.TypeEval))
	for _, event := range publisher.events {
		assert.Equal(t, "run-1", event.RunID)
	}

	restored, err := lm.LoadCheckpoint(result.Checkpoints[1])
	require.NoError(t, err)
	loss, err := restored.EvalLoss(split.Test)
	require.NoError(t, err)
	assert.InDelta(t, result.FinalEvalLoss, loss, 1e-9)
}

func TestSession_IsDeterministic(t *testing.T) {
	split, vocab := testSplit(t)

	run := func() *Result {
		base, err := lm.RandomBase(vocab.VocabSize(), 8, 1)
		require.NoError(t, err)
		model, err := lm.NewLoRAModel(base, lm.LoRAOptions{Rank: 2, Seed: 3})
		require.NoError(t, err)
		session, err := NewSession("run", testOptions(t), model, vocab, nil)
		require.NoError(t, err)
		result, err := session.Run(context.Background(), split)
		require.NoError(t, err)
		return result
	}

	first, second := run(), run()
	assert.Equal(t, first.FinalTrainLoss, second.FinalTrainLoss)
	assert.Equal(t, first.FinalEvalLoss, second.FinalEvalLoss)
}

func TestSession_TrainStepError(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := lmmocks.NewMockLanguageModel(ctrl)
	model.EXPECT().ZeroGrad()
	model.EXPECT().TrainStep(gomock.Any()).Return(0.0, errors.New("nan loss"))

	session, err := NewSession("run", testOptions(t), model, nil, nil)
	require.NoError(t, err)

	split := models.Split{Train: []models.Block{{InputIDs: []int{1, 2}, Labels: []int{1, 2}}}}
	_, err = session.Run(context.Background(), split)
	require.ErrorContains(t, err, "nan loss")
}

func TestSession_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := lmmocks.NewMockLanguageModel(ctrl)

	session, err := NewSession("run", testOptions(t), model, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	split := models.Split{Train: []models.Block{{InputIDs: []int{1, 2}, Labels: []int{1, 2}}}}
	result, err := session.Run(ctx, split)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Steps)
}

func TestSession_Closed(t *testing.T) {
	ctrl := gomock.NewController(t)
	session, err := NewSession("run", testOptions(t), lmmocks.NewMockLanguageModel(ctrl), nil, nil)
	require.NoError(t, err)
	session.Close()

	_, err = session.Run(context.Background(), models.Split{Train: []models.Block{{}}})
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_NoTrainBlocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	session, err := NewSession("run", testOptions(t), lmmocks.NewMockLanguageModel(ctrl), nil, nil)
	require.NoError(t, err)

	_, err = session.Run(context.Background(), models.Split{})
	require.ErrorIs(t, err, ErrNoTrainBlocks)
}

func TestNewSession_InvalidOptions(t *testing.T) {
	opts := testOptions(t)
	opts.BatchSize = 0
	_, err := NewSession("run", opts, nil, nil, nil)
	require.Error(t, err)

	opts = testOptions(t)
	opts.OutputDir = ""
	_, err = NewSession("run", opts, nil, nil, nil)
	require.Error(t, err)
}

func TestLinearSchedule(t *testing.T) {
	schedule := LinearSchedule{Base: 1, Warmup: 2, Total: 6}
	got := make([]float64, 0, 7)
	for step := 0; step <= 6; step++ {
		got = append(got, schedule.At(step))
	}
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.75, 0.5, 0.25, 0}, got, 1e-12)

	noWarmup := LinearSchedule{Base: 0.1, Total: 4}
	assert.InDelta(t, 0.1, noWarmup.At(0), 1e-12)
	assert.InDelta(t, 0.0, noWarmup.At(10), 1e-12)
}
