package internal

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"go_code_tuner/pkg/log"
	"go_code_tuner/services/tuner/internal/config"
	"go_code_tuner/services/tuner/internal/dataset"
	"go_code_tuner/services/tuner/internal/errors"
	"go_code_tuner/services/tuner/internal/events"
	"go_code_tuner/services/tuner/internal/generation"
	"go_code_tuner/services/tuner/internal/lm"
	"go_code_tuner/services/tuner/internal/metrics"
	"go_code_tuner/services/tuner/internal/models"
	"go_code_tuner/services/tuner/internal/parser"
	"go_code_tuner/services/tuner/internal/tokenizer"
	"go_code_tuner/services/tuner/internal/trainer"
	"go_code_tuner/services/tuner/internal/vsc"
)

// Pipeline runs extract, tokenize, pack, split, train and sample for one configuration.
type Pipeline struct {
	config         *config.Config
	versionControl vsc.VersionControlSystem
	publisher      events.Publisher
}

// Trained is the model and tokenizer left by a successful run.
type Trained struct {
	Model     *lm.LoRAModel
	Tokenizer *tokenizer.Vocabulary
}

func NewPipeline(config *config.Config, versionControl vsc.VersionControlSystem, publisher events.Publisher) *Pipeline {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &Pipeline{
		config:         config,
		versionControl: versionControl,
		publisher:      publisher,
	}
}

// OpenSource resolves the configured source into a readable tree. The cleanup func is never nil.
func (p *Pipeline) OpenSource(ctx context.Context) (vsc.Tree, func() error, error) {
	noop := func() error { return nil }
	source := p.config.Source

	url := strings.TrimSpace(source.Repository)
	branch := source.Branch
	if url != "" {
		if info, err := os.Stat(url); err == nil && info.IsDir() {
			return vsc.OpenTree(url, branch), noop, nil
		}
	} else if source.Owner == "" || source.Repo == "" {
		return nil, noop, fmt.Errorf("source.repository or source.owner/source.repo must be set")
	}
	if p.versionControl == nil {
		return nil, noop, fmt.Errorf("no version control client for source %q", p.sourceName())
	}
	if url == "" {
		repository, err := p.versionControl.ResolveRepository(ctx, source.Owner, source.Repo)
		if err != nil {
			return nil, noop, err
		}
		url = repository.CloneURL
		if branch == "" {
			branch = repository.DefaultBranch
		}
	}

	if source.Bare {
		dest := filepath.Join(p.config.Workspace.Dir, "repos", repositoryName(url)+".git")
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, noop, err
		}
		if err := p.versionControl.Mirror(ctx, url, dest); err != nil {
			return nil, noop, err
		}
		return vsc.NewBareTree(dest, branch), noop, nil
	}

	dir, cleanup, err := p.versionControl.Clone(ctx, url, branch)
	if err != nil {
		return nil, noop, err
	}
	return vsc.NewDirTree(dir), cleanup, nil
}

func repositoryName(url string) string {
	name := strings.TrimSuffix(path.Base(strings.TrimRight(url, "/")), ".git")
	if name == "" || name == "." || name == "/" {
		return "source"
	}
	return name
}

func (p *Pipeline) projectParser() (*parser.ProjectParser, error) {
	template, err := parser.NewSnippetTemplate(p.config.Extractor.Template)
	if err != nil {
		return nil, err
	}
	return parser.NewProjectParserForLanguages(p.config.Source.Languages, parser.Limits{
		MinLines: p.config.Extractor.MinLines,
		MaxChars: p.config.Extractor.MaxChars,
	}, template)
}

func (p *Pipeline) Extract(ctx context.Context) ([]*models.Snippet, error) {
	projectParser, err := p.projectParser()
	if err != nil {
		return nil, err
	}

	tree, cleanup, err := p.OpenSource(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.GetLogger().WithError(err).Warn("failed to remove cloned source")
		}
	}()

	snippets, err := projectParser.ParseProject(ctx, tree)
	if err != nil {
		return nil, err
	}
	if len(snippets) == 0 {
		return nil, errors.ErrNoSnippetFound
	}
	return snippets, nil
}

// BuildDataset tokenizes the snippets over a vocabulary compacted from them, then packs and splits.
func (p *Pipeline) BuildDataset(snippets []*models.Snippet) (models.Split, *tokenizer.Vocabulary, error) {
	base, err := tokenizer.New(p.config.Tokenizer.Encoding)
	if err != nil {
		return models.Split{}, nil, err
	}
	vocab := tokenizer.Compact(base, p.config.Tokenizer.Encoding, dataset.Texts(snippets))

	sequences := dataset.Tokenize(vocab, snippets, p.config.Tokenizer.AppendEOS)
	blocks, err := dataset.PackBlocks(sequences, p.config.Dataset.BlockSize, dataset.PackOptions{
		PadTokenID:  vocab.EOSTokenID(),
		MaskPadding: p.config.Dataset.MaskPadding,
	})
	if err != nil {
		return models.Split{}, nil, err
	}

	split, err := dataset.Split(blocks, p.config.Dataset.TestSize, p.config.Dataset.Seed)
	if err != nil {
		return models.Split{}, nil, err
	}
	return split, vocab, nil
}

func (p *Pipeline) newModel(vocabSize int) (*lm.LoRAModel, error) {
	base, err := lm.OpenBase(p.config.Model.BasePath, vocabSize, p.config.Model.EmbeddingDim, p.config.Model.Seed)
	if err != nil {
		return nil, err
	}

	adam := lm.DefaultAdamOptions()
	adam.WeightDecay = p.config.Training.WeightDecay
	return lm.NewLoRAModel(base, lm.LoRAOptions{
		Rank:  p.config.Lora.R,
		Alpha: p.config.Lora.Alpha,
		Seed:  p.config.Model.Seed,
		Adam:  adam,
	})
}

func (p *Pipeline) Run(ctx context.Context, runID string) (*models.RunReport, *Trained, error) {
	report, trained, err := p.run(ctx, runID)
	metrics.Get().ObservePipelineRun(metrics.StatusOf(err))

	event := events.Event{Type: events.TypeRunFinished, RunID: runID}
	if err != nil {
		event.Type = events.TypeRunFailed
		event.Message = err.Error()
	}
	if publishErr := p.publisher.Publish(ctx, event); publishErr != nil {
		log.GetLogger().WithError(publishErr).Debug("run event dropped")
	}
	return report, trained, err
}

func (p *Pipeline) run(ctx context.Context, runID string) (*models.RunReport, *Trained, error) {
	logger := log.GetLogger().WithField("run_id", runID)

	snippets, err := p.Extract(ctx)
	if err != nil {
		logger.WithError(err).Error("failed to extract snippets")
		return nil, nil, err
	}

	split, vocab, err := p.BuildDataset(snippets)
	if err != nil {
		logger.WithError(err).Error("failed to build dataset")
		return nil, nil, err
	}
	metrics.Get().ObserveDataset(len(snippets), len(split.Train), len(split.Test))
	logger.WithFields(logrus.Fields{
		"snippets":     len(snippets),
		"train_blocks": len(split.Train),
		"test_blocks":  len(split.Test),
		"vocab_size":   vocab.VocabSize(),
	}).Info("dataset built")

	model, err := p.newModel(vocab.VocabSize())
	if err != nil {
		logger.WithError(err).Error("failed to create model")
		return nil, nil, err
	}

	session, err := trainer.NewSession(runID, trainer.OptionsFromConfig(p.config.Training), model, vocab, p.publisher)
	if err != nil {
		return nil, nil, err
	}
	defer session.Close()

	result, err := session.Run(ctx, split)
	if err != nil {
		logger.WithError(err).Error("training failed")
		return nil, nil, err
	}

	report := &models.RunReport{
		RunID:          runID,
		Repository:     p.sourceName(),
		Snippets:       len(snippets),
		TrainBlocks:    len(split.Train),
		TestBlocks:     len(split.Test),
		VocabSize:      vocab.VocabSize(),
		Steps:          result.Steps,
		FinalTrainLoss: result.FinalTrainLoss,
		FinalEvalLoss:  result.FinalEvalLoss,
		Checkpoints:    result.Checkpoints,
	}
	for _, prompt := range p.config.Generation.Prompts {
		completion, err := generation.Greedy(ctx, model, vocab, prompt, p.config.Generation.MaxNewTokens)
		if err != nil {
			return nil, nil, err
		}
		report.Samples = append(report.Samples, models.Sample{Prompt: prompt, Completion: completion})
	}

	return report, &Trained{Model: model, Tokenizer: vocab}, nil
}

func (p *Pipeline) sourceName() string {
	if p.config.Source.Repository != "" {
		return p.config.Source.Repository
	}
	return p.config.Source.Owner + "/" + p.config.Source.Repo
}

// LatestCheckpoint returns the highest-numbered epoch directory under dir.
func LatestCheckpoint(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	latest, best := "", -1
	for _, entry := range entries {
		var epoch int
		if !entry.IsDir() {
			continue
		}
		if _, err := fmt.Sscanf(entry.Name(), "epoch_%d", &epoch); err != nil {
			continue
		}
		if epoch > best {
			best, latest = epoch, filepath.Join(dir, entry.Name())
		}
	}
	return latest, best >= 0
}
