package internal

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/go-github/v58/github"
	"github.com/sirupsen/logrus"
	"go_code_tuner/pkg/kafka"
	"go_code_tuner/pkg/log"
	"go_code_tuner/pkg/retry"
	"go_code_tuner/services/tuner/api"
	"go_code_tuner/services/tuner/internal/config"
	"go_code_tuner/services/tuner/internal/events"
	"go_code_tuner/services/tuner/internal/generation"
	"go_code_tuner/services/tuner/internal/metrics"
	"go_code_tuner/services/tuner/internal/vsc"
	"golang.org/x/oauth2"
)

// Service is the workspace container entry point: an HTTP API over the pipeline and the tuned model.
type Service struct {
	config     *config.Config
	vscClient  vsc.VersionControlSystem
	publisher  events.Publisher
	generator  generation.Generator
	runner     *Runner
	httpServer *http.Server
}

func NewService(config *config.Config) *Service {
	return &Service{config: config}
}

func (s *Service) Start(ctx context.Context) error {
	logger := log.GetLogger()
	logger.WithFields(logrus.Fields{
		"address":    s.config.Server.Address,
		"workspace":  s.config.Workspace.Dir,
		"output_dir": s.config.Training.OutputDir,
		"remote":     s.config.Generation.Remote.APIBaseURL != "",
	}).Info("config loaded for tuner")
	if s.config.Server.Password == "" {
		logger.Warn("WORKSPACE_PASSWORD is empty, the API is unauthenticated")
	}

	if err := s.ConnectToServices(); err != nil {
		return err
	}

	var onTrain func(*Trained)
	if local, ok := s.generator.(*generation.Local); ok {
		onTrain = func(trained *Trained) {
			local.Swap(trained.Model, trained.Tokenizer)
		}
	}
	s.runner = NewRunner(ctx, NewPipeline(s.config, s.vscClient, s.publisher), onTrain)

	handler := api.NewHandler(s.config, s.runner, s.generator)
	s.httpServer = &http.Server{
		Addr:    s.config.Server.Address,
		Handler: handler.RegisterRoutes(),
	}

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	logger.Info("server running on " + s.config.Server.Address)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Service) shutdown() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.GetLogger().WithError(err).Warn("failed to shut down http server")
	}
}

func (s *Service) Close() {
	s.shutdown()
	if s.runner != nil {
		s.runner.Wait()
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
}

func (s *Service) ConnectToServices() error {
	s.vscClient = NewVersionControl(s.config)

	publisher, err := NewPublisher(s.config)
	if err != nil {
		return err
	}
	s.publisher = publisher

	generator, err := NewGenerator(s.config)
	if err != nil {
		return err
	}
	s.generator = generator

	// connect to prometheus
	metrics.Init(s.config.Prometheus.Address)
	return nil
}

// NewVersionControl authenticates GitHub API calls when an access token is configured.
func NewVersionControl(cfg *config.Config) vsc.VersionControlSystem {
	if cfg.Github.AccessToken == "" {
		return vsc.NewGithub(github.NewClient(nil))
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Github.AccessToken})
	tc := oauth2.NewClient(context.Background(), ts)
	return vsc.NewGithub(github.NewClient(tc))
}

// NewPublisher publishes training events to Kafka when brokers are configured.
func NewPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.Kafka.Brokers == "" {
		return events.NewNoopPublisher(), nil
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: "tuner",
	}, kafka.WithMetricsHandler(metrics.Get().ObserveKafkaPublish))
	if err != nil {
		return nil, err
	}
	return events.NewKafkaPublisher(producer, cfg.Kafka.Topic, retry.Options{MaxRetries: 3}), nil
}

// NewGenerator prefers a configured remote endpoint, then the latest local checkpoint.
func NewGenerator(cfg *config.Config) (generation.Generator, error) {
	if cfg.Generation.Remote.APIBaseURL != "" {
		return generation.NewRemoteFromConfig(cfg.Generation.Remote)
	}

	dir, ok := LatestCheckpoint(cfg.Training.OutputDir)
	if !ok {
		return generation.NewLocal(nil, nil), nil
	}
	local, err := generation.LoadLocal(dir)
	if err != nil {
		log.GetLogger().WithError(err).WithField("checkpoint", dir).Warn("failed to load checkpoint, starting without a model")
		return generation.NewLocal(nil, nil), nil
	}
	log.GetLogger().WithField("checkpoint", dir).Info("checkpoint loaded")
	return local, nil
}

// NewConsumer subscribes to the training events topic.
func NewConsumer(cfg *config.Config) (kafka.Consumer, error) {
	if cfg.Kafka.Brokers == "" {
		return nil, errors.New("kafka.brokers is not configured")
	}
	return kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:    cfg.Kafka.Brokers,
		GroupID:    cfg.Kafka.GroupID,
		Topics:     []string{cfg.Kafka.Topic},
		AutoOffset: cfg.Kafka.AutoOffset,
	})
}
