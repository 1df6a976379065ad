package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go_code_tuner/pkg/log"
)

var (
	once         sync.Once
	registerOnce sync.Once
	instance     *Metrics
)

func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

type Metrics struct {
	kafkaPublishCounter *prometheus.CounterVec
	trainingStepCounter prometheus.Counter
	lossGauge           *prometheus.GaugeVec
	learningRateGauge   prometheus.Gauge
	checkpointCounter   prometheus.Counter
	pipelineRunCounter  *prometheus.CounterVec
	snippetGauge        prometheus.Gauge
	blockGauge          *prometheus.GaugeVec
	generationCounter   *prometheus.CounterVec
	generationLatency   *prometheus.HistogramVec
}

func newMetrics() *Metrics {
	return &Metrics{
		kafkaPublishCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafka_publish_total",
				Help: "Total number of kafka publish",
			},
			[]string{"status"},
		),
		trainingStepCounter: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "training_steps_total",
				Help: "Total number of optimizer steps",
			},
		),
		lossGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "training_loss",
				Help: "Most recent loss per split",
			},
			[]string{"split"},
		),
		learningRateGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "training_learning_rate",
				Help: "Learning rate of the most recent step",
			},
		),
		checkpointCounter: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "training_checkpoints_total",
				Help: "Total number of saved adapter checkpoints",
			},
		),
		pipelineRunCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"status"},
		),
		snippetGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dataset_snippets",
				Help: "Snippets extracted by the most recent run",
			},
		),
		blockGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dataset_blocks",
				Help: "Blocks per split in the most recent run",
			},
			[]string{"split"},
		),
		generationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generation_requests_total",
				Help: "Total number of generation requests",
			},
			[]string{"backend", "status"},
		),
		generationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "generation_latency_seconds",
				Help:    "Latency of generation requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
	}
}

type Status string

const (
	Success Status = "success"
	Failure Status = "failure"
)

func StatusOf(err error) Status {
	if err != nil {
		return Failure
	}
	return Success
}

func (m *Metrics) ObserveKafkaPublish(status string) {
	m.kafkaPublishCounter.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveTrainingStep(loss, learningRate float64) {
	m.trainingStepCounter.Inc()
	m.lossGauge.With(prometheus.Labels{"split": "train"}).Set(loss)
	m.learningRateGauge.Set(learningRate)
}

func (m *Metrics) ObserveEvalLoss(loss float64) {
	m.lossGauge.With(prometheus.Labels{"split": "eval"}).Set(loss)
}

func (m *Metrics) ObserveCheckpoint() {
	m.checkpointCounter.Inc()
}

func (m *Metrics) ObservePipelineRun(status Status) {
	m.pipelineRunCounter.With(prometheus.Labels{"status": string(status)}).Inc()
}

func (m *Metrics) ObserveDataset(snippets, trainBlocks, testBlocks int) {
	m.snippetGauge.Set(float64(snippets))
	m.blockGauge.With(prometheus.Labels{"split": "train"}).Set(float64(trainBlocks))
	m.blockGauge.With(prometheus.Labels{"split": "test"}).Set(float64(testBlocks))
}

func (m *Metrics) ObserveGeneration(backend string, status Status, start time.Time) {
	m.generationCounter.With(prometheus.Labels{"backend": backend, "status": string(status)}).Inc()
	m.generationLatency.With(prometheus.Labels{"backend": backend}).Observe(time.Since(start).Seconds())
}

// Register adds every collector to the default registry once.
func Register() {
	registerOnce.Do(func() {
		m := Get()
		prometheus.MustRegister(
			m.kafkaPublishCounter,
			m.trainingStepCounter,
			m.lossGauge,
			m.learningRateGauge,
			m.checkpointCounter,
			m.pipelineRunCounter,
			m.snippetGauge,
			m.blockGauge,
			m.generationCounter,
			m.generationLatency,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Init registers the collectors and, when address is set, serves /metrics on it.
func Init(address string) {
	Register()
	if address == "" {
		return
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", Handler())
		if err := http.ListenAndServe(address, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.GetLogger().WithError(err).Error("failed to serve prometheus metrics")
		}
	}()
}
