package kafka

const (
	bootstrapServersKey = "bootstrap.servers"
	groupIdKey          = "group.id"
	autoOffsetResetKey  = "auto.offset.reset"
	enableAutoCommitKey = "enable.auto.commit"
	clientIdKey         = "client.id"
)

type ConsumerConfig struct {
	Brokers    string
	GroupID    string
	Topics     []string
	AutoOffset string
}

type ProducerConfig struct {
	Brokers  string
	ClientID string
}

type Option func(*options)

type options struct {
	metricsHandler func(status string)
}

// WithMetricsHandler reports "success" or "failure" for every publish or consume.
func WithMetricsHandler(handler func(status string)) Option {
	return func(o *options) {
		o.metricsHandler = handler
	}
}

func (o *options) observe(err error) {
	if o.metricsHandler == nil {
		return
	}
	if err != nil {
		o.metricsHandler("failure")
		return
	}
	o.metricsHandler("success")
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
