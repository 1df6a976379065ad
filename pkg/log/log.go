package log

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.Mutex
	log *logrus.Logger
)

func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	logger := logrus.New()
	logger.SetLevel(cfg.Level)
	logger.SetFormatter(newTextFormatter())
	if cfg.Env == "production" {
		logger.SetFormatter(newJSONFormatter())
	}
	if cfg.Service != "" {
		logger.AddHook(&serviceHook{service: cfg.Service})
	}

	var writers []io.Writer
	writers = append(writers, os.Stdout)
	if cfg.LogToFile {
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			panic(err)
		}
		writers = append(writers, file)
	}

	logger.SetOutput(io.MultiWriter(writers...))
	log = logger
}

func GetLogger() *logrus.Logger {
	mu.Lock()
	initialized := log != nil
	mu.Unlock()
	if !initialized {
		Init(Config{
			Level: logrus.InfoLevel,
			Env:   "development",
		})
	}

	mu.Lock()
	defer mu.Unlock()
	return log
}
