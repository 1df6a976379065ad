package app

import (
	"context"
	"os/signal"
	"syscall"

	"go_code_tuner/pkg/log"
)

type ServiceInterface interface {
	Start(ctx context.Context) error
	Close()
}

// RunService starts the service and blocks until it returns or the process is interrupted.
func RunService(name string, logConfig log.Config, service ServiceInterface) error {
	logConfig.Service = name
	log.Init(logConfig)
	logger := log.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- service.Start(ctx)
	}()

	var err error
	select {
	case err = <-errCh:
		if err != nil {
			logger.WithError(err).Error("service stopped with error")
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	service.Close()
	return err
}
