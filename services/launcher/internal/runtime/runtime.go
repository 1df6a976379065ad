package runtime

import (
	"context"
	"errors"
	"time"
)

var ErrContainerNotFound = errors.New("container not found")

type Mount struct {
	Source string
	Target string
}

// Spec describes one workspace container.
type Spec struct {
	Name          string
	Image         string
	Command       []string
	Env           map[string]string
	Labels        map[string]string
	GPU           int
	HostPort      int
	ContainerPort int
	Mounts        []Mount
	ShmSizeBytes  int64
}

type Container struct {
	ID      string
	Name    string
	Image   string
	State   string
	Status  string
	Labels  map[string]string
	Created time.Time
}

//go:generate mockgen -source=runtime.go -destination=mocks/runtime_mock.go -package=mocks

type Runtime interface {
	Pull(ctx context.Context, image, registryAuth string) error
	Run(ctx context.Context, spec Spec) (string, error)
	// Remove stops and deletes the named container.
	Remove(ctx context.Context, name string, timeout time.Duration) error
	List(ctx context.Context, labels map[string]string) ([]Container, error)
	Close() error
}
