package runtime

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/sirupsen/logrus"
	"go_code_tuner/pkg/log"
	"go_code_tuner/pkg/retry"
)

// DockerAPI is the part of the Docker engine client the runtime uses.
type DockerAPI interface {
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	Close() error
}

type Docker struct {
	api          DockerAPI
	retryOptions retry.Options
}

type DockerOption func(*Docker)

func WithPullRetries(maxRetries int) DockerOption {
	return func(d *Docker) {
		d.retryOptions.MaxRetries = maxRetries
	}
}

func WithRetryOptions(opts retry.Options) DockerOption {
	return func(d *Docker) {
		d.retryOptions = opts
	}
}

// NewDocker connects to the engine named by the DOCKER_* environment.
func NewDocker(opts ...DockerOption) (*Docker, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return NewDockerWithAPI(cli, opts...), nil
}

func NewDockerWithAPI(api DockerAPI, opts ...DockerOption) *Docker {
	d := &Docker{
		api: api,
		retryOptions: retry.Options{
			MaxRetries: 3,
			Strategy:   retry.ExponentialJitterBackoff(2*time.Second, 30*time.Second),
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.retryOptions.OnRetry == nil {
		d.retryOptions.OnRetry = func(attempt int, err error) {
			log.GetLogger().WithError(err).WithField("attempt", attempt).Warn("retrying docker operation")
		}
	}
	return d
}

func (d *Docker) Pull(ctx context.Context, ref, registryAuth string) error {
	logger := log.GetLogger().WithField("image", ref)
	logger.Info("pulling image")

	err := retry.DoErr(ctx, d.retryOptions, func() error {
		reader, err := d.api.ImagePull(ctx, ref, image.PullOptions{RegistryAuth: registryAuth})
		if err != nil {
			return err
		}
		defer reader.Close()

		// the pull only completes once the progress stream is drained
		_, err = io.Copy(io.Discard, reader)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	return nil
}

func (d *Docker) Run(ctx context.Context, spec Spec) (string, error) {
	containerPort, err := nat.NewPort("tcp", strconv.Itoa(spec.ContainerPort))
	if err != nil {
		return "", err
	}

	env := make([]string, 0, len(spec.Env))
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)

	mounts := make([]mount.Mount, 0, len(spec.Mounts))
	for _, m := range spec.Mounts {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: m.Source,
			Target: m.Target,
		})
	}

	containerConfig := &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Command,
		Env:          env,
		Labels:       spec.Labels,
		ExposedPorts: nat.PortSet{containerPort: struct{}{}},
	}
	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			containerPort: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(spec.HostPort)}},
		},
		Mounts:      mounts,
		ShmSize:     spec.ShmSizeBytes,
		NetworkMode: "bridge",
		Resources: container.Resources{
			DeviceRequests: []container.DeviceRequest{{
				Driver:       "nvidia",
				DeviceIDs:    []string{strconv.Itoa(spec.GPU)},
				Capabilities: [][]string{{"gpu"}},
			}},
		},
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyUnlessStopped,
		},
	}

	resp, err := d.api.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container %s: %w", spec.Name, err)
	}
	for _, warning := range resp.Warnings {
		log.GetLogger().WithField("container", spec.Name).Warn(warning)
	}

	if err := d.api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// leave nothing half-created behind
		if rmErr := d.api.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true}); rmErr != nil {
			log.GetLogger().WithError(rmErr).WithField("container", spec.Name).Warn("failed to remove container after start failure")
		}
		return "", fmt.Errorf("failed to start container %s: %w", spec.Name, err)
	}

	log.GetLogger().WithFields(logrus.Fields{
		"container": spec.Name,
		"id":        resp.ID,
		"gpu":       spec.GPU,
		"port":      spec.HostPort,
	}).Info("container started")
	return resp.ID, nil
}

func (d *Docker) Remove(ctx context.Context, name string, timeout time.Duration) error {
	seconds := int(timeout.Seconds())
	if err := d.api.ContainerStop(ctx, name, container.StopOptions{Timeout: &seconds}); err != nil {
		if cerrdefs.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return fmt.Errorf("failed to stop container %s: %w", name, err)
	}
	if err := d.api.ContainerRemove(ctx, name, container.RemoveOptions{}); err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", name, err)
	}
	return nil
}

func (d *Docker) List(ctx context.Context, labels map[string]string) ([]Container, error) {
	args := filters.NewArgs()
	for k, v := range labels {
		args.Add("label", k+"="+v)
	}

	summaries, err := d.api.ContainerList(ctx, container.ListOptions{All: true, Filters: args})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	containers := make([]Container, 0, len(summaries))
	for _, s := range summaries {
		name := s.ID
		if len(s.Names) > 0 {
			name = strings.TrimPrefix(s.Names[0], "/")
		}
		containers = append(containers, Container{
			ID:      s.ID,
			Name:    name,
			Image:   s.Image,
			State:   string(s.State),
			Status:  s.Status,
			Labels:  s.Labels,
			Created: time.Unix(s.Created, 0),
		})
	}
	return containers, nil
}

func (d *Docker) Close() error {
	return d.api.Close()
}
