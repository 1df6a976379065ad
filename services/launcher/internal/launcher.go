package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go_code_tuner/pkg/log"
	"go_code_tuner/services/launcher/internal/config"
	"go_code_tuner/services/launcher/internal/runtime"
)

const (
	LabelManagedBy = "tuner.managed-by"
	LabelGroup     = "tuner.group"
	LabelGPU       = "tuner.gpu"
	LabelPort      = "tuner.port"

	managedBy = "launcher"

	cacheTarget     = "/root/.cache"
	workspaceTarget = "/workspace"
)

var ErrAlreadyRunning = errors.New("workspace already exists")

// Instance is a launched workspace. Token is only known right after launch.
type Instance struct {
	Placement
	ContainerID string    `json:"container_id"`
	Image       string    `json:"image"`
	State       string    `json:"state"`
	Status      string    `json:"status"`
	Token       string    `json:"token,omitempty"`
	Created     time.Time `json:"created"`
}

type Launcher struct {
	config  *config.Config
	runtime runtime.Runtime
}

func NewLauncher(cfg *config.Config, rt runtime.Runtime) *Launcher {
	return &Launcher{config: cfg, runtime: rt}
}

// Launch starts the workspace container of a group. An empty token is replaced by a generated one.
func (l *Launcher) Launch(ctx context.Context, group int, token string) (*Instance, error) {
	placement, err := Place(l.config, group)
	if err != nil {
		return nil, err
	}
	if token == "" {
		token = uuid.New().String()
	}

	existing, err := l.find(ctx, group)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyRunning, existing.Name, existing.State)
	}

	for _, dir := range []string{placement.CacheDir, placement.WorkspaceDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	spec := l.spec(placement, token)
	if err := checkConfigVisible(spec); err != nil {
		return nil, err
	}
	if err := l.runtime.Pull(ctx, l.config.Image, l.config.Pull.RegistryAuth); err != nil {
		return nil, err
	}

	id, err := l.runtime.Run(ctx, spec)
	if err != nil {
		return nil, err
	}

	log.GetLogger().WithFields(logrus.Fields{
		"group": group,
		"gpu":   placement.GPU,
		"port":  placement.HostPort,
	}).Info("workspace launched")
	return &Instance{
		Placement:   placement,
		ContainerID: id,
		Image:       l.config.Image,
		State:       "running",
		Token:       token,
		Created:     time.Now(),
	}, nil
}

func (l *Launcher) spec(placement Placement, token string) runtime.Spec {
	return runtime.Spec{
		Name:    placement.Name,
		Image:   l.config.Image,
		Command: l.config.Container.Command,
		Env: map[string]string{
			"WORKSPACE_PASSWORD": token,
			"TIKTOKEN_CACHE_DIR": cacheTarget + "/tiktoken",
			"HF_HOME":            cacheTarget + "/huggingface",
		},
		Labels: map[string]string{
			LabelManagedBy: managedBy,
			LabelGroup:     strconv.Itoa(placement.Group),
			LabelGPU:       strconv.Itoa(placement.GPU),
			LabelPort:      strconv.Itoa(placement.HostPort),
		},
		GPU:           placement.GPU,
		HostPort:      placement.HostPort,
		ContainerPort: l.config.Container.Port,
		Mounts: []runtime.Mount{
			{Source: placement.CacheDir, Target: cacheTarget},
			{Source: placement.WorkspaceDir, Target: workspaceTarget},
		},
		ShmSizeBytes: l.config.Container.ShmSizeMB << 20,
	}
}

// checkConfigVisible fails when the container's --config file lies under a bind mount
// whose host directory does not contain it.
func checkConfigVisible(spec runtime.Spec) error {
	configPath := ConfigPath(spec.Command)
	if configPath == "" {
		return nil
	}
	for _, m := range spec.Mounts {
		rel, ok := under(m.Target, configPath)
		if !ok {
			continue
		}
		hostPath := filepath.Join(m.Source, filepath.FromSlash(rel))
		if _, err := os.Stat(hostPath); err != nil {
			return fmt.Errorf("config %s is hidden by the mount of %s, place it at %s or outside %s",
				configPath, m.Source, hostPath, m.Target)
		}
	}
	return nil
}

// ConfigPath returns the value of the --config/-c flag in a container command.
func ConfigPath(command []string) string {
	for i, arg := range command {
		switch {
		case (arg == "--config" || arg == "-c") && i+1 < len(command):
			return command[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func under(target, p string) (string, bool) {
	target, p = path.Clean(target), path.Clean(p)
	if p == target {
		return ".", true
	}
	prefix := target
	if prefix != "/" {
		prefix += "/"
	}
	return strings.CutPrefix(p, prefix)
}

func (l *Launcher) Stop(ctx context.Context, group int) error {
	placement, err := Place(l.config, group)
	if err != nil {
		return err
	}

	timeout := time.Duration(l.config.Container.StopTimeoutSec) * time.Second
	if err := l.runtime.Remove(ctx, placement.Name, timeout); err != nil {
		return err
	}
	log.GetLogger().WithField("group", group).Info("workspace stopped")
	return nil
}

// List returns every workspace this launcher manages, ordered by group.
func (l *Launcher) List(ctx context.Context) ([]Instance, error) {
	containers, err := l.runtime.List(ctx, map[string]string{LabelManagedBy: managedBy})
	if err != nil {
		return nil, err
	}

	instances := make([]Instance, 0, len(containers))
	for _, c := range containers {
		instance, err := instanceOf(c)
		if err != nil {
			log.GetLogger().WithError(err).WithField("container", c.Name).Warn("skipping container with broken labels")
			continue
		}
		instances = append(instances, instance)
	}
	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Group < instances[j].Group
	})
	return instances, nil
}

func (l *Launcher) find(ctx context.Context, group int) (*Instance, error) {
	containers, err := l.runtime.List(ctx, map[string]string{
		LabelManagedBy: managedBy,
		LabelGroup:     strconv.Itoa(group),
	})
	if err != nil {
		return nil, err
	}
	if len(containers) == 0 {
		return nil, nil
	}
	instance, err := instanceOf(containers[0])
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func instanceOf(c runtime.Container) (Instance, error) {
	var placement Placement
	var err error
	if placement.Group, err = strconv.Atoi(c.Labels[LabelGroup]); err != nil {
		return Instance{}, fmt.Errorf("label %s: %w", LabelGroup, err)
	}
	if placement.GPU, err = strconv.Atoi(c.Labels[LabelGPU]); err != nil {
		return Instance{}, fmt.Errorf("label %s: %w", LabelGPU, err)
	}
	if placement.HostPort, err = strconv.Atoi(c.Labels[LabelPort]); err != nil {
		return Instance{}, fmt.Errorf("label %s: %w", LabelPort, err)
	}
	placement.Name = c.Name

	return Instance{
		Placement:   placement,
		ContainerID: c.ID,
		Image:       c.Image,
		State:       c.State,
		Status:      c.Status,
		Created:     c.Created,
	}, nil
}
