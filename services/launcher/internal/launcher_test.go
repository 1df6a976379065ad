package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go_code_tuner/services/launcher/internal/config"
	"go_code_tuner/services/launcher/internal/runtime"
	"go_code_tuner/services/launcher/internal/runtime/mocks"
)

func newLauncher(t *testing.T) (*Launcher, *mocks.MockRuntime, *config.Config) {
	cfg := &config.Config{
		Image:     "tuner:test",
		GPUCount:  2,
		BasePort:  9000,
		CacheRoot: t.TempDir(),
		Workspace: t.TempDir(),
	}
	cfg.ApplyDefaults()
	rt := mocks.NewMockRuntime(gomock.NewController(t))
	return NewLauncher(cfg, rt), rt, cfg
}

func TestLauncher_Launch(t *testing.T) {
	launcher, rt, cfg := newLauncher(t)

	var spec runtime.Spec
	rt.EXPECT().List(gomock.Any(), map[string]string{LabelManagedBy: "launcher", LabelGroup: "5"}).Return(nil, nil)
	rt.EXPECT().Pull(gomock.Any(), "tuner:test", "").Return(nil)
	rt.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s runtime.Spec) (string, error) {
		spec = s
		return "c-5", nil
	})

	instance, err := launcher.Launch(context.Background(), 5, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "c-5", instance.ContainerID)
	assert.Equal(t, "hunter2", instance.Token)
	assert.Equal(t, 1, instance.GPU)
	assert.Equal(t, 9005, instance.HostPort)

	assert.Equal(t, "tuner-group5", spec.Name)
	assert.Equal(t, "hunter2", spec.Env["WORKSPACE_PASSWORD"])
	assert.Equal(t, "/root/.cache/tiktoken", spec.Env["TIKTOKEN_CACHE_DIR"])
	assert.Equal(t, "/root/.cache/huggingface", spec.Env["HF_HOME"])
	assert.Equal(t, 8888, spec.ContainerPort)
	assert.Equal(t, []runtime.Mount{
		{Source: filepath.Join(cfg.CacheRoot, "group5"), Target: "/root/.cache"},
		{Source: filepath.Join(cfg.Workspace, "group5"), Target: "/workspace"},
	}, spec.Mounts)
	assert.Equal(t, "5", spec.Labels[LabelGroup])

	_, err = os.Stat(filepath.Join(cfg.CacheRoot, "group5"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Workspace, "group5"))
	assert.NoError(t, err)
}

func launchSpec(t *testing.T, launcher *Launcher, rt *mocks.MockRuntime, group int) runtime.Spec {
	t.Helper()
	var spec runtime.Spec
	rt.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
	rt.EXPECT().Pull(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	rt.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s runtime.Spec) (string, error) {
		spec = s
		return "c", nil
	})
	_, err := launcher.Launch(context.Background(), group, "")
	require.NoError(t, err)
	return spec
}

func mountSource(spec runtime.Spec, target string) string {
	for _, m := range spec.Mounts {
		if m.Target == target {
			return m.Source
		}
	}
	return ""
}

func TestLauncher_GroupsGetSeparateWorkspaces(t *testing.T) {
	launcher, rt, _ := newLauncher(t)

	first := launchSpec(t, launcher, rt, 1)
	second := launchSpec(t, launcher, rt, 2)

	require.NotEmpty(t, mountSource(first, "/workspace"))
	assert.NotEqual(t, mountSource(first, "/workspace"), mountSource(second, "/workspace"))
	assert.NotEqual(t, mountSource(first, "/root/.cache"), mountSource(second, "/root/.cache"))
}

func TestLauncher_DefaultConfigOutsideMounts(t *testing.T) {
	launcher, rt, _ := newLauncher(t)
	spec := launchSpec(t, launcher, rt, 1)

	configPath := ConfigPath(spec.Command)
	require.Equal(t, "/etc/tuner/config.yaml", configPath)
	for _, m := range spec.Mounts {
		_, hidden := under(m.Target, configPath)
		assert.False(t, hidden, "config %s is under mount %s", configPath, m.Target)
	}
}

func TestLauncher_RejectsConfigHiddenByMount(t *testing.T) {
	launcher, rt, cfg := newLauncher(t)
	cfg.Container.Command = []string{"tuner", "serve", "--config", "/workspace/config.yaml"}
	rt.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

	_, err := launcher.Launch(context.Background(), 3, "")
	require.ErrorContains(t, err, "hidden by the mount")

	// a config seeded into the group's workspace is visible to the container
	seeded := filepath.Join(cfg.Workspace, "group3", "config.yaml")
	require.NoError(t, os.WriteFile(seeded, []byte("env: production\n"), 0o644))
	rt.EXPECT().Pull(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	rt.EXPECT().Run(gomock.Any(), gomock.Any()).Return("c-3", nil)

	_, err = launcher.Launch(context.Background(), 3, "")
	require.NoError(t, err)
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/a.yaml", ConfigPath([]string{"tuner", "serve", "--config", "/a.yaml"}))
	assert.Equal(t, "/b.yaml", ConfigPath([]string{"tuner", "serve", "-c", "/b.yaml"}))
	assert.Equal(t, "/c.yaml", ConfigPath([]string{"tuner", "serve", "--config=/c.yaml"}))
	assert.Equal(t, "", ConfigPath([]string{"tuner", "serve"}))
}

func TestLauncher_LaunchGeneratesToken(t *testing.T) {
	launcher, rt, _ := newLauncher(t)
	rt.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
	rt.EXPECT().Pull(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	rt.EXPECT().Run(gomock.Any(), gomock.Any()).Return("c-0", nil)

	instance, err := launcher.Launch(context.Background(), 0, "")
	require.NoError(t, err)
	_, err = uuid.Parse(instance.Token)
	assert.NoError(t, err)
}

func TestLauncher_LaunchExisting(t *testing.T) {
	launcher, rt, _ := newLauncher(t)
	rt.EXPECT().List(gomock.Any(), gomock.Any()).Return([]runtime.Container{{
		ID:     "c-1",
		Name:   "tuner-group1",
		State:  "running",
		Labels: map[string]string{LabelGroup: "1", LabelGPU: "1", LabelPort: "9001"},
	}}, nil)

	_, err := launcher.Launch(context.Background(), 1, "")
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestLauncher_LaunchPullFails(t *testing.T) {
	launcher, rt, _ := newLauncher(t)
	rt.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
	rt.EXPECT().Pull(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("denied"))

	_, err := launcher.Launch(context.Background(), 2, "t")
	require.ErrorContains(t, err, "denied")
}

func TestLauncher_Stop(t *testing.T) {
	launcher, rt, _ := newLauncher(t)
	rt.EXPECT().Remove(gomock.Any(), "tuner-group4", 30*time.Second).Return(nil)
	require.NoError(t, launcher.Stop(context.Background(), 4))

	rt.EXPECT().Remove(gomock.Any(), "tuner-group6", gomock.Any()).Return(runtime.ErrContainerNotFound)
	require.ErrorIs(t, launcher.Stop(context.Background(), 6), runtime.ErrContainerNotFound)
}

func TestLauncher_List(t *testing.T) {
	launcher, rt, _ := newLauncher(t)
	rt.EXPECT().List(gomock.Any(), map[string]string{LabelManagedBy: "launcher"}).Return([]runtime.Container{
		{Name: "tuner-group3", State: "running", Labels: map[string]string{LabelGroup: "3", LabelGPU: "1", LabelPort: "9003"}},
		{Name: "stray", Labels: map[string]string{LabelGroup: "x"}},
		{Name: "tuner-group0", State: "exited", Labels: map[string]string{LabelGroup: "0", LabelGPU: "0", LabelPort: "9000"}},
	}, nil)

	instances, err := launcher.List(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, 0, instances[0].Group)
	assert.Equal(t, "exited", instances[0].State)
	assert.Equal(t, 9003, instances[1].HostPort)
}
