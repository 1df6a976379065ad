package internal

import (
	"fmt"
	"path/filepath"

	"go_code_tuner/services/launcher/internal/config"
)

const maxPort = 65535

// Placement is where a group's workspace runs on this host.
type Placement struct {
	Group        int    `json:"group"`
	Name         string `json:"name"`
	GPU          int    `json:"gpu"`
	HostPort     int    `json:"host_port"`
	CacheDir     string `json:"cache_dir"`
	WorkspaceDir string `json:"workspace_dir"`
}

// Place maps a group number to a GPU round robin and to a port offset from the base port.
func Place(cfg *config.Config, group int) (Placement, error) {
	if group < 0 {
		return Placement{}, fmt.Errorf("group number must not be negative, got %d", group)
	}
	if cfg.GPUCount <= 0 {
		return Placement{}, fmt.Errorf("gpu_count must be positive, got %d", cfg.GPUCount)
	}
	port := cfg.BasePort + group
	if port > maxPort {
		return Placement{}, fmt.Errorf("group %d maps to port %d, above %d", group, port, maxPort)
	}

	return Placement{
		Group:        group,
		Name:         ContainerName(cfg.Prefix, group),
		GPU:          group % cfg.GPUCount,
		HostPort:     port,
		CacheDir:     filepath.Join(cfg.CacheRoot, groupDir(group)),
		WorkspaceDir: filepath.Join(cfg.Workspace, groupDir(group)),
	}, nil
}

func ContainerName(prefix string, group int) string {
	return prefix + "-" + groupDir(group)
}

func groupDir(group int) string {
	return fmt.Sprintf("group%d", group)
}
