package vsc

import (
	"context"
)

type Repository struct {
	Owner         string
	Name          string
	CloneURL      string
	DefaultBranch string
}

//go:generate mockgen -source=vsc.go -destination=mocks/vsc_mock.go -package=mocks

type VersionControlSystem interface {
	ResolveRepository(ctx context.Context, owner, repo string) (*Repository, error)
	Clone(ctx context.Context, url, branch string) (string, func() error, error)
	Mirror(ctx context.Context, url, dest string) error
}
