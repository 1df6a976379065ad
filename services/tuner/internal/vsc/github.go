package vsc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/go-github/v58/github"
	"github.com/sirupsen/logrus"
	"go_code_tuner/pkg/log"
	"go_code_tuner/pkg/retry"
)

type Github struct {
	githubClient *github.Client
	retryOptions retry.Options
	gitBinary    string
}

type GithubOption func(github *Github)

func WithRetryOptions(opts retry.Options) GithubOption {
	return func(github *Github) {
		github.retryOptions = opts
	}
}

func WithGitBinary(path string) GithubOption {
	return func(github *Github) {
		github.gitBinary = path
	}
}

func NewGithub(githubClient *github.Client, opts ...GithubOption) VersionControlSystem {
	g := &Github{
		githubClient: githubClient,
		gitBinary:    "git",
		retryOptions: retry.Options{
			MaxRetries: 3,
			Strategy:   retry.ExponentialJitterBackoff(time.Second, 10*time.Second),
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.retryOptions.OnRetry == nil {
		g.retryOptions.OnRetry = func(attempt int, err error) {
			log.GetLogger().WithError(err).WithField("attempt", attempt).Warn("git operation failed, retrying")
		}
	}

	return g
}

func (g *Github) ResolveRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if g.githubClient == nil {
		return nil, fmt.Errorf("github client is not configured")
	}

	result, err := retry.New[*github.Repository](g.retryOptions).Do(ctx, func() (*github.Repository, error) {
		r, _, err := g.githubClient.Repositories.Get(ctx, owner, repo)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s/%s: %w", owner, repo, err)
	}

	return &Repository{
		Owner:         owner,
		Name:          repo,
		CloneURL:      result.GetCloneURL(),
		DefaultBranch: result.GetDefaultBranch(),
	}, nil
}

func (g *Github) Clone(ctx context.Context, url, branch string) (string, func() error, error) {
	dir, err := os.MkdirTemp("", "tuner-src-*")
	if err != nil {
		return "", nil, err
	}

	cleanup := func() error {
		return os.RemoveAll(dir)
	}

	args := []string{"clone", "--depth=1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, dir)

	err = retry.DoErr(ctx, g.retryOptions, func() error {
		// a failed attempt can leave a partial checkout behind
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		return g.git(ctx, args...)
	})
	if err != nil {
		_ = cleanup()
		return "", nil, err
	}

	return dir, cleanup, nil
}

// Mirror keeps a bare clone of url at dest, cloning it on first use and fetching afterwards.
func (g *Github) Mirror(ctx context.Context, url, dest string) error {
	logger := log.GetLogger().WithFields(logrus.Fields{"url": url, "dest": dest})

	if _, err := os.Stat(dest); err == nil {
		logger.Info("refreshing bare clone")
		return retry.DoErr(ctx, g.retryOptions, func() error {
			return g.git(ctx, "--git-dir", dest, "fetch", "--prune", "origin", "+refs/heads/*:refs/heads/*")
		})
	}

	logger.Info("creating bare clone")
	return retry.DoErr(ctx, g.retryOptions, func() error {
		if err := os.RemoveAll(dest); err != nil {
			return err
		}
		return g.git(ctx, "clone", "--bare", url, dest)
	})
}

func (g *Github) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, g.gitBinary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, string(output))
	}
	return nil
}
