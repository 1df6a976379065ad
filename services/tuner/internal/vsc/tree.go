package vsc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tree is a readable snapshot of a version-controlled source tree.
type Tree interface {
	Root() string
	// Walk calls fn for every file accepted by accept, in lexical path order.
	Walk(ctx context.Context, accept func(path string) bool, fn func(path string, content []byte) error) error
}

var skippedDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"__pycache__":  true,
}

type DirTree struct {
	root string
}

func NewDirTree(root string) *DirTree {
	return &DirTree{root: root}
}

func (t *DirTree) Root() string {
	return t.root
}

func (t *DirTree) Walk(ctx context.Context, accept func(path string) bool, fn func(path string, content []byte) error) error {
	return filepath.WalkDir(t.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != t.root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !accept(path) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return fn(path, content)
	})
}

// BareTree reads files of a revision straight out of a bare repository.
type BareTree struct {
	gitDir    string
	revision  string
	gitBinary string
}

func NewBareTree(gitDir, revision string) *BareTree {
	if revision == "" {
		revision = "HEAD"
	}
	return &BareTree{gitDir: gitDir, revision: revision, gitBinary: "git"}
}

func (t *BareTree) Root() string {
	return t.gitDir
}

func (t *BareTree) Walk(ctx context.Context, accept func(path string) bool, fn func(path string, content []byte) error) error {
	listing, err := t.git(ctx, "ls-tree", "-r", "-z", "--name-only", t.revision)
	if err != nil {
		return err
	}

	for _, path := range strings.Split(string(listing), "\x00") {
		if path == "" || !accept(path) || inSkippedDir(path) {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		content, err := t.git(ctx, "cat-file", "blob", t.revision+":"+path)
		if err != nil {
			return err
		}
		if err := fn(path, content); err != nil {
			return err
		}
	}
	return nil
}

func (t *BareTree) git(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.gitBinary, append([]string{"--git-dir", t.gitDir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, stderr.String())
	}
	return out, nil
}

func inSkippedDir(path string) bool {
	parts := strings.Split(path, "/")
	for _, part := range parts[:len(parts)-1] {
		if skipDir(part) {
			return true
		}
	}
	return false
}

// skipDir reports whether a directory is hidden or holds vendored or generated files.
func skipDir(name string) bool {
	return skippedDirs[name] || strings.HasPrefix(name, ".")
}

// IsBareRepository reports whether dir looks like a bare git directory.
func IsBareRepository(dir string) bool {
	for _, name := range []string{"HEAD", "objects", "refs"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return os.IsNotExist(err)
}

// OpenTree picks a BareTree or a DirTree for a local path.
func OpenTree(path, revision string) Tree {
	if IsBareRepository(path) {
		return NewBareTree(path, revision)
	}
	return NewDirTree(path)
}
