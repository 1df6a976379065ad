package vsc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goFilesOnly(path string) bool {
	return strings.HasSuffix(path, ".go")
}

func TestDirTree_SkipsHiddenAndVendored(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"main.go":             "package main",
		"pkg/util.go":         "package pkg",
		"pkg/README.md":       "docs",
		"vendor/dep/dep.go":   "package dep",
		".hidden/secret.go":   "package secret",
		"node_modules/x/x.go": "package x",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	var seen []string
	err := NewDirTree(root).Walk(context.Background(), goFilesOnly, func(path string, content []byte) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		seen = append(seen, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "pkg/util.go"}, seen)
}

func TestDirTree_CancelledContext(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDirTree(root).Walk(ctx, goFilesOnly, func(string, []byte) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestBareTree_ReadsCommittedFiles(t *testing.T) {
	requireGit(t)
	source := newSourceRepo(t, map[string]string{
		"main.go":           "package main\n",
		"notes.txt":         "not code",
		"vendor/dep/dep.go": "package dep\n",
	})
	bare := filepath.Join(t.TempDir(), "source.git")
	runGit(t, t.TempDir(), "clone", "--bare", source, bare)

	tree := OpenTree(bare, "")
	require.IsType(t, &BareTree{}, tree)

	contents := map[string]string{}
	err := tree.Walk(context.Background(), goFilesOnly, func(path string, content []byte) error {
		contents[path] = string(content)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"main.go": "package main\n"}, contents)
}

func TestOpenTree_WorkingDirectory(t *testing.T) {
	assert.IsType(t, &DirTree{}, OpenTree(t.TempDir(), ""))
}

func TestTrees_SkipSameDirectories(t *testing.T) {
	requireGit(t)
	source := newSourceRepo(t, map[string]string{
		"main.go":                    "package main\n",
		"pkg/util.go":                "package pkg\n",
		".github/scripts/release.go": "package scripts\n",
		".config/lint.go":            "package config\n",
		"vendor/dep/dep.go":          "package dep\n",
	})
	bare := filepath.Join(t.TempDir(), "source.git")
	runGit(t, t.TempDir(), "clone", "--bare", source, bare)

	walk := func(tree Tree) []string {
		var seen []string
		err := tree.Walk(context.Background(), goFilesOnly, func(path string, _ []byte) error {
			rel, err := filepath.Rel(tree.Root(), path)
			if err != nil || strings.HasPrefix(rel, "..") {
				rel = path
			}
			seen = append(seen, filepath.ToSlash(rel))
			return nil
		})
		require.NoError(t, err)
		return seen
	}

	fromDir := walk(NewDirTree(source))
	fromBare := walk(NewBareTree(bare, ""))
	assert.Equal(t, []string{"main.go", "pkg/util.go"}, fromDir)
	assert.Equal(t, fromDir, fromBare)
}
