package gitmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoRepository(t *testing.T) {
	dir := t.TempDir()
	inv := filepath.Join(dir, "objects.json")
	require.NoError(t, os.WriteFile(inv, []byte("{}"), 0o644))

	info, err := Resolve(inv)
	require.NoError(t, err)
	require.Empty(t, info.Commit)
	require.Empty(t, info.Branch)
}

func TestResolve_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	inv := filepath.Join(dir, "objects.json")
	require.NoError(t, os.WriteFile(inv, []byte("{}"), 0o644))

	// No commits yet: HEAD does not resolve, but that is not an error.
	info, err := Resolve(inv)
	require.NoError(t, err)
	require.Empty(t, info.Commit)
}

func TestResolve_RepositoryHead(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	inv := filepath.Join(dir, "docs", "objects.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(inv), 0o755))
	require.NoError(t, os.WriteFile(inv, []byte("{}"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("docs/objects.json")
	require.NoError(t, err)
	hash, err := wt.Commit("add inventory", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	info, err := Resolve(inv)
	require.NoError(t, err)
	require.Equal(t, hash.String(), info.Commit)
	require.Equal(t, "master", info.Branch)
}
