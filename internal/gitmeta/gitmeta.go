// Package gitmeta resolves version metadata for generated pages from the
// repository containing a stub inventory.
package gitmeta

import (
	"errors"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
)

// SourceInfo identifies the inventory's source revision. Zero value means
// the inventory does not live inside a git repository.
type SourceInfo struct {
	Commit string
	Branch string
}

// Resolve walks up from the inventory path looking for an enclosing git
// repository and returns its HEAD commit and branch. A missing repository,
// or one without any commits yet, is not an error; a repository whose HEAD
// cannot be read is.
func Resolve(inventoryPath string) (SourceInfo, error) {
	dir := filepath.Dir(inventoryPath)
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return SourceInfo{}, nil
		}
		return SourceInfo{}, apierrors.Wrap(err, apierrors.CategoryGit, apierrors.SeverityWarning,
			"failed to open repository").WithContext("path", dir)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return SourceInfo{}, nil
		}
		return SourceInfo{}, apierrors.Wrap(err, apierrors.CategoryGit, apierrors.SeverityWarning,
			"failed to resolve HEAD").WithContext("path", dir)
	}

	info := SourceInfo{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info, nil
}
