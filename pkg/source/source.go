// Package source finds the version control revision a build artifact was produced from.
package source

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// Revision identifies the commit checked out in a work tree.
type Revision struct {
	Commit string
	// Branch is empty for a detached HEAD.
	Branch string
}

// Describe returns the HEAD revision of the git work tree containing path, or nil
// if path is not inside one.
func Describe(path string) (*Revision, error) {
	dir := path
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		dir = filepath.Dir(path)
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Cause(err) == git.ErrRepositoryNotExists {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open repository at %v", dir)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, errors.Wrap(err, "resolve HEAD")
	}
	rev := &Revision{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	return rev, nil
}
