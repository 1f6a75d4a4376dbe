// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git commits generated page request artifacts and undoes those
// commits.
// Implements: prd009-git-integration R1, R2, R4, R5;
//
//	docs/ARCHITECTURE § Git Integration.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const generatedByTrailer = "Generated-By: go-pagerequest"

// ErrNotToolCommit is returned when undo targets a commit go-pagerequest
// did not make.
var ErrNotToolCommit = errors.New("not a go-pagerequest commit")

// ErrStagedChanges is returned when files other than the artifacts are
// staged, since committing would sweep them into the artifact commit.
var ErrStagedChanges = errors.New("unrelated changes are staged")

// ErrNoGit is returned when the working directory is not inside a git
// repository.
var ErrNoGit = errors.New("not a git repository")

// Config configures git integration behavior.
type Config struct {
	WorkDir     string // Any directory inside the repository
	AllowStaged bool   // Commit even when unrelated changes are staged
}

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo *gogit.Repository
	root string
	cfg  Config
}

// Open opens the git repository containing the configured work directory.
// Returns ErrNoGit if there is none.
//
// Implements: prd009-git-integration R5.1.
func Open(cfg Config) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(cfg.WorkDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, root: wt.Filesystem.Root(), cfg: cfg}, nil
}

// Root returns the repository's working tree root.
func (r *Repo) Root() string {
	return r.root
}

// RelPath returns path relative to the working tree root in slash form.
func (r *Repo) RelPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		path = abs
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// IsDirty returns true if the working tree has uncommitted changes
// (either staged or unstaged).
//
// Implements: prd009-git-integration R2.1.
func (r *Repo) IsDirty() (bool, error) {
	status, err := r.status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

// Changed reports whether the file at path differs from HEAD, including
// when it is untracked.
//
// Implements: prd009-git-integration R2.2.
func (r *Repo) Changed(path string) (bool, error) {
	rel, err := r.RelPath(path)
	if err != nil {
		return false, err
	}
	status, err := r.status()
	if err != nil {
		return false, err
	}
	fs, ok := status[rel]
	if !ok {
		return false, nil
	}
	return fs.Worktree != gogit.Unmodified || fs.Staging != gogit.Unmodified, nil
}

// IsToolCommit checks whether the HEAD commit was made by go-pagerequest
// by looking for the Generated-By trailer.
//
// Implements: prd009-git-integration R4.2.
func (r *Repo) IsToolCommit() (bool, error) {
	msg, err := r.lastCommitMessage()
	if err != nil {
		return false, fmt.Errorf("getting HEAD commit: %w", err)
	}
	return strings.Contains(msg, generatedByTrailer), nil
}

func (r *Repo) status() (gogit.Status, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}
	return status, nil
}

// lastCommitMessage returns the message of the HEAD commit.
func (r *Repo) lastCommitMessage() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", err
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", err
	}
	return commit.Message, nil
}

// commitCount returns the total number of commits reachable from HEAD.
func (r *Repo) commitCount() (int, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, err
	}
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		count++
		return nil
	})
	return count, err
}
