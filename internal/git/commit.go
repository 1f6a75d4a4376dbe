// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd009-git-integration R1, R2, R4;
//
//	docs/ARCHITECTURE § Git Integration.
package git

import (
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "go-pagerequest"
	authorEmail = "noreply@go-pagerequest"
)

// CheckStaged returns ErrStagedChanges when files other than artifacts are
// staged, unless Config.AllowStaged is set.
//
// Implements: prd009-git-integration R2.3, R2.4.
func (r *Repo) CheckStaged(artifacts []string) error {
	if r.cfg.AllowStaged {
		return nil
	}

	own := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		rel, err := r.RelPath(a)
		if err != nil {
			return err
		}
		own[rel] = true
	}

	status, err := r.status()
	if err != nil {
		return err
	}
	for path, fs := range status {
		if own[path] {
			continue
		}
		if fs.Staging != gogit.Unmodified && fs.Staging != gogit.Untracked {
			return fmt.Errorf("%w: %s", ErrStagedChanges, path)
		}
	}
	return nil
}

// CommitArtifacts stages the artifact files and commits them with a
// generated message carrying the Generated-By trailer. It reports false
// without committing when no artifact changed.
//
// Implements: prd009-git-integration R1.1-R1.5.
func (r *Repo) CommitArtifacts(artifacts []string, summary Summary) (bool, error) {
	if err := r.CheckStaged(artifacts); err != nil {
		return false, err
	}

	var rels []string
	for _, a := range artifacts {
		changed, err := r.Changed(a)
		if err != nil {
			return false, err
		}
		if !changed {
			continue
		}
		rel, err := r.RelPath(a)
		if err != nil {
			return false, err
		}
		rels = append(rels, rel)
	}
	if len(rels) == 0 {
		return false, nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	// R1.5: Stage only the generated files.
	for _, rel := range rels {
		if _, err := wt.Add(rel); err != nil {
			return false, fmt.Errorf("staging %s: %w", rel, err)
		}
	}

	summary.Files = rels
	_, err = wt.Commit(GenerateMessage(summary), &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}
	return true, nil
}

// Undo reverts the last commit if go-pagerequest made it (identified by the
// Generated-By trailer). Uses git reset --soft HEAD~1 so the artifact
// stays in the working tree.
//
// Implements: prd009-git-integration R4.1-R4.4.
func (r *Repo) Undo() error {
	isTool, err := r.IsToolCommit()
	if err != nil {
		return err
	}
	if !isTool {
		return ErrNotToolCommit
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("getting commit: %w", err)
	}

	if commit.NumParents() == 0 {
		return fmt.Errorf("cannot undo: HEAD is the initial commit")
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return fmt.Errorf("getting parent commit: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	err = wt.Reset(&gogit.ResetOptions{
		Commit: parent.Hash,
		Mode:   gogit.SoftReset,
	})
	if err != nil {
		return fmt.Errorf("resetting to parent: %w", err)
	}
	return nil
}
