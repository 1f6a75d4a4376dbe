// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const artifactRel = "src/.umi/plugin-pageRequest/index.ts"

func writeArtifact(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, artifactRel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommitArtifacts_StagesAndCommits(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	artifact := writeArtifact(t, dir, "const PAGE_REQUEST_MAP = {}\nexport { PAGE_REQUEST_MAP }\n")

	committed, err := repo.CommitArtifacts([]string{artifact}, Summary{Pages: 2, Requests: 5, Format: "json"})
	require.NoError(t, err)
	assert.True(t, committed)

	dirty, err := repo.IsDirty()
	require.NoError(t, err)
	assert.False(t, dirty)

	msg, err := repo.lastCommitMessage()
	require.NoError(t, err)
	assert.Contains(t, msg, generatedByTrailer)
	assert.Contains(t, msg, "(2 pages, 5 requests)")
	assert.Contains(t, msg, "- "+artifactRel)
}

func TestCommitArtifacts_UnchangedIsNoop(t *testing.T) {
	dir := initTestRepo(t)
	artifact := writeArtifact(t, dir, "{}\n")
	addFileAndCommit(t, dir, artifactRel, "{}\n", "add artifact")

	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	committed, err := repo.CommitArtifacts([]string{artifact}, Summary{})
	require.NoError(t, err)
	assert.False(t, committed)

	count, err := repo.commitCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCommitArtifacts_LeavesOtherFilesAlone(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("wip\n"), 0o644))
	artifact := writeArtifact(t, dir, "{}\n")

	committed, err := repo.CommitArtifacts([]string{artifact}, Summary{})
	require.NoError(t, err)
	assert.True(t, committed)

	// notes.md is still untracked.
	dirty, err := repo.IsDirty()
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestCommitArtifacts_RefusesStagedChanges(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{\"name\":\"other\"}\n"), 0o644))
	stage(t, dir, "package.json")
	artifact := writeArtifact(t, dir, "{}\n")

	_, err = repo.CommitArtifacts([]string{artifact}, Summary{})
	assert.ErrorIs(t, err, ErrStagedChanges)

	count, err := repo.commitCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCommitArtifacts_AllowStaged(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir, AllowStaged: true})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{\"name\":\"other\"}\n"), 0o644))
	stage(t, dir, "package.json")
	artifact := writeArtifact(t, dir, "{}\n")

	committed, err := repo.CommitArtifacts([]string{artifact}, Summary{})
	require.NoError(t, err)
	assert.True(t, committed)
}

func TestUndo_RevertsToolCommit(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	artifact := writeArtifact(t, dir, "{}\n")
	_, err = repo.CommitArtifacts([]string{artifact}, Summary{})
	require.NoError(t, err)

	count, err := repo.commitCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.Undo())

	count, err = repo.commitCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Soft reset keeps the artifact on disk.
	_, err = os.Stat(artifact)
	assert.NoError(t, err)
}

func TestUndo_RejectsOtherCommit(t *testing.T) {
	dir := initTestRepo(t)
	addFileAndCommit(t, dir, "feature.ts", "export {}\n", "feat: add feature")

	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	err = repo.Undo()
	assert.ErrorIs(t, err, ErrNotToolCommit)
}

func TestUndo_InitialCommit(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	addFileAndCommit(t, dir, "map.ts", "{}\n", "chore(pagerequest): update\n\n"+generatedByTrailer)

	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)
	assert.Error(t, repo.Undo())
}

func stage(t *testing.T, dir, name string) {
	t.Helper()
	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
}
