// Package snapshot versions the extracted corpus directory as a local git
// repository, so every pipeline run leaves an inspectable history of what
// changed in the knowledge base.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo wraps a git repository rooted at the corpus directory.
type Repo struct {
	Path string
	repo *git.Repository
}

// Open opens the repository at path, initializing a fresh one when none
// exists yet.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(path, false)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot repository: %w", err)
	}
	return &Repo{Path: path, repo: repo}, nil
}

// Commit stages every change under the repository and commits it with the
// given message and author. It returns the commit hash, or an empty string
// when there was nothing to commit.
func (r *Repo) Commit(message, authorName, authorEmail string) (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("failed to add changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit changes: %w", err)
	}
	return hash.String(), nil
}
