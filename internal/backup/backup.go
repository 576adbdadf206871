// Package backup versions the data directory with git.
//
// Decode failures degrade to an absent collection, so the next successful
// write can overwrite a corrupt file. Snapshots keep every previous
// serialized collection recoverable.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Snapshotter commits the state of a data directory to a git repository
// rooted at that directory.
type Snapshotter struct {
	dir   string
	name  string
	email string
	repo  *gogit.Repository
	mu    sync.Mutex
}

// Commit is one entry in the snapshot history.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// New opens the repository at dir, initializing it on first use.
func New(dir, name, email string) (*Snapshotter, error) {
	if name == "" {
		name = "recstore"
	}
	if email == "" {
		email = "recstore@localhost"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		// Not a repo yet — initialize.
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize snapshot repo: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = name
		cfg.User.Email = email
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}

	return &Snapshotter{dir: dir, name: name, email: email, repo: repo}, nil
}

// Snapshot commits all changes under the data directory. A clean tree is a
// no-op and returns an empty hash.
func (s *Snapshotter) Snapshot(_ context.Context, msg string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("failed to stage changes: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}

	if msg == "" {
		msg = "snapshot"
	}
	now := time.Now()
	hash, err := w.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: s.name, Email: s.email, When: now},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return hash.String(), nil
}

// History returns the most recent snapshots, newest first. n is capped at
// 1000; n <= 0 defaults to 1000. An empty repository returns no commits and
// no error.
func (s *Snapshotter) History(_ context.Context, n int) ([]*Commit, error) {
	if n <= 0 || n > 1000 {
		n = 1000
	}
	iter, err := s.repo.Log(&gogit.LogOptions{})
	if err != nil {
		// An empty repository has no HEAD yet; that is not an error.
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot history: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	for range n {
		c, err := iter.Next()
		if err != nil {
			break
		}
		subject, _, _ := strings.Cut(c.Message, "\n")
		commits = append(commits, &Commit{
			Hash:    c.Hash.String(),
			Message: subject,
			Author:  c.Author.Name,
			Date:    c.Author.When,
		})
	}
	return commits, nil
}

// FileAt retrieves the content of a collection file at a specific snapshot.
// hash may be "HEAD".
func (s *Snapshotter) FileAt(_ context.Context, hash, path string) ([]byte, error) {
	h := plumbing.NewHash(hash)
	if hash == "HEAD" {
		ref, err := s.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		h = ref.Hash()
	}

	c, err := s.repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	f, err := c.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file at snapshot: %w", err)
	}
	reader, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}
