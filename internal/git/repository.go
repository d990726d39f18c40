package git

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	gitc "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var ErrNoRepository = errors.New("not inside a git repository")

type Repository struct {
	repo *gitc.Repository
	root string
}

// MergeDriver is a [merge "<name>"] section of the repository config.
type MergeDriver struct {
	Name        string
	Description string
	Driver      string
}

// NewLocalRepository will attempt to open a pre-existing git repository in the given directory
// If no repository is found, it will return an empty Repository
func NewLocalRepository(dir string) (*Repository, error) {
	repo, err := gitc.PlainOpenWithOptions(dir, &gitc.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, gitc.ErrRepositoryNotExists) {
		return &Repository{}, nil
	} else if err != nil {
		return &Repository{}, fmt.Errorf("git: %w", err)
	}

	r := &Repository{repo: repo}
	if wt, err := repo.Worktree(); err == nil {
		r.root = wt.Filesystem.Root()
	}

	return r, nil
}

func (r *Repository) IsNil() bool {
	return r.repo == nil
}

// Root returns the top level directory of the worktree, or "" for bare or missing repositories.
func (r *Repository) Root() string {
	return r.root
}

// RelPath converts path into a slash separated path relative to the worktree root.
func (r *Repository) RelPath(path string) (string, error) {
	if r.root == "" {
		return "", ErrNoRepository
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("git: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(resolved, filepath.Base(abs))
	}
	root := r.root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("git: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("git: %s is outside of the repository at %s", path, r.root)
	}

	return filepath.ToSlash(rel), nil
}

// ReadFileAtRevision returns the contents of path (relative to the worktree root) as
// committed at revision, e.g. "HEAD", "main~2" or a commit hash.
func (r *Repository) ReadFileAtRevision(revision, path string) ([]byte, error) {
	if r.IsNil() {
		return nil, ErrNoRepository
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("git: resolving %s: %w", revision, err)
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("git: %w", err)
	}

	file, err := commit.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, fmt.Errorf("git: %s does not exist at %s", path, revision)
	} else if err != nil {
		return nil, fmt.Errorf("git: %w", err)
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("git: %w", err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// GetMergeDriver returns the merge driver registered under name in the repository
// config, or nil if there is none.
func (r *Repository) GetMergeDriver(name string) (*MergeDriver, error) {
	if r.IsNil() {
		return nil, ErrNoRepository
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return nil, fmt.Errorf("git: %w", err)
	}

	section := cfg.Raw.Section("merge")
	if !section.HasSubsection(name) {
		return nil, nil
	}
	sub := section.Subsection(name)

	return &MergeDriver{
		Name:        name,
		Description: sub.Option("name"),
		Driver:      sub.Option("driver"),
	}, nil
}

// SetMergeDriver writes a [merge "<name>"] section to the repository's local config.
func (r *Repository) SetMergeDriver(driver MergeDriver) error {
	if r.IsNil() {
		return ErrNoRepository
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("git: %w", err)
	}

	sub := cfg.Raw.Section("merge").Subsection(driver.Name)
	if driver.Description != "" {
		sub.SetOption("name", driver.Description)
	}
	sub.SetOption("driver", driver.Driver)

	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("git: %w", err)
	}

	return nil
}
