package locator

import (
	"context"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Cloner clones a repository branch into dest.
type Cloner interface {
	Clone(ctx context.Context, url, ref, dest string) error
}

// GitCloner performs shallow single-branch clones with go-git.
type GitCloner struct {
	Progress io.Writer
}

// Clone implements Cloner.
func (g GitCloner) Clone(ctx context.Context, url, ref, dest string) error {
	opts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Progress:     g.Progress,
	}
	if ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	}
	_, err := git.PlainCloneContext(ctx, dest, false, opts)
	return err
}
