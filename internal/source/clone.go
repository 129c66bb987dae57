package source

import (
	"context"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CloneOptions selects what to clone.
type CloneOptions struct {
	URL    string
	Depth  int
	Branch string
}

// Cloner materializes a remote repository into destination.
type Cloner interface {
	Clone(ctx context.Context, destination string, options CloneOptions) error
}

// GitCloner clones with go-git; it needs no git executable.
type GitCloner struct {
	Progress io.Writer
}

// Clone performs a blocking clone of options.URL into destination.
func (cloner GitCloner) Clone(ctx context.Context, destination string, options CloneOptions) error {
	cloneOptions := &git.CloneOptions{
		URL:      options.URL,
		Depth:    options.Depth,
		Progress: cloner.Progress,
	}
	if options.Branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(options.Branch)
		cloneOptions.SingleBranch = true
	}
	_, cloneError := git.PlainCloneContext(ctx, destination, false, cloneOptions)
	return cloneError
}

var _ Cloner = GitCloner{}
