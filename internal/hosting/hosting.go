// Package hosting talks to the GitHub and GitLab APIs: it looks up the
// change's metadata and publishes finished reviews.
package hosting

import (
	"context"
	"fmt"

	"github.com/RevCBH/hodor/internal/platform"
)

// ChangeInfo is the metadata of a pull/merge request.
type ChangeInfo struct {
	Number       int
	Title        string
	Description  string
	SourceBranch string
	TargetBranch string
	State        string
	Author       string
	URL          string
}

// Client is implemented by each hosting platform.
type Client interface {
	// GetChange fetches metadata for the request's PR/MR.
	GetChange(ctx context.Context, req platform.Request) (*ChangeInfo, error)

	// PostReview publishes body as a review comment on the PR/MR.
	PostReview(ctx context.Context, req platform.Request, body string) error

	// Name returns the platform identifier.
	Name() platform.Kind
}

// Option configures a client.
type Option func(*options)

type options struct {
	baseURL string
}

// WithBaseURL points the client at a custom API root (for testing).
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// New returns the client for req's platform, authenticated with req.Token.
func New(req platform.Request, opts ...Option) (Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch req.Platform {
	case platform.GitHub:
		return newGitHub(req, o)
	case platform.GitLab:
		return newGitLab(req, o)
	default:
		return nil, fmt.Errorf("unsupported platform %q", req.Platform)
	}
}
