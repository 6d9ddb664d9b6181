package git

import (
	"context"
	"strings"
)

// Client provides git operations for a single checkout.
type Client struct {
	// RepoPath is the root directory of the working copy
	RepoPath string

	runner Runner

	// extraHeader is sent on network commands through -c, so it never
	// lands in the repository config.
	extraHeader string
}

// NewClient creates a client for repoPath using the default runner.
func NewClient(repoPath string) *Client {
	return NewClientWithRunner(repoPath, DefaultRunner())
}

// NewClientWithRunner creates a client that executes through runner.
func NewClientWithRunner(repoPath string, runner Runner) *Client {
	if runner == nil {
		runner = DefaultRunner()
	}
	return &Client{RepoPath: repoPath, runner: runner}
}

// WithExtraHeader returns a copy of c that sends header on clone and
// fetch. An empty header returns c unchanged.
func (c *Client) WithExtraHeader(header string) *Client {
	if header == "" {
		return c
	}
	cp := *c
	cp.extraHeader = header
	return &cp
}

func (c *Client) exec(ctx context.Context, args ...string) (string, error) {
	return c.runner.Exec(ctx, c.RepoPath, args...)
}

func (c *Client) remoteArgs(args ...string) []string {
	if c.extraHeader == "" {
		return args
	}
	return append([]string{"-c", "http.extraHeader=" + c.extraHeader}, args...)
}

// IsWorkTree reports whether RepoPath is inside a git working tree.
func (c *Client) IsWorkTree(ctx context.Context) bool {
	out, err := c.exec(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// RemoteURL returns the URL of the origin remote.
func (c *Client) RemoteURL(ctx context.Context) (string, error) {
	out, err := c.exec(ctx, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Clone clones url into RepoPath. RepoPath must be empty or absent.
func (c *Client) Clone(ctx context.Context, url string) error {
	_, err := c.runner.Exec(ctx, "", c.remoteArgs("clone", "--quiet", url, c.RepoPath)...)
	return err
}

// SetRemoteURL points origin at url.
func (c *Client) SetRemoteURL(ctx context.Context, url string) error {
	_, err := c.exec(ctx, "remote", "set-url", "origin", url)
	return err
}

// Fetch fetches refspecs from origin. With no refspecs the remote's
// configured refspecs are used.
func (c *Client) Fetch(ctx context.Context, refspecs ...string) error {
	args := append([]string{"fetch", "--quiet", "origin"}, refspecs...)
	_, err := c.exec(ctx, c.remoteArgs(args...)...)
	return err
}

// CheckoutBranch creates or resets branch to startPoint and checks it out.
func (c *Client) CheckoutBranch(ctx context.Context, branch, startPoint string) error {
	_, err := c.exec(ctx, "checkout", "--quiet", "-B", branch, startPoint)
	return err
}

// MergeBase returns the best common ancestor of a and b.
func (c *Client) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := c.exec(ctx, "merge-base", a, b)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DefaultBranch returns the branch origin/HEAD points at, without the
// remote prefix.
func (c *Client) DefaultBranch(ctx context.Context) (string, error) {
	out, err := c.exec(ctx, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.TrimSpace(out), "origin/"), nil
}

// ChangedFiles lists files changed on HEAD since it diverged from base.
func (c *Client) ChangedFiles(ctx context.Context, base string) ([]string, error) {
	out, err := c.exec(ctx, "--no-pager", "diff", "--name-only", base+"...HEAD")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}
