// Package workspace prepares the checkout a review runs in: a CI-provided
// directory, a reused pinned directory, or a fresh clone.
package workspace

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/RevCBH/hodor/internal/config"
	"github.com/RevCBH/hodor/internal/git"
	"github.com/RevCBH/hodor/internal/hosting"
	"github.com/RevCBH/hodor/internal/platform"
)

// Workspace is a checkout with the change's head checked out.
type Workspace struct {
	Root         string
	IsCIProvided bool
	IsReused     bool
	BaseSHA      string
	TargetBranch string

	// Pinned is set when the caller chose the directory.
	Pinned bool
}

// Cleanup removes Root unless it belongs to CI or the caller.
func (w *Workspace) Cleanup() error {
	if w == nil || w.IsCIProvided || w.Pinned || w.Root == "" {
		return nil
	}
	if err := os.RemoveAll(w.Root); err != nil {
		return fmt.Errorf("remove workspace %s: %w", w.Root, err)
	}
	return nil
}

// Resolver builds workspaces. Concurrent Resolve calls must not share a
// requested directory.
type Resolver struct {
	Git git.Runner
	Env config.Env

	// Hosting is consulted for the target branch when set.
	Hosting hosting.Client

	// CIRules defaults to DefaultCIRules.
	CIRules []CIRule

	// MkdirTemp defaults to os.MkdirTemp.
	MkdirTemp func(dir, pattern string) (string, error)

	Verbose bool
}

// NewResolver returns a resolver using the default git runner.
func NewResolver(env config.Env, client hosting.Client) *Resolver {
	return &Resolver{
		Git:     git.DefaultRunner(),
		Env:     env,
		Hosting: client,
	}
}

// Resolve returns a ready workspace for req. requestedDir may be empty.
func (r *Resolver) Resolve(ctx context.Context, req platform.Request, requestedDir string) (*Workspace, error) {
	rules := r.CIRules
	if rules == nil {
		rules = DefaultCIRules
	}
	if ci, ok := DetectCI(rules, r.Env, req); ok {
		return r.resolveCI(ctx, req, ci)
	}

	ws := &Workspace{Root: requestedDir, Pinned: requestedDir != ""}
	if ws.Pinned {
		if err := os.MkdirAll(requestedDir, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace dir: %w", err)
		}
	}

	client := r.client(ws.Root, req)
	if ws.Pinned {
		if remote, ok := r.sameRepo(ctx, client, req); ok {
			r.infof("Reusing workspace %s", ws.Root)
			ws.IsReused = true
			if err := r.refresh(ctx, client, req, ws, remote); err != nil {
				return nil, err
			}
			return ws, nil
		}
	}

	if !ws.Pinned {
		dir, err := r.mkdirTemp()
		if err != nil {
			return nil, fmt.Errorf("create temp workspace: %w", err)
		}
		ws.Root = dir
		client = r.client(dir, req)
	}
	if err := r.prepare(ctx, client, req, ws); err != nil {
		_ = ws.Cleanup()
		return nil, err
	}
	return ws, nil
}

// refresh updates an existing checkout of the same repository. A remote
// URL with embedded credentials is replaced so stale tokens are not used.
func (r *Resolver) refresh(ctx context.Context, client *git.Client, req platform.Request, ws *Workspace, remote string) error {
	if hasCredentials(remote) {
		if err := client.SetRemoteURL(ctx, req.CloneURL()); err != nil {
			return &CloneFailedError{Op: "set-url", Err: redact(err, secrets(req)...)}
		}
	}
	if err := client.Fetch(ctx); err != nil {
		return &CloneFailedError{Op: "fetch", Err: redact(err, secrets(req)...)}
	}
	if err := r.checkoutChange(ctx, client, req); err != nil {
		return err
	}
	return r.resolveBase(ctx, client, req, ws)
}

// prepare clones into ws.Root and resolves the base.
func (r *Resolver) prepare(ctx context.Context, client *git.Client, req platform.Request, ws *Workspace) error {
	r.infof("Cloning %s into %s", req.Slug(), ws.Root)
	if err := client.Clone(ctx, req.CloneURL()); err != nil {
		return &CloneFailedError{Op: "clone", Err: redact(err, secrets(req)...)}
	}
	if err := r.checkoutChange(ctx, client, req); err != nil {
		return err
	}
	return r.resolveBase(ctx, client, req, ws)
}

func (r *Resolver) checkoutChange(ctx context.Context, client *git.Client, req platform.Request) error {
	local := req.LocalBranch()
	refspec := fmt.Sprintf("+%s:refs/remotes/origin/%s", req.PRRef(), local)
	if err := client.Fetch(ctx, refspec); err != nil {
		return fetchError(req.PRRef(), err, secrets(req)...)
	}
	if err := client.CheckoutBranch(ctx, local, "origin/"+local); err != nil {
		return &CloneFailedError{Op: "checkout", Err: redact(err, secrets(req)...)}
	}
	return nil
}

func (r *Resolver) resolveBase(ctx context.Context, client *git.Client, req platform.Request, ws *Workspace) error {
	ws.TargetBranch = r.targetBranch(ctx, client, req, "")

	ref := "refs/heads/" + ws.TargetBranch
	if err := client.Fetch(ctx, fmt.Sprintf("+%s:refs/remotes/origin/%s", ref, ws.TargetBranch)); err != nil {
		return fetchError(ref, err, secrets(req)...)
	}
	base, err := client.MergeBase(ctx, "HEAD", "origin/"+ws.TargetBranch)
	if err != nil {
		return &RefNotFoundError{Ref: "origin/" + ws.TargetBranch, Err: redact(err, secrets(req)...)}
	}
	ws.BaseSHA = base
	return nil
}

func (r *Resolver) resolveCI(ctx context.Context, req platform.Request, ci CIContext) (*Workspace, error) {
	r.infof("Detected %s workspace %s", ci.System, ci.Dir)
	ws := &Workspace{
		Root:         ci.Dir,
		IsCIProvided: true,
		BaseSHA:      ci.BaseSHA,
	}
	client := git.NewClientWithRunner(ci.Dir, r.Git)
	ws.TargetBranch = r.targetBranch(ctx, client, req, ci.TargetBranch)

	if ws.BaseSHA == "" {
		base, err := client.MergeBase(ctx, "HEAD", "origin/"+ws.TargetBranch)
		if err != nil {
			log.Printf("WARN: merge-base against origin/%s failed, base SHA unknown: %v", ws.TargetBranch, redact(err, secrets(req)...))
		} else {
			ws.BaseSHA = base
		}
	}
	return ws, nil
}

// targetBranch walks the target-branch sources in precedence order.
func (r *Resolver) targetBranch(ctx context.Context, client *git.Client, req platform.Request, fromCI string) string {
	if b := strings.TrimSpace(req.TargetBranch); b != "" {
		return b
	}
	if b := strings.TrimSpace(fromCI); b != "" {
		return b
	}
	if r.Hosting != nil {
		info, err := r.Hosting.GetChange(ctx, req)
		if err != nil {
			log.Printf("WARN: could not look up %s: %v", req, err)
		} else if info.TargetBranch != "" {
			return info.TargetBranch
		}
	}
	if b, err := client.DefaultBranch(ctx); err == nil && b != "" {
		return b
	}
	return config.DefaultTargetBranch
}

// sameRepo reports whether the client's checkout is req's repository and
// returns its origin URL.
func (r *Resolver) sameRepo(ctx context.Context, client *git.Client, req platform.Request) (string, bool) {
	if !client.IsWorkTree(ctx) {
		return "", false
	}
	url, err := client.RemoteURL(ctx)
	if err != nil {
		return "", false
	}
	return url, strings.Contains(strings.ToLower(url), strings.ToLower(req.Slug()))
}

// client returns a git client for dir that authenticates as req.
func (r *Resolver) client(dir string, req platform.Request) *git.Client {
	return git.NewClientWithRunner(dir, r.Git).WithExtraHeader(req.AuthHeader())
}

func secrets(req platform.Request) []string {
	return []string{req.Token, req.BasicCredential()}
}

func (r *Resolver) mkdirTemp() (string, error) {
	if r.MkdirTemp != nil {
		return r.MkdirTemp("", "hodor-review-")
	}
	return os.MkdirTemp("", "hodor-review-")
}

func (r *Resolver) infof(format string, args ...any) {
	if r.Verbose {
		log.Printf(format, args...)
	}
}
