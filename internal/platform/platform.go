// Package platform identifies the hosting platform, repository and change
// number behind a pull/merge request URL.
package platform

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/RevCBH/hodor/internal/config"
)

// Kind identifies a hosting platform.
type Kind string

const (
	GitHub Kind = "github"
	GitLab Kind = "gitlab"
)

const (
	DefaultGitHubHost = "github.com"
	DefaultGitLabHost = "gitlab.com"
)

// Request identifies the change under review. It is a value type; the
// With* methods return modified copies.
type Request struct {
	URL          string
	Platform     Kind
	Host         string
	Owner        string
	Repo         string
	Number       int
	TargetBranch string
	Token        string

	// TokenSource names the environment variable the token came from.
	TokenSource string

	SelfHosted bool
}

// Slug returns "owner/repo".
func (r Request) Slug() string {
	return r.Owner + "/" + r.Repo
}

// String renders the request as owner/repo#N (GitHub) or owner/repo!N
// (GitLab).
func (r Request) String() string {
	sep := "#"
	if r.Platform == GitLab {
		sep = "!"
	}
	return fmt.Sprintf("%s%s%d", r.Slug(), sep, r.Number)
}

// WithTargetBranch returns a copy with the target branch set.
func (r Request) WithTargetBranch(branch string) Request {
	r.TargetBranch = branch
	return r
}

// WithToken returns a copy carrying the token and its source.
func (r Request) WithToken(token, source string) Request {
	r.Token = token
	r.TokenSource = source
	return r
}

// PRRef is the remote ref holding the head of the change.
func (r Request) PRRef() string {
	if r.Platform == GitLab {
		return fmt.Sprintf("refs/merge-requests/%d/head", r.Number)
	}
	return fmt.Sprintf("refs/pull/%d/head", r.Number)
}

// LocalBranch is the branch name the head ref is checked out as.
func (r Request) LocalBranch() string {
	if r.Platform == GitLab {
		return fmt.Sprintf("merge-requests/%d", r.Number)
	}
	return fmt.Sprintf("pull/%d", r.Number)
}

// CloneURL returns the HTTPS clone URL. It never carries credentials, so
// it is safe to store as a remote; git authenticates with AuthHeader.
func (r Request) CloneURL() string {
	return fmt.Sprintf("https://%s/%s.git", r.Host, r.Slug())
}

// BasicCredential is the base64 "user:token" pair sent to the host, or ""
// without a token.
func (r Request) BasicCredential() string {
	if r.Token == "" {
		return ""
	}
	pair := cloneUser(r.Platform, r.TokenSource) + ":" + r.Token
	return base64.StdEncoding.EncodeToString([]byte(pair))
}

// AuthHeader is the HTTP header git presents on clone and fetch, or ""
// without a token.
func (r Request) AuthHeader() string {
	if c := r.BasicCredential(); c != "" {
		return "Authorization: Basic " + c
	}
	return ""
}

func cloneUser(kind Kind, source string) string {
	switch {
	case kind == GitHub:
		return "x-access-token"
	case source == "CI_JOB_TOKEN":
		return "gitlab-ci-token"
	default:
		return "oauth2"
	}
}

// ResolveToken reads the platform's API token from the environment and
// returns it together with the variable it came from.
func ResolveToken(kind Kind, env config.Env) (token, source string) {
	switch kind {
	case GitHub:
		return config.FirstSet(env, "GITHUB_TOKEN", "GH_TOKEN")
	case GitLab:
		return config.FirstSet(env, "GITLAB_TOKEN", "GITLAB_PRIVATE_TOKEN", "CI_JOB_TOKEN")
	}
	return "", ""
}

// AgentEnv returns the environment entries the hosting CLIs (gh, glab)
// need to talk to this request's host.
func (r Request) AgentEnv() []string {
	var out []string
	switch r.Platform {
	case GitHub:
		if r.Token != "" {
			out = append(out, "GH_TOKEN="+r.Token)
		}
		if r.SelfHosted {
			out = append(out, "GH_HOST="+r.Host)
		}
	case GitLab:
		if r.Token != "" {
			out = append(out, "GITLAB_TOKEN="+r.Token)
		}
		out = append(out, "GITLAB_HOST="+r.Host)
	}
	return out
}

func normalizeHost(h string) string {
	return strings.ToLower(strings.TrimSuffix(h, "/"))
}
