package platform

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/RevCBH/hodor/internal/config"
)

// InvalidURLError reports a URL that is not a recognised PR/MR URL.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid PR/MR URL %q: %s", e.URL, e.Reason)
}

// Parse turns a pull/merge request URL into a Request. It performs no I/O;
// env is consulted only for the GitLab host when the input is a bare
// project path without a host.
//
// Recognised shapes:
//   - https://github.com/<owner>/<repo>/pull/<n>
//   - https://<host>/<group>[/<sub>...]/<repo>/-/merge_requests/<n>
//   - either of the above without scheme or host
func Parse(raw string, env config.Env) (Request, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return Request{}, &InvalidURLError{URL: raw, Reason: "empty"}
	}

	host, path, err := splitHostPath(input)
	if err != nil {
		return Request{}, &InvalidURLError{URL: raw, Reason: err.Error()}
	}

	segments := splitPath(path)

	if idx := indexOf(segments, "-"); idx >= 0 {
		return parseGitLab(raw, host, segments, idx, env)
	}
	if idx := indexOf(segments, "pull"); idx >= 0 {
		return parseGitHub(raw, host, segments, idx)
	}
	return Request{}, &InvalidURLError{URL: raw, Reason: "not a pull request or merge request URL"}
}

func parseGitHub(raw, host string, segments []string, idx int) (Request, error) {
	if idx != 2 {
		return Request{}, &InvalidURLError{URL: raw, Reason: "expected /<owner>/<repo>/pull/<number>"}
	}
	number, err := parseNumber(segments, idx+1)
	if err != nil {
		return Request{}, &InvalidURLError{URL: raw, Reason: err.Error()}
	}
	if host == "" {
		host = DefaultGitHubHost
	}
	return Request{
		URL:        raw,
		Platform:   GitHub,
		Host:       host,
		Owner:      segments[0],
		Repo:       strings.TrimSuffix(segments[1], ".git"),
		Number:     number,
		SelfHosted: host != DefaultGitHubHost,
	}, nil
}

func parseGitLab(raw, host string, segments []string, idx int, env config.Env) (Request, error) {
	if idx < 2 {
		return Request{}, &InvalidURLError{URL: raw, Reason: "missing group or project before /-/"}
	}
	if len(segments) <= idx+1 || segments[idx+1] != "merge_requests" {
		return Request{}, &InvalidURLError{URL: raw, Reason: "expected /-/merge_requests/<number>"}
	}
	number, err := parseNumber(segments, idx+2)
	if err != nil {
		return Request{}, &InvalidURLError{URL: raw, Reason: err.Error()}
	}
	if host == "" {
		host, _ = config.FirstSet(env, "GITLAB_HOST", "CI_SERVER_HOST")
		host = stripScheme(host)
		if host == "" {
			host = DefaultGitLabHost
		}
	}
	host = normalizeHost(host)
	return Request{
		URL:        raw,
		Platform:   GitLab,
		Host:       host,
		Owner:      strings.Join(segments[:idx-1], "/"),
		Repo:       strings.TrimSuffix(segments[idx-1], ".git"),
		Number:     number,
		SelfHosted: host != DefaultGitLabHost,
	}, nil
}

// splitHostPath separates the host from the path. Scheme-less input whose
// first segment looks like a domain is treated as host/path; anything else
// is a bare path with no host.
func splitHostPath(input string) (host, path string, err error) {
	if strings.Contains(input, "://") {
		u, err := url.Parse(input)
		if err != nil {
			return "", "", err
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return "", "", fmt.Errorf("missing host")
		}
		return normalizeHost(u.Host), u.Path, nil
	}

	trimmed := strings.TrimPrefix(input, "/")
	first, rest, _ := strings.Cut(trimmed, "/")
	if strings.Contains(first, ".") {
		return normalizeHost(first), rest, nil
	}
	return "", trimmed, nil
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseNumber(segments []string, i int) (int, error) {
	if i >= len(segments) {
		return 0, fmt.Errorf("missing number")
	}
	n, err := strconv.Atoi(segments[i])
	if err != nil {
		return 0, fmt.Errorf("number %q is not numeric", segments[i])
	}
	if n <= 0 {
		return 0, fmt.Errorf("number must be positive, got %d", n)
	}
	return n, nil
}

func indexOf(segments []string, want string) int {
	for i, s := range segments {
		if s == want {
			return i
		}
	}
	return -1
}

func stripScheme(host string) string {
	if _, after, ok := strings.Cut(host, "://"); ok {
		host = after
	}
	return strings.TrimSuffix(host, "/")
}
