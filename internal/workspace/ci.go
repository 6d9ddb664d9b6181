package workspace

import (
	"strconv"
	"strings"

	"github.com/RevCBH/hodor/internal/config"
	"github.com/RevCBH/hodor/internal/platform"
)

// CIContext describes a checkout prepared by a CI system.
type CIContext struct {
	System       string
	Dir          string
	TargetBranch string
	BaseSHA      string
}

// CIRule recognizes one CI system from its environment.
type CIRule interface {
	Name() string
	Detect(env config.Env, req platform.Request) (CIContext, bool)
}

// DefaultCIRules are evaluated in order; the first match wins.
var DefaultCIRules = []CIRule{GitLabCI{}, GitHubActions{}}

// GitLabCI matches a GitLab merge request pipeline for the same project.
type GitLabCI struct{}

func (GitLabCI) Name() string { return "gitlab-ci" }

func (GitLabCI) Detect(env config.Env, req platform.Request) (CIContext, bool) {
	if req.Platform != platform.GitLab || config.Get(env, "GITLAB_CI") != "true" {
		return CIContext{}, false
	}
	dir := config.Get(env, "CI_PROJECT_DIR")
	path := config.Get(env, "CI_PROJECT_PATH")
	if dir == "" || path == "" || !strings.EqualFold(path, req.Slug()) {
		return CIContext{}, false
	}
	if iid := config.Get(env, "CI_MERGE_REQUEST_IID"); iid != "" && iid != strconv.Itoa(req.Number) {
		return CIContext{}, false
	}
	if host := config.Get(env, "CI_SERVER_HOST"); host != "" && !strings.EqualFold(host, req.Host) {
		return CIContext{}, false
	}
	return CIContext{
		System:       "GitLab CI",
		Dir:          dir,
		TargetBranch: config.Get(env, "CI_MERGE_REQUEST_TARGET_BRANCH_NAME"),
		BaseSHA:      config.Get(env, "CI_MERGE_REQUEST_DIFF_BASE_SHA"),
	}, true
}

// GitHubActions matches a workflow run checked out from the same repository.
type GitHubActions struct{}

func (GitHubActions) Name() string { return "github-actions" }

func (GitHubActions) Detect(env config.Env, req platform.Request) (CIContext, bool) {
	if req.Platform != platform.GitHub || config.Get(env, "GITHUB_ACTIONS") != "true" {
		return CIContext{}, false
	}
	dir := config.Get(env, "GITHUB_WORKSPACE")
	repo := config.Get(env, "GITHUB_REPOSITORY")
	if dir == "" || repo == "" || !strings.EqualFold(repo, req.Slug()) {
		return CIContext{}, false
	}
	if n, ok := pullNumber(config.Get(env, "GITHUB_REF")); ok && n != req.Number {
		return CIContext{}, false
	}
	return CIContext{
		System:       "GitHub Actions",
		Dir:          dir,
		TargetBranch: config.Get(env, "GITHUB_BASE_REF"),
	}, true
}

// pullNumber extracts n from refs/pull/<n>/merge or refs/pull/<n>/head.
func pullNumber(ref string) (int, bool) {
	rest, ok := strings.CutPrefix(ref, "refs/pull/")
	if !ok {
		return 0, false
	}
	num, _, _ := strings.Cut(rest, "/")
	n, err := strconv.Atoi(num)
	return n, err == nil
}

// DetectCI returns the first rule match for req, if any.
func DetectCI(rules []CIRule, env config.Env, req platform.Request) (CIContext, bool) {
	for _, rule := range rules {
		if ci, ok := rule.Detect(env, req); ok {
			return ci, true
		}
	}
	return CIContext{}, false
}
