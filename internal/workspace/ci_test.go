package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RevCBH/hodor/internal/config"
	"github.com/RevCBH/hodor/internal/platform"
)

func TestDetectCI(t *testing.T) {
	gitlabMR := platform.Request{Platform: platform.GitLab, Host: "gitlab.com", Owner: "group/sub", Repo: "app", Number: 3}
	githubPR := platform.Request{Platform: platform.GitHub, Host: "github.com", Owner: "acme", Repo: "widgets", Number: 42}

	gitlabEnv := func(overrides map[string]string) config.MapEnv {
		env := config.MapEnv{
			"GITLAB_CI":       "true",
			"CI_PROJECT_DIR":  "/builds/app",
			"CI_PROJECT_PATH": "group/sub/app",
		}
		for k, v := range overrides {
			env[k] = v
		}
		return env
	}

	tests := []struct {
		name   string
		env    config.MapEnv
		req    platform.Request
		want   string
		wantOK bool
	}{
		{name: "gitlab match", env: gitlabEnv(nil), req: gitlabMR, want: "GitLab CI", wantOK: true},
		{name: "gitlab path case-insensitive", env: gitlabEnv(map[string]string{"CI_PROJECT_PATH": "Group/Sub/App"}), req: gitlabMR, want: "GitLab CI", wantOK: true},
		{name: "gitlab other project", env: gitlabEnv(map[string]string{"CI_PROJECT_PATH": "group/other"}), req: gitlabMR},
		{name: "gitlab other MR", env: gitlabEnv(map[string]string{"CI_MERGE_REQUEST_IID": "4"}), req: gitlabMR},
		{name: "gitlab same MR", env: gitlabEnv(map[string]string{"CI_MERGE_REQUEST_IID": "3"}), req: gitlabMR, want: "GitLab CI", wantOK: true},
		{name: "gitlab other host", env: gitlabEnv(map[string]string{"CI_SERVER_HOST": "gitlab.example.com"}), req: gitlabMR},
		{name: "gitlab missing dir", env: gitlabEnv(map[string]string{"CI_PROJECT_DIR": ""}), req: gitlabMR},
		{name: "gitlab flag not true", env: gitlabEnv(map[string]string{"GITLAB_CI": "1"}), req: gitlabMR},
		{
			name:   "github match",
			env:    config.MapEnv{"GITHUB_ACTIONS": "true", "GITHUB_WORKSPACE": "/w", "GITHUB_REPOSITORY": "acme/widgets"},
			req:    githubPR,
			want:   "GitHub Actions",
			wantOK: true,
		},
		{
			name:   "github same pull ref",
			env:    config.MapEnv{"GITHUB_ACTIONS": "true", "GITHUB_WORKSPACE": "/w", "GITHUB_REPOSITORY": "acme/widgets", "GITHUB_REF": "refs/pull/42/merge"},
			req:    githubPR,
			want:   "GitHub Actions",
			wantOK: true,
		},
		{
			name: "github run for another PR",
			env:  config.MapEnv{"GITHUB_ACTIONS": "true", "GITHUB_WORKSPACE": "/w", "GITHUB_REPOSITORY": "acme/widgets", "GITHUB_REF": "refs/pull/7/merge"},
			req:  githubPR,
		},
		{
			name:   "github branch ref",
			env:    config.MapEnv{"GITHUB_ACTIONS": "true", "GITHUB_WORKSPACE": "/w", "GITHUB_REPOSITORY": "acme/widgets", "GITHUB_REF": "refs/heads/main"},
			req:    githubPR,
			want:   "GitHub Actions",
			wantOK: true,
		},
		{
			name: "github other repo",
			env:  config.MapEnv{"GITHUB_ACTIONS": "true", "GITHUB_WORKSPACE": "/w", "GITHUB_REPOSITORY": "acme/gadgets"},
			req:  githubPR,
		},
		{
			name: "github actions reviewing a gitlab MR",
			env:  config.MapEnv{"GITHUB_ACTIONS": "true", "GITHUB_WORKSPACE": "/w", "GITHUB_REPOSITORY": "group/sub/app"},
			req:  gitlabMR,
		},
		{name: "no ci", env: config.MapEnv{}, req: githubPR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ci, ok := DetectCI(DefaultCIRules, tt.env, tt.req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, ci.System)
		})
	}
}

func TestGitLabCI_CarriesTargetAndBase(t *testing.T) {
	env := config.MapEnv{
		"GITLAB_CI":                           "true",
		"CI_PROJECT_DIR":                      "/builds/app",
		"CI_PROJECT_PATH":                     "team/app",
		"CI_MERGE_REQUEST_TARGET_BRANCH_NAME": "develop",
		"CI_MERGE_REQUEST_DIFF_BASE_SHA":      "0123abcd",
	}
	req := platform.Request{Platform: platform.GitLab, Host: "gitlab.com", Owner: "team", Repo: "app", Number: 1}

	ci, ok := GitLabCI{}.Detect(env, req)
	assert.True(t, ok)
	assert.Equal(t, CIContext{System: "GitLab CI", Dir: "/builds/app", TargetBranch: "develop", BaseSHA: "0123abcd"}, ci)
}
