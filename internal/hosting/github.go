package hosting

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"

	"github.com/RevCBH/hodor/internal/platform"
)

// GitHubClient implements Client for github.com and GitHub Enterprise.
type GitHubClient struct {
	client *github.Client
}

func newGitHub(req platform.Request, o options) (*GitHubClient, error) {
	client := github.NewClient(nil)
	if req.Token != "" {
		client = client.WithAuthToken(req.Token)
	}

	switch {
	case o.baseURL != "":
		base, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse GitHub API URL: %w", err)
		}
		client.BaseURL = base
	case req.SelfHosted:
		base := fmt.Sprintf("https://%s/api/v3/", req.Host)
		var err error
		client, err = client.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("configure GitHub Enterprise URL: %w", err)
		}
	}

	return &GitHubClient{client: client}, nil
}

// Name returns the platform identifier.
func (c *GitHubClient) Name() platform.Kind {
	return platform.GitHub
}

// GetChange fetches a pull request.
func (c *GitHubClient) GetChange(ctx context.Context, req platform.Request) (*ChangeInfo, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, req.Owner, req.Repo, req.Number)
	if err != nil {
		return nil, fmt.Errorf("fetching pull request: %w", err)
	}

	return &ChangeInfo{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Description:  pr.GetBody(),
		SourceBranch: pr.GetHead().GetRef(),
		TargetBranch: pr.GetBase().GetRef(),
		State:        pr.GetState(),
		Author:       pr.GetUser().GetLogin(),
		URL:          pr.GetHTMLURL(),
	}, nil
}

// PostReview submits a COMMENT review on the pull request.
func (c *GitHubClient) PostReview(ctx context.Context, req platform.Request, body string) error {
	_, _, err := c.client.PullRequests.CreateReview(ctx, req.Owner, req.Repo, req.Number, &github.PullRequestReviewRequest{
		Body:  github.String(body),
		Event: github.String("COMMENT"),
	})
	if err != nil {
		return fmt.Errorf("posting review: %w", err)
	}
	return nil
}
