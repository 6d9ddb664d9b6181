package hosting

import (
	"context"
	"fmt"

	"github.com/xanzy/go-gitlab"

	"github.com/RevCBH/hodor/internal/platform"
)

// GitLabClient implements Client for gitlab.com and self-hosted GitLab.
type GitLabClient struct {
	client *gitlab.Client
}

func newGitLab(req platform.Request, o options) (*GitLabClient, error) {
	base := o.baseURL
	if base == "" {
		base = fmt.Sprintf("https://%s", req.Host)
	}
	opts := []gitlab.ClientOptionFunc{gitlab.WithBaseURL(base + "/api/v4")}

	var (
		client *gitlab.Client
		err    error
	)
	if req.TokenSource == "CI_JOB_TOKEN" {
		client, err = gitlab.NewJobClient(req.Token, opts...)
	} else {
		client, err = gitlab.NewClient(req.Token, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}
	return &GitLabClient{client: client}, nil
}

// Name returns the platform identifier.
func (c *GitLabClient) Name() platform.Kind {
	return platform.GitLab
}

// GetChange fetches a merge request by IID.
func (c *GitLabClient) GetChange(ctx context.Context, req platform.Request) (*ChangeInfo, error) {
	mr, _, err := c.client.MergeRequests.GetMergeRequest(req.Slug(), req.Number, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching merge request: %w", err)
	}

	info := &ChangeInfo{
		Number:       mr.IID,
		Title:        mr.Title,
		Description:  mr.Description,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		State:        mr.State,
		URL:          mr.WebURL,
	}
	if mr.Author != nil {
		info.Author = mr.Author.Username
	}
	return info, nil
}

// PostReview adds a note to the merge request.
func (c *GitLabClient) PostReview(ctx context.Context, req platform.Request, body string) error {
	_, _, err := c.client.Notes.CreateMergeRequestNote(req.Slug(), req.Number, &gitlab.CreateMergeRequestNoteOptions{
		Body: gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("posting merge request note: %w", err)
	}
	return nil
}
