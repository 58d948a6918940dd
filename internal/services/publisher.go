package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/dropforge/gitdrop/internal/logger"
	"github.com/dropforge/gitdrop/internal/models"
)

// Publisher pushes a batch of files to a remote repository as one commit
type Publisher interface {
	Publish(ctx context.Context, req *models.PublishRequest) (*models.PublishResult, error)
}

// RemoteError wraps a failure from the remote API, preserving the HTTP
// status code so handlers can forward it.
type RemoteError struct {
	StatusCode int
	Step       string
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %v", e.Step, e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// GitHubPublisher implements Publisher against the GitHub git data API.
// The HTTP transport is shared across requests; the API client is built
// per request around the caller's token.
type GitHubPublisher struct {
	baseURL    string
	httpClient *http.Client
}

// NewGitHubPublisher creates a publisher targeting the given API base URL
// (https://api.github.com for github.com, or a GHES endpoint).
func NewGitHubPublisher(baseURL string) *GitHubPublisher {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil

	return &GitHubPublisher{
		baseURL:    baseURL,
		httpClient: rc.StandardClient(),
	}
}

func (p *GitHubPublisher) newClient(token string) (*github.Client, error) {
	client := github.NewClient(p.httpClient).WithAuthToken(token)

	base := p.baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", p.baseURL, err)
	}
	client.BaseURL = u
	client.UploadURL = u
	return client, nil
}

// Publish runs the commit chain: resolve the branch tip, upload each file
// as a blob, build a tree on top of the tip's tree, create the commit and
// advance the ref. Any remote failure aborts the chain; blobs already
// uploaded stay unreachable on the remote.
func (p *GitHubPublisher) Publish(ctx context.Context, req *models.PublishRequest) (*models.PublishResult, error) {
	client, err := p.newClient(req.Token)
	if err != nil {
		return nil, err
	}

	branch := req.Branch
	if branch == "" {
		repo, _, err := client.Repositories.Get(ctx, req.Owner, req.Repo)
		if err != nil {
			return nil, remoteErr("resolve default branch", err)
		}
		branch = repo.GetDefaultBranch()
	}

	// Step 1: current branch tip
	ref, _, err := client.Git.GetRef(ctx, req.Owner, req.Repo, "heads/"+branch)
	if err != nil {
		return nil, remoteErr("read ref", err)
	}
	parentSHA := ref.GetObject().GetSHA()

	// Step 2: tip commit, for its tree hash
	parent, _, err := client.Git.GetCommit(ctx, req.Owner, req.Repo, parentSHA)
	if err != nil {
		return nil, remoteErr("read commit", err)
	}
	baseTreeSHA := parent.GetTree().GetSHA()

	// Step 3: one blob per file
	entries := make([]*github.TreeEntry, 0, len(req.Files))
	paths := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		blob := &github.Blob{
			Content:  github.Ptr(base64.StdEncoding.EncodeToString(file.Content)),
			Encoding: github.Ptr("base64"),
		}
		created, _, err := client.Git.CreateBlob(ctx, req.Owner, req.Repo, blob)
		if err != nil {
			return nil, remoteErr(fmt.Sprintf("create blob for %s", file.Path), err)
		}
		entries = append(entries, &github.TreeEntry{
			Path: github.Ptr(file.Path),
			Mode: github.Ptr("100644"),
			Type: github.Ptr("blob"),
			SHA:  created.SHA,
		})
		paths = append(paths, file.Path)
	}

	// Step 4: tree based on the tip's tree plus the new entries
	tree, _, err := client.Git.CreateTree(ctx, req.Owner, req.Repo, baseTreeSHA, entries)
	if err != nil {
		return nil, remoteErr("create tree", err)
	}

	// Step 5: the commit itself
	commit := &github.Commit{
		Message: github.Ptr(req.Message),
		Tree:    tree,
		Parents: []*github.Commit{{SHA: github.Ptr(parentSHA)}},
	}
	if req.AuthorName != "" || req.AuthorEmail != "" {
		now := github.Timestamp{Time: time.Now()}
		commit.Author = &github.CommitAuthor{
			Name:  github.Ptr(req.AuthorName),
			Email: github.Ptr(req.AuthorEmail),
			Date:  &now,
		}
	}
	created, _, err := client.Git.CreateCommit(ctx, req.Owner, req.Repo, commit, nil)
	if err != nil {
		return nil, remoteErr("create commit", err)
	}

	// Step 6: advance the branch, never forced. A concurrent push since
	// step 1 surfaces here as the remote's conflict status.
	ref.Object.SHA = created.SHA
	if _, _, err := client.Git.UpdateRef(ctx, req.Owner, req.Repo, ref, false); err != nil {
		return nil, remoteErr("update ref", err)
	}

	logger.Infof("✅ Published %d file(s) to %s/%s@%s as %s",
		len(paths), req.Owner, req.Repo, branch, created.GetSHA())

	return &models.PublishResult{
		CommitSHA: created.GetSHA(),
		TreeSHA:   tree.GetSHA(),
		Branch:    branch,
		CommitURL: created.GetHTMLURL(),
		Paths:     paths,
	}, nil
}

// remoteErr extracts the HTTP status from a go-github error. Errors with
// no response (network, context cancellation) map to 502.
func remoteErr(step string, err error) *RemoteError {
	status := http.StatusBadGateway

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status = ghErr.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		status = rateErr.Response.StatusCode
	}

	return &RemoteError{StatusCode: status, Step: step, Err: err}
}
