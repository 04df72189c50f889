// Package github posts review comments to GitHub pull requests.
package github

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v64/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/msurajn/analysis-model/comment"
)

const defaultGitHubAPI = "https://api.github.com/"

// maxCommentsPerReview bounds one CreateReview call; GitHub rejects very
// large reviews.
const maxCommentsPerReview = 50

// PullRequest is a review target on GitHub.
type PullRequest struct {
	cli   *github.Client
	owner string
	repo  string
	pr    int
	sha   string

	// FallBackToGitCLI runs git diff locally when the API refuses the diff,
	// which it does for very large pull requests.
	FallBackToGitCLI bool
}

// NewGitHubPullRequest returns a review target for owner/repo#pr at sha.
func NewGitHubPullRequest(cli *github.Client, owner, repo string, pr int, sha string) (*PullRequest, error) {
	if cli == nil {
		return nil, fmt.Errorf("github client is required")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}
	if pr <= 0 {
		return nil, fmt.Errorf("invalid pull request number %d", pr)
	}
	return &PullRequest{cli: cli, owner: owner, repo: repo, pr: pr, sha: sha}, nil
}

// Strip returns the number of leading path elements in diff paths ("a/", "b/").
func (p *PullRequest) Strip() int {
	return 1
}

// PostAsReviewComment posts the comments that are not on the pull request
// yet as one or more reviews.
func (p *PullRequest) PostAsReviewComment(ctx context.Context, comments []*comment.Comment) error {
	log := zerolog.Ctx(ctx)

	posted, err := p.postedComments(ctx)
	if err != nil {
		return fmt.Errorf("list review comments: %w", err)
	}

	var drafts []*github.DraftReviewComment
	for _, c := range comments {
		key := c.Key()
		if posted.IsPosted(key) {
			log.Debug().Str("path", c.Path).Int("line", c.Issue.LineStart).Msg("comment already posted")
			continue
		}
		posted.AddPostedComment(key)
		drafts = append(drafts, &github.DraftReviewComment{
			Path:     github.String(c.Path),
			Position: github.Int(c.Position),
			Body:     github.String(c.Body()),
		})
	}
	if len(drafts) == 0 {
		log.Info().Msg("no new review comments")
		return nil
	}

	for start := 0; start < len(drafts); start += maxCommentsPerReview {
		end := min(start+maxCommentsPerReview, len(drafts))
		review := &github.PullRequestReviewRequest{
			Event:    github.String("COMMENT"),
			Comments: drafts[start:end],
		}
		if p.sha != "" {
			review.CommitID = github.String(p.sha)
		}
		if _, _, err := p.cli.PullRequests.CreateReview(ctx, p.owner, p.repo, p.pr, review); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		log.Info().Int("comments", end-start).Int("pr", p.pr).Msg("posted review")
	}
	return nil
}

func (p *PullRequest) postedComments(ctx context.Context) (comment.PostedComments, error) {
	posted := comment.PostedComments{}
	opts := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		cs, resp, err := p.cli.PullRequests.ListComments(ctx, p.owner, p.repo, p.pr, opts)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			posted.AddPostedComment(comment.Key(c.GetPath(), c.GetLine(), c.GetBody()))
		}
		if resp == nil || resp.NextPage == 0 {
			return posted, nil
		}
		opts.Page = resp.NextPage
	}
}

// NewClient returns a GitHub client authenticated with token against baseURL.
func NewClient(ctx context.Context, token string, baseURL *url.URL) *github.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClient())
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)
	if baseURL != nil {
		client.BaseURL = baseURL
	}
	return client
}

// BaseURL resolves the API endpoint from override, $GITHUB_API,
// $GITHUB_API_URL or the public default, in that order.
func BaseURL(override string) (*url.URL, error) {
	if override != "" {
		u, err := url.Parse(withTrailingSlash(override))
		if err != nil {
			return nil, fmt.Errorf("GitHub base URL is invalid: %v, %w", override, err)
		}
		return u, nil
	}
	if baseURL := os.Getenv("GITHUB_API"); baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("GitHub base URL from GITHUB_API is invalid: %v, %w", baseURL, err)
		}
		return u, nil
	}
	// get GitHub base URL from GitHub Actions' default environment variable GITHUB_API_URL
	// ref: https://docs.github.com/en/actions/reference/environment-variables#default-environment-variables
	if baseURL := os.Getenv("GITHUB_API_URL"); baseURL != "" {
		u, err := url.Parse(baseURL + "/")
		if err != nil {
			return nil, fmt.Errorf("GitHub base URL from GITHUB_API_URL is invalid: %v, %w", baseURL, err)
		}
		return u, nil
	}
	u, err := url.Parse(defaultGitHubAPI)
	if err != nil {
		return nil, fmt.Errorf("GitHub base URL from default is invalid: %v, %w", defaultGitHubAPI, err)
	}
	return u, nil
}

func withTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// BuildRef identifies a pull request candidate by repository and head.
type BuildRef struct {
	Owner  string
	Repo   string
	Branch string
	SHA    string
}

// FindPullRequest returns the most recently updated open pull request for
// the branch or commit of ref.
func FindPullRequest(ctx context.Context, client *github.Client, ref BuildRef) (int, error) {
	options := &github.SearchOptions{
		Sort:  "updated",
		Order: "desc",
	}

	query := []string{
		"type:pr",
		"state:open",
		fmt.Sprintf("repo:%s/%s", ref.Owner, ref.Repo),
	}
	if ref.Branch != "" {
		query = append(query, fmt.Sprintf("head:%s", ref.Branch))
	}
	if ref.SHA != "" {
		query = append(query, ref.SHA)
	}

	preparedQuery := strings.Join(query, " ")
	pullRequests, _, err := client.Search.Issues(ctx, preparedQuery, options)
	if err != nil {
		return 0, err
	}

	if pullRequests.GetTotal() == 0 || len(pullRequests.Issues) == 0 {
		return 0, fmt.Errorf("PullRequest not found, query: %s", preparedQuery)
	}

	return pullRequests.Issues[0].GetNumber(), nil
}

// NormalizePath returns path relative to the repository root. Absolute paths
// under workdir are made relative to it; relDir is the working directory
// relative to the repository root.
func NormalizePath(path, workdir, relDir string) string {
	path = filepath.Clean(path)
	if filepath.IsAbs(path) && workdir != "" {
		if rel, err := filepath.Rel(workdir, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	if relDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(relDir, path)
	}
	return filepath.ToSlash(path)
}

func newHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
	}
	return &http.Client{Transport: tr}
}
