// Package env reads pull request build information from the CI environment.
package env

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// BuildInfo represents build information about GitHub or GitLab project.
type BuildInfo struct {
	Owner string
	Repo  string
	SHA   string

	// Optional.
	PullRequest int // MergeRequest for GitLab.

	// Optional.
	Branch string
}

type githubEvent struct {
	PullRequest struct {
		Number int `json:"number"`
		Head   struct {
			Sha string `json:"sha"`
			Ref string `json:"ref"`
		} `json:"head"`
	} `json:"pull_request"`
	Repository struct {
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
		Name string `json:"name"`
	} `json:"repository"`
}

// GetBuildInfo returns build information from environment variables.
// isPR reports whether the build runs for a pull request.
//
// Supported CI: GitHub Actions, plus explicit CI_* variables for any other.
func GetBuildInfo(fs afero.Fs) (prInfo *BuildInfo, isPR bool, err error) {
	if eventPath := os.Getenv("GITHUB_EVENT_PATH"); eventPath != "" {
		return getBuildInfoFromGitHubAction(fs, eventPath)
	}
	return getBuildInfoFromCIEnv()
}

func getBuildInfoFromGitHubAction(fs afero.Fs, eventPath string) (*BuildInfo, bool, error) {
	b, err := afero.ReadFile(fs, eventPath)
	if err != nil {
		return nil, false, fmt.Errorf("read GitHub event payload: %w", err)
	}
	var event githubEvent
	if err := json.Unmarshal(b, &event); err != nil {
		return nil, false, fmt.Errorf("decode GitHub event payload %s: %w", eventPath, err)
	}

	info := &BuildInfo{
		Owner:       event.Repository.Owner.Login,
		Repo:        event.Repository.Name,
		PullRequest: event.PullRequest.Number,
		Branch:      event.PullRequest.Head.Ref,
		SHA:         event.PullRequest.Head.Sha,
	}
	if info.Owner == "" || info.Repo == "" {
		owner, repo, err := splitRepository(os.Getenv("GITHUB_REPOSITORY"))
		if err != nil {
			return nil, false, err
		}
		info.Owner, info.Repo = owner, repo
	}
	// push and workflow_dispatch events carry no pull_request
	if info.SHA == "" {
		info.SHA = os.Getenv("GITHUB_SHA")
	}
	if info.Branch == "" {
		info.Branch = firstNonEmpty(os.Getenv("GITHUB_HEAD_REF"), os.Getenv("GITHUB_REF_NAME"))
	}
	return info, info.PullRequest != 0, nil
}

func getBuildInfoFromCIEnv() (*BuildInfo, bool, error) {
	info := &BuildInfo{
		Owner:  os.Getenv("CI_REPO_OWNER"),
		Repo:   os.Getenv("CI_REPO_NAME"),
		SHA:    firstNonEmpty(os.Getenv("CI_COMMIT"), os.Getenv("GITHUB_SHA")),
		Branch: firstNonEmpty(os.Getenv("CI_BRANCH"), os.Getenv("GITHUB_HEAD_REF")),
	}
	if info.Owner == "" || info.Repo == "" {
		owner, repo, err := splitRepository(os.Getenv("GITHUB_REPOSITORY"))
		if err != nil {
			return nil, false, errors.New("cannot get repo owner and name: set $CI_REPO_OWNER and $CI_REPO_NAME or $GITHUB_REPOSITORY")
		}
		info.Owner, info.Repo = owner, repo
	}
	if pr := os.Getenv("CI_PULL_REQUEST"); pr != "" {
		n, err := strconv.Atoi(pr)
		if err != nil {
			return nil, false, fmt.Errorf("$CI_PULL_REQUEST is not a number: %q", pr)
		}
		info.PullRequest = n
	}
	return info, info.PullRequest != 0, nil
}

func splitRepository(repository string) (string, string, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository %q, want owner/name", repository)
	}
	return owner, repo, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
