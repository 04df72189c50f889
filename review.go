package main

import (
	"context"
	"fmt"
	"os"

	githubservice "github.com/google/go-github/v64/github"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/msurajn/analysis-model/checkstyle"
	"github.com/msurajn/analysis-model/config"
	"github.com/msurajn/analysis-model/env"
	"github.com/msurajn/analysis-model/github"
	"github.com/msurajn/analysis-model/logging"
	"github.com/msurajn/analysis-model/runner"
)

func createReviewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review [report.xml]",
		Short: "Post Checkstyle issues on changed lines as pull request review comments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.config.Report.Path
			if len(args) == 1 {
				path = args[0]
			}
			return review(cmd.Context(), a.fs, a.config, path)
		},
	}
}

func review(ctx context.Context, fs afero.Fs, c config.Config, path string) error {
	log := logging.Get(ctx)

	parser := &checkstyle.Parser{MaxBytes: c.Report.MaxBytes, Logger: log}
	report, err := parser.ParseFile(fs, path)
	if err != nil {
		return err
	}
	log.Info().Str("report", path).Int("issues", report.Len()).Msg("parsed checkstyle report")

	pr, isPR, err := githubService(ctx, fs, c)
	if err != nil {
		return err
	}
	if !isPR {
		log.Warn().Msg("This is not PullRequest build.")
		return nil
	}

	workdir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	result, err := runner.Run(ctx, pr, pr, report, runner.Options{
		ToolName:    c.Review.ToolName,
		Workdir:     workdir,
		RelDir:      c.Review.RelDir,
		MinSeverity: c.MinSeverity(),
	})
	if err != nil {
		return err
	}
	log.Info().Int("issues", result.Issues).Int("comments", result.Filtered).Msg("review finished")
	return nil
}

func githubService(ctx context.Context, fs afero.Fs, c config.Config) (gs *github.PullRequest, isPR bool, err error) {
	g, client, err := githubBuildInfoWithClient(ctx, fs, c)
	if err != nil {
		return nil, false, err
	}
	if g.PullRequest == 0 {
		if g.Branch == "" && g.SHA == "" {
			return nil, false, nil
		}

		prID, err := github.FindPullRequest(ctx, client, github.BuildRef{
			Owner:  g.Owner,
			Repo:   g.Repo,
			Branch: g.Branch,
			SHA:    g.SHA,
		})
		if err != nil {
			logging.Get(ctx).Warn().Err(err).Msg("no pull request for this build")
			return nil, false, nil
		}
		g.PullRequest = prID
	}

	gs, err = github.NewGitHubPullRequest(client, g.Owner, g.Repo, g.PullRequest, g.SHA)
	if err != nil {
		return nil, false, err
	}
	gs.FallBackToGitCLI = c.Review.FallBackToGitCLI
	return gs, true, nil
}

func githubBuildInfoWithClient(ctx context.Context, fs afero.Fs, c config.Config) (*env.BuildInfo, *githubservice.Client, error) {
	token, err := nonEmptyEnv(c.GitHub.TokenEnv)
	if err != nil {
		return nil, nil, err
	}
	g, _, err := env.GetBuildInfo(fs)
	if err != nil {
		return nil, nil, err
	}
	baseURL, err := github.BaseURL(c.GitHub.APIURL)
	if err != nil {
		return nil, nil, err
	}
	return g, github.NewClient(ctx, token, baseURL), nil
}

func nonEmptyEnv(env string) (string, error) {
	value := os.Getenv(env)
	if value == "" {
		return "", fmt.Errorf("environment variable $%v is not set", env)
	}
	return value, nil
}
