package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/msurajn/analysis-model/config"
	"github.com/msurajn/analysis-model/logging"
)

// app holds what every command needs once flags are parsed.
type app struct {
	fs     afero.Fs
	config config.Config
	closer io.Closer
}

// createNewRootCommand creates the main root command that shows help by default.
// The caller closes the returned app once the command has run, whether or not
// it failed.
func createNewRootCommand() (*cobra.Command, *app) {
	return newRootCommand(afero.NewOsFs())
}

func newRootCommand(fs afero.Fs) (*cobra.Command, *app) {
	a := &app{fs: fs}

	rootCmd := &cobra.Command{
		Use:           "analysis-model",
		Short:         "Checkstyle report parser and pull request reviewer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level, overrides the config")

	rootCmd.AddCommand(
		createParseCommand(a),
		createReviewCommand(a),
	)

	return rootCmd, a
}

// Close releases the log file opened by init, if any.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func (a *app) init(cmd *cobra.Command) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	c, err := config.Load(a.fs, configPath)
	if err != nil {
		return err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		c.Logging.Level = level
		if err := c.Validate(); err != nil {
			return err
		}
	}
	a.config = c

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logFile := c.Logging.File
	if logFile == config.DefaultLogFile {
		if logFile, err = logging.DefaultLogPath(); err != nil {
			return err
		}
	}
	logConfig := logging.Config{
		File:   logFile,
		Format: c.Logging.Format,
		Level:  c.LogLevel(),
	}
	if logConfig.File == "" {
		logConfig.Writer = cmd.ErrOrStderr()
	}
	ctx, closer, err := logging.New(ctx, logConfig)
	if err != nil {
		return err
	}
	a.closer = closer
	cmd.SetContext(ctx)
	return nil
}
