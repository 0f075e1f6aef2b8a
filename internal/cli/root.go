package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/goimagine/internal/common"
	"github.com/jo-hoe/goimagine/internal/core"
)

var (
	version = "dev"
	commit  = "unknown"
)

// serviceFactory opens the core service for one command invocation.
type serviceFactory func(ctx context.Context, configPath string) (*core.CoreService, error)

type options struct {
	configPath string
	verbose    bool
	newService serviceFactory
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(openService)
}

func newRootCommand(newService serviceFactory) *cobra.Command {
	opts := &options{newService: newService}

	rootCmd := &cobra.Command{
		Use:   "imagectl",
		Short: "Generate images and manage the generation history",
		Long: `imagectl talks to the configured image generation model and works on the
same history and settings storage as the goimagine server.

Quick Start:
  imagectl generate "a red fox in the snow" --style sketch
  imagectl history list --query fox
  imagectl prompt show`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			common.SetDefaultLogger(cmd.ErrOrStderr(), level)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newGenerateCommand(opts),
		newHistoryCommand(opts),
		newPromptCommand(opts),
	)
	return rootCmd
}

// withService opens the core service, runs fn and closes the service again.
func (o *options) withService(cmd *cobra.Command, fn func(ctx context.Context, service *core.CoreService, out io.Writer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	service, err := o.newService(ctx, o.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	return fn(ctx, service, cmd.OutOrStdout())
}

func openService(ctx context.Context, configPath string) (*core.CoreService, error) {
	config, err := core.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return core.NewCoreService(ctx, config)
}

func defaultConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}
	return filepath.Join(".", "config.yaml")
}
