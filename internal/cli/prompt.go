package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/goimagine/internal/core"
)

func newPromptCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Show or change the system prompt",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current system prompt",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withService(cmd, func(ctx context.Context, service *core.CoreService, out io.Writer) error {
					fmt.Fprintln(out, service.SystemPrompt(ctx))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <text>",
			Short: "Replace the system prompt",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				prompt := strings.Join(args, " ")
				if strings.TrimSpace(prompt) == "" {
					return errors.New("system prompt must not be empty")
				}
				return opts.withService(cmd, func(ctx context.Context, service *core.CoreService, out io.Writer) error {
					service.SetSystemPrompt(ctx, prompt)
					fmt.Fprintln(out, successStyle.Render("System prompt saved"))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default system prompt",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withService(cmd, func(ctx context.Context, service *core.CoreService, out io.Writer) error {
					service.ResetSystemPrompt(ctx)
					fmt.Fprintln(out, successStyle.Render("System prompt reset to default"))
					return nil
				})
			},
		},
	)
	return cmd
}
