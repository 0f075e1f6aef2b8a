package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/goimagine/internal/backend/history"
	"github.com/jo-hoe/goimagine/internal/core"
)

const defaultListLimit = 20

func newHistoryCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit the generation history",
	}
	cmd.AddCommand(
		newHistoryListCommand(opts),
		newHistoryRemoveCommand(opts),
		newHistoryClearCommand(opts),
	)
	return cmd
}

func newHistoryListCommand(opts *options) *cobra.Command {
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, service *core.CoreService, out io.Writer) error {
				images, truncated := history.Page(service.SearchHistory(ctx, query), limit)
				displayHistory(out, images, query)
				if truncated {
					fmt.Fprintln(out, dateStyle.Render(fmt.Sprintf("Showing first %d results", limit)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show prompts containing this text (case-insensitive)")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Maximum number of entries to show (0 for all)")
	return cmd
}

func newHistoryRemoveCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove one entry from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, service *core.CoreService, out io.Writer) error {
				service.RemoveFromHistory(ctx, args[0])
				fmt.Fprintln(out, successStyle.Render("Removed "+args[0]))
				return nil
			})
		},
	}
}

func newHistoryClearCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all entries from the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, service *core.CoreService, out io.Writer) error {
				service.ClearHistory(ctx)
				fmt.Fprintln(out, successStyle.Render("History cleared"))
				return nil
			})
		},
	}
}

func displayHistory(out io.Writer, images []history.GeneratedImage, query string) {
	if len(images) == 0 {
		if query != "" {
			fmt.Fprintln(out, headerStyle.Render("No matching prompts found"))
		} else {
			fmt.Fprintln(out, headerStyle.Render("No generation history yet"))
		}
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d generation(s)", len(images))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Created")+"\t"+titleStyle.Render("Style")+"\t"+titleStyle.Render("Prompt")+"\t")
	for _, image := range images {
		prompt := image.Prompt
		if runes := []rune(prompt); len(runes) > 60 {
			prompt = string(runes[:57]) + "..."
		}
		created := time.UnixMilli(image.Timestamp).Format("2006-01-02 15:04")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", idStyle.Render(image.ID), dateStyle.Render(created), image.Style, prompt)
	}
	_ = w.Flush()
}
