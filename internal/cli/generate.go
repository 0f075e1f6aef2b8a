package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/goimagine/internal/backend/relay"
	"github.com/jo-hoe/goimagine/internal/core"
)

func newGenerateCommand(opts *options) *cobra.Command {
	var style, dimensions string

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate an image and record it in the history",
		Long: fmt.Sprintf(`Generate an image from a prompt. The style descriptor is appended to the
prompt and the dimension preset decides the aspect ratio.

Styles:     %s
Dimensions: %s`, presetKeys(relay.Styles()), presetKeys(relay.Dimensions())),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			return opts.withService(cmd, func(ctx context.Context, service *core.CoreService, out io.Writer) error {
				image, err := service.GenerateAndRecord(ctx, core.UIRequest{
					Prompt:     prompt,
					Style:      style,
					Dimensions: dimensions,
				})
				if err != nil {
					return err
				}

				fmt.Fprintln(out, successStyle.Render("Image generated"))
				fmt.Fprintln(out, boxStyle.Render(strings.Join([]string{
					titleStyle.Render(image.Prompt),
					urlStyle.Render(image.ImageURL),
					idStyle.Render(fmt.Sprintf("%s · %s · %s", image.ID, image.Style, image.Dimensions)),
				}, "\n")))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", relay.DefaultStyle, "Style preset")
	cmd.Flags().StringVarP(&dimensions, "dimensions", "d", relay.DefaultDimensions, "Dimension preset")
	return cmd
}

func presetKeys(presets []relay.Preset) string {
	keys := make([]string, len(presets))
	for i, p := range presets {
		keys[i] = p.Key
	}
	return strings.Join(keys, ", ")
}
