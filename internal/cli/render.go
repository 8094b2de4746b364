package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plasmap/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "render [features]",
		Short: "Draw a feature file as a circular map",
		Long: `Draw a feature file as a circular map.

Features that overlap are stacked on concentric rings; enzymes are drawn only
when their cut count is listed in --cutters (default: single cutters).

With one format, -o names the output file. With several, -o is the base path
and each format gets its extension.`,
		Args: cobra.ExactArgs(1),
	}
	lf := addLayoutFlags(cmd)
	rf := addRenderFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or base path, - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts := c.baseOptions()
		opts.Path = args[0]
		opts.Formats = parseFormats(formatsStr)
		opts.Refresh = refresh
		lf.apply(cmd, &opts.Layout)
		rf.apply(&opts)
		if err := pipeline.ValidateFormats(opts.Formats); err != nil {
			return err
		}
		if output == "-" && len(opts.Formats) > 1 {
			return fmt.Errorf("cannot write %d formats to stdout", len(opts.Formats))
		}
		return c.runRender(cmd.Context(), opts, output, noCache)
	}
	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Rendering map...")
	spin.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.StopWithError("Render failed")
		return fmt.Errorf("render %s: %w", opts.Path, err)
	}
	spin.Stop()

	paths := outputPaths(output, opts.Path, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}
	if output == "-" {
		return nil
	}

	printSuccess("Rendered %s", result.Name)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// outputPaths maps each format to its output file. A single format uses
// output as given; otherwise output (or the input path) is a base path with
// any format extension stripped.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips the extension of input, or a format extension of output.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
