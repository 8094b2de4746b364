package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plasmap/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [features]",
		Short: "Compute the ring and label layout of a feature file",
		Long: `Compute the ring and label layout of a feature file.

The feature file is JSON ({"length": N, "features": [...]} or the Giraffe
array form) or YAML. The output is a layout.json describing every feature's
ring, angular extent and label position, ready for any renderer.

Results are cached; --refresh recomputes and overwrites the cache entry.`,
		Args: cobra.ExactArgs(1),
	}
	lf := addLayoutFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts := c.baseOptions()
		opts.Path = args[0]
		opts.Formats = []string{pipeline.FormatJSON}
		opts.Refresh = refresh
		lf.apply(cmd, &opts.Layout)
		return c.runLayout(cmd.Context(), opts, output, noCache)
	}
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Computing layout...")
	spin.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.StopWithError("Layout failed")
		return fmt.Errorf("layout %s: %w", opts.Path, err)
	}
	spin.Stop()

	if output == "" {
		output = strings.TrimSuffix(opts.Path, filepath.Ext(opts.Path)) + ".layout.json"
	}
	if err := writeOutput(output, result.Artifacts[pipeline.FormatJSON]); err != nil {
		return err
	}
	if output == "-" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", "plasmap render "+opts.Path)
	return nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
