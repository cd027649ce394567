package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/imageio"
	"github.com/matzehuels/boxlens/pkg/pipeline"
	"github.com/matzehuels/boxlens/pkg/render"
)

// renderFlags holds command-line flags shared by render and view.
type renderFlags struct {
	labels        bool
	sections      bool
	colorByType   bool
	legendOnImage bool
	fontSize      float64
}

func (f *renderFlags) register(cmd *cobra.Command, defaults pipeline.Options) {
	f.labels = defaults.ShowLabels
	f.sections = defaults.ShowSections
	f.colorByType = defaults.ColorByType
	f.legendOnImage = defaults.LegendOnImage
	f.fontSize = defaults.FontSize

	cmd.Flags().BoolVar(&f.labels, "labels", f.labels, "draw element type labels")
	cmd.Flags().BoolVar(&f.sections, "sections", f.sections, "draw dashed section outlines")
	cmd.Flags().BoolVar(&f.colorByType, "color-by-type", f.colorByType, "color boxes by element type")
	cmd.Flags().BoolVar(&f.legendOnImage, "legend-on-image", f.legendOnImage, "draw the legend onto the image")
	cmd.Flags().Float64Var(&f.fontSize, "font-size", f.fontSize, "label font size in points")
}

// apply overlays explicitly set flags onto the configured options.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("labels") {
		opts.ShowLabels = f.labels
	}
	if changed("sections") {
		opts.ShowSections = f.sections
	}
	if changed("color-by-type") {
		opts.ColorByType = f.colorByType
	}
	if changed("legend-on-image") {
		opts.LegendOnImage = f.legendOnImage
	}
	if changed("font-size") {
		opts.FontSize = f.fontSize
	}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      renderFlags
		formatsStr string
		output     string
		dataURL    bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "render <image|data-url> <layout.json>",
		Short: "Draw a layout overlay onto a screenshot",
		Long: `Draw a layout overlay onto a screenshot.

The layout document is scaled to the image's pixel size: its page_width maps
to the image width and the sum of section heights maps to the image height.
Each bounding box is drawn in z_index order, colored by element type, with an
optional type label above it and dashed section outlines.

The image may be given as a base64 data URL ("data:image/png;base64,...")
instead of a path, e.g. as copied from a browser.

Formats: png (default), jpeg, bmp, tiff, and json (the drawn boxes, scale
and legend). Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.RenderOptions()
			flags.apply(cmd, &opts)
			opts.Formats = parseFormats(formatsStr)
			// Artifacts are keyed by normalized format ("jpg" -> "jpeg").
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], args[1], opts, renderOutput{
				path:    output,
				dataURL: dataURL,
				noCache: noCache,
			})
		},
	}

	flags.register(cmd, DefaultConfig().RenderOptions())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), jpeg, bmp, tiff, json (comma-separated)")
	cmd.Flags().BoolVar(&dataURL, "data-url", false, "print image outputs as data URLs instead of writing files")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

type renderOutput struct {
	path    string
	dataURL bool
	noCache bool
}

// runRender loads both inputs, runs the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, imagePath, layoutPath string, opts pipeline.Options, out renderOutput) error {
	imageData, err := readImage(imagePath)
	if err != nil {
		return err
	}
	layoutData, err := readInput(layoutPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, out.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", displayName(imagePath)))
	spinner.Start()

	res, err := runner.Execute(ctx, pipeline.Input{Image: imageData, Layout: layoutData}, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	prog.done("Rendered overlay", "boxes", res.Drawn, "cached", res.CacheHit)

	if err := writeArtifacts(res, opts.Formats, imagePath, out); err != nil {
		return err
	}

	fmt.Println(statsLine(res))
	if res.Skipped > 0 {
		printWarning("%d malformed boxes skipped", res.Skipped)
	}
	if len(res.Legend) > 0 {
		printNewline()
		fmt.Println(legendTable(res.Legend))
	}
	if !out.dataURL && !isDataURL(imagePath) {
		printNextStep("Preview interactively", fmt.Sprintf("%s view %s %s", appName, imagePath, layoutPath))
	}
	return nil
}

// writeArtifacts writes each rendered format to disk, or prints data URLs.
func writeArtifacts(res *pipeline.Result, formats []string, input string, out renderOutput) error {
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		data, err := res.Artifact(format)
		if err != nil {
			return fmt.Errorf("%s output: %w", format, err)
		}
		artifacts[format] = data
	}

	if out.dataURL {
		for _, format := range formats {
			data := artifacts[format]
			if format == pipeline.FormatJSON {
				fmt.Println(string(data))
				continue
			}
			fmt.Println(render.DataURL(data, format))
		}
		return nil
	}

	paths := outputPaths(out.path, input, formats)
	printSuccess("Rendered %d file(s)", len(formats))
	for _, format := range formats {
		path := paths[format]
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPaths maps each format to a file path. A single format with an
// explicit output uses it verbatim; otherwise the output (or the input with
// an ".overlay" suffix) is used as a base path.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, format := range formats {
		paths[format] = base + "." + extension(format)
	}
	return paths
}

// basePath strips a known format extension from output, or derives
// "<input>.overlay" when output is empty.
func basePath(output, input string) string {
	if output == "" && isDataURL(input) {
		return "overlay"
	}
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".overlay"
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[render.NormalizeFormat(strings.TrimPrefix(ext, "."))] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func extension(format string) string {
	switch format {
	case pipeline.FormatJPEG:
		return "jpg"
	default:
		return format
	}
}

// readImage reads the screenshot named by arg, which is either a file path
// or a base64 data URL.
func readImage(arg string) ([]byte, error) {
	if isDataURL(arg) {
		return imageio.FromDataURL(arg)
	}
	return readInput(arg)
}

func isDataURL(arg string) bool {
	return strings.HasPrefix(strings.TrimSpace(arg), "data:")
}

// displayName shortens arg for status lines.
func displayName(arg string) string {
	if isDataURL(arg) {
		return "data URL"
	}
	return filepath.Base(arg)
}

// readInput validates path and reads the whole file.
func readInput(path string) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
