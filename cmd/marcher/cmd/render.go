package cmd

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/MeKo-Tech/tilemarch/internal/config"
	"github.com/MeKo-Tech/tilemarch/internal/level"
	"github.com/MeKo-Tech/tilemarch/internal/marcher"
	"github.com/MeKo-Tech/tilemarch/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	modeGrid  = "grid"
	modePaths = "paths"
)

type renderOptions struct {
	Path      string
	Layer     string
	Colliding []int
	Mode      string
	Out       string
}

// renderCmd represents the render command.
var renderCmd = &cobra.Command{
	Use:   "render <level>",
	Short: "Write a debug image of a layer",
	Long: `Render a layer of a level to an image.

Modes:
  grid   colliding cells as filled red squares
  paths  traced contours as white outlines

Without --out the image name comes from the layer profile and is placed in
the cache directory (or the current directory). Existing files are kept
unless --force is given.

Examples:
  marcher render level.tmx --mode grid
  marcher render grid.csv --colliding 1 --mode paths --out paths.png --cell 16`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		opts := renderOptions{Path: args[0], Layer: cfg.Level.Layer}
		opts.Colliding, _ = cmd.Flags().GetIntSlice("colliding")
		opts.Mode, _ = cmd.Flags().GetString("mode")
		opts.Out, _ = cmd.Flags().GetString("out")

		return runRender(cfg, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntSlice("colliding", nil, "colliding tile ids (overrides the layer profile)")
	renderCmd.Flags().String("mode", modePaths, "what to draw (grid, paths)")
	renderCmd.Flags().String("out", "", "output image path (.png, .jpg, .bmp)")
	renderCmd.Flags().Int("cell", render.DefaultCellSize, "pixels per grid cell")
	renderCmd.Flags().Bool("force", false, "overwrite an existing image")

	_ = viper.BindPFlag("render.cell_size", renderCmd.Flags().Lookup("cell"))
	_ = viper.BindPFlag("render.overwrite", renderCmd.Flags().Lookup("force"))
}

func runRender(cfg *config.Config, opts renderOptions, out io.Writer) error {
	if opts.Mode != modeGrid && opts.Mode != modePaths {
		return fmt.Errorf("unknown render mode %q (use grid or paths)", opts.Mode)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m, err := level.Load(opts.Path, opts.Layer)
	if err != nil {
		return err
	}
	l := m.Layer(opts.Layer)
	if l == nil {
		return fmt.Errorf("layer %q not found in %s", opts.Layer, opts.Path)
	}

	p, ok := cfg.Profile(opts.Layer)
	if len(opts.Colliding) > 0 {
		p.Layer = opts.Layer
		p = p.WithCollidingIDs(opts.Colliding)
	} else if !ok {
		ids := m.CollidingIDs()
		if len(ids) == 0 {
			return fmt.Errorf("layer %q has no profile; pass --colliding", opts.Layer)
		}
		p = level.Profile{Layer: opts.Layer, CollidingIDs: ids}
	}

	target, err := renderTarget(cfg, p, opts)
	if err != nil {
		return err
	}

	mopts := cfg.ToMarcherOptions(l, p)
	mopts.Logger = slog.Default()
	e, err := marcher.New(mopts)
	if err != nil {
		return err
	}

	var img image.Image
	if opts.Mode == modeGrid {
		img = render.GridImage(e.Grid(), cfg.Render.CellSize)
	} else {
		img = render.PathsImage(e.Paths(), l.Width, l.Height, cfg.Render.CellSize)
	}

	written, err := render.Save(img, target, cfg.Render.Overwrite)
	if err != nil {
		return err
	}
	if !written {
		_, _ = fmt.Fprintf(out, "Skipped %s (exists, use --force to overwrite)\n", target)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", target)
	return nil
}

func renderTarget(cfg *config.Config, p level.Profile, opts renderOptions) (string, error) {
	if opts.Out != "" {
		if !render.IsSupportedImage(opts.Out) {
			return "", fmt.Errorf("unsupported image format: %s", opts.Out)
		}
		return opts.Out, nil
	}

	name := p.PathImage
	if opts.Mode == modeGrid {
		name = p.GridImage
	}
	if name == "" {
		return "", errors.New("no output image configured for this layer; pass --out")
	}
	if cfg.Marcher.CacheDir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(cfg.Marcher.CacheDir, name)
	}
	return name, nil
}
