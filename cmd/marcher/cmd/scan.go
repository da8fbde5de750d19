package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/MeKo-Tech/tilemarch/internal/config"
	"github.com/MeKo-Tech/tilemarch/internal/level"
	"github.com/MeKo-Tech/tilemarch/internal/marcher"
	"github.com/MeKo-Tech/tilemarch/internal/physics"
	"github.com/MeKo-Tech/tilemarch/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// scanOptions carries the per-invocation settings of the scan command.
type scanOptions struct {
	Path      string
	Layer     string
	LayerSet  bool
	Colliding []int
	PrintMap  bool
	Physics   bool
	Output    string
}

// scanReport is the serialised result of one scan.
type scanReport struct {
	Level  string        `json:"level" yaml:"level"`
	Scale  float64       `json:"scale" yaml:"scale"`
	Layers []layerReport `json:"layers" yaml:"layers"`
}

type layerReport struct {
	Name           string        `json:"name" yaml:"name"`
	ObjectType     string        `json:"object_type" yaml:"object_type"`
	Width          int           `json:"width" yaml:"width"`
	Height         int           `json:"height" yaml:"height"`
	CollidingIDs   []int         `json:"colliding_ids" yaml:"colliding_ids"`
	Paths          []pathReport  `json:"paths" yaml:"paths"`
	Stats          marcher.Stats `json:"stats" yaml:"stats"`
	PhysicsObjects int           `json:"physics_objects,omitempty" yaml:"physics_objects,omitempty"`
	Map            string        `json:"map,omitempty" yaml:"map,omitempty"`
}

type pathReport struct {
	Polygon []utils.IPoint `json:"polygon" yaml:"polygon"`
	Corners []utils.IPoint `json:"corners" yaml:"corners"`
	Scaled  []utils.Point  `json:"scaled" yaml:"scaled"`
	Bounds  utils.Box      `json:"bounds" yaml:"bounds"`
	Hole    bool           `json:"hole" yaml:"hole"`
}

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan <level>",
	Short: "Extract contours from a level",
	Long: `Extract the contours of colliding tiles from a Tiled map (.tmx) or a CSV grid
(.csv, .txt).

Every layer with a configured profile is processed. --colliding marches only
the selected layer with the given tile ids. With --cache-dir set, optimized
polygons are written to the profile's cache file and reused on the next run.

Examples:
  marcher scan level.tmx
  marcher scan level.tmx --layer level_deadly --format yaml
  marcher scan grid.csv --colliding 1,2 --print-map
  marcher scan level.tmx --cache-dir build/physics`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		colliding, _ := cmd.Flags().GetIntSlice("colliding")
		opts := scanOptions{
			Path:      args[0],
			Layer:     cfg.Level.Layer,
			LayerSet:  cmd.Flags().Changed("layer"),
			Colliding: colliding,
		}
		opts.PrintMap, _ = cmd.Flags().GetBool("print-map")
		opts.Physics, _ = cmd.Flags().GetBool("physics")
		opts.Output, _ = cmd.Flags().GetString("output")

		out := cmd.OutOrStdout()
		if opts.Output != "" {
			f, err := os.Create(opts.Output)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer func() { _ = f.Close() }()
			out = f
		}

		return runScan(cmd.Context(), cfg, opts, out)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntSlice("colliding", nil, "colliding tile ids for the selected layer (overrides profiles)")
	scanCmd.Flags().Float64("scale", level.DefaultScale, "world units per grid unit")
	scanCmd.Flags().StringP("format", "f", formatText, "output format (text, json, yaml)")
	scanCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	scanCmd.Flags().Bool("print-map", false, "include the classified grid in the report")
	scanCmd.Flags().Bool("physics", false, "build collision objects and report their count")

	_ = viper.BindPFlag("marcher.scale", scanCmd.Flags().Lookup("scale"))
	_ = viper.BindPFlag("output.format", scanCmd.Flags().Lookup("format"))
}

// runScan loads the level, builds every selected layer and writes the report.
func runScan(ctx context.Context, cfg *config.Config, opts scanOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m, err := level.Load(opts.Path, opts.Layer)
	if err != nil {
		return err
	}

	profiles, err := selectProfiles(cfg, m, opts)
	if err != nil {
		return err
	}

	buildOpts := cfg.ToBuildOptions()
	buildOpts.Logger = slog.Default()
	results, err := level.BuildLayers(ctx, m, profiles, buildOpts)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no layer of %s has a profile (use --layer and --colliding)", opts.Path)
	}

	report := buildReport(m, results, cfg.Marcher.Scale, opts)
	return writeReport(out, report, cfg.Output.Format)
}

// selectProfiles decides which layers are marched and with which tile ids.
func selectProfiles(cfg *config.Config, m *level.Map, opts scanOptions) ([]level.Profile, error) {
	if len(opts.Colliding) > 0 {
		p, ok := cfg.Profile(opts.Layer)
		if !ok {
			p = level.Profile{Layer: opts.Layer, CacheFile: level.CacheFileFor(opts.Layer, opts.Colliding)}
		}
		return []level.Profile{p.WithCollidingIDs(opts.Colliding)}, nil
	}

	if opts.LayerSet {
		if p, ok := cfg.Profile(opts.Layer); ok {
			return []level.Profile{p}, nil
		}
		if ids := m.CollidingIDs(); len(ids) > 0 {
			return []level.Profile{{Layer: opts.Layer, CollidingIDs: ids, CacheFile: level.CacheFileFor(opts.Layer, ids)}}, nil
		}
		return nil, fmt.Errorf("layer %q has no profile and the map marks no colliding tiles", opts.Layer)
	}

	profiles := cfg.Level.Profiles
	for _, l := range m.Layers {
		if _, ok := level.FindProfile(profiles, l.Name); ok {
			return profiles, nil
		}
	}

	// No profiled layer: fall back to the tileset's collides property.
	ids := m.CollidingIDs()
	if len(ids) == 0 {
		return profiles, nil
	}
	fallback := make([]level.Profile, 0, len(m.Layers))
	for _, l := range m.Layers {
		fallback = append(fallback, level.Profile{Layer: l.Name, CollidingIDs: ids, CacheFile: level.CacheFileFor(l.Name, ids)})
	}
	return fallback, nil
}

func buildReport(m *level.Map, results []level.LayerResult, scale float64, opts scanOptions) scanReport {
	report := scanReport{Level: m.Name, Scale: scale}
	for _, r := range results {
		paths := r.Engine.Paths()
		lr := layerReport{
			Name:         r.Layer.Name,
			ObjectType:   r.Profile.Type().String(),
			Width:        r.Layer.Width,
			Height:       r.Layer.Height,
			CollidingIDs: r.Profile.CollidingIDs,
			Paths:        make([]pathReport, 0, len(paths)),
			Stats:        r.Engine.Stats(),
		}
		for _, p := range paths {
			lr.Paths = append(lr.Paths, pathReport{
				Polygon: p.Polygon,
				Corners: p.Corners(),
				Scaled:  p.Scaled,
				Bounds:  utils.BoundingBox(p.Scaled),
				Hole:    p.IsHole(),
			})
		}
		if opts.PrintMap {
			lr.Map = r.Engine.Grid().String()
		}
		if opts.Physics {
			space := physics.BuildSpace(paths, physics.Options{
				OffsetX: r.Layer.OffsetX,
				OffsetY: r.Layer.OffsetY,
				Tags:    []string{r.Profile.Type().String()},
			})
			lr.PhysicsObjects = len(space.Objects())
		}
		report.Layers = append(report.Layers, lr)
	}
	return report
}

func writeReport(w io.Writer, report scanReport, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case formatText, "":
		return writeTextReport(w, report)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeTextReport(w io.Writer, report scanReport) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "Level %s (scale %.4f)\n", report.Level, report.Scale); err != nil {
		return err
	}
	for _, l := range report.Layers {
		source := "scan"
		if l.Stats.FromCache {
			source = "cache"
		}
		_, _ = p.Fprintf(w, "\nLayer %s [%s] %dx%d, colliding ids %v\n", l.Name, l.ObjectType, l.Width, l.Height, l.CollidingIDs)
		_, _ = p.Fprintf(w, "  %d paths, %d vertices from %s in %v\n", l.Stats.Paths, l.Stats.Vertices, source, l.Stats.Duration)
		if !l.Stats.FromCache {
			_, _ = p.Fprintf(w, "  %d traces, %d divergences, %d corners visited\n",
				l.Stats.Scan.Traces, l.Stats.Scan.Divergences, l.Stats.Scan.VisitedCorners)
		}
		if l.PhysicsObjects > 0 {
			_, _ = p.Fprintf(w, "  %d collision objects\n", l.PhysicsObjects)
		}
		for i, path := range l.Paths {
			lo, hi := utils.IntBounds(path.Polygon)
			_, _ = p.Fprintf(w, "  path %d: %d vertices, corners %s, cells %s-%s\n",
				i+1, len(path.Polygon), formatPoints(path.Corners), formatPoints([]utils.IPoint{lo}), formatPoints([]utils.IPoint{hi}))
		}
		if l.Map != "" {
			_, _ = fmt.Fprintf(w, "\n%s", l.Map)
		}
	}
	return nil
}

func formatPoints(pts []utils.IPoint) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
