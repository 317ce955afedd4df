package main

import (
	"context"
	"io"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fieldOfView/ArcWelderLib/config"
	"github.com/fieldOfView/ArcWelderLib/log"
	"github.com/fieldOfView/ArcWelderLib/precision"
	"github.com/fieldOfView/ArcWelderLib/progress"
	"github.com/fieldOfView/ArcWelderLib/stats"
	"github.com/fieldOfView/ArcWelderLib/weld"
)

func weldCommand() *cli.Command {
	return &cli.Command{
		Name:      "weld",
		Usage:     "Replace runs of G0/G1 moves with G2/G3 arcs",
		ArgsUsage: "SOURCE [TARGET]",
		Description: "Reads SOURCE and writes the welded G-code to TARGET. Without TARGET the\n" +
			"source file is replaced once the run completes.",
		Flags:  append(weldFlags(), jobFlags()...),
		Action: weldAction,
	}
}

func weldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:    "resolution-mm",
			Aliases: []string{"r"},
			Usage:   "The resolution in mm of the path. This is the maximum deviation allowed between an arc and the segments it replaces",
			Value:   weld.DefaultResolutionMM,
		},
		&cli.Float64Flag{
			Name:    "path-tolerance-percent",
			Aliases: []string{"t"},
			Usage:   "The maximum allowed deviation of the arc length from the length of the segments it replaces, as a fraction",
			Value:   weld.DefaultPathTolerancePercent,
		},
		&cli.Float64Flag{
			Name:    "max-radius-mm",
			Aliases: []string{"m"},
			Usage:   "The maximum radius of any arc in mm",
			Value:   weld.DefaultMaxRadiusMM,
		},
		&cli.BoolFlag{
			Name:    "allow-3d-arcs",
			Aliases: []string{"z"},
			Usage:   "Allow helical arcs with a Z component (vase mode)",
		},
		&cli.BoolFlag{
			Name:    "allow-travel-arcs",
			Aliases: []string{"y"},
			Usage:   "Also convert moves that do not extrude",
		},
		&cli.BoolFlag{
			Name:    "allow-dynamic-precision",
			Aliases: []string{"d"},
			Usage:   "Raise the output precision to the highest precision seen in the source",
		},
		&cli.IntFlag{
			Name:    "default-xyz-precision",
			Aliases: []string{"x"},
			Usage:   "Number of decimals for X, Y, Z, I and J, between 3 and 6",
			Value:   precision.DefaultXYZ,
		},
		&cli.IntFlag{
			Name:    "default-e-precision",
			Aliases: []string{"e"},
			Usage:   "Number of decimals for E, between 3 and 6",
			Value:   precision.DefaultE,
		},
		&cli.Float64Flag{
			Name:    "mm-per-arc-segment",
			Aliases: []string{"s"},
			Usage:   "The firmware's mm_per_arc_segment, used with --min-arc-segments to avoid arcs the firmware draws poorly. 0 disables",
		},
		&cli.IntFlag{
			Name:    "min-arc-segments",
			Aliases: []string{"a"},
			Usage:   "The firmware's min_arc_segments, used with --mm-per-arc-segment. 0 disables",
		},
		&cli.Float64Flag{
			Name:    "extrusion-rate-variance-percent",
			Aliases: []string{"v"},
			Usage:   "The allowed variation of the extrusion rate within an arc, as a fraction. 0 disables the check",
			Value:   weld.DefaultExtrusionRateVariancePercent,
		},
		&cli.IntFlag{
			Name:    "max-gcode-length",
			Aliases: []string{"c"},
			Usage:   "The maximum length of a generated arc line, excluding the line ending. 0 disables",
		},
		&cli.BoolFlag{
			Name:    "g90-influences-extruder",
			Aliases: []string{"g"},
			Usage:   "G90/G91 also switch the extruder between absolute and relative mode",
		},
		&cli.StringFlag{
			Name:    "progress-type",
			Aliases: []string{"p"},
			Usage:   "NONE, SIMPLE, FULL or TUI",
			Value:   string(progress.Simple),
		},
	}
}

// weldOptions reads the engine options from the flags.
func weldOptions(c *cli.Context) weld.Options {
	return weld.Options{
		Tolerance: weld.Tolerance{
			ResolutionMM:                 c.Float64("resolution-mm"),
			PathTolerancePercent:         c.Float64("path-tolerance-percent"),
			MaxRadiusMM:                  c.Float64("max-radius-mm"),
			Allow3DArcs:                  c.Bool("allow-3d-arcs"),
			AllowTravelArcs:              c.Bool("allow-travel-arcs"),
			ExtrusionRateVariancePercent: c.Float64("extrusion-rate-variance-percent"),
			MaxGcodeLength:               c.Int("max-gcode-length"),
			MinArcSegments:               c.Int("min-arc-segments"),
			MMPerArcSegment:              c.Float64("mm-per-arc-segment"),
		},
		Precision: precision.Config{
			XYZ:     c.Int("default-xyz-precision"),
			E:       c.Int("default-e-precision"),
			Dynamic: c.Bool("allow-dynamic-precision"),
		},
		G90InfluencesExtruder: c.Bool("g90-influences-extruder"),
	}
}

// jobPaths returns SOURCE and TARGET. TARGET defaults to SOURCE.
func jobPaths(c *cli.Context) (string, string, error) {
	source := c.Args().First()
	if source == "" {
		return "", "", configExit(config.NewError(config.ErrMissingSource, "source", nil, "usage: "+c.Command.HelpName+" "+c.Command.ArgsUsage))
	}
	target := c.Args().Get(1)
	if target == "" {
		target = source
	}
	return source, target, nil
}

func warnPrecision(lg *log.Logger, adj []precision.Adjustment) {
	for _, a := range adj {
		lg.Sugar().Warnf("%s precision %d is out of range, using %d", a.Field, a.From, a.To)
	}
}

func weldAction(c *cli.Context) error {
	if _, err := loadConfig(c, func(f *config.File) map[string]string { return f.Weld.Flags() }); err != nil {
		return err
	}
	source, target, err := jobPaths(c)
	if err != nil {
		return err
	}
	lg, err := newLogger(c, log.RunContext{Command: "weld", Source: source, Target: target})
	if err != nil {
		return err
	}
	defer lg.Sync()

	opts := weldOptions(c)
	tol, warnings, err := opts.Tolerance.Validate()
	if err != nil {
		return configExit(err)
	}
	for _, w := range warnings {
		lg.Sugar().Warnf("%s", w)
	}
	opts.Tolerance = tol
	var adj []precision.Adjustment
	opts.Precision, adj = opts.Precision.Clamp()
	warnPrecision(lg, adj)
	opts.Logger = lg.Zap()

	pt, err := progress.ParseType(c.String("progress-type"))
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	lg.Info("arc welder starting",
		zap.Any("tolerance", tol),
		zap.Any("precision", opts.Precision),
		zap.Bool("g90_influences_extruder", opts.G90InfluencesExtruder))

	j := job{
		title:    "Arc Welder",
		source:   source,
		target:   target,
		progress: pt,
		log:      lg,
		run: func(ctx context.Context, src io.Reader, dst io.Writer, total int64, cb stats.Callback, interval time.Duration) (outcome, error) {
			res, err := weld.Run(ctx, src, dst, weld.RunOptions{Options: opts, TotalBytes: total, Callback: cb, Interval: interval})
			return outcome{result: res, cancelled: res.Cancelled}, err
		},
	}
	return j.execute(c)
}
