package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fieldOfView/ArcWelderLib/config"
	"github.com/fieldOfView/ArcWelderLib/firmware"
	"github.com/fieldOfView/ArcWelderLib/log"
	"github.com/fieldOfView/ArcWelderLib/precision"
	"github.com/fieldOfView/ArcWelderLib/progress"
	"github.com/fieldOfView/ArcWelderLib/stats"
)

func straightenCommand() *cli.Command {
	return &cli.Command{
		Name:      "straighten",
		Usage:     "Replace G2/G3 arcs with the G1 moves a firmware would execute",
		ArgsUsage: "SOURCE [TARGET]",
		Description: "Reads SOURCE and writes it to TARGET with every arc interpolated the way\n" +
			"the selected firmware version does it. Without TARGET the source file is\n" +
			"replaced once the run completes. Firmware argument flags override the\n" +
			"defaults of the selected version and are rejected when the version does\n" +
			"not use them.",
		Flags:  append(straightenFlags(), jobFlags()...),
		Action: straightenAction,
	}
}

var argUsage = map[string]string{
	firmware.ArgMMPerArcSegment:       "The length of each segment in mm",
	firmware.ArgMaxArcSegmentMM:       "The maximum length of each segment in mm",
	firmware.ArgArcSegmentsPerR:       "Grow the segment length with the radius, up to this many times mm_per_arc_segment",
	firmware.ArgMinMMPerArcSegment:    "The minimum length of each segment in mm",
	firmware.ArgMinArcSegmentMM:       "The minimum length of each segment in mm",
	firmware.ArgMinArcSegments:        "The minimum number of segments of a full circle",
	firmware.ArgMinCircleSegments:     "The minimum number of segments of a full circle",
	firmware.ArgArcSegmentsPerSec:     "The number of segments per second of motion",
	firmware.ArgNArcCorrection:        "The number of approximated segments between exact positions",
	firmware.ArgMMMaxArcError:         "The maximum distance in mm between a segment and the arc",
	firmware.ArgG90InfluencesExtruder: "TRUE, FALSE or DEFAULT. G90/G91 also switch the extruder mode",
}

// argFlag is the flag of a firmware argument.
func argFlag(name string) string {
	if name == firmware.ArgG90InfluencesExtruder {
		return "g90-influences-extruder"
	}
	return strings.TrimPrefix(firmware.FlagName(name), "--")
}

func straightenFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "firmware-type",
			Aliases: []string{"f"},
			Usage:   "MARLIN_1, MARLIN_2, REPETIER, PRUSA or SMOOTHIEWARE",
			Value:   string(firmware.DefaultType),
		},
		&cli.StringFlag{
			Name:  "firmware-version",
			Usage: "The firmware version whose defaults are used",
			Value: firmware.LatestRelease,
		},
		&cli.BoolFlag{
			Name:    "print-firmware-defaults",
			Aliases: []string{"p"},
			Usage:   "Print the arguments of the selected firmware version and exit",
		},
		&cli.IntFlag{
			Name:    "default-xyz-precision",
			Aliases: []string{"x"},
			Usage:   "Number of decimals for X, Y and Z, between 3 and 6",
			Value:   precision.DefaultXYZ,
		},
		&cli.IntFlag{
			Name:    "default-e-precision",
			Aliases: []string{"e"},
			Usage:   "Number of decimals for E, between 3 and 6",
			Value:   precision.DefaultE,
		},
		&cli.BoolFlag{
			Name:    "allow-dynamic-precision",
			Aliases: []string{"d"},
			Usage:   "Raise the output precision to the highest precision seen in the source",
		},
		&cli.StringFlag{
			Name:  "progress-type",
			Usage: "NONE, SIMPLE, FULL or TUI",
			Value: string(progress.Simple),
		},
	}
	for _, name := range firmware.AllArguments {
		f := &cli.StringFlag{
			Name:  argFlag(name),
			Usage: argUsage[name],
		}
		if name == firmware.ArgG90InfluencesExtruder {
			f.Aliases = []string{"g90-g91-influences-extruder"}
		}
		flags = append(flags, f)
	}
	return flags
}

// firmwareOverrides returns the firmware arguments set on the command line
// or in the config file, by argument name.
func firmwareOverrides(c *cli.Context) map[string]string {
	m := make(map[string]string)
	for _, name := range firmware.AllArguments {
		flag := argFlag(name)
		if !c.IsSet(flag) {
			continue
		}
		v := c.String(flag)
		if name == firmware.ArgG90InfluencesExtruder && strings.EqualFold(v, "DEFAULT") {
			continue
		}
		m[name] = v
	}
	return m
}

func straightenAction(c *cli.Context) error {
	if _, err := loadConfig(c, func(f *config.File) map[string]string { return f.Straighten.Flags() }); err != nil {
		return err
	}

	t, err := firmware.ParseType(c.String("firmware-type"))
	if err != nil {
		return configExit(err)
	}
	args, err := firmware.Configure(t, c.String("firmware-version"), firmwareOverrides(c))
	if err != nil {
		return configExit(err)
	}
	if c.Bool("print-firmware-defaults") {
		fmt.Fprint(c.App.Writer, args.Description())
		return nil
	}

	source, target, err := jobPaths(c)
	if err != nil {
		return err
	}
	lg, err := newLogger(c, log.RunContext{Command: "straighten", Source: source, Target: target})
	if err != nil {
		return err
	}
	defer lg.Sync()

	prec, adj := precision.Config{
		XYZ:     c.Int("default-xyz-precision"),
		E:       c.Int("default-e-precision"),
		Dynamic: c.Bool("allow-dynamic-precision"),
	}.Clamp()
	warnPrecision(lg, adj)

	pt, err := progress.ParseType(c.String("progress-type"))
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	lg.Info("arc straightener starting",
		zap.String("firmware_type", string(args.Type)),
		zap.String("firmware_version", args.Version),
		zap.Strings("arguments", args.Used))
	lg.Debug(args.Description())

	opts := firmware.Options{Arguments: args, Precision: prec, Logger: lg.Zap()}
	j := job{
		title:      fmt.Sprintf("Arc Straightener (%s %s)", args.Type, args.Version),
		straighten: true,
		source:     source,
		target:     target,
		progress:   pt,
		log:        lg,
		run: func(ctx context.Context, src io.Reader, dst io.Writer, total int64, cb stats.Callback, interval time.Duration) (outcome, error) {
			res, err := firmware.Run(ctx, src, dst, firmware.RunOptions{Options: opts, TotalBytes: total, Callback: cb, Interval: interval})
			return outcome{result: res, cancelled: res.Cancelled}, err
		},
	}
	return j.execute(c)
}
