package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fieldOfView/ArcWelderLib/fileio"
	"github.com/fieldOfView/ArcWelderLib/log"
	"github.com/fieldOfView/ArcWelderLib/progress"
	"github.com/fieldOfView/ArcWelderLib/render"
	"github.com/fieldOfView/ArcWelderLib/stats"
)

// outcome is what a job run reports back.
type outcome struct {
	result    render.Tabler
	cancelled bool
}

// runFunc processes src into dst. total is the size of src, cb is called
// at most once per interval.
type runFunc func(ctx context.Context, src io.Reader, dst io.Writer, total int64, cb stats.Callback, interval time.Duration) (outcome, error)

type job struct {
	title      string
	straighten bool
	source     string
	target     string
	progress   progress.Type
	log        *log.Logger
	run        runFunc
}

const (
	printInterval = time.Second
	tuiInterval   = 100 * time.Millisecond
)

// execute runs the job from source into a temporary file and moves it to
// target when the run succeeds. Failed and cancelled runs leave the target
// untouched.
func (j job) execute(c *cli.Context) error {
	src, err := fileio.Open(j.source)
	if err != nil {
		return configExit(err)
	}
	defer src.Close()

	tgt, err := fileio.Create(j.source, j.target)
	if err != nil {
		return cli.Exit(err.Error(), exitIO)
	}
	if tgt.Replaces {
		j.log.Info("target is the source file, it will be overwritten", zap.String("temp", tgt.TempPath()))
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	var out outcome
	start := time.Now()
	switch j.progress {
	case progress.TUI:
		err = progress.RunTUI(j.title, j.straighten, func(cb stats.Callback) error {
			var err error
			out, err = j.run(ctx, src, tgt, src.Size, cb, tuiInterval)
			return err
		})
	case progress.None:
		out, err = j.run(ctx, src, tgt, src.Size, nil, 0)
	default:
		out, err = j.run(ctx, src, tgt, src.Size, progress.Printer(c.App.ErrWriter, j.progress, nil), printInterval)
	}
	src.Close()

	if err != nil {
		tgt.Abort()
		j.log.Error("run failed", zap.Error(err))
		return cli.Exit(err.Error(), exitIO)
	}
	if out.cancelled {
		tgt.Abort()
		j.log.Warn("run cancelled, target not written", zap.Duration("elapsed", time.Since(start)))
		if err := j.report(c, out); err != nil {
			return err
		}
		return cli.Exit("", exitCancelled)
	}
	if err := tgt.Commit(); err != nil {
		j.log.Error("commit target failed", zap.Error(err))
		return cli.Exit(err.Error(), exitIO)
	}
	j.log.Info("run completed", zap.Duration("elapsed", time.Since(start)))
	return j.report(c, out)
}

func (j job) report(c *cli.Context, out outcome) error {
	if path := c.String(ResultsFlag.Name); path != "" {
		if err := render.WriteFile(path, out.result); err != nil {
			return cli.Exit(err.Error(), exitIO)
		}
	}
	f, err := outputFormat(c)
	if err != nil {
		return err
	}
	if err := render.Render(c.App.Writer, f, out.result); err != nil {
		return cli.Exit(err.Error(), exitIO)
	}
	return nil
}
