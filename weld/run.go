package weld

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/fieldOfView/ArcWelderLib/stats"
)

// Result is returned by Run. Statistics are filled in even for failed or
// cancelled runs.
type Result struct {
	Success    bool                `json:"success" yaml:"success" msgpack:"success"`
	Cancelled  bool                `json:"cancelled" yaml:"cancelled" msgpack:"cancelled"`
	Message    string              `json:"message" yaml:"message" msgpack:"message"`
	Statistics stats.RunStatistics `json:"statistics" yaml:"statistics" msgpack:"statistics"`
}

type RunOptions struct {
	Options

	// TotalBytes is the source size, used for percent complete.
	TotalBytes int64
	// Callback receives progress at most once per Interval.
	Callback stats.Callback
	Interval time.Duration
}

// Run welds the G-code read from src and writes the result to dst. A
// false return from the callback or a cancelled context ends the run early:
// the arc in progress is closed normally and the rest of the source is not
// read.
func Run(ctx context.Context, src io.Reader, dst io.Writer, opts RunOptions) (Result, error) {
	p := gcode.NewParser(src)
	w, err := NewWelder(p, opts.Options)
	if err != nil {
		return Result{Message: err.Error()}, err
	}
	tw := gcode.NewTextWriter(dst)
	tr := stats.NewTracker(opts.TotalBytes, opts.Interval)

	result := func(success, cancelled bool, msg string) Result {
		st := w.Statistics().Clone()
		st.SourceBytes = p.Bytes()
		st.TargetBytes = tw.Written()
		return Result{Success: success, Cancelled: cancelled, Message: msg, Statistics: st}
	}

	cancelled := false
	for {
		l, err := w.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result(false, false, "File processing failed."), fmt.Errorf("read source: %w", err)
		}
		if err := tw.Write(l); err != nil {
			return result(false, false, "File processing failed."), fmt.Errorf("write target: %w", err)
		}
		if cancelled {
			continue
		}
		if ctx.Err() != nil {
			cancelled = true
			w.Stop()
			continue
		}
		if opts.Callback != nil && tr.Due() {
			st := result(false, false, "").Statistics
			if !opts.Callback(tr.Snapshot(st.LinesProcessed, st.SourceBytes, st)) {
				cancelled = true
				w.Stop()
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return result(false, cancelled, "File processing failed."), fmt.Errorf("write target: %w", err)
	}

	if cancelled {
		return result(false, true, "Arc Welder process cancelled."), nil
	}
	res := result(true, false, "Arc Welder process completed successfully.")
	if opts.Callback != nil {
		final := tr.Snapshot(res.Statistics.LinesProcessed, res.Statistics.SourceBytes, res.Statistics)
		final.Percent = 100
		final.Remaining = 0
		opts.Callback(final)
	}
	return res, nil
}

// Table renders the result for the console.
func (r Result) Table() string {
	return r.Message + "\n\n" + r.Statistics.Report()
}
