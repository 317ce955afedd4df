package firmware

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/fieldOfView/ArcWelderLib/stats"
)

type Result struct {
	Success    bool                `json:"success" yaml:"success" msgpack:"success"`
	Cancelled  bool                `json:"cancelled" yaml:"cancelled" msgpack:"cancelled"`
	Message    string              `json:"message" yaml:"message" msgpack:"message"`
	Firmware   Arguments           `json:"firmware" yaml:"firmware" msgpack:"firmware"`
	Statistics stats.RunStatistics `json:"statistics" yaml:"statistics" msgpack:"statistics"`
}

type RunOptions struct {
	Options

	TotalBytes int64
	Callback   stats.Callback
	Interval   time.Duration
}

// Run expands the arcs read from src into lines and writes the result to
// dst. A false return from the callback or a cancelled context stops
// reading the source.
func Run(ctx context.Context, src io.Reader, dst io.Writer, opts RunOptions) (Result, error) {
	p := gcode.NewParser(src)
	s, err := NewStraightener(p, opts.Options)
	if err != nil {
		return Result{Message: err.Error(), Firmware: opts.Arguments}, err
	}
	tw := gcode.NewTextWriter(dst)
	tr := stats.NewTracker(opts.TotalBytes, opts.Interval)

	result := func(success, cancelled bool, msg string) Result {
		st := s.Statistics().Clone()
		st.SourceBytes = p.Bytes()
		st.TargetBytes = tw.Written()
		return Result{Success: success, Cancelled: cancelled, Message: msg, Firmware: opts.Arguments, Statistics: st}
	}

	cancelled := false
	for {
		l, err := s.Read()
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
			s.Stop()
			continue
		}
		if opts.Callback != nil && tr.Due() {
			st := result(false, false, "").Statistics
			if !opts.Callback(tr.Snapshot(st.LinesProcessed, st.SourceBytes, st)) {
				cancelled = true
				s.Stop()
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return result(false, cancelled, "File processing failed."), fmt.Errorf("write target: %w", err)
	}

	if cancelled {
		return result(false, true, "Arc Straightener process cancelled."), nil
	}
	res := result(true, false, "Arc Straightener process completed successfully.")
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
	return r.Message + "\n\n" + r.Firmware.Description() + "\n" + r.Statistics.Report()
}
