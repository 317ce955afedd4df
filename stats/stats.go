// Package stats holds the run statistics and progress snapshots shared by
// the welder and the straightener.
package stats

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"
)

// RunStatistics accumulates over a single run.
type RunStatistics struct {
	Extrusion  SegmentStatistics `json:"extrusion" yaml:"extrusion" msgpack:"extrusion"`
	Retraction SegmentStatistics `json:"retraction" yaml:"retraction" msgpack:"retraction"`
	Travel     SegmentStatistics `json:"travel" yaml:"travel" msgpack:"travel"`

	ArcsCreated      int            `json:"arcs_created" yaml:"arcs_created" msgpack:"arcs_created"`
	ArcsRejected     map[string]int `json:"arcs_rejected" yaml:"arcs_rejected" msgpack:"arcs_rejected"`
	PointsCompressed int            `json:"points_compressed" yaml:"points_compressed" msgpack:"points_compressed"`

	// Straightening
	ArcsInterpolated  int `json:"arcs_interpolated" yaml:"arcs_interpolated" msgpack:"arcs_interpolated"`
	SegmentsGenerated int `json:"segments_generated" yaml:"segments_generated" msgpack:"segments_generated"`

	SourceExtrusion float64 `json:"source_extrusion" yaml:"source_extrusion" msgpack:"source_extrusion"`
	TargetExtrusion float64 `json:"target_extrusion" yaml:"target_extrusion" msgpack:"target_extrusion"`

	LinesProcessed int   `json:"lines_processed" yaml:"lines_processed" msgpack:"lines_processed"`
	SourceBytes    int64 `json:"source_bytes" yaml:"source_bytes" msgpack:"source_bytes"`
	TargetBytes    int64 `json:"target_bytes" yaml:"target_bytes" msgpack:"target_bytes"`
}

func NewRunStatistics() RunStatistics {
	return RunStatistics{
		Extrusion:    NewSegmentStatistics(),
		Retraction:   NewSegmentStatistics(),
		Travel:       NewSegmentStatistics(),
		ArcsRejected: make(map[string]int),
	}
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (r RunStatistics) Clone() RunStatistics {
	r.Extrusion = r.Extrusion.Clone()
	r.Retraction = r.Retraction.Clone()
	r.Travel = r.Travel.Clone()
	r.ArcsRejected = maps.Clone(r.ArcsRejected)
	return r
}

func (r *RunStatistics) Reject(reason string) {
	if r.ArcsRejected == nil {
		r.ArcsRejected = make(map[string]int)
	}
	r.ArcsRejected[reason]++
}

// Combined merges the extrusion and retraction histograms.
func (r RunStatistics) Combined() SegmentStatistics {
	return r.Extrusion.Merge(r.Retraction)
}

// CompressionRatio is source bytes over target bytes.
func (r RunStatistics) CompressionRatio() float64 {
	if r.TargetBytes == 0 {
		return 0
	}
	return float64(r.SourceBytes) / float64(r.TargetBytes)
}

// SizeReduction is the relative size change in percent.
func (r RunStatistics) SizeReduction() float64 {
	if r.SourceBytes == 0 {
		return 0
	}
	return (1 - float64(r.TargetBytes)/float64(r.SourceBytes)) * 100
}

// RejectTable lists rejected candidates by reason.
func (r RunStatistics) RejectTable() string {
	if len(r.ArcsRejected) == 0 {
		return "Arcs rejected: none\n"
	}
	reasons := make([]string, 0, len(r.ArcsRejected))
	for k := range r.ArcsRejected {
		reasons = append(reasons, k)
	}
	sort.Strings(reasons)

	var sb strings.Builder
	sb.WriteString("Arcs rejected:\n")
	for _, k := range reasons {
		fmt.Fprintf(&sb, "  %-20s %d\n", k, r.ArcsRejected[k])
	}
	return sb.String()
}

// Progress is a snapshot of a running job.
type Progress struct {
	LinesProcessed int           `json:"lines_processed" yaml:"lines_processed" msgpack:"lines_processed"`
	BytesProcessed int64         `json:"bytes_processed" yaml:"bytes_processed" msgpack:"bytes_processed"`
	TotalBytes     int64         `json:"total_bytes" yaml:"total_bytes" msgpack:"total_bytes"`
	Percent        float64       `json:"percent" yaml:"percent" msgpack:"percent"`
	Elapsed        time.Duration `json:"elapsed" yaml:"elapsed" msgpack:"elapsed"`
	Remaining      time.Duration `json:"remaining" yaml:"remaining" msgpack:"remaining"`
	Statistics     RunStatistics `json:"statistics" yaml:"statistics" msgpack:"statistics"`
}

// Callback receives progress between lines. Returning false stops the run.
type Callback func(Progress) bool

// Simple renders a one line summary.
func (p Progress) Simple() string {
	s := p.Statistics
	return fmt.Sprintf("%.2f%% complete in %.2f seconds with %.2f seconds remaining. Current Line: %d, Points Compressed: %d, ArcsCreated: %d, Compression Ratio: %.2f, Size Reduction: %.2f%%",
		p.Percent, p.Elapsed.Seconds(), p.Remaining.Seconds(), p.LinesProcessed,
		s.PointsCompressed, s.ArcsCreated, s.CompressionRatio(), s.SizeReduction())
}

func (p Progress) String() string {
	return p.Simple() + "\n" + p.Statistics.Combined().Table("Extrusion Statistics")
}

// Tracker produces progress snapshots at a bounded rate.
type Tracker struct {
	total    int64
	interval time.Duration
	start    time.Time
	last     time.Time

	now func() time.Time
}

func NewTracker(total int64, interval time.Duration) *Tracker {
	t := &Tracker{total: total, interval: interval, now: time.Now}
	t.start = t.now()
	t.last = t.start
	return t
}

// Due reports whether the interval since the last snapshot has elapsed.
func (t *Tracker) Due() bool {
	return t.now().Sub(t.last) >= t.interval
}

func (t *Tracker) Snapshot(lines int, bytes int64, st RunStatistics) Progress {
	now := t.now()
	t.last = now
	p := Progress{
		LinesProcessed: lines,
		BytesProcessed: bytes,
		TotalBytes:     t.total,
		Elapsed:        now.Sub(t.start),
		Statistics:     st.Clone(),
	}
	if t.total > 0 {
		p.Percent = float64(bytes) / float64(t.total) * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	if p.Percent > 0 {
		p.Remaining = time.Duration(float64(p.Elapsed) * (100 - p.Percent) / p.Percent)
	}
	return p
}

// Report is the end of run summary: the extrusion table, the travel table
// when the file has travel moves, the rejects and the size change.
func (r RunStatistics) Report() string {
	var sb strings.Builder
	sb.WriteString(r.Combined().Table("Extrusion Statistics"))
	if r.Travel.SourceCount > 0 || r.Travel.TargetCount > 0 {
		sb.WriteByte('\n')
		sb.WriteString(r.Travel.Table("Travel Statistics"))
	}
	sb.WriteByte('\n')
	if r.ArcsInterpolated > 0 || r.SegmentsGenerated > 0 {
		fmt.Fprintf(&sb, "Arcs interpolated: %d, Segments generated: %d\n", r.ArcsInterpolated, r.SegmentsGenerated)
	} else {
		fmt.Fprintf(&sb, "Arcs created: %d, Points compressed: %d\n", r.ArcsCreated, r.PointsCompressed)
		sb.WriteString(r.RejectTable())
	}
	fmt.Fprintf(&sb, "Extrusion: source %.5f, target %.5f\n", r.SourceExtrusion, r.TargetExtrusion)
	fmt.Fprintf(&sb, "Size: source %d bytes, target %d bytes, compression ratio %.2f, size reduction %.2f%%\n",
		r.SourceBytes, r.TargetBytes, r.CompressionRatio(), r.SizeReduction())
	return sb.String()
}
