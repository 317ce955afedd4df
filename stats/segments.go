package stats

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// SegmentBounds are the upper bounds, in mm, of the segment length buckets.
var SegmentBounds = []float64{0.002, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 20, 50, 100, 250}

// Bucket counts segments with Min <= length < Max. The last bucket has no
// upper bound and Max == 0.
type Bucket struct {
	Min    float64 `json:"min" yaml:"min" msgpack:"min"`
	Max    float64 `json:"max,omitempty" yaml:"max,omitempty" msgpack:"max,omitempty"`
	Source int     `json:"source" yaml:"source" msgpack:"source"`
	Target int     `json:"target" yaml:"target" msgpack:"target"`
}

// SegmentStatistics is a histogram of segment lengths in the source and
// the target file.
type SegmentStatistics struct {
	Buckets      []Bucket `json:"buckets" yaml:"buckets" msgpack:"buckets"`
	SourceCount  int      `json:"source_count" yaml:"source_count" msgpack:"source_count"`
	TargetCount  int      `json:"target_count" yaml:"target_count" msgpack:"target_count"`
	SourceLength float64  `json:"source_length" yaml:"source_length" msgpack:"source_length"`
	TargetLength float64  `json:"target_length" yaml:"target_length" msgpack:"target_length"`
}

func NewSegmentStatistics() SegmentStatistics {
	b := make([]Bucket, len(SegmentBounds)+1)
	prev := 0.0
	for i, hi := range SegmentBounds {
		b[i] = Bucket{Min: prev, Max: hi}
		prev = hi
	}
	b[len(SegmentBounds)] = Bucket{Min: prev}
	return SegmentStatistics{Buckets: b}
}

func (s *SegmentStatistics) bucket(length float64) *Bucket {
	if len(s.Buckets) == 0 {
		*s = NewSegmentStatistics()
	}
	for i := range s.Buckets {
		if s.Buckets[i].Max == 0 || length < s.Buckets[i].Max {
			return &s.Buckets[i]
		}
	}
	return &s.Buckets[len(s.Buckets)-1]
}

func (s *SegmentStatistics) AddSource(length float64) {
	s.bucket(length).Source++
	s.SourceCount++
	s.SourceLength += length
}

func (s *SegmentStatistics) AddTarget(length float64) {
	s.bucket(length).Target++
	s.TargetCount++
	s.TargetLength += length
}

// Merge returns the bucket-wise sum of s and o.
func (s SegmentStatistics) Merge(o SegmentStatistics) SegmentStatistics {
	res := s.Clone()
	if len(res.Buckets) == 0 {
		res = NewSegmentStatistics()
	}
	for i := range o.Buckets {
		if i < len(res.Buckets) {
			res.Buckets[i].Source += o.Buckets[i].Source
			res.Buckets[i].Target += o.Buckets[i].Target
		}
	}
	res.SourceCount += o.SourceCount
	res.TargetCount += o.TargetCount
	res.SourceLength += o.SourceLength
	res.TargetLength += o.TargetLength
	return res
}

func (s SegmentStatistics) Clone() SegmentStatistics {
	s.Buckets = append([]Bucket(nil), s.Buckets...)
	return s
}

func change(source, target int) string {
	if source == 0 {
		if target == 0 {
			return "0.0%"
		}
		return "New"
	}
	return fmt.Sprintf("%.1f%%", float64(target-source)/float64(source)*100)
}

func bucketLabel(b Bucket) string {
	if b.Max == 0 {
		return fmt.Sprintf(">= %gmm", b.Min)
	}
	return fmt.Sprintf("%gmm to %gmm", b.Min, b.Max)
}

// Table renders the histogram as a text table with a title row.
func (s SegmentStatistics) Table(title string) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteByte('\n')

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Length\tSource\tTarget\tChange\t")
	for _, b := range s.Buckets {
		if b.Source == 0 && b.Target == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t\n", bucketLabel(b), b.Source, b.Target, change(b.Source, b.Target))
	}
	fmt.Fprintf(w, "Total count\t%d\t%d\t%s\t\n", s.SourceCount, s.TargetCount, change(s.SourceCount, s.TargetCount))
	fmt.Fprintf(w, "Total distance\t%.2fmm\t%.2fmm\t\t\n", s.SourceLength, s.TargetLength)
	w.Flush()
	return sb.String()
}
