package gcode

import (
	"bufio"
	"io"
)

type Reader interface {
	Read() (Line, error)
}

type Writer interface {
	Write(Line) error
}

type LinesReader struct {
	Lines []Line
	n     int
}

func (b *LinesReader) Read() (Line, error) {
	if b.n == len(b.Lines) {
		return Line{}, io.EOF
	}

	b.n++
	return b.Lines[b.n-1], nil
}

// TextWriter writes lines to an io.Writer, keeping each line's original
// terminator. Generated lines end with "\n".
type TextWriter struct {
	w *bufio.Writer
	n int64
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

func (t *TextWriter) Write(l Line) error {
	eol := l.EOL
	if eol == "" {
		eol = "\n"
	}
	n, err := t.w.WriteString(l.String())
	t.n += int64(n)
	if err != nil {
		return err
	}
	n, err = t.w.WriteString(eol)
	t.n += int64(n)
	return err
}

// Written returns the number of bytes written so far.
func (t *TextWriter) Written() int64 { return t.n }

func (t *TextWriter) Flush() error { return t.w.Flush() }
