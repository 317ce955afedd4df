package gcode

import (
	"bytes"
	"io"
)

// Buffer adapts a Reader to an io.Reader producing G-code text.
type Buffer struct {
	gr  Reader
	buf bytes.Buffer
	err error
}

var _ io.Reader = &Buffer{}

func NewBuffer(r Reader) *Buffer {
	return &Buffer{gr: r}
}
func (b *Buffer) Buffered() []byte { return b.buf.Bytes() }

func (b *Buffer) Read(p []byte) (n int, err error) {
	for b.err == nil && b.buf.Len() < len(p) {
		var l Line
		l, b.err = b.gr.Read()
		if b.err != nil {
			break
		}
		eol := l.EOL
		if eol == "" {
			eol = "\n"
		}
		b.buf.WriteString(l.String())
		b.buf.WriteString(eol)
	}
	if b.buf.Len() > 0 {
		return b.buf.Read(p)
	}
	return 0, b.err
}
