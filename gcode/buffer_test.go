package gcode

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_Read(t *testing.T) {
	lines := []Line{
		{Raw: "G1 X1", EOL: "\n"},
		{Raw: "M2", EOL: "\r\n"},
	}

	b := NewBuffer(&LinesReader{Lines: lines})

	buf := make([]byte, 12)
	n, err := b.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []byte("G1 X1\nM2\r\n"), buf[:n])

	n, err = b.Read(buf)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, n)
}

func TestBuffer_ReadAll(t *testing.T) {
	src := "G90\nG1 X1 Y2 ; move\n\nM117 hello there\n"
	lines := MustParse(src)

	data, err := io.ReadAll(NewBuffer(&LinesReader{Lines: lines}))
	assert.NoError(t, err)
	assert.Equal(t, src, string(data))
}
