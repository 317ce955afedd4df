package gcode

// Line is one line of a G-code program. Raw holds the text exactly as it
// was read (without the line terminator) and is what gets written back
// for lines that pass through unchanged.
type Line struct {
	Raw     string
	Block   Block
	Comment string

	// EOL is the terminator the line was read with ("\n" or "\r\n").
	EOL string

	// Text is the free-form argument of commands like M117.
	Text string

	invalid bool
}

// NewLine builds a generated line from a block. The raw text is produced
// with Block.Format using digits.
func NewLine(b Block, digits func(w byte) int) Line {
	return Line{Raw: b.Format(digits), Block: b}
}

// Valid is false when the command part of the line could not be parsed.
// Invalid lines keep their raw text and no block.
func (l Line) Valid() bool { return !l.invalid }

func (l Line) HasComment() bool { return l.Comment != "" }

// IsMotion reports whether the line starts with G0, G1, G2 or G3.
func (l Line) IsMotion() bool {
	g, ok := l.Block.Command()
	if !ok || g.W != 'G' {
		return false
	}
	switch g.Arg {
	case 0, 1, 2, 3:
		return true
	}
	return false
}

// IsArc reports whether the line is a G2 or G3 command.
func (l Line) IsArc() bool {
	g, ok := l.Block.Command()
	return ok && (g.Is('G', 2) || g.Is('G', 3))
}

func (l Line) String() string {
	if l.Raw != "" || l.Block == nil {
		return l.Raw
	}
	return l.Block.String()
}
