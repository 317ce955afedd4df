package gcode

import (
	"errors"
	"strings"
)

type Block []Word

func (b Block) Arg(w byte) (bool, float64) {
	for _, g := range b {
		if g.W == w {
			return true, g.Arg
		}
	}
	return false, 0
}

func (b Block) Has(w byte) bool {
	ok, _ := b.Arg(w)
	return ok
}

// Command returns the first G, M or T word of the block.
func (b Block) Command() (Word, bool) {
	for _, g := range b {
		switch g.W {
		case 'G', 'M', 'T':
			return g, true
		}
	}
	return Word{}, false
}

func (b Block) Validate() error {
	var checkWord [256]bool
	var checkModal [256]bool

	var m ModalGroup
	for _, g := range b {
		if !g.IsValid() {
			return errors.New("invalid word in block")
		}
		if g.W != 'G' && g.W != 'M' && checkWord[g.W] {
			return errors.New("word was repeated in a block")
		}
		checkWord[g.W] = true
		m = g.ModalGroup()
		if m != ModalGroupNone && checkModal[m] {
			return errors.New("multiple words from same modal group")
		}
		checkModal[m] = true
	}

	return nil
}

// Format writes the block as space separated words. Command words (G, M,
// T, N) keep their own value; every other word is rounded to the number of
// fractional digits returned by digits.
func (b Block) Format(digits func(w byte) int) string {
	var sb strings.Builder
	for i, g := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case g.Digits < 0:
			sb.WriteByte(g.W)
		case g.W == 'G' || g.W == 'M' || g.W == 'T' || g.W == 'N':
			sb.WriteString(g.String())
		default:
			sb.WriteByte(g.W)
			sb.WriteString(FormatFloat(g.Arg, digits(g.W)))
		}
	}
	return sb.String()
}

func (b Block) String() string {
	return b.Format(func(byte) int { return 5 })
}
