package gcode

import (
	"strconv"
	"strings"
)

// Word is a single letter/number pair. Digits holds the number of
// fractional digits the value was written with, or -1 when the letter
// appeared without a value (e.g. the X in "G28 X").
type Word struct {
	W      byte
	Arg    float64
	Digits int
}

func (w Word) IsAxis() bool {
	switch w.W {
	case 'X', 'Y', 'Z', 'E':
		return true
	}
	return false
}

func (w Word) IsValid() bool {
	return w.W >= 'A' && w.W <= 'Z'
}

// Is reports whether w is the given letter and value, e.g. w.Is('G', 1).
func (w Word) Is(letter byte, arg float64) bool {
	return w.W == letter && w.Arg == arg
}

// FormatFloat formats f rounded to prec fractional digits without
// trailing zeros. Negative zero is written as "0".
func FormatFloat(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
	}
	s = strings.TrimRight(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func (w Word) String() string {
	if w.Digits < 0 {
		return string(w.W)
	}
	return string(w.W) + FormatFloat(w.Arg, 3)
}
