package gcode

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Parser reads lines from a text stream. It never fails on content: a line
// it cannot tokenize is returned with its raw text and Valid() == false.
type Parser struct {
	br *bufio.Reader
	n  int
	nb int64
}

func NewParser(r io.Reader) *Parser {
	if br, ok := r.(*bufio.Reader); ok {
		return &Parser{br: br}
	}

	return &Parser{br: bufio.NewReader(r)}
}

// Lines returns the number of lines read so far.
func (p *Parser) Lines() int { return p.n }

// Bytes returns the number of bytes consumed so far.
func (p *Parser) Bytes() int64 { return p.nb }

func (p *Parser) Read() (Line, error) {
	s, err := p.br.ReadString('\n')
	if err == io.EOF && s != "" {
		err = nil
	}
	if err != nil {
		return Line{}, err
	}
	p.n++
	p.nb += int64(len(s))

	eol := ""
	switch {
	case strings.HasSuffix(s, "\r\n"):
		eol = "\r\n"
	case strings.HasSuffix(s, "\n"):
		eol = "\n"
	}
	l := ParseLine(s[:len(s)-len(eol)])
	l.EOL = eol
	return l, nil
}

// commands that take a free-form string argument
var textCommands = map[float64]bool{
	23: true, 28: true, 30: true, 32: true, 117: true, 118: true, 928: true,
}

// ParseLine tokenizes a single line of text.
func ParseLine(s string) Line {
	l := Line{Raw: s}
	code := s
	if i := strings.IndexByte(s, ';'); i >= 0 {
		code = s[:i]
		l.Comment = s[i+1:]
	}
	code, paren := stripParens(code)
	if l.Comment == "" {
		l.Comment = paren
	}

	b, text, ok := parseBlock(code)
	if !ok {
		l.invalid = true
		return l
	}
	l.Block = b
	l.Text = text
	return l
}

func stripParens(s string) (code, comment string) {
	if !strings.ContainsRune(s, '(') {
		return s, ""
	}
	var c, cm strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '(':
			depth++
		case s[i] == ')' && depth > 0:
			depth--
		case depth > 0:
			cm.WriteByte(s[i])
		default:
			c.WriteByte(s[i])
		}
	}
	return c.String(), cm.String()
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

func isNumeric(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func parseBlock(code string) (Block, string, bool) {
	var b Block
	i := 0
	for i < len(code) {
		c := code[i]
		if isSpace(c) {
			i++
			continue
		}
		if c == '*' {
			// checksum
			break
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return nil, "", false
		}
		i++
		k := i
		for i < len(code) && isSpace(code[i]) {
			i++
		}
		j := i
		for j < len(code) && isNumeric(code[j]) {
			j++
		}
		num := code[i:j]
		if num == "" {
			// bare axis letter, as in "G28 X Y"
			if k == len(code) || isSpace(code[k]) || code[k] == '*' {
				b = append(b, Word{W: c, Digits: -1})
				i = k
				continue
			}
			return nil, "", false
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, "", false
		}
		w := Word{W: c, Arg: v}
		if k := strings.IndexByte(num, '.'); k >= 0 {
			w.Digits = len(num) - k - 1
		}
		b = append(b, w)
		i = j

		if c == 'M' && textCommands[v] {
			return b, strings.TrimSpace(code[i:]), true
		}
	}
	return b, "", true
}
