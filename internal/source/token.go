package source

import "fmt"

// Pos is a human-readable position. Line and Col are 1-based; zero means unknown.
type Pos struct {
	File string
	Line uint32
	Col  uint32
}

func (p Pos) IsValid() bool { return p.Line != 0 }

func (p Pos) String() string {
	file := p.File
	if file == "" {
		file = "<unknown>"
	}
	if !p.IsValid() {
		return file
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
}

// Token references the source text a tree node was parsed from.
type Token struct {
	Pos  Pos
	Text string
}

// Synth returns a token for a node synthesized by a later pass: it keeps the
// position of the token it was derived from and replaces the text.
func (t Token) Synth(text string) Token {
	return Token{Pos: t.Pos, Text: text}
}
