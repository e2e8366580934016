package ast

import (
	"fmt"
	"strconv"

	"paraflow/internal/source"
)

// LitKind is the lexical class of a literal.
type LitKind uint8

const (
	LitNone LitKind = iota
	LitInt
	LitFloat
	LitString
	LitChar
	LitBit
	LitNil
)

var litNames = [...]string{
	LitNone:   "",
	LitInt:    "int",
	LitFloat:  "float",
	LitString: "string",
	LitChar:   "char",
	LitBit:    "bit",
	LitNil:    "nil",
}

func (k LitKind) String() string {
	if int(k) < len(litNames) {
		return litNames[k]
	}
	return fmt.Sprintf("LitKind(%d)", k)
}

func ParseLitKind(s string) (LitKind, error) {
	for i, name := range litNames {
		if name == s {
			return LitKind(i), nil
		}
	}
	return LitNone, fmt.Errorf("unknown literal kind %q", s)
}

// Literal is the value carried by a Lit node. Int holds ints, chars and bits.
type Literal struct {
	Kind  LitKind
	Int   int64
	Float float64
	Str   string
}

func (l Literal) String() string {
	switch l.Kind {
	case LitInt, LitBit:
		return strconv.FormatInt(l.Int, 10)
	case LitChar:
		return strconv.QuoteRune(rune(l.Int))
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LitString:
		return strconv.Quote(l.Str)
	case LitNil:
		return "nil"
	}
	return ""
}

// IsNumeric reports int/float/char/bit literals.
func (l Literal) IsNumeric() bool {
	return l.Kind == LitInt || l.Kind == LitFloat || l.Kind == LitChar || l.Kind == LitBit
}

type Node struct {
	Kind     Kind
	Tok      source.Token
	Children []NodeID
	Parent   NodeID
	// Scope is set only on scoped kinds; see Tree.ScopeOf.
	Scope ScopeID
	Attrs Attrs
	Lit   Literal
	Cast  CastKind
}
