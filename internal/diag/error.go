package diag

import (
	"errors"
	"fmt"
	"strings"

	"paraflow/internal/source"
)

// Error is the fail-fast error every analysis pass returns. The first one
// aborts the compilation.
type Error struct {
	Code Code
	Tok  source.Token
	Msg  string
}

// Errorf builds an *Error located at tok.
func Errorf(code Code, tok source.Token, format string, args ...any) *Error {
	return &Error{Code: code, Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Tok.Pos.String())
	fmt.Fprintf(&sb, ": error[%s]: %s", e.Code.ID(), e.Msg)
	if e.Tok.Text != "" {
		fmt.Fprintf(&sb, " (near '%s')", e.Tok.Text)
	}
	return sb.String()
}

func (e *Error) Category() Category { return e.Code.Category() }

func (e *Error) Diagnostic() Diagnostic {
	return NewError(e.Code, e.Tok, e.Msg)
}

// AsError unwraps err to the first *Error in its chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the code of a diagnostic error, or UnknownCode.
func CodeOf(err error) Code {
	if de, ok := AsError(err); ok {
		return de.Code
	}
	return UnknownCode
}
