package diag

import (
	"paraflow/internal/source"
)

// Diagnostic is the rendered record of one failure. Near carries the
// offending token's text.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Pos      source.Pos
	Near     string
}

func New(sev Severity, code Code, tok source.Token, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Pos:      tok.Pos,
		Near:     tok.Text,
	}
}

func NewError(code Code, tok source.Token, msg string) Diagnostic {
	return New(SevError, code, tok, msg)
}
