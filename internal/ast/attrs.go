package ast

import "fmt"

// Access is the declared visibility of a symbol.
type Access uint8

const (
	// AccessModule is the default: visible and writable only inside the declaring module.
	AccessModule Access = iota
	// AccessReadable symbols are visible to other modules but writable only locally.
	AccessReadable
	// AccessWritable symbols are visible and writable from other modules.
	AccessWritable
	// AccessGlobal symbols behave like writable ones and are exported by every include.
	AccessGlobal
)

func (a Access) String() string {
	switch a {
	case AccessReadable:
		return "readable"
	case AccessWritable:
		return "writable"
	case AccessGlobal:
		return "global"
	default:
		return "local"
	}
}

// Exported reports whether an include copies the symbol.
func (a Access) Exported() bool { return a != AccessModule }

// WritableAbroad reports whether other modules may write the symbol.
func (a Access) WritableAbroad() bool { return a == AccessWritable || a == AccessGlobal }

// ParseAccess converts interchange text to Access.
func ParseAccess(s string) (Access, error) {
	switch s {
	case "", "local":
		return AccessModule, nil
	case "readable":
		return AccessReadable, nil
	case "writable":
		return AccessWritable, nil
	case "global":
		return AccessGlobal, nil
	}
	return AccessModule, fmt.Errorf("unknown access qualifier %q", s)
}

// FnKind distinguishes the function flavours of the language.
type FnKind uint8

const (
	FnNone FnKind = iota
	// FnTo is an ordinary, effectful function.
	FnTo
	// FnFlow is a pure function.
	FnFlow
)

func (k FnKind) String() string {
	switch k {
	case FnTo:
		return "to"
	case FnFlow:
		return "flow"
	}
	return "none"
}

func ParseFnKind(s string) (FnKind, error) {
	switch s {
	case "":
		return FnNone, nil
	case "to":
		return FnTo, nil
	case "flow":
		return FnFlow, nil
	}
	return FnNone, fmt.Errorf("unknown function kind %q", s)
}

// ParaAction is what a para construct does with its body.
type ParaAction uint8

const (
	ParaDo ParaAction = iota
	ParaGet
	ParaFilter
	ParaAdd
	ParaMul
	ParaMin
	ParaMax
)

var paraNames = [...]string{
	ParaDo:     "do",
	ParaGet:    "get",
	ParaFilter: "filter",
	ParaAdd:    "+",
	ParaMul:    "*",
	ParaMin:    "min",
	ParaMax:    "max",
}

func (a ParaAction) String() string {
	if int(a) < len(paraNames) {
		return paraNames[a]
	}
	return fmt.Sprintf("ParaAction(%d)", a)
}

func ParseParaAction(s string) (ParaAction, error) {
	if s == "" {
		return ParaDo, nil
	}
	for i, name := range paraNames {
		if name == s {
			return ParaAction(i), nil
		}
	}
	return ParaDo, fmt.Errorf("unknown para action %q", s)
}

// IsReduction reports actions folding the body into one value.
func (a ParaAction) IsReduction() bool {
	return a == ParaAdd || a == ParaMul || a == ParaMin || a == ParaMax
}

// Attrs are declaration and operator modifiers set by the parser.
type Attrs struct {
	Access      Access
	Const       bool
	Polymorphic bool
	// Ref marks a pass-by-reference formal.
	Ref bool
	// Interface marks a class declaration as an interface.
	Interface bool
	Fn        FnKind
	Para      ParaAction
}

// CastKind names the conversion a Cast node performs.
type CastKind uint8

const (
	CastNone CastKind = iota
	// CastNumeric converts between numeric widths; the node type is the destination.
	CastNumeric
	CastStringDup
	CastCharToString
	// CastRefToBit is a null check.
	CastRefToBit
	// CastStringToBit tests for a non-empty string.
	CastStringToBit
	CastNumToString
	CastBox
	CastUnbox
	CastFuncToPtr
	CastToInterface
)

var castNames = [...]string{
	CastNone:         "none",
	CastNumeric:      "numeric",
	CastStringDup:    "string_dup",
	CastCharToString: "char_to_string",
	CastRefToBit:     "ref_to_bit",
	CastStringToBit:  "string_to_bit",
	CastNumToString:  "num_to_string",
	CastBox:          "box",
	CastUnbox:        "unbox",
	CastFuncToPtr:    "func_to_ptr",
	CastToInterface:  "to_interface",
}

func (c CastKind) String() string {
	if int(c) < len(castNames) {
		return castNames[c]
	}
	return fmt.Sprintf("CastKind(%d)", c)
}
