package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Разрешение имён
	LkpInfo          Code = 1000
	LkpUndefined     Code = 1001
	LkpUndefinedType Code = 1002
	LkpPrivate       Code = 1003
	LkpUnknownModule Code = 1004
	LkpUnknownMember Code = 1005

	// Несовпадение типов
	TypInfo            Code = 2000
	TypMismatch        Code = 2001
	TypExpectSingle    Code = 2002
	TypNotCollection   Code = 2003
	TypNotCallable     Code = 2004
	TypAmbiguousVar    Code = 2005
	TypInterfaceMethod Code = 2006
	TypBadOperand      Code = 2007
	TypNotIndexable    Code = 2008

	// Диапазоны литералов
	RngInfo       Code = 3000
	RngOverflow   Code = 3001
	RngCharLength Code = 3002

	// Структура
	StrInfo                 Code = 4000
	StrRedefined            Code = 4001
	StrInheritCycle         Code = 4002
	StrBadShape             Code = 4003
	StrArity                Code = 4004
	StrUnknownNamed         Code = 4005
	StrDuplicateNamed       Code = 4006
	StrPositionalAfterNamed Code = 4007
	StrMissingArg           Code = 4008
	StrRefArg               Code = 4009
	StrNotWritable          Code = 4010
	StrFixedArrayInit       Code = 4011
	StrNotConst             Code = 4012
	StrOverride             Code = 4013
	StrPolySignature        Code = 4014
	StrTooManyValues        Code = 4015
	StrMisplaced            Code = 4016
	StrUnknownKind          Code = 4017

	// Локальность
	LocInfo               Code = 5000
	LocalityNonLocalWrite Code = 5001
	LocalityTaintedWrite  Code = 5002
	LocalityEffectfulCall Code = 5003
	LocalityOutputAlias   Code = 5004

	IOInfo         Code = 6000
	IOReadFailed   Code = 6001
	IODecodeFailed Code = 6002

	PrjInfo          Code = 7000
	PrjConfigInvalid Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	LkpUndefined:            "Undefined name",
	LkpUndefinedType:        "Undefined type",
	LkpPrivate:              "Symbol is private to its module",
	LkpUnknownModule:        "Unknown module",
	LkpUnknownMember:        "Unknown member",
	TypMismatch:             "Type mismatch",
	TypExpectSingle:         "Expected a single value",
	TypNotCollection:        "Not a collection",
	TypNotCallable:          "Not callable",
	TypAmbiguousVar:         "Ambiguous var operand",
	TypInterfaceMethod:      "Interface method not implemented",
	TypBadOperand:           "Invalid operand type",
	TypNotIndexable:         "Not indexable",
	RngOverflow:             "Literal out of range",
	RngCharLength:           "Character literal must be one character",
	StrRedefined:            "Redefinition in the same scope",
	StrInheritCycle:         "Inheritance cycle",
	StrBadShape:             "Malformed node",
	StrArity:                "Wrong operator arity",
	StrUnknownNamed:         "Unknown named argument",
	StrDuplicateNamed:       "Duplicate named argument",
	StrPositionalAfterNamed: "Positional argument after named one",
	StrMissingArg:           "Missing argument",
	StrRefArg:               "By-reference argument must be a local variable",
	StrNotWritable:          "Not writable",
	StrFixedArrayInit:       "Fixed-size array cannot be initialized",
	StrNotConst:             "Constant initializer is not constant",
	StrOverride:             "Illegal override",
	StrPolySignature:        "Polymorphic method defined differently",
	StrTooManyValues:        "Too many values",
	StrMisplaced:            "Statement not allowed here",
	StrUnknownKind:          "Unknown node kind",
	LocalityNonLocalWrite:   "Write to non-local variable",
	LocalityTaintedWrite:    "Write to tainted local",
	LocalityEffectfulCall:   "Effectful call in pure context",
	LocalityOutputAlias:     "Output aliases outside state",
	IOReadFailed:            "Failed to read input",
	IODecodeFailed:          "Failed to decode tree",
	PrjConfigInvalid:        "Invalid project configuration",
}

// Category is the error family a code belongs to.
type Category uint8

const (
	CatUnknown Category = iota
	LookupError
	TypeMismatchError
	CoercionRangeError
	StructureError
	LocalityViolation
	IOError
	ProjectError
)

func (c Category) String() string {
	switch c {
	case LookupError:
		return "LookupError"
	case TypeMismatchError:
		return "TypeMismatchError"
	case CoercionRangeError:
		return "CoercionRangeError"
	case StructureError:
		return "StructureError"
	case LocalityViolation:
		return "LocalityViolation"
	case IOError:
		return "IOError"
	case ProjectError:
		return "ProjectError"
	}
	return "UnknownError"
}

func (c Code) Category() Category {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return LookupError
	case ic >= 2000 && ic < 3000:
		return TypeMismatchError
	case ic >= 3000 && ic < 4000:
		return CoercionRangeError
	case ic >= 4000 && ic < 5000:
		return StructureError
	case ic >= 5000 && ic < 6000:
		return LocalityViolation
	case ic >= 6000 && ic < 7000:
		return IOError
	case ic >= 7000 && ic < 8000:
		return ProjectError
	}
	return CatUnknown
}

func (c Code) ID() string {
	switch c.Category() {
	case LookupError:
		return fmt.Sprintf("LKP%04d", int(c))
	case TypeMismatchError:
		return fmt.Sprintf("TYP%04d", int(c))
	case CoercionRangeError:
		return fmt.Sprintf("RNG%04d", int(c))
	case StructureError:
		return fmt.Sprintf("STR%04d", int(c))
	case LocalityViolation:
		return fmt.Sprintf("LOC%04d", int(c))
	case IOError:
		return fmt.Sprintf("IO%04d", int(c))
	case ProjectError:
		return fmt.Sprintf("PRJ%04d", int(c))
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
