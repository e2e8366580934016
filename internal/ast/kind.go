package ast

import "fmt"

// Kind is the closed tag of a tree node.
//
// Child layouts (positional):
//
//	Program      modules...
//	Module       statements...                       (Tok: module name; scoped)
//	Include      -                                   (Tok: included module name)
//	Compound     statements...                       (scoped)
//	VarDec       type [init]                         (Tok: name; type may be Nop)
//	FuncDec      inputs outputs body                 (Tok: name; inputs/outputs are TypeTuple; body Compound or Nop; scoped)
//	Class        parent members...                   (Tok: name; parent TypeName/TypeDot or Nop; scoped)
//	TypeName     [dimension]                         (Tok: type name)
//	TypeOf       outer inner                         (array of int)
//	TypeDot      module type                         (module is NameUse, type is TypeName)
//	TypeFunc     inputs outputs                      (function pointer syntax)
//	TypeTuple    formals...                          (VarDec list)
//	If           cond then [else]
//	While        cond body
//	For          init cond next body                 (scoped)
//	Foreach      element collection body             (element is VarDec; scoped)
//	Try          body catchVar catchBody             (catchVar is VarDec; scoped)
//	Para         element collection body             (element is VarDec; scoped)
//	NameUse      -                                   (Tok: name)
//	Lit          -                                   (Lit holds the value)
//	Tuple        elements...
//	KeyVal       value                               (Tok: key)
//	Dot          object                              (Tok: member name)
//	Index        collection index
//	Call         callee args                         (args is Tuple)
//	New          type args                           (args is Tuple)
//	assignments  lval rval
//	binary ops   left right
//	unary ops    operand
//	Cast         operand                             (Cast holds the conversion)
//	StringCat    parts...
//	ClassAlloc   fields | zeroFields initArgs        (both Tuples)
type Kind uint8

const (
	KindInvalid Kind = iota

	KindProgram
	KindModule
	KindInclude
	KindCompound
	KindNop

	KindVarDec
	KindFuncDec
	KindClass

	KindTypeName
	KindTypeOf
	KindTypeDot
	KindTypeFunc
	KindTypeTuple

	KindIf
	KindWhile
	KindFor
	KindForeach
	KindBreak
	KindContinue
	KindReturn
	KindTry
	KindPara

	KindNameUse
	KindLit
	KindTuple
	KindKeyVal
	KindDot
	KindIndex
	KindCall
	KindNew

	KindAssign
	KindPlusAssign
	KindMinusAssign
	KindMulAssign
	KindDivAssign
	KindModAssign

	KindPlus
	KindMinus
	KindMul
	KindDiv
	KindMod
	KindShiftLeft
	KindShiftRight
	KindBitAnd
	KindBitOr
	KindBitXor
	KindLogAnd
	KindLogOr
	KindSame
	KindNotSame
	KindLess
	KindLessEq
	KindGreater
	KindGreaterEq

	KindNegate
	KindNot
	KindFlipBits

	KindCast
	KindStringCat
	KindClassAlloc

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:     "invalid",
	KindProgram:     "program",
	KindModule:      "module",
	KindInclude:     "include",
	KindCompound:    "compound",
	KindNop:         "nop",
	KindVarDec:      "vardec",
	KindFuncDec:     "func",
	KindClass:       "class",
	KindTypeName:    "type",
	KindTypeOf:      "type_of",
	KindTypeDot:     "type_dot",
	KindTypeFunc:    "type_func",
	KindTypeTuple:   "type_tuple",
	KindIf:          "if",
	KindWhile:       "while",
	KindFor:         "for",
	KindForeach:     "foreach",
	KindBreak:       "break",
	KindContinue:    "continue",
	KindReturn:      "return",
	KindTry:         "try",
	KindPara:        "para",
	KindNameUse:     "name",
	KindLit:         "lit",
	KindTuple:       "tuple",
	KindKeyVal:      "keyval",
	KindDot:         "dot",
	KindIndex:       "index",
	KindCall:        "call",
	KindNew:         "new",
	KindAssign:      "assign",
	KindPlusAssign:  "plus_assign",
	KindMinusAssign: "minus_assign",
	KindMulAssign:   "mul_assign",
	KindDivAssign:   "div_assign",
	KindModAssign:   "mod_assign",
	KindPlus:        "plus",
	KindMinus:       "minus",
	KindMul:         "mul",
	KindDiv:         "div",
	KindMod:         "mod",
	KindShiftLeft:   "shl",
	KindShiftRight:  "shr",
	KindBitAnd:      "bit_and",
	KindBitOr:       "bit_or",
	KindBitXor:      "bit_xor",
	KindLogAnd:      "and",
	KindLogOr:       "or",
	KindSame:        "eq",
	KindNotSame:     "ne",
	KindLess:        "lt",
	KindLessEq:      "le",
	KindGreater:     "gt",
	KindGreaterEq:   "ge",
	KindNegate:      "neg",
	KindNot:         "not",
	KindFlipBits:    "flip",
	KindCast:        "cast",
	KindStringCat:   "strcat",
	KindClassAlloc:  "class_alloc",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		if name != "" {
			m[name] = Kind(k)
		}
	}
	return m
}()

func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind maps an interchange name back to a Kind.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindByName[name]
	if !ok || k == KindInvalid {
		return KindInvalid, false
	}
	return k, true
}

// IsScoped reports whether the parser allocates a scope for this kind.
func (k Kind) IsScoped() bool {
	switch k {
	case KindModule, KindCompound, KindFuncDec, KindClass, KindFor, KindForeach, KindTry, KindPara:
		return true
	}
	return false
}

// IsTypeSyntax reports whether the node is part of a type expression.
func (k Kind) IsTypeSyntax() bool {
	return k >= KindTypeName && k <= KindTypeTuple
}

// IsAssign reports plain and compound assignments.
func (k Kind) IsAssign() bool {
	return k >= KindAssign && k <= KindModAssign
}

// IsBinary reports binary operators (arithmetic, bitwise, logical, comparison).
func (k Kind) IsBinary() bool {
	return k >= KindPlus && k <= KindGreaterEq
}

// IsComparison reports operators that always yield bit.
func (k Kind) IsComparison() bool {
	return k >= KindSame && k <= KindGreaterEq
}

// IsLogical reports short-circuit operators.
func (k Kind) IsLogical() bool {
	return k == KindLogAnd || k == KindLogOr
}

// IsUnary reports prefix operators.
func (k Kind) IsUnary() bool {
	return k >= KindNegate && k <= KindFlipBits
}

// BinaryOf maps a compound assignment to its arithmetic operator.
func (k Kind) BinaryOf() Kind {
	switch k {
	case KindPlusAssign:
		return KindPlus
	case KindMinusAssign:
		return KindMinus
	case KindMulAssign:
		return KindMul
	case KindDivAssign:
		return KindDiv
	case KindModAssign:
		return KindMod
	}
	return KindInvalid
}
