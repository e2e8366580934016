package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores BaseIDs for the predefined types.
type Builtins struct {
	Bit       BaseID
	Byte      BaseID
	Short     BaseID
	Int       BaseID
	Long      BaseID
	Float     BaseID
	Double    BaseID
	Char      BaseID
	String    BaseID
	DynString BaseID
	Array     BaseID
	Dir       BaseID
	Var       BaseID
	Nil       BaseID
	Void      BaseID
	To        BaseID
	Flow      BaseID
	Method    BaseID
	Operator  BaseID
	ToPtr     BaseID
	FlowPtr   BaseID
	Tuple     BaseID
	Module    BaseID
}

// Universe owns every BaseType of one compilation. Index 0 is reserved.
type Universe struct {
	bases    []BaseType
	builtins Builtins
}

// NewUniverse constructs a universe seeded with the builtin types.
func NewUniverse() *Universe {
	u := &Universe{bases: make([]BaseType, 1, 64)}
	value := func(k BaseKind) BaseID {
		return u.Add(BaseType{Name: k.String(), Kind: k})
	}
	ref := func(k BaseKind, collection bool) BaseID {
		return u.Add(BaseType{Name: k.String(), Kind: k, NeedsCleanup: true, IsCollection: collection})
	}
	b := &u.builtins
	b.Bit = value(BaseBit)
	b.Byte = value(BaseByte)
	b.Short = value(BaseShort)
	b.Int = value(BaseInt)
	b.Long = value(BaseLong)
	b.Float = value(BaseFloat)
	b.Double = value(BaseDouble)
	b.Char = value(BaseChar)
	b.String = value(BaseString)
	b.DynString = ref(BaseDynString, false)
	b.Array = ref(BaseArray, true)
	b.Dir = ref(BaseDir, true)
	b.Var = ref(BaseVar, false)
	b.Nil = value(BaseNil)
	b.Void = value(BaseVoid)
	b.To = value(BaseTo)
	b.Flow = value(BaseFlow)
	b.Method = value(BaseMethod)
	b.Operator = value(BaseOperator)
	b.ToPtr = ref(BaseToPtr, false)
	b.FlowPtr = ref(BaseFlowPtr, false)
	b.Tuple = value(BaseTuple)
	b.Module = value(BaseModule)

	u.Get(b.Array).KeyBase = b.Int
	u.Get(b.Dir).KeyBase = b.String
	u.Get(b.String).KeyBase = b.Int
	u.Get(b.DynString).KeyBase = b.Int
	return u
}

// Builtins returns BaseIDs for the predefined types.
func (u *Universe) Builtins() Builtins {
	return u.builtins
}

// Nameable lists builtins that user code may spell as a type name.
func (u *Universe) Nameable() []BaseID {
	b := u.builtins
	return []BaseID{
		b.Bit, b.Byte, b.Short, b.Int, b.Long, b.Float, b.Double, b.Char,
		b.String, b.DynString, b.Array, b.Dir, b.Var,
	}
}

// Add appends a base type and returns its handle.
func (u *Universe) Add(bt BaseType) BaseID {
	n, err := safecast.Conv[uint32](len(u.bases))
	if err != nil {
		panic(fmt.Errorf("len(bases) overflow: %w", err))
	}
	u.bases = append(u.bases, bt)
	return BaseID(n)
}

// Get returns the base type or nil. The pointer is invalidated by Add.
func (u *Universe) Get(id BaseID) *BaseType {
	if id == NoBaseID || int(id) >= len(u.bases) {
		return nil
	}
	return &u.bases[id]
}

func (u *Universe) Kind(id BaseID) BaseKind {
	if b := u.Get(id); b != nil {
		return b.Kind
	}
	return BaseInvalid
}

func (u *Universe) Name(id BaseID) string {
	if b := u.Get(id); b != nil {
		return b.Name
	}
	return "<invalid>"
}

// Len reports how many base types exist, sentinel excluded.
func (u *Universe) Len() int { return len(u.bases) - 1 }

// Ancestors returns id followed by its parents up to the root.
func (u *Universe) Ancestors(id BaseID) []BaseID {
	var out []BaseID
	seen := make(map[BaseID]struct{})
	for id.IsValid() {
		if _, dup := seen[id]; dup {
			break
		}
		seen[id] = struct{}{}
		out = append(out, id)
		id = u.Get(id).Parent
	}
	return out
}

// IsAncestor reports whether anc is id or one of its parents.
func (u *Universe) IsAncestor(id, anc BaseID) bool {
	for _, a := range u.Ancestors(id) {
		if a == anc {
			return true
		}
	}
	return false
}

// WouldCycle reports whether making parent the superclass of child closes a loop.
func (u *Universe) WouldCycle(child, parent BaseID) bool {
	return u.IsAncestor(parent, child)
}

// IsReference reports kinds passed by reference (everything that needs
// cleanup, except plain strings).
func (u *Universe) IsReference(id BaseID) bool {
	b := u.Get(id)
	return b != nil && b.NeedsCleanup
}
