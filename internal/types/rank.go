package types

// Rank orders kinds by logical size:
// bit < byte < char < short < int < long < float < double < string.
// Kinds outside the ladder rank -1.
func Rank(k BaseKind) int {
	switch k {
	case BaseBit:
		return 0
	case BaseByte:
		return 1
	case BaseChar:
		return 2
	case BaseShort:
		return 3
	case BaseInt:
		return 4
	case BaseLong:
		return 5
	case BaseFloat:
		return 6
	case BaseDouble:
		return 7
	case BaseString:
		return 8
	}
	return -1
}

// IsNumeric covers bit through double, char included.
func IsNumeric(k BaseKind) bool {
	r := Rank(k)
	return r >= 0 && r <= Rank(BaseDouble)
}

func IsInteger(k BaseKind) bool {
	r := Rank(k)
	return r >= 0 && r <= Rank(BaseLong)
}

func IsFloat(k BaseKind) bool { return k == BaseFloat || k == BaseDouble }

// Wider returns the operand kind that wins when two numbers meet.
func (u *Universe) Wider(a, b BaseID) BaseID {
	if Rank(u.Kind(a)) >= Rank(u.Kind(b)) {
		return a
	}
	return b
}
