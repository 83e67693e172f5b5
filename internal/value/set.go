package value

// CmpOp is a comparison operator applied over possible-value sets.
type CmpOp int

const (
	OpEq CmpOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op CmpOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	default:
		return ">="
	}
}

func (op CmpOp) apply(c int) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	default:
		return c >= 0
	}
}

// Compare applies op to two single numeric values.
func Compare(op CmpOp, a, b Value) bool { return op.apply(Cmp(a, b)) }

// CompareSets decides a comparison over two finite possible-value
// sets. The result is definite when every (a, b) pair agrees: two
// provably disjoint sets make == definitely false, and sets whose
// ranges are fully ordered make </<= definitely decided even though
// neither operand has a single known value. Mixed outcomes are not
// definite and the caller must treat the comparison as unknown.
func CompareSets(op CmpOp, as, bs []Value) (result, definite bool) {
	if len(as) == 0 || len(bs) == 0 {
		return false, false
	}
	first := true
	for _, a := range as {
		for _, b := range bs {
			r := op.apply(Cmp(a, b))
			if first {
				result = r
				first = false
				continue
			}
			if r != result {
				return false, false
			}
		}
	}
	return result, true
}

// Bounds returns the minimum and maximum of a non-empty numeric set.
func Bounds(vs []Value) (min, max Value) {
	min, max = vs[0], vs[0]
	for _, v := range vs[1:] {
		if Cmp(v, min) < 0 {
			min = v
		}
		if Cmp(v, max) > 0 {
			max = v
		}
	}
	return min, max
}
