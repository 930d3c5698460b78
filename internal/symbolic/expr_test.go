package symbolic

import (
	"testing"

	"github.com/philgrim2/scriptsym/internal/script"
)

func TestEqualVariants(t *testing.T) {
	if !Equal(BytesOf([]byte{1, 2}), BytesOf([]byte{1, 2})) {
		t.Error("equal byte strings should compare equal")
	}
	if Equal(BytesOf([]byte{1, 2}), BytesOf([]byte{1, 3})) {
		t.Error("differing byte strings should not compare equal")
	}
	if !Equal(Var{N: 3}, Var{N: 3}) {
		t.Error("same-index vars should be equal")
	}
	if Equal(Var{N: 3}, Var{N: 4}) {
		t.Error("different-index vars should not be equal")
	}
	if Equal(BytesOf([]byte{1}), Var{N: 0}) {
		t.Error("different variants should never be equal")
	}
}

func TestEqualAppComparesErrTag(t *testing.T) {
	a := AppOp(script.OP_EQUAL, Var{N: 0}, Var{N: 1})
	b := AppErr(script.OP_EQUAL, script.ErrMinimalIf, Var{N: 0}, Var{N: 1})
	if Equal(a, b) {
		t.Error("an untagged App should not equal an otherwise-identical tagged App")
	}

	c := AppErr(script.OP_EQUAL, script.ErrMinimalIf, Var{N: 0}, Var{N: 1})
	if !Equal(b, c) {
		t.Error("two identically tagged Apps should be equal")
	}
}

func TestLessTotalOrder(t *testing.T) {
	app := AppOp(script.OP_CHECKSIG, Var{N: 0}, Var{N: 1})
	v := Var{N: 0}
	b := BytesOf([]byte{0x01})

	if !Less(app, v) {
		t.Error("App should sort before Var")
	}
	if !Less(v, b) {
		t.Error("Var should sort before Bytes")
	}
	if Less(b, app) {
		t.Error("Bytes should not sort before App")
	}

	if !Less(Var{N: 1}, Var{N: 2}) {
		t.Error("Var(1) should sort before Var(2)")
	}
	if !Less(BytesOf([]byte{0x01}), BytesOf([]byte{0x02})) {
		t.Error("Bytes should sort lexicographically")
	}
}

func TestIsNegationOf(t *testing.T) {
	e := Var{N: 0}
	notE := AppOp(script.OP_NOT, e)
	internalNotE := AppOp(script.InternalNot, e)

	if !IsNegationOf(notE, e) {
		t.Error("OP_NOT(e) should be recognized as the negation of e")
	}
	if !IsNegationOf(internalNotE, e) {
		t.Error("INTERNAL_NOT(e) should be recognized as the negation of e")
	}
	if IsNegationOf(e, e) {
		t.Error("e should not be its own negation")
	}
	if IsNegationOf(notE, Var{N: 1}) {
		t.Error("OP_NOT(e) should not be the negation of an unrelated var")
	}
}

func TestIsArgOrderSignificant(t *testing.T) {
	if !IsArgOrderSignificant(script.OP_CHECKSIG) {
		t.Error("OP_CHECKSIG args are order-significant ([sig, pk] is not symmetric)")
	}
	if IsArgOrderSignificant(script.OP_EQUAL) {
		t.Error("OP_EQUAL is commutative, not order-significant")
	}
}
