package symbolic

import (
	"bytes"

	"github.com/philgrim2/scriptsym/internal/script"
)

// Expr is the tagged sum of spec.md §3: a concrete byte string, a free
// witness variable, or an applied opcode over a sub-expression list. Kept as
// an interface over three structs (spec.md §9 "sum types for Expr/Item") —
// a dense switch on Kind() drives dispatch instead of polymorphic methods,
// matching the teacher's table/switch-driven opcode dispatch style.
type Expr interface {
	Kind() ExprKind
}

// ExprKind distinguishes the three Expr variants for ordering and dispatch.
type ExprKind int

const (
	KindApp ExprKind = iota
	KindVar
	KindBytes
)

// Bytes is a concrete byte-string literal.
type Bytes struct {
	B []byte
}

func (Bytes) Kind() ExprKind { return KindBytes }

// Var is a free witness variable, numbered monotonically per top-level
// analysis (spec.md §3 invariant: never reused, even across forks).
type Var struct {
	N int
}

func (Var) Kind() ExprKind { return KindVar }

// App is an opcode applied to an ordered argument list. Err, when non-nil,
// tags "this predicate must hold, else fail with this error kind" (spec.md
// §3); it participates in structural equality so a SIG_NULLDUMMY-tagged
// predicate is distinct from an untagged one with the same shape.
type App struct {
	Op   script.Opcode
	Args []Expr
	Err  *script.ErrorKind
}

func (App) Kind() ExprKind { return KindApp }

// AppErr is a convenience constructor for a tagged App.
func AppErr(op script.Opcode, kind script.ErrorKind, args ...Expr) App {
	k := kind
	return App{Op: op, Args: args, Err: &k}
}

// AppOp is a convenience constructor for an untagged App.
func AppOp(op script.Opcode, args ...Expr) App {
	return App{Op: op, Args: args}
}

// BytesOf is a convenience constructor for a Bytes literal.
func BytesOf(b []byte) Bytes {
	return Bytes{B: append([]byte(nil), b...)}
}

// nonCommutative is the argument-order-significant opcode set of spec.md
// §4.4 rule 1 — args of these App nodes are never reordered by
// canonicalization.
var nonCommutative = map[script.Opcode]bool{
	script.OP_CHECKMULTISIG:       true,
	script.OP_CHECKSIG:            true,
	script.OP_GREATERTHAN:         true,
	script.OP_GREATERTHANOREQUAL:  true,
	script.OP_LESSTHAN:            true,
	script.OP_LESSTHANOREQUAL:     true,
	script.OP_SUB:                 true,
	script.OP_WITHIN:              true,
}

// IsArgOrderSignificant reports whether op is in the argument-order-significant
// set above. The simplifier does not consult it: Simplify sorts only a
// branch's top-level conjuncts and reorders no App's arguments, so
// commutative applications such as OP_EQUAL(a, b) and OP_EQUAL(b, a) stay
// distinct.
func IsArgOrderSignificant(op script.Opcode) bool {
	return nonCommutative[op]
}

// Equal reports structural equality: same variant, recursively equal
// subterms (Bytes compared byte-equal), per spec.md §4.4 rule 2.
func Equal(a, b Expr) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Bytes:
		return bytes.Equal(x.B, b.(Bytes).B)
	case Var:
		return x.N == b.(Var).N
	case App:
		y := b.(App)
		if x.Op != y.Op || len(x.Args) != len(y.Args) {
			return false
		}
		if (x.Err == nil) != (y.Err == nil) {
			return false
		}
		if x.Err != nil && *x.Err != *y.Err {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Less implements the total order of spec.md §4.4 rule 1: App < Var < Bytes
// when variants differ; otherwise variant-specific comparison.
func Less(a, b Expr) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	switch x := a.(type) {
	case Bytes:
		return bytes.Compare(x.B, b.(Bytes).B) < 0
	case Var:
		return x.N < b.(Var).N
	case App:
		y := b.(App)
		if x.Op != y.Op {
			return x.Op < y.Op
		}
		if len(x.Args) != len(y.Args) {
			return len(x.Args) < len(y.Args)
		}
		for i := range x.Args {
			if Equal(x.Args[i], y.Args[i]) {
				continue
			}
			return Less(x.Args[i], y.Args[i])
		}
		return false
	}
	return false
}

// IsNegationOf reports whether p is the logical negation of q: p ==
// OP_NOT(q) or INTERNAL_NOT(q) (or vice versa is checked by the caller on
// the swapped arguments), per spec.md §4.4 rule 3.
func IsNegationOf(p, q Expr) bool {
	app, ok := p.(App)
	if !ok {
		return false
	}
	if app.Op != script.OP_NOT && app.Op != script.InternalNot {
		return false
	}
	if len(app.Args) != 1 {
		return false
	}
	return Equal(app.Args[0], q)
}
