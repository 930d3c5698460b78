// Package simplify canonicalizes, deduplicates, and partially evaluates a
// branch's spending-condition conjuncts, then renders the surviving
// branches as a disjunctive-normal-form string (spec.md §4.4).
package simplify

import (
	"bytes"
	"sort"

	"github.com/philgrim2/scriptsym/internal/script"
	"github.com/philgrim2/scriptsym/internal/symbolic"
)

// Simplify runs the full pipeline on one branch's conjunct list, in the
// order canonical sort, adjacent dedup, p-and-not-p contradiction
// detection, then partial evaluation. The order matters: contradiction
// detection must see the raw structural shape of each conjunct (e.g.
// OP_NOT(CHECKSIG(s,p)) directly negating CHECKSIG(s,p)) before partial
// evaluation rewrites that shape away (OP_NOT(CHECKSIG(s,p)) becomes
// OP_EQUAL(s, FALSE), which no longer looks like a negation of anything).
// A contradictory conjunction reports ok=false and an empty slice; its
// branch contributes nothing to the printed result.
func Simplify(conds []symbolic.Expr) (kept []symbolic.Expr, ok bool) {
	sorted := make([]symbolic.Expr, len(conds))
	copy(sorted, conds)
	sort.Slice(sorted, func(i, j int) bool {
		return symbolic.Less(sorted[i], sorted[j])
	})

	deduped := sorted[:0:0]
	for _, c := range sorted {
		if n := len(deduped); n > 0 && symbolic.Equal(deduped[n-1], c) {
			continue
		}
		deduped = append(deduped, c)
	}

	for i := 0; i < len(deduped); i++ {
		for j := i + 1; j < len(deduped); j++ {
			if symbolic.IsNegationOf(deduped[i], deduped[j]) || symbolic.IsNegationOf(deduped[j], deduped[i]) {
				return nil, false
			}
		}
	}

	evaluated := make([]symbolic.Expr, 0, len(deduped))
	for _, c := range deduped {
		e := partialEval(c)
		if lit, isBytes := e.(symbolic.Bytes); isBytes {
			if !symbolic.Bool.Decode(lit.B) {
				return nil, false
			}
			continue
		}
		evaluated = append(evaluated, e)
	}

	return evaluated, true
}

// partialEval rewrites e to a fixed point under the rule set below.
func partialEval(e symbolic.Expr) symbolic.Expr {
	for {
		next, changed := rewriteOnce(e)
		if !changed {
			return next
		}
		e = next
	}
}

func rewriteOnce(e symbolic.Expr) (symbolic.Expr, bool) {
	app, ok := e.(symbolic.App)
	if !ok {
		return e, false
	}

	changed := false
	args := make([]symbolic.Expr, len(app.Args))
	for i, a := range app.Args {
		na, c := rewriteOnce(a)
		args[i] = na
		changed = changed || c
	}
	app.Args = args

	if rewritten, did := applyRule(app); did {
		return rewritten, true
	}
	return app, changed
}

// applyRule implements the three partial-evaluation rewrites of spec.md
// §4.4: concrete OP_EQUAL folds to a boolean literal, a NOT over a concrete
// operand folds via the boolean codec, and NOT over a CHECKSIG application
// normalizes to an explicit equality against false. These rewrites run after
// the dedup and contradiction passes, which therefore see each conjunct in its
// unrewritten shape.
func applyRule(app symbolic.App) (symbolic.Expr, bool) {
	switch app.Op {
	case script.OP_EQUAL:
		if len(app.Args) != 2 {
			return app, false
		}
		a, aOk := app.Args[0].(symbolic.Bytes)
		b, bOk := app.Args[1].(symbolic.Bytes)
		if aOk && bOk {
			return symbolic.BytesOf(symbolic.Bool.Encode(bytes.Equal(a.B, b.B))), true
		}

	case script.OP_NOT, script.InternalNot:
		if len(app.Args) != 1 {
			return app, false
		}
		if lit, ok := app.Args[0].(symbolic.Bytes); ok {
			return symbolic.BytesOf(symbolic.Bool.Not(lit.B)), true
		}
		if inner, ok := app.Args[0].(symbolic.App); ok && inner.Op == script.OP_CHECKSIG && len(inner.Args) == 2 {
			return symbolic.AppOp(script.OP_EQUAL, inner.Args[0], symbolic.BytesOf(symbolic.FalseBytes)), true
		}
	}
	return app, false
}
