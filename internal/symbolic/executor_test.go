package symbolic_test

import (
	"encoding/hex"
	"testing"

	"github.com/philgrim2/scriptsym/internal/script"
	"github.com/philgrim2/scriptsym/internal/simplify"
	"github.com/philgrim2/scriptsym/internal/symbolic"
)

func mustSimplify(t *testing.T, b *symbolic.Branch) ([]symbolic.Expr, bool) {
	t.Helper()
	return simplify.Simplify(b.SpendingConditions())
}

// Scenario 1: `<01> OP_IF <02> OP_ELSE <03> OP_ENDIF` forks into exactly two
// branches, one per side of the conditional (spec.md §8 scenario 1).
func TestEndToEnd_IfElseForks(t *testing.T) {
	items := []script.Item{
		script.Push([]byte{0x01}),
		script.OpItem(script.OP_IF),
		script.Push([]byte{0x02}),
		script.OpItem(script.OP_ELSE),
		script.Push([]byte{0x03}),
		script.OpItem(script.OP_ENDIF),
	}

	reg := symbolic.NewAnalysis(items, symbolic.Legacy, symbolic.All, nil)
	branches := reg.Branches()
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(branches))
	}
	for _, b := range branches {
		if b.Err() != nil {
			t.Errorf("branch %d: unexpected error %v", b.Path(), b.Err())
		}
	}
}

// Scenario 2: `<sig> <pk> OP_CHECKSIG` produces a single branch whose
// condition is the atomic CHECKSIG application (spec.md §8 scenario 2).
func TestEndToEnd_CheckSig(t *testing.T) {
	items := []script.Item{
		script.Push([]byte{0xaa}),
		script.Push([]byte{0xbb}),
		script.OpItem(script.OP_CHECKSIG),
	}

	reg := symbolic.NewAnalysis(items, symbolic.Legacy, symbolic.All, nil)
	branches := reg.Branches()
	if len(branches) != 1 {
		t.Fatalf("expected 1 branch, got %d", len(branches))
	}

	kept, ok := mustSimplify(t, branches[0])
	if !ok {
		t.Fatal("branch should not be contradictory")
	}
	got := simplify.PrintConjunction(kept)
	// A single-byte placeholder is not a validly shaped secp256k1 point, so
	// the printer flags it.
	want := "CHECKSIG(aa, bb:invalid)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 3: `OP_DUP OP_HASH160 <h> OP_EQUALVERIFY OP_CHECKSIG` on an empty
// stack draws exactly two witness variables, the pubkey reused between
// HASH160 and CHECKSIG (spec.md §8 scenario 3). The exact variable indices
// are an artifact of draw order (monotonic, never reused, but otherwise
// implementation-defined per spec.md §3) — this asserts the shape, not a
// specific numbering.
func TestEndToEnd_P2PKHShape(t *testing.T) {
	items := []script.Item{
		script.OpItem(script.OP_DUP),
		script.OpItem(script.OP_HASH160),
		script.Push([]byte{0xde, 0xad}),
		script.OpItem(script.OP_EQUALVERIFY),
		script.OpItem(script.OP_CHECKSIG),
	}

	reg := symbolic.NewAnalysis(items, symbolic.Legacy, symbolic.All, nil)
	branches := reg.Branches()
	if len(branches) != 1 {
		t.Fatalf("expected 1 branch, got %d", len(branches))
	}

	kept, ok := mustSimplify(t, branches[0])
	if !ok {
		t.Fatal("branch should not be contradictory")
	}
	if len(kept) != 2 {
		t.Fatalf("expected 2 surviving conjuncts, got %d: %v", len(kept), kept)
	}

	hashEq, isApp := kept[0].(symbolic.App)
	if !isApp || hashEq.Op != script.OP_EQUAL {
		t.Fatalf("first conjunct should be an OP_EQUAL application, got %v", kept[0])
	}
	hashOfPubkey, isApp := hashEq.Args[0].(symbolic.App)
	if !isApp || hashOfPubkey.Op != script.OP_HASH160 {
		t.Fatalf("expected HASH160(pubkey) as the equality's left side, got %v", hashEq.Args[0])
	}
	pubkeyVar, isVar := hashOfPubkey.Args[0].(symbolic.Var)
	if !isVar {
		t.Fatalf("HASH160's argument should be a free variable, got %v", hashOfPubkey.Args[0])
	}

	checksig, isApp := kept[1].(symbolic.App)
	if !isApp || checksig.Op != script.OP_CHECKSIG {
		t.Fatalf("second conjunct should be a CHECKSIG application, got %v", kept[1])
	}
	sigVar, isVar := checksig.Args[0].(symbolic.Var)
	if !isVar {
		t.Fatalf("CHECKSIG's sig argument should be a free variable, got %v", checksig.Args[0])
	}
	checksigPubkeyVar, isVar := checksig.Args[1].(symbolic.Var)
	if !isVar || checksigPubkeyVar.N != pubkeyVar.N {
		t.Fatalf("CHECKSIG's pubkey argument should be the same variable HASH160 used")
	}
	if sigVar.N == pubkeyVar.N {
		t.Fatal("sig and pubkey should be distinct witness variables")
	}
}

// Scenario 4: a 2-of-3 OP_CHECKMULTISIG with a zero dummy drops the
// SIG_NULLDUMMY-tagged predicate (it evaluates to true) and keeps the
// atomic CHECKMULTISIG application (spec.md §8 scenario 4).
func TestEndToEnd_CheckMultisig(t *testing.T) {
	items := []script.Item{
		script.OpItem(script.OP_0),
		script.Push([]byte{0x11}), // sig1
		script.Push([]byte{0x22}), // sig2
		script.Push([]byte{0x02}), // m = 2
		script.Push([]byte{0x33}), // pk1
		script.Push([]byte{0x44}), // pk2
		script.Push([]byte{0x55}), // pk3
		script.Push([]byte{0x03}), // n = 3
		script.OpItem(script.OP_CHECKMULTISIG),
	}

	reg := symbolic.NewAnalysis(items, symbolic.Legacy, symbolic.All, nil)
	branches := reg.Branches()
	if len(branches) != 1 {
		t.Fatalf("expected 1 branch, got %d", len(branches))
	}

	kept, ok := mustSimplify(t, branches[0])
	if !ok {
		t.Fatal("branch should not be contradictory")
	}
	if len(kept) != 1 {
		t.Fatalf("expected the SIG_NULLDUMMY predicate to drop, leaving 1 conjunct, got %d", len(kept))
	}
	got := simplify.PrintConjunction(kept)
	want := "CHECKMULTISIG(" + hex.EncodeToString([]byte{0x11}) + ", " + hex.EncodeToString([]byte{0x22}) +
		", 02, " + hex.EncodeToString([]byte{0x33}) + ", " + hex.EncodeToString([]byte{0x44}) +
		", " + hex.EncodeToString([]byte{0x55}) + ", 03)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 5: under SegwitV1, a non-minimal boolean consumed by OP_IF fails
// minimal-if on both sides, so every branch is contradictory and the
// disjunction is empty (spec.md §8 scenario 5).
func TestEndToEnd_TapscriptMinimalIfEmptiesDisjunction(t *testing.T) {
	items := []script.Item{
		script.Push([]byte{0x02}),
		script.OpItem(script.OP_IF),
		script.Push([]byte{0x01}),
		script.OpItem(script.OP_ENDIF),
	}

	reg := symbolic.NewAnalysis(items, symbolic.SegwitV1, symbolic.All, nil)
	branches := reg.Branches()
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(branches))
	}

	survivors := 0
	for _, b := range branches {
		if b.Err() != nil {
			continue
		}
		if _, ok := mustSimplify(t, b); ok {
			survivors++
		}
	}
	if survivors != 0 {
		t.Errorf("expected every branch to be contradictory, %d survived", survivors)
	}
}

// Scenario 6: `<01> OP_NOT OP_IF <sig> <pk> OP_CHECKSIG OP_ELSE OP_RETURN
// OP_ENDIF` forks into one branch that fails OP_RETURN via the else side,
// and one branch whose raw conditions carry the CHECKSIG application from
// the if side (spec.md §8 scenario 6).
func TestEndToEnd_NotIfElseReturn(t *testing.T) {
	items := []script.Item{
		script.Push([]byte{0x01}),
		script.OpItem(script.OP_NOT),
		script.OpItem(script.OP_IF),
		script.Push([]byte{0xaa}), // sig
		script.Push([]byte{0xbb}), // pk
		script.OpItem(script.OP_CHECKSIG),
		script.OpItem(script.OP_ELSE),
		script.OpItem(script.OP_RETURN),
		script.OpItem(script.OP_ENDIF),
	}

	reg := symbolic.NewAnalysis(items, symbolic.Legacy, symbolic.All, nil)
	branches := reg.Branches()
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(branches))
	}

	var returned, other *symbolic.Branch
	for _, b := range branches {
		if b.Err() != nil {
			returned = b
		} else {
			other = b
		}
	}
	if returned == nil {
		t.Fatal("expected one branch to fail via OP_RETURN")
	}
	if returned.Err().Kind != script.ErrOpReturn {
		t.Errorf("expected OP_RETURN error, got %v", returned.Err().Kind)
	}

	if other == nil {
		t.Fatal("expected a second, non-erroring branch")
	}
	foundChecksig := false
	for _, c := range other.SpendingConditions() {
		if app, ok := c.(symbolic.App); ok && app.Op == script.OP_CHECKSIG {
			foundChecksig = true
		}
	}
	if !foundChecksig {
		t.Error("the non-erroring branch should carry the CHECKSIG application from the if side")
	}
}

// Determinism (spec.md §8 "Determinism"): two runs of the same script
// produce identical branch counts and conjunct lists.
func TestDeterminism(t *testing.T) {
	items := []script.Item{
		script.Push([]byte{0x01}),
		script.OpItem(script.OP_IF),
		script.OpItem(script.OP_DUP),
		script.OpItem(script.OP_IF),
		script.Push([]byte{0x01}),
		script.OpItem(script.OP_ENDIF),
		script.OpItem(script.OP_ELSE),
		script.Push([]byte{0x01}),
		script.OpItem(script.OP_ENDIF),
	}

	first := symbolic.NewAnalysis(items, symbolic.Legacy, symbolic.All, nil).Branches()
	second := symbolic.NewAnalysis(items, symbolic.Legacy, symbolic.All, nil).Branches()

	if len(first) != len(second) {
		t.Fatalf("branch counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, _ := mustSimplify(t, first[i])
		b, _ := mustSimplify(t, second[i])
		if simplify.PrintConjunction(a) != simplify.PrintConjunction(b) {
			t.Errorf("branch %d differs between runs: %q vs %q", i, simplify.PrintConjunction(a), simplify.PrintConjunction(b))
		}
	}
}

// Branch completeness (spec.md §8): a script with two independent
// conditionals produces exactly four reachable leaves, each appearing once.
func TestBranchCompleteness(t *testing.T) {
	items := []script.Item{
		script.OpItem(script.OP_IF),
		script.OpItem(script.OP_ENDIF),
		script.OpItem(script.OP_IF),
		script.OpItem(script.OP_ENDIF),
	}

	reg := symbolic.NewAnalysis(items, symbolic.Legacy, symbolic.All, nil)
	branches := reg.Branches()
	if len(branches) != 4 {
		t.Fatalf("expected 4 leaves for two independent binary forks, got %d", len(branches))
	}

	seen := map[int]bool{}
	for _, b := range branches {
		if seen[b.Path()] {
			t.Fatalf("path id %d appeared twice", b.Path())
		}
		seen[b.Path()] = true
	}
}
