package simplify

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/philgrim2/scriptsym/internal/script"
	"github.com/philgrim2/scriptsym/internal/symbolic"
)

// PrintExpr renders a single Expr per spec.md §4.4's printing rules: App as
// NAME(args...), the two special-cased shapes INTERNAL_NOT and OP_EQUAL
// with infix/prefix notation, Var as <inputN>, Bytes as hex. An OP_CHECKSIG
// application additionally marks a malformed concrete pubkey argument (see
// printPubkeyArg).
func PrintExpr(e symbolic.Expr) string {
	switch x := e.(type) {
	case symbolic.Bytes:
		return hex.EncodeToString(x.B)
	case symbolic.Var:
		return fmt.Sprintf("<input%d>", x.N)
	case symbolic.App:
		return printApp(x)
	default:
		return "?"
	}
}

func printApp(a symbolic.App) string {
	if a.Op == script.InternalNot && len(a.Args) == 1 {
		return fmt.Sprintf("!(%s)", PrintExpr(a.Args[0]))
	}
	if a.Op == script.OP_EQUAL && len(a.Args) == 2 {
		return fmt.Sprintf("(%s == %s)", PrintExpr(a.Args[0]), PrintExpr(a.Args[1]))
	}
	if a.Op == script.OP_CHECKSIG && len(a.Args) == 2 {
		return fmt.Sprintf("%s(%s, %s)", a.Op.PrintName(), PrintExpr(a.Args[0]), printPubkeyArg(a.Args[1]))
	}

	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = PrintExpr(arg)
	}
	return fmt.Sprintf("%s(%s)", a.Op.PrintName(), strings.Join(parts, ", "))
}

// printPubkeyArg renders a CHECKSIG pubkey argument, flagging a concrete
// byte string that is not a valid secp256k1 point with an ":invalid"
// suffix. Symbolic (witness-drawn) pubkeys print unannotated, since nothing
// concrete is known about their shape yet.
func printPubkeyArg(e symbolic.Expr) string {
	lit, isBytes := e.(symbolic.Bytes)
	if !isBytes || script.IsValidCurvePoint(lit.B) {
		return PrintExpr(e)
	}
	return PrintExpr(e) + ":invalid"
}

// PrintConjunction joins one branch's surviving conjuncts with " && ". An
// empty conjunct list (every predicate folded away to concrete true) prints
// as the literal "true".
func PrintConjunction(conds []symbolic.Expr) string {
	if len(conds) == 0 {
		return "true"
	}
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = PrintExpr(c)
	}
	return strings.Join(parts, " && ")
}

// PrintDNF joins every surviving branch's conjunction with " ||\n",
// producing the analyzer's final disjunctive-normal-form output.
func PrintDNF(conjunctions [][]symbolic.Expr) string {
	lines := make([]string, len(conjunctions))
	for i, c := range conjunctions {
		lines[i] = PrintConjunction(c)
	}
	return strings.Join(lines, " ||\n")
}
