// Package symbolic implements the dual (concrete/symbolic) script
// interpreter: the Expr value model, the byte-string codec, the condition
// stack, and the branch-forking executor (spec.md §3, §4.1-§4.3, §9).
package symbolic

// Version selects the script-version regime, affecting the minimal-if rule
// and opcode availability (spec.md §6, GLOSSARY "Taproot / SegwitV1").
type Version int

const (
	Legacy Version = iota
	SegwitV0
	SegwitV1
)

// Rules selects how strictly consensus-vs-relay-only rules gate behavior;
// combined with Version it decides whether minimal-if applies under
// SegwitV0 (spec.md §4.2).
type Rules int

const (
	All Rules = iota
	ConsensusOnly
)
