package script

import "fmt"

// ErrorKind enumerates the analyzer's stable, compared-by-code error
// taxonomy (spec.md §7). Numeric identifiers are implementation-defined but
// stable within this build, following the teacher's scriptError convention
// in thoughtd/txscript/engine.go (callers switch on the code, never the
// message string).
type ErrorKind int

const (
	ErrNone ErrorKind = iota

	// Structural.
	ErrBadOpcode
	ErrDisabledOpcode
	ErrUnbalancedConditional
	ErrMalformedPush

	// Stack.
	ErrInvalidStackOperation
	ErrInvalidAltstackOperation
	ErrStackSize
	ErrCleanStack

	// Verify.
	ErrVerify
	ErrEqualVerify
	ErrNumEqualVerify
	ErrCheckSigVerify
	ErrCheckMultisigVerify

	// Semantic.
	ErrOpReturn
	ErrEvalFalse

	// Numeric.
	ErrNumOverflow

	// Signature shape.
	ErrSigNullDummy
	ErrMinimalIf
	ErrTapscriptMinimalIf
	ErrTapscriptCheckMultisig

	// Quantitative.
	ErrPubkeyCount
	ErrSigCount
)

var errorKindNames = map[ErrorKind]string{
	ErrBadOpcode:                "BAD_OPCODE",
	ErrDisabledOpcode:           "DISABLED_OPCODE",
	ErrUnbalancedConditional:    "UNBALANCED_CONDITIONAL",
	ErrMalformedPush:            "MALFORMED_PUSH",
	ErrInvalidStackOperation:    "INVALID_STACK_OPERATION",
	ErrInvalidAltstackOperation: "INVALID_ALTSTACK_OPERATION",
	ErrStackSize:                "STACK_SIZE",
	ErrCleanStack:               "CLEANSTACK",
	ErrVerify:                   "VERIFY",
	ErrEqualVerify:              "EQUALVERIFY",
	ErrNumEqualVerify:           "NUMEQUALVERIFY",
	ErrCheckSigVerify:           "CHECKSIGVERIFY",
	ErrCheckMultisigVerify:      "CHECKMULTISIGVERIFY",
	ErrOpReturn:                 "OP_RETURN",
	ErrEvalFalse:                "EVAL_FALSE",
	ErrNumOverflow:              "NUM_OVERFLOW",
	ErrSigNullDummy:             "SIG_NULLDUMMY",
	ErrMinimalIf:                "MINIMALIF",
	ErrTapscriptMinimalIf:       "TAPSCRIPT_MINIMALIF",
	ErrTapscriptCheckMultisig:   "TAPSCRIPT_CHECKMULTISIG",
	ErrPubkeyCount:              "PUBKEY_COUNT",
	ErrSigCount:                 "SIG_COUNT",
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// AnalysisError is the analyzer's error type: a stable kind plus a
// human-readable description, in the shape of the teacher's
// txscript.Error (engine.go's scriptError helper).
type AnalysisError struct {
	Kind ErrorKind
	Desc string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Desc)
}

// scriptError constructs an *AnalysisError, mirroring engine.go's
// scriptError(ErrCode, desc) constructor used throughout opcode validation.
func scriptError(kind ErrorKind, desc string) *AnalysisError {
	return &AnalysisError{Kind: kind, Desc: desc}
}

// NewError is the exported constructor for use outside this package (the
// symbolic executor reports errors of this shape).
func NewError(kind ErrorKind, desc string) *AnalysisError {
	return scriptError(kind, desc)
}
