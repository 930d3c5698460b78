package symbolic

import (
	"go.uber.org/zap"

	"github.com/philgrim2/scriptsym/internal/script"
)

const maxStackSize = 1000
const maxMultisigKeys = 20

// Registry is the shared, append-only collection every fork registers
// itself into at construction (spec.md §4.3). Order is deterministic DFS
// pre-order: a parent is registered before the sibling it spawns.
type Registry struct {
	branches []*Branch
	next     int
}

func (r *Registry) register(b *Branch) {
	b.path = r.next
	r.next++
	r.branches = append(r.branches, b)
}

// Branch is the cloneable analyzer state of spec.md §3. Mirroring the
// teacher's Engine (thoughtd/txscript/engine.go), it carries its own script
// position, stack, altstack, and condition stack, but — unlike Engine —
// collects spending conditions instead of enforcing concrete success, and
// is deep-cloned at each fork point rather than mutated through a single
// instance.
type Branch struct {
	items []script.Item
	offset int

	stack []Expr
	alt   []Expr
	cs    CondStack
	conds []Expr

	path       int
	varCounter *int
	registry   *Registry

	version Version
	rules   Rules
	logger  *zap.SugaredLogger

	err *script.AnalysisError
}

// NewAnalysis constructs the root Branch for a script and registers it.
func NewAnalysis(items []script.Item, version Version, rules Rules, logger *zap.SugaredLogger) *Registry {
	registry := &Registry{}
	root := &Branch{
		items:      items,
		cs:         NewCondStack(),
		varCounter: new(int),
		registry:   registry,
		version:    version,
		rules:      rules,
		logger:     logger,
	}
	registry.register(root)
	root.run()
	return registry
}

// Branches returns every reachable path's final Branch state, in DFS
// pre-order (spec.md §4.3, §5).
func (r *Registry) Branches() []*Branch { return r.branches }

// Path returns the branch's registry-assigned path id.
func (b *Branch) Path() int { return b.path }

// SpendingConditions returns the branch's collected conjunct list.
func (b *Branch) SpendingConditions() []Expr { return b.conds }

// Err returns the error the branch aborted with, or nil on success.
func (b *Branch) Err() *script.AnalysisError { return b.err }

// FinalStack returns the branch's stack at the point it stopped, for
// diagnostic reporting (spec.md §7: "a diagnostic emitted carrying (error
// kind, current stack snapshot)").
func (b *Branch) FinalStack() []Expr { return b.stack }

func (b *Branch) clone() *Branch {
	return &Branch{
		items:      b.items,
		offset:     b.offset,
		stack:      append([]Expr(nil), b.stack...),
		alt:        append([]Expr(nil), b.alt...),
		cs:         b.cs,
		conds:      append([]Expr(nil), b.conds...),
		varCounter: b.varCounter,
		registry:   b.registry,
		version:    b.version,
		rules:      b.rules,
		logger:     b.logger,
	}
}

func (b *Branch) newVar() Expr {
	n := *b.varCounter
	*b.varCounter++
	return Var{N: n}
}

// ensureDepth pads the bottom of the stack with fresh witness variables
// until it holds at least k items (spec.md §4.2 take/read).
func (b *Branch) ensureDepth(k int) {
	for len(b.stack) < k {
		b.stack = append([]Expr{b.newVar()}, b.stack...)
	}
}

// read is the non-destructive primitive: returns the top k items,
// bottom-to-top, padding with fresh variables first.
func (b *Branch) read(k int) []Expr {
	b.ensureDepth(k)
	return append([]Expr(nil), b.stack[len(b.stack)-k:]...)
}

// take is the destructive primitive: read then remove the top k items.
func (b *Branch) take(k int) []Expr {
	vals := b.read(k)
	b.stack = b.stack[:len(b.stack)-k]
	return vals
}

func (b *Branch) push(e Expr) { b.stack = append(b.stack, e) }

func (b *Branch) fail(kind script.ErrorKind, desc string) bool {
	b.err = script.NewError(kind, desc)
	if b.logger != nil {
		b.logger.Warnw("branch aborted", "path", b.path, "kind", kind.String(), "desc", desc)
	}
	return false
}

// verify implements the shared OP_VERIFY contract (spec.md §4.2): a
// concrete false fails with failKind, a concrete true is consumed silently,
// a symbolic value is appended to spendingConditions.
func (b *Branch) verify(e Expr, failKind script.ErrorKind) bool {
	if lit, ok := e.(Bytes); ok {
		if !Bool.Decode(lit.B) {
			return b.fail(failKind, "predicate evaluated false")
		}
		return true
	}
	b.conds = append(b.conds, e)
	return true
}

// concreteInt returns (value, true) only when e is a concrete Bytes literal
// decodable within the 4-byte bound; any symbolic operand or overflow
// reports ok=false so callers surface NUM_OVERFLOW per spec.md §4.2 and §9's
// decision to reject symbolic PICK/ROLL depths.
func (b *Branch) concreteInt(e Expr) (int64, bool) {
	lit, ok := e.(Bytes)
	if !ok {
		return 0, false
	}
	n, err := Int.Decode(lit.B)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (b *Branch) run() {
	for b.offset < len(b.items) {
		item := b.items[b.offset]
		b.offset++
		if !b.step(item) {
			return
		}
		if len(b.stack)+len(b.alt) > maxStackSize {
			b.fail(script.ErrStackSize, "combined stack and altstack exceed 1000 items")
			return
		}
	}
	b.finish()
}

func (b *Branch) finish() {
	if b.err != nil {
		return
	}
	if !b.cs.Empty() {
		b.fail(script.ErrUnbalancedConditional, "condition stack not empty at end of script")
		return
	}
	if len(b.stack) > 1 {
		b.fail(script.ErrCleanStack, "more than one item left on the stack")
		return
	}
	final := b.take(1)[0]
	if lit, ok := final.(Bytes); ok && !Bool.Decode(lit.B) {
		b.fail(script.ErrEvalFalse, "final stack value is false")
		return
	}
	b.conds = append(b.conds, final)
}

// step dispatches one item. Returns false to stop the branch (an error was
// recorded); the branch remains in the registry with Err() set.
func (b *Branch) step(item script.Item) bool {
	fExec := b.cs.AllTrue()

	if item.IsPush {
		if !fExec {
			return true
		}
		b.push(BytesOf(item.Data))
		return true
	}

	op := item.Op

	// Flow-control opcodes execute even while the branch is gated off
	// (spec.md §4.2 "Dispatch gate").
	switch op {
	case script.OP_IF, script.OP_NOTIF:
		return b.stepConditional(op, fExec)
	case script.OP_ELSE:
		if b.cs.Empty() {
			return b.fail(script.ErrUnbalancedConditional, "OP_ELSE with no matching OP_IF")
		}
		b.cs = b.cs.ToggleTop()
		return true
	case script.OP_ENDIF:
		if b.cs.Empty() {
			return b.fail(script.ErrUnbalancedConditional, "OP_ENDIF with no matching OP_IF")
		}
		var err error
		b.cs, err = b.cs.Pop()
		if err != nil {
			return b.fail(script.ErrUnbalancedConditional, err.Error())
		}
		return true
	}

	if !fExec {
		return true
	}

	return b.execute(op)
}

// stepConditional implements OP_IF/OP_NOTIF forking, including the
// minimal-if rule (spec.md §4.2).
func (b *Branch) stepConditional(op script.Opcode, fExec bool) bool {
	if !fExec {
		b.cs = b.cs.Push(false)
		return true
	}

	e := b.take(1)[0]

	fork := b.clone()
	b.registry.register(fork)

	thisGate := op == script.OP_IF
	b.cs = b.cs.Push(thisGate)
	fork.cs = fork.cs.Push(!thisGate)

	minimalIf := b.version == SegwitV1 || (b.version == SegwitV0 && b.rules == All)
	if minimalIf {
		kind := script.ErrMinimalIf
		if b.version == SegwitV1 {
			kind = script.ErrTapscriptMinimalIf
		}
		b.conds = append(b.conds, AppErr(script.OP_EQUAL, kind, e, Bytes{B: append([]byte(nil), TrueBytes...)}))
		fork.conds = append(fork.conds, AppErr(script.OP_EQUAL, kind, e, Bytes{B: append([]byte(nil), FalseBytes...)}))
	} else {
		b.conds = append(b.conds, e)
		fork.conds = append(fork.conds, AppOp(script.InternalNot, e))
	}

	fork.run()
	return true
}

// execute dispatches the non-flow-control opcode families of spec.md §4.2.
func (b *Branch) execute(op script.Opcode) bool {
	switch op {
	case script.OP_0:
		b.push(Bytes{B: []byte{}})
		return true
	case script.OP_1NEGATE:
		b.push(Bytes{B: Int.Encode(-1)})
		return true
	case script.OP_1, script.OP_2, script.OP_3, script.OP_4, script.OP_5,
		script.OP_6, script.OP_7, script.OP_8, script.OP_9, script.OP_10,
		script.OP_11, script.OP_12, script.OP_13, script.OP_14, script.OP_15, script.OP_16:
		b.push(Bytes{B: Int.Encode(int64(script.AsSmallInt(op)))})
		return true

	case script.OP_NOP, script.OP_NOP1, script.OP_NOP4, script.OP_NOP5,
		script.OP_NOP6, script.OP_NOP7, script.OP_NOP8, script.OP_NOP9, script.OP_NOP10:
		return true

	case script.OP_VERIFY:
		e := b.take(1)[0]
		return b.verify(e, script.ErrVerify)

	case script.OP_RETURN:
		return b.fail(script.ErrOpReturn, "OP_RETURN")

	case script.OP_TOALTSTACK:
		e := b.take(1)[0]
		b.alt = append(b.alt, e)
		return true
	case script.OP_FROMALTSTACK:
		if len(b.alt) == 0 {
			return b.fail(script.ErrInvalidAltstackOperation, "OP_FROMALTSTACK on empty altstack")
		}
		e := b.alt[len(b.alt)-1]
		b.alt = b.alt[:len(b.alt)-1]
		b.push(e)
		return true

	case script.OP_2DROP:
		b.take(2)
		return true
	case script.OP_2DUP:
		v := b.read(2)
		b.push(v[0])
		b.push(v[1])
		return true
	case script.OP_3DUP:
		v := b.read(3)
		b.push(v[0])
		b.push(v[1])
		b.push(v[2])
		return true
	case script.OP_2OVER:
		v := b.read(4)
		b.push(v[0])
		b.push(v[1])
		return true
	case script.OP_2ROT:
		v := b.take(6)
		for _, i := range []int{2, 3, 4, 5, 0, 1} {
			b.push(v[i])
		}
		return true
	case script.OP_2SWAP:
		v := b.take(4)
		for _, i := range []int{2, 3, 0, 1} {
			b.push(v[i])
		}
		return true
	case script.OP_IFDUP:
		return b.stepIfDup()
	case script.OP_DEPTH:
		b.push(Bytes{B: Int.Encode(int64(len(b.stack)))})
		return true
	case script.OP_DROP:
		b.take(1)
		return true
	case script.OP_DUP:
		e := b.read(1)[0]
		b.push(e)
		return true
	case script.OP_NIP:
		v := b.take(2)
		b.push(v[1])
		return true
	case script.OP_OVER:
		v := b.read(2)
		b.push(v[0])
		return true
	case script.OP_PICK, script.OP_ROLL:
		return b.stepPickRoll(op)
	case script.OP_ROT:
		v := b.take(3)
		for _, i := range []int{1, 2, 0} {
			b.push(v[i])
		}
		return true
	case script.OP_SWAP:
		v := b.take(2)
		b.push(v[1])
		b.push(v[0])
		return true
	case script.OP_TUCK:
		v := b.take(2)
		b.push(v[1])
		b.push(v[0])
		b.push(v[1])
		return true
	case script.OP_SIZE:
		e := b.read(1)[0]
		b.push(AppOp(script.OP_SIZE, e))
		return true

	case script.OP_EQUAL:
		v := b.take(2)
		b.push(AppOp(script.OP_EQUAL, v[0], v[1]))
		return true
	case script.OP_EQUALVERIFY:
		v := b.take(2)
		return b.verify(AppOp(script.OP_EQUAL, v[0], v[1]), script.ErrEqualVerify)

	case script.OP_1ADD, script.OP_1SUB, script.OP_NEGATE, script.OP_ABS,
		script.OP_NOT, script.OP_0NOTEQUAL:
		e := b.take(1)[0]
		b.push(AppOp(op, e))
		return true

	case script.OP_ADD, script.OP_SUB, script.OP_BOOLAND, script.OP_BOOLOR,
		script.OP_NUMNOTEQUAL, script.OP_LESSTHAN, script.OP_GREATERTHAN,
		script.OP_LESSTHANOREQUAL, script.OP_GREATERTHANOREQUAL, script.OP_MIN, script.OP_MAX,
		script.OP_NUMEQUAL:
		v := b.take(2)
		b.push(AppOp(op, v[0], v[1]))
		return true
	case script.OP_NUMEQUALVERIFY:
		v := b.take(2)
		return b.verify(AppOp(script.OP_NUMEQUAL, v[0], v[1]), script.ErrNumEqualVerify)

	case script.OP_WITHIN:
		v := b.take(3)
		b.push(AppOp(script.OP_WITHIN, v[0], v[1], v[2]))
		return true

	case script.OP_RIPEMD160, script.OP_SHA1, script.OP_SHA256,
		script.OP_HASH160, script.OP_HASH256:
		e := b.take(1)[0]
		b.push(AppOp(op, e))
		return true

	case script.OP_CODESEPARATOR:
		return true

	case script.OP_CHECKSIG, script.OP_CHECKSIGVERIFY:
		v := b.take(2) // [sig, pk]
		e := AppOp(script.OP_CHECKSIG, v[0], v[1])
		if op == script.OP_CHECKSIGVERIFY {
			return b.verify(e, script.ErrCheckSigVerify)
		}
		b.push(e)
		return true

	case script.OP_CHECKMULTISIG, script.OP_CHECKMULTISIGVERIFY:
		return b.stepCheckMultisig(op)

	case script.OP_CHECKLOCKTIMEVERIFY, script.OP_CHECKSEQUENCEVERIFY:
		e := b.read(1)[0]
		b.conds = append(b.conds, AppOp(op, e))
		return true

	case script.OP_CHECKSIGADD:
		if b.version < SegwitV1 {
			return b.fail(script.ErrBadOpcode, "OP_CHECKSIGADD requires tapscript")
		}
		v := b.take(3) // [sig, n, pk]
		b.push(AppOp(script.OP_ADD, v[1], AppOp(script.OP_CHECKSIG, v[0], v[2])))
		return true
	}

	return b.fail(script.ErrBadOpcode, op.Name())
}

func (b *Branch) stepIfDup() bool {
	e := b.read(1)[0]

	fork := b.clone()
	b.registry.register(fork)

	b.conds = append(b.conds, e)
	b.push(e) // duplicate: assume truthy

	fork.conds = append(fork.conds, AppOp(script.InternalNot, e))
	// fork assumes falsy: no duplication, stack already has the single e.

	fork.run()
	return true
}

func (b *Branch) stepPickRoll(op script.Opcode) bool {
	nExpr := b.take(1)[0]
	n, ok := b.concreteInt(nExpr)
	if !ok {
		return b.fail(script.ErrNumOverflow, "PICK/ROLL index must be a concrete value within 4 bytes")
	}
	if n < 0 {
		return b.fail(script.ErrInvalidStackOperation, "negative PICK/ROLL index")
	}

	idx := int(n)
	vals := b.read(idx + 1)
	picked := vals[0]

	if op == script.OP_PICK {
		b.push(picked)
		return true
	}

	pos := len(b.stack) - 1 - idx
	b.stack = append(b.stack[:pos], b.stack[pos+1:]...)
	b.push(picked)
	return true
}

func (b *Branch) stepCheckMultisig(op script.Opcode) bool {
	if b.version == SegwitV1 {
		return b.fail(script.ErrTapscriptCheckMultisig, "OP_CHECKMULTISIG disabled under tapscript")
	}

	kExpr := b.take(1)[0]
	k, ok := b.concreteInt(kExpr)
	if !ok {
		return b.fail(script.ErrNumOverflow, "pubkey count must be a concrete value within 4 bytes")
	}
	if k < 0 || k > maxMultisigKeys {
		return b.fail(script.ErrPubkeyCount, "pubkey count out of range")
	}
	pubkeys := b.take(int(k))

	sExpr := b.take(1)[0]
	s, ok := b.concreteInt(sExpr)
	if !ok {
		return b.fail(script.ErrNumOverflow, "sig count must be a concrete value within 4 bytes")
	}
	if s < 0 || s > k {
		return b.fail(script.ErrSigCount, "sig count out of range")
	}
	sigs := b.take(int(s))

	dummy := b.take(1)[0]
	b.conds = append(b.conds, AppErr(script.OP_EQUAL, script.ErrSigNullDummy, dummy, Bytes{B: append([]byte(nil), FalseBytes...)}))

	args := make([]Expr, 0, int(s)+int(k)+2)
	args = append(args, sigs...)
	args = append(args, Bytes{B: Int.Encode(s)})
	args = append(args, pubkeys...)
	args = append(args, Bytes{B: Int.Encode(k)})
	e := AppOp(script.OP_CHECKMULTISIG, args...)

	if op == script.OP_CHECKMULTISIGVERIFY {
		return b.verify(e, script.ErrCheckMultisigVerify)
	}
	b.push(e)
	return true
}
