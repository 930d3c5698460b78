package script

import "encoding/binary"

// Tokenizer walks a raw script byte-by-byte, yielding one Item per call to
// Next. Its call-site shape (Next/Item/Err/Done) mirrors the teacher's
// ScriptTokenizer as used throughout engine.go and standard.go, rebuilt here
// since the retrieved teacher sources only contain tokenizer call sites, not
// its definition.
type Tokenizer struct {
	script []byte
	offset int
	item   Item
	err    error
}

// NewTokenizer returns a Tokenizer over script.
func NewTokenizer(script []byte) *Tokenizer {
	return &Tokenizer{script: script}
}

// Done reports whether tokenization has stopped: either the entire script
// has been consumed or a parse error occurred (check Err).
func (t *Tokenizer) Done() bool {
	return t.err != nil || t.offset >= len(t.script)
}

// Err returns the first parse error encountered, if any.
func (t *Tokenizer) Err() error { return t.err }

// ByteIndex returns the offset of the next unparsed byte.
func (t *Tokenizer) ByteIndex() int { return t.offset }

// Item returns the most recently parsed item.
func (t *Tokenizer) Item() Item { return t.item }

// Next parses the next item from the script, returning false when the
// script is exhausted or a parse error occurred (check Err).
func (t *Tokenizer) Next() bool {
	if t.err != nil || t.offset >= len(t.script) {
		return false
	}

	op := Opcode(t.script[t.offset])
	t.offset++

	switch {
	case op >= 1 && op <= 0x4b:
		n := int(op)
		if t.offset+n > len(t.script) {
			t.err = scriptError(ErrMalformedPush, "push data past end of script")
			return false
		}
		data := t.script[t.offset : t.offset+n]
		t.offset += n
		t.item = Push(data)

	case op == OP_PUSHDATA1:
		if t.offset+1 > len(t.script) {
			t.err = scriptError(ErrMalformedPush, "OP_PUSHDATA1 missing length byte")
			return false
		}
		n := int(t.script[t.offset])
		t.offset++
		if t.offset+n > len(t.script) {
			t.err = scriptError(ErrMalformedPush, "OP_PUSHDATA1 data past end of script")
			return false
		}
		data := t.script[t.offset : t.offset+n]
		t.offset += n
		t.item = Push(data)

	case op == OP_PUSHDATA2:
		if t.offset+2 > len(t.script) {
			t.err = scriptError(ErrMalformedPush, "OP_PUSHDATA2 missing length bytes")
			return false
		}
		n := int(binary.LittleEndian.Uint16(t.script[t.offset : t.offset+2]))
		t.offset += 2
		if t.offset+n > len(t.script) {
			t.err = scriptError(ErrMalformedPush, "OP_PUSHDATA2 data past end of script")
			return false
		}
		data := t.script[t.offset : t.offset+n]
		t.offset += n
		t.item = Push(data)

	case op == OP_PUSHDATA4:
		if t.offset+4 > len(t.script) {
			t.err = scriptError(ErrMalformedPush, "OP_PUSHDATA4 missing length bytes")
			return false
		}
		n := int(binary.LittleEndian.Uint32(t.script[t.offset : t.offset+4]))
		t.offset += 4
		if t.offset+n > len(t.script) {
			t.err = scriptError(ErrMalformedPush, "OP_PUSHDATA4 data past end of script")
			return false
		}
		data := t.script[t.offset : t.offset+n]
		t.offset += n
		t.item = Push(data)

	default:
		t.item = OpItem(op)
	}

	return true
}

// Parse fully tokenizes script into an Item slice.
func Parse(raw []byte) ([]Item, error) {
	t := NewTokenizer(raw)
	items := make([]Item, 0, len(raw))
	for t.Next() {
		items = append(items, t.Item())
	}
	if t.Err() != nil {
		return nil, t.Err()
	}
	return items, nil
}
