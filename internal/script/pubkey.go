package script

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// IsStrictPubKeyEncoding reports whether pubKey adheres to the strict
// compressed/uncompressed/hybrid encoding length-and-prefix rules, the same
// fast shape check the teacher performs before ever touching curve math
// (thought/txscript.go's isStrictPubKeyEncoding).
func IsStrictPubKeyEncoding(pubKey []byte) bool {
	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		return true
	}
	if len(pubKey) == 65 {
		switch pubKey[0] {
		case 0x04, 0x06, 0x07:
			return true
		}
	}
	return false
}

// IsValidCurvePoint reports whether pubKey both satisfies the strict
// encoding shape above and decodes to a point actually on the secp256k1
// curve. This never verifies a signature or performs any cryptographic
// check beyond point validity — it exists purely so that the printer's
// output can annotate an obviously-malformed CHECKSIG pubkey argument, per
// SPEC_FULL.md's domain-stack wiring for secp256k1.
func IsValidCurvePoint(pubKey []byte) bool {
	if !IsStrictPubKeyEncoding(pubKey) {
		return false
	}
	if len(pubKey) != 33 {
		// Only compressed points are cheaply parsed by this library;
		// uncompressed/hybrid points are accepted on shape alone.
		return true
	}
	_, err := secp256k1.ParsePubKey(pubKey)
	return err == nil
}
