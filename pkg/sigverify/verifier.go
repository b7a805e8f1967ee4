// Package sigverify implements bridgemodule.SignatureVerifier for
// TargetAccount origins (spec §3, §4.E step 3, §4.F step 6): a caller
// proves it controls pub by signing over the call bytes and the spec
// version the call was encoded against, so a signature captured for one
// runtime upgrade can never be replayed against another.
package sigverify

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/blake2b"
)

// Secp256k1Verifier verifies TargetAccount origin signatures with
// secp256k1/ECDSA, over blake2b-256(call ++ spec_version_le).
type Secp256k1Verifier struct{}

// New returns a ready-to-use Secp256k1Verifier.
func New() *Secp256k1Verifier {
	return &Secp256k1Verifier{}
}

// Verify implements bridgemodule.SignatureVerifier.
func (Secp256k1Verifier) Verify(pub, sig, call []byte, specVersion uint32) bool {
	pubKey, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return false
	}
	signature, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := digest(call, specVersion)
	return signature.Verify(digest, pubKey)
}

// Sign is the test/tooling counterpart of Verify: it produces the exact
// signature bytes Verify accepts, for fixtures and tooling.
func Sign(priv *secp256k1.PrivateKey, call []byte, specVersion uint32) []byte {
	return ecdsa.Sign(priv, digest(call, specVersion)).Serialize()
}

func digest(call []byte, specVersion uint32) []byte {
	var versionLE [4]byte
	binary.LittleEndian.PutUint32(versionLE[:], specVersion)
	buf := make([]byte, 0, len(call)+4)
	buf = append(buf, call...)
	buf = append(buf, versionLE[:]...)
	sum := blake2b.Sum256(buf)
	return sum[:]
}
