package message

import (
	"bytes"
	"crypto/ed25519"

	"filippo.io/edwards25519"
)

// SignedBytes returns the bytes covered by the message hash: DataBytes when
// present, otherwise the canonical encoding of Data.
func (m *Message) SignedBytes() ([]byte, error) {
	if m == nil {
		return nil, newError(KindVerification, "MSG-VER-003", "nil message")
	}
	if len(m.DataBytes) > 0 {
		return m.DataBytes, nil
	}
	if m.Data == nil {
		return nil, newError(KindVerification, "MSG-VER-003", "message has no data")
	}
	return EncodeData(m.Data)
}

// Verify checks that the hash matches the signed bytes and that the signature
// verifies against the embedded signer key under the declared schemes.
func Verify(m *Message) error {
	if m == nil {
		return newError(KindVerification, "MSG-VER-003", "nil message")
	}
	if m.HashScheme != HashSchemeBlake3 {
		return newError(KindVerification, "MSG-VER-001", "unsupported hash scheme")
	}
	if m.SignatureScheme != SignatureSchemeEd25519 {
		return newError(KindVerification, "MSG-VER-002", "unsupported signature scheme")
	}
	signed, err := m.SignedBytes()
	if err != nil {
		return err
	}
	if !bytes.Equal(Digest(signed), m.Hash) {
		return newError(KindVerification, "MSG-VER-004", "hash does not match message data")
	}
	if len(m.Signer) != ed25519.PublicKeySize {
		return newError(KindVerification, "MSG-VER-005", "invalid signer key length")
	}
	if err := checkSignerKey(m.Signer); err != nil {
		return err
	}
	if len(m.Signature) != ed25519.SignatureSize {
		return newError(KindVerification, "MSG-VER-006", "invalid signature length")
	}
	if !ed25519.Verify(ed25519.PublicKey(m.Signer), m.Hash, m.Signature) {
		return newError(KindVerification, "MSG-VER-006", "signature invalid")
	}
	return nil
}

// checkSignerKey rejects keys that ed25519.Verify would still accept: bytes
// that decode to a point only as a non-canonical encoding, and points of
// small order, which verify forged signatures over any message.
func checkSignerKey(key []byte) error {
	p, err := new(edwards25519.Point).SetBytes(key)
	if err != nil {
		return wrapError(KindVerification, "MSG-VER-005", "signer key is not a valid curve point", err)
	}
	if !bytes.Equal(p.Bytes(), key) {
		return newError(KindVerification, "MSG-VER-005", "signer key is not canonically encoded")
	}
	if new(edwards25519.Point).MultByCofactor(p).Equal(edwards25519.NewIdentityPoint()) == 1 {
		return newError(KindVerification, "MSG-VER-005", "signer key has small order")
	}
	return nil
}
