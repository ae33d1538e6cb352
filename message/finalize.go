package message

import (
	"lukechampine.com/blake3"
)

// Signer produces Ed25519 signatures over message hashes.
// *signer.Ed25519 satisfies it.
type Signer interface {
	PublicKey() []byte
	Sign(hash []byte) ([]byte, error)
}

// Digest returns BLAKE3(b) truncated to HashLength bytes.
func Digest(b []byte) []byte {
	h := blake3.New(HashLength, nil)
	_, _ = h.Write(b)
	return h.Sum(nil)
}

// Finalize encodes data canonically, hashes and signs it, and returns the
// resulting envelope. For fixed data the hash is deterministic.
func Finalize(data *Data, s Signer) (*Message, error) {
	if s == nil {
		return nil, newError(KindSigning, "MSG-SIGN-001", "missing signer")
	}
	dataBytes, err := EncodeData(data)
	if err != nil {
		return nil, err
	}
	hash := Digest(dataBytes)

	sig, err := s.Sign(hash)
	if err != nil {
		return nil, wrapError(KindSigning, "MSG-SIGN-002", "signing failed", err)
	}
	pub := s.PublicKey()
	if len(pub) == 0 {
		return nil, newError(KindSigning, "MSG-SIGN-003", "signer returned an empty public key")
	}

	return &Message{
		Data:            data,
		Hash:            hash,
		HashScheme:      HashSchemeBlake3,
		Signature:       sig,
		SignatureScheme: SignatureSchemeEd25519,
		Signer:          pub,
		DataBytes:       dataBytes,
	}, nil
}
