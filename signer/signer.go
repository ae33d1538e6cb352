// Package signer turns raw Ed25519 private keys into message signers.
//
// Keys are accepted as 32-byte hex seeds, with or without a "0x" prefix. A
// Signer is never persisted; construct one per call chain.
package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrInvalidKeyFormat = errors.New("signer: invalid private key format")
	ErrSigning          = errors.New("signer: signing failed")
)

// HashSize is the digest length accepted by Sign.
const HashSize = 20

// Ed25519 signs message hashes with an Ed25519 key.
type Ed25519 struct {
	priv ed25519.PrivateKey
}

// FromHex parses a hex-encoded 32-byte private key seed.
func FromHex(privateKeyHex string) (*Ed25519, error) {
	seed, err := ParseKeyHex(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return FromSeed(seed)
}

// FromSeed wraps a raw 32-byte seed.
func FromSeed(seed []byte) (*Ed25519, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyFormat, ed25519.SeedSize, len(seed))
	}
	return &Ed25519{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// FromFile reads a hex seed from path. Surrounding whitespace is ignored.
func FromFile(path string) (*Ed25519, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromHex(string(data))
}

// ParseKeyHex decodes a hex key, stripping an optional 0x prefix.
func ParseKeyHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyFormat, ed25519.SeedSize, len(data))
	}
	return data, nil
}

// PublicKey returns the 32-byte Ed25519 public key.
func (s *Ed25519) PublicKey() []byte {
	pub := s.priv.Public().(ed25519.PublicKey)
	return append([]byte(nil), pub...)
}

// PublicKeyHex renders the public key as 0x-prefixed hex, the form hubs and
// key registries display.
func (s *Ed25519) PublicKeyHex() string {
	return "0x" + hex.EncodeToString(s.PublicKey())
}

// Sign signs a message hash. Ed25519 signatures are deterministic.
func (s *Ed25519) Sign(hash []byte) ([]byte, error) {
	if s == nil || len(s.priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: signer not initialized", ErrSigning)
	}
	if len(hash) != HashSize {
		return nil, fmt.Errorf("%w: hash must be %d bytes, got %d", ErrSigning, HashSize, len(hash))
	}
	return ed25519.Sign(s.priv, hash), nil
}
