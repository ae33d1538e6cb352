package message

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"

	"xdao.co/fchub/signer"
)

func mustSigner(t *testing.T, seedByte byte) *signer.Ed25519 {
	t.Helper()
	s, err := signer.FromSeed(bytes.Repeat([]byte{seedByte}, ed25519.SeedSize))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	return s
}

type failingSigner struct{}

func (failingSigner) PublicKey() []byte { return make([]byte, ed25519.PublicKeySize) }
func (failingSigner) Sign([]byte) ([]byte, error) {
	return nil, errors.New("hsm offline")
}

func TestFinalize_DigestDeterministicAcrossSigners(t *testing.T) {
	d, err := MakeCastAdd(CastAddBody{Text: "gm", Mentions: []uint64{5}, MentionsPositions: []uint32{1}}, testOpts())
	if err != nil {
		t.Fatalf("MakeCastAdd: %v", err)
	}
	a, err := Finalize(d, mustSigner(t, 1))
	if err != nil {
		t.Fatalf("Finalize(a): %v", err)
	}
	b, err := Finalize(d, mustSigner(t, 2))
	if err != nil {
		t.Fatalf("Finalize(b): %v", err)
	}
	if !bytes.Equal(a.Hash, b.Hash) {
		t.Fatalf("hash depends on signer: %x vs %x", a.Hash, b.Hash)
	}
	if len(a.Hash) != HashLength {
		t.Fatalf("hash length %d, want %d", len(a.Hash), HashLength)
	}
	if bytes.Equal(a.Signer, b.Signer) {
		t.Fatalf("expected distinct signer keys")
	}
}

func TestFinalize_EnvelopeVerifies(t *testing.T) {
	s := mustSigner(t, 3)
	builders := map[string]func() (*Data, error){
		"cast": func() (*Data, error) { return MakeCastAdd(CastAddBody{Text: "hello world"}, testOpts()) },
		"like": func() (*Data, error) {
			return MakeReactionAdd(ReactionBody{Type: ReactionTypeLike, TargetCastID: &CastID{Fid: 2, Hash: hash20(4)}}, testOpts())
		},
		"unfollow": func() (*Data, error) { return MakeLinkRemove(LinkBody{Type: LinkFollow, TargetFid: 8}, testOpts()) },
	}
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			d, err := build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			m, err := Finalize(d, s)
			if err != nil {
				t.Fatalf("Finalize: %v", err)
			}
			if m.HashScheme != HashSchemeBlake3 || m.SignatureScheme != SignatureSchemeEd25519 {
				t.Fatalf("unexpected schemes: %d/%d", m.HashScheme, m.SignatureScheme)
			}
			if !bytes.Equal(m.Signer, s.PublicKey()) {
				t.Fatalf("signer key not embedded")
			}
			if !ed25519.Verify(ed25519.PublicKey(m.Signer), m.Hash, m.Signature) {
				t.Fatalf("signature does not verify against hash")
			}
			if err := Verify(m); err != nil {
				t.Fatalf("Verify: %v", err)
			}

			enc, err := m.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			decoded, err := Decode(enc)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if err := Verify(decoded); err != nil {
				t.Fatalf("Verify(decoded): %v", err)
			}
		})
	}
}

func TestFinalize_DigestIsBlake3Of20Bytes(t *testing.T) {
	d, err := MakeCastAdd(CastAddBody{Text: "gm"}, testOpts())
	if err != nil {
		t.Fatalf("MakeCastAdd: %v", err)
	}
	m, err := Finalize(d, mustSigner(t, 4))
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	canonical, err := EncodeData(d)
	if err != nil {
		t.Fatalf("EncodeData: %v", err)
	}
	if !bytes.Equal(m.DataBytes, canonical) {
		t.Fatalf("DataBytes differ from canonical encoding")
	}
	if !bytes.Equal(m.Hash, Digest(canonical)) {
		t.Fatalf("hash differs from BLAKE3-20 of canonical encoding")
	}
}

func TestFinalize_SigningErrorPropagates(t *testing.T) {
	d, err := MakeCastAdd(CastAddBody{Text: "gm"}, testOpts())
	if err != nil {
		t.Fatalf("MakeCastAdd: %v", err)
	}
	_, err = Finalize(d, failingSigner{})
	if !IsKind(err, KindSigning) {
		t.Fatalf("expected KindSigning, got %v", err)
	}
	if !strings.Contains(err.Error(), "hsm offline") {
		t.Fatalf("expected cause in error, got %q", err.Error())
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	d, err := MakeCastAdd(CastAddBody{Text: "original"}, testOpts())
	if err != nil {
		t.Fatalf("MakeCastAdd: %v", err)
	}
	m, err := Finalize(d, mustSigner(t, 5))
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	tamperedData := *m
	tamperedData.DataBytes = append([]byte{}, m.DataBytes...)
	tamperedData.DataBytes[len(tamperedData.DataBytes)-1] ^= 0x01
	if RuleID(Verify(&tamperedData)) != "MSG-VER-004" {
		t.Fatalf("expected hash mismatch")
	}

	tamperedSig := *m
	tamperedSig.Signature = append([]byte{}, m.Signature...)
	tamperedSig.Signature[0] ^= 0x01
	if RuleID(Verify(&tamperedSig)) != "MSG-VER-006" {
		t.Fatalf("expected signature failure")
	}

	identity := make([]byte, ed25519.PublicKeySize)
	identity[0] = 1
	offCurve := make([]byte, ed25519.PublicKeySize)
	offCurve[0] = 2
	badKeys := map[string][]byte{
		// y = 2^255-19+18, a second encoding of y = 18.
		"non-canonical": bytes.Repeat([]byte{0xff}, ed25519.PublicKeySize),
		"identity":      identity,
		"off curve":     offCurve,
		"short":         m.Signer[:31],
	}
	for name, key := range badKeys {
		badKey := *m
		badKey.Signer = key
		if got := RuleID(Verify(&badKey)); got != "MSG-VER-005" {
			t.Fatalf("%s signer key: rule %q, want MSG-VER-005", name, got)
		}
	}

	otherKey := *m
	otherKey.Signer = mustSigner(t, 6).PublicKey()
	if !IsKind(Verify(&otherKey), KindVerification) {
		t.Fatalf("expected verification failure for foreign signer")
	}
}
