package archive

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"xdao.co/fchub/message"
	"xdao.co/fchub/signer"
)

func signedCast(t *testing.T, text string) *message.Message {
	t.Helper()
	s, err := signer.FromSeed(bytes.Repeat([]byte{5}, ed25519.SeedSize))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	d, err := message.MakeCastAdd(message.CastAddBody{Text: text}, message.Options{
		Fid:       42,
		Network:   message.NetworkMainnet,
		Timestamp: message.FarcasterEpoch.Add(100 * time.Second),
	})
	if err != nil {
		t.Fatalf("MakeCastAdd: %v", err)
	}
	m, err := message.Finalize(d, s)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return m
}

func runConformance(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		m := signedCast(t, "archived")
		id, err := s.Put(m)
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		enc, err := m.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}
		wantID, err := CIDOf(enc)
		if err != nil {
			t.Fatalf("CIDOf: %v", err)
		}
		if !id.Equals(wantID) {
			t.Fatalf("Put CID %s, want %s", id, wantID)
		}
		got, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got.Hash, m.Hash) || got.CastAdd().Text != "archived" {
			t.Fatalf("Get returned %x %q", got.Hash, got.CastAdd().Text)
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		s := newStore(t)
		m := signedCast(t, "same")
		id1, err := s.Put(m)
		if err != nil {
			t.Fatalf("Put(1): %v", err)
		}
		id2, err := s.Put(m)
		if err != nil {
			t.Fatalf("Put(2): %v", err)
		}
		if !id1.Equals(id2) {
			t.Fatalf("idempotent Put returned %s then %s", id1, id2)
		}
	})

	t.Run("ConcurrentPut", func(t *testing.T) {
		s := newStore(t)
		m := signedCast(t, "race")
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Put(m)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent Put: %v", err)
			}
		}
	})

	t.Run("LookupByHash", func(t *testing.T) {
		s := newStore(t)
		m := signedCast(t, "indexed")
		id, err := s.Put(m)
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Lookup(m.Hash)
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if !got.Equals(id) {
			t.Fatalf("Lookup = %s, want %s", got, id)
		}
		back, err := GetByHash(s, m.Hash)
		if err != nil {
			t.Fatalf("GetByHash: %v", err)
		}
		if back.CastAdd().Text != "indexed" {
			t.Fatalf("GetByHash text = %q", back.CastAdd().Text)
		}
	})

	t.Run("RefusesUnverifiable", func(t *testing.T) {
		s := newStore(t)
		m := signedCast(t, "tamper")
		m.Signature = bytes.Clone(m.Signature)
		m.Signature[10] ^= 0x01
		_, err := s.Put(m)
		if !message.IsKind(err, message.KindVerification) {
			t.Fatalf("Put(tampered): expected verification error, got %v", err)
		}
		var merr *message.Error
		if !errors.As(err, &merr) {
			t.Fatalf("expected *message.Error in chain")
		}
		if _, err := s.Lookup(m.Hash); !IsNotFound(err) {
			t.Fatalf("Lookup(refused): got %v, want ErrNotFound", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		s := newStore(t)
		m := signedCast(t, "never stored")
		enc, err := m.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}
		id, err := CIDOf(enc)
		if err != nil {
			t.Fatalf("CIDOf: %v", err)
		}
		if _, err := s.Get(id); !IsNotFound(err) {
			t.Fatalf("Get(missing): got %v, want ErrNotFound", err)
		}
		if _, err := s.Lookup(m.Hash); !IsNotFound(err) {
			t.Fatalf("Lookup(missing): got %v, want ErrNotFound", err)
		}
		if _, err := s.Lookup([]byte{1, 2}); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("Lookup(short): got %v, want ErrInvalidHash", err)
		}
	})
}

func TestDir_Conformance(t *testing.T) {
	runConformance(t, func(t *testing.T) Store {
		t.Helper()
		d, err := OpenDir(t.TempDir())
		if err != nil {
			t.Fatalf("OpenDir: %v", err)
		}
		return d
	})
}

func TestMemory_Conformance(t *testing.T) {
	runConformance(t, func(t *testing.T) Store { return NewMemory() })
}

func TestDir_RejectsCorruption(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	m := signedCast(t, "original")
	id, err := d.Put(m)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	path := d.envelopePath(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := d.Get(id); err != ErrCIDMismatch {
		t.Fatalf("Get: got %v, want %v", err, ErrCIDMismatch)
	}
	if _, err := d.Put(m); err != ErrImmutable {
		t.Fatalf("Put after corruption: got %v, want %v", err, ErrImmutable)
	}
}

func TestDir_VerifiesOnRead(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	m := signedCast(t, "planted")
	m.Signature = bytes.Clone(m.Signature)
	m.Signature[0] ^= 0xff
	enc, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	id, err := CIDOf(enc)
	if err != nil {
		t.Fatalf("CIDOf: %v", err)
	}
	// Written behind Put's back, so only the read-side check can catch it.
	if err := writeOnce(d.envelopePath(id), enc); err != nil {
		t.Fatalf("writeOnce: %v", err)
	}
	if _, err := d.Get(id); !message.IsKind(err, message.KindVerification) {
		t.Fatalf("Get(planted): expected verification error, got %v", err)
	}
}

func TestParse(t *testing.T) {
	id, err := CIDOf([]byte("x"))
	if err != nil {
		t.Fatalf("CIDOf: %v", err)
	}
	got, err := Parse(id.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !got.Equals(id) {
		t.Fatalf("Parse round trip mismatch")
	}
	if _, err := Parse("not-a-cid"); err != ErrInvalidCID {
		t.Fatalf("Parse(garbage): got %v, want %v", err, ErrInvalidCID)
	}
}
