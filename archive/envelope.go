package archive

import (
	"bytes"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/fchub/message"
)

// seal verifies m and returns its wire encoding and CID.
func seal(m *message.Message) ([]byte, cid.Cid, error) {
	if err := message.Verify(m); err != nil {
		return nil, cid.Undef, fmt.Errorf("archive: refusing envelope: %w", err)
	}
	b, err := m.MarshalBinary()
	if err != nil {
		return nil, cid.Undef, err
	}
	id, err := CIDOf(b)
	if err != nil {
		return nil, cid.Undef, err
	}
	return b, id, nil
}

// open checks b against id, then decodes and verifies the envelope.
func open(id cid.Cid, b []byte) (*message.Message, error) {
	got, err := CIDOf(b)
	if err != nil {
		return nil, err
	}
	if !got.Equals(id) {
		return nil, ErrCIDMismatch
	}
	m, err := message.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("archive: decode %s: %w", id, err)
	}
	if err := message.Verify(m); err != nil {
		return nil, fmt.Errorf("archive: verify %s: %w", id, err)
	}
	return m, nil
}

func checkHash(hash []byte) error {
	if len(hash) != message.HashLength {
		return fmt.Errorf("%w: %d bytes", ErrInvalidHash, len(hash))
	}
	return nil
}

// GetByHash returns the archived envelope whose message hash is hash.
func GetByHash(s Store, hash []byte) (*message.Message, error) {
	id, err := s.Lookup(hash)
	if err != nil {
		return nil, err
	}
	m, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(m.Hash, hash) {
		return nil, fmt.Errorf("archive: index for %x points at envelope %s with hash %x", hash, id, m.Hash)
	}
	return m, nil
}
