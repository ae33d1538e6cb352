// Package archive keeps signed envelopes in a content-addressed store.
//
// Every envelope is keyed by a CIDv1 (raw codec, sha2-256 multihash) of its
// wire encoding and indexed by its Farcaster message hash. Envelopes are
// verified before they are written and again when they are read, so the
// store itself is never trusted.
package archive

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/fchub/message"
)

var (
	ErrNotFound    = errors.New("archive: not found")
	ErrInvalidCID  = errors.New("archive: invalid cid")
	ErrInvalidHash = errors.New("archive: invalid message hash")
	ErrCIDMismatch = errors.New("archive: cid mismatch")
	ErrImmutable   = errors.New("archive: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Store is an envelope archive.
//
// Contract:
//   - Put verifies m and refuses envelopes whose hash or signature do not
//     check out. It is idempotent and returns the CID of the encoding.
//   - Stored envelopes are immutable.
//   - Get re-verifies and returns ErrNotFound when the CID is absent.
//   - Lookup maps a message hash to the CID of the first envelope archived
//     with that hash.
type Store interface {
	Put(m *message.Message) (cid.Cid, error)
	Get(id cid.Cid) (*message.Message, error)
	Lookup(hash []byte) (cid.Cid, error)
}

// CIDOf returns the CIDv1 (raw + sha2-256) of b.
func CIDOf(b []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(b, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Parse decodes a CID string and rejects anything that is not raw sha2-256.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil || !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}
	if id.Type() != cid.Raw || id.Prefix().MhType != multihash.SHA2_256 {
		return cid.Undef, ErrInvalidCID
	}
	return id, nil
}
