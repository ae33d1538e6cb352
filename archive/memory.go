package archive

import (
	"slices"
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/fchub/message"
)

// Memory is an in-process Store.
type Memory struct {
	mu        sync.RWMutex
	envelopes map[cid.Cid][]byte
	hashes    map[string]cid.Cid
}

func NewMemory() *Memory {
	return &Memory{
		envelopes: make(map[cid.Cid][]byte),
		hashes:    make(map[string]cid.Cid),
	}
}

func (s *Memory) Put(m *message.Message) (cid.Cid, error) {
	b, id, err := seal(m)
	if err != nil {
		return cid.Undef, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.envelopes[id]; !ok {
		s.envelopes[id] = b
	}
	if _, ok := s.hashes[string(m.Hash)]; !ok {
		s.hashes[string(m.Hash)] = id
	}
	return id, nil
}

func (s *Memory) Get(id cid.Cid) (*message.Message, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	s.mu.RLock()
	b, ok := s.envelopes[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return open(id, slices.Clone(b))
}

func (s *Memory) Lookup(hash []byte) (cid.Cid, error) {
	if err := checkHash(hash); err != nil {
		return cid.Undef, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.hashes[string(hash)]
	if !ok {
		return cid.Undef, ErrNotFound
	}
	return id, nil
}
