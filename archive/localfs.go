package archive

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/fchub/message"
)

// Dir is a filesystem-backed Store:
//
//	<root>/envelopes/<cid[:2]>/<cid>   envelope bytes, read-only
//	<root>/hashes/<hex message hash>   CID of the envelope, read-only
//
// Files are staged in the target directory and hard-linked into place, so
// readers never see a partial envelope and concurrent writers of the same
// object agree on one copy.
type Dir struct {
	root string
}

// OpenDir returns a Store rooted at root, creating the layout if needed.
func OpenDir(root string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("archive: root directory is required")
	}
	for _, sub := range []string{"envelopes", "hashes"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, err
		}
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Put(m *message.Message) (cid.Cid, error) {
	b, id, err := seal(m)
	if err != nil {
		return cid.Undef, err
	}
	if err := writeOnce(d.envelopePath(id), b); err != nil {
		return cid.Undef, err
	}
	// A second envelope with the same message hash keeps the first index entry.
	if err := writeOnce(d.hashPath(m.Hash), []byte(id.String())); err != nil && !errors.Is(err, ErrImmutable) {
		return cid.Undef, err
	}
	return id, nil
}

func (d *Dir) Get(id cid.Cid) (*message.Message, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	b, err := os.ReadFile(d.envelopePath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return open(id, b)
}

func (d *Dir) Lookup(hash []byte) (cid.Cid, error) {
	if err := checkHash(hash); err != nil {
		return cid.Undef, err
	}
	b, err := os.ReadFile(d.hashPath(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return cid.Undef, ErrNotFound
	}
	if err != nil {
		return cid.Undef, err
	}
	return Parse(strings.TrimSpace(string(b)))
}

func (d *Dir) envelopePath(id cid.Cid) string {
	s := id.String()
	return filepath.Join(d.root, "envelopes", s[:2], s)
}

func (d *Dir) hashPath(hash []byte) string {
	return filepath.Join(d.root, "hashes", hex.EncodeToString(hash))
}

// writeOnce creates path with contents b. An existing file with the same
// contents is success; different contents is ErrImmutable and the file is
// left untouched.
func writeOnce(path string, b []byte) error {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if !bytes.Equal(existing, b) {
			return ErrImmutable
		}
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".staging-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o444); err != nil {
		return err
	}
	if err := os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Lost a race with another writer; compare against its copy.
			return writeOnce(path, b)
		}
		return err
	}
	return nil
}
