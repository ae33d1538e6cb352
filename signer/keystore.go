package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore keeps named signer seeds on the local filesystem, one hex file per
// key (<dir>/<name>.key, mode 0600). The public half of each key must be
// registered for the fid on chain before hubs accept its messages.
type KeyStore struct {
	Directory string
}

type KeyEntry struct {
	Name      string
	PublicKey string
}

// DefaultDirectory is ~/.fchub/keys.
func DefaultDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".fchub", "keys"), nil
}

// OpenKeyStore returns a store rooted at dir, or DefaultDirectory if dir is empty.
func OpenKeyStore(dir string) (*KeyStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDirectory(); err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: dir}, nil
}

func CheckKeyName(name string) error {
	if name == "" {
		return errors.New("signer: key name cannot be empty")
	}
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			continue
		}
		return fmt.Errorf("signer: invalid character %q in key name", c)
	}
	return nil
}

func (ks *KeyStore) path(name string) string {
	return filepath.Join(ks.Directory, name+".key")
}

// Create stores seed under name. A nil seed generates a fresh key from
// random. Existing keys are kept unless overwrite is set.
func (ks *KeyStore) Create(name string, seed []byte, overwrite bool) (*Ed25519, error) {
	return ks.create(name, seed, overwrite, rand.Reader)
}

func (ks *KeyStore) create(name string, seed []byte, overwrite bool, random io.Reader) (*Ed25519, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	if seed == nil {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := io.ReadFull(random, seed); err != nil {
			return nil, err
		}
	}
	s, err := FromSeed(seed)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(ks.Directory, 0o700); err != nil {
		return nil, err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(ks.path(name), flags, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := f.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return nil, err
	}
	return s, f.Close()
}

// KeyFile returns the path of the seed file for name.
func (ks *KeyStore) KeyFile(name string) (string, error) {
	if err := CheckKeyName(name); err != nil {
		return "", err
	}
	return ks.path(name), nil
}

// Load returns the signer stored under name.
func (ks *KeyStore) Load(name string) (*Ed25519, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	return FromFile(ks.path(name))
}

// List returns every stored key, sorted by name. Unreadable files are skipped.
func (ks *KeyStore) List() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []KeyEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".key") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".key")
		s, err := ks.Load(name)
		if err != nil {
			continue
		}
		out = append(out, KeyEntry{Name: name, PublicKey: s.PublicKeyHex()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
