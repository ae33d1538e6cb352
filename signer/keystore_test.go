package signer

import (
	"bytes"
	"crypto/ed25519"
	"os"
	"testing"
)

func TestKeyStore_CreateLoadList(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}

	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	created, err := ks.Create("app", seed, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	loaded, err := ks.Load("app")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(created.PublicKey(), loaded.PublicKey()) {
		t.Fatalf("loaded key differs from created key")
	}

	info, err := os.Stat(ks.path("app"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("key file mode = %o, want 600", perm)
	}

	if _, err := ks.Create("app", seed, false); err == nil {
		t.Fatalf("expected error creating an existing key without overwrite")
	}
	if _, err := ks.create("bot", nil, false, bytes.NewReader(bytes.Repeat([]byte{9}, ed25519.SeedSize))); err != nil {
		t.Fatalf("create(generated): %v", err)
	}

	list, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "app" || list[1].Name != "bot" {
		t.Fatalf("List = %+v", list)
	}
	if list[0].PublicKey != created.PublicKeyHex() {
		t.Fatalf("List public key = %s, want %s", list[0].PublicKey, created.PublicKeyHex())
	}
}

func TestKeyStore_RejectsBadNames(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	for _, name := range []string{"", "../escape", "a b", "x/y"} {
		if _, err := ks.Load(name); err == nil {
			t.Fatalf("Load(%q): expected error", name)
		}
	}
}

func TestKeyStore_ListMissingDirectory(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir() + "/absent"}
	list, err := ks.List()
	if err != nil || list != nil {
		t.Fatalf("List(missing dir) = %v, %v", list, err)
	}
}
