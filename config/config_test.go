package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"xdao.co/fchub/message"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup(t *testing.T) {
	cfg, err := fromLookup(lookupMap(map[string]string{
		"HUB_GRPC_URL":      "https://hub.example.com",
		"FARCASTER_NETWORK": "testnet",
		"HUB_READY_TIMEOUT": "250ms",
		"HUB_RPC_TIMEOUT":   "5s",
		"HUB_MAX_MSG_BYTES": "1048576",
		"FCHUB_ARCHIVE_DIR": "/tmp/envelopes",
		"ENV":               "production",
	}))
	if err != nil {
		t.Fatalf("fromLookup: %v", err)
	}
	if cfg.HubTarget != "hub.example.com:2283" {
		t.Fatalf("HubTarget = %q", cfg.HubTarget)
	}
	if cfg.Insecure {
		t.Fatalf("https target must not be insecure")
	}
	if cfg.Network != message.NetworkTestnet {
		t.Fatalf("Network = %s", cfg.Network)
	}
	if cfg.ReadyTimeout != 250*time.Millisecond || cfg.RPCTimeout != 5*time.Second {
		t.Fatalf("timeouts = %s, %s", cfg.ReadyTimeout, cfg.RPCTimeout)
	}
	if cfg.MaxMsgBytes != 1<<20 || cfg.ArchiveDir != "/tmp/envelopes" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("production env reported as development")
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := fromLookup(lookupMap(map[string]string{"HUB_GRPC_URL": "http://localhost:3383"}))
	if err != nil {
		t.Fatalf("fromLookup: %v", err)
	}
	if cfg.HubTarget != "localhost:3383" || !cfg.Insecure {
		t.Fatalf("http target: %+v", cfg)
	}
	if cfg.Network != message.NetworkMainnet || cfg.ReadyTimeout != DefaultReadyTimeout {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestFromLookup_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing target":  {},
		"bad network":     {"HUB_GRPC_URL": "h:1", "FARCASTER_NETWORK": "moon"},
		"bad timeout":     {"HUB_GRPC_URL": "h:1", "HUB_READY_TIMEOUT": "soon"},
		"negative":        {"HUB_GRPC_URL": "h:1", "HUB_RPC_TIMEOUT": "-1s"},
		"bad insecure":    {"HUB_GRPC_URL": "h:1", "HUB_INSECURE": "maybe"},
		"bad max message": {"HUB_GRPC_URL": "h:1", "HUB_MAX_MSG_BYTES": "big"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := fromLookup(lookupMap(env))
			if err == nil {
				err = cfg.Validate()
			}
			if err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFile_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "fchub.yaml")
	if err := os.WriteFile(yamlPath, []byte("hub_target: hub.local:2283\ninsecure: true\nnetwork: devnet\nready_timeout: 2s\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFile(yaml): %v", err)
	}
	if cfg.HubTarget != "hub.local:2283" || !cfg.Insecure || cfg.Network != message.NetworkDevnet || cfg.ReadyTimeout != 2*time.Second {
		t.Fatalf("yaml cfg: %+v", cfg)
	}

	jsonPath := filepath.Join(dir, "fchub.json")
	if err := os.WriteFile(jsonPath, []byte(`{"hub_target":"https://hub.example.com:443","archive_dir":"/a"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err = LoadFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadFile(json): %v", err)
	}
	if cfg.HubTarget != "hub.example.com:443" || cfg.Insecure || cfg.ArchiveDir != "/a" {
		t.Fatalf("json cfg: %+v", cfg)
	}

	if _, err := LoadFile(filepath.Join(dir, "fchub.toml")); err == nil {
		t.Fatalf("expected error for missing/unsupported file")
	}
}

func TestLoadFile_TargetFromOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fchub.yaml")
	if err := os.WriteFile(path, []byte("network: testnet\nready_timeout: 3s\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to require a hub target")
	}
	cfg.SetHubTarget("http://127.0.0.1:2283")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate after override: %v", err)
	}
	if cfg.Network != message.NetworkTestnet || cfg.ReadyTimeout != 3*time.Second || !cfg.Insecure {
		t.Fatalf("file values lost: %+v", cfg)
	}
}

func TestSetHubTarget(t *testing.T) {
	cases := []struct {
		in       string
		want     string
		insecure bool
	}{
		{"hub.example.com", "hub.example.com:2283", false},
		{"https://hub.example.com:443/", "hub.example.com:443", false},
		{"http://127.0.0.1:3383", "127.0.0.1:3383", true},
		{"passthrough:///bufnet", "passthrough:///bufnet", false},
	}
	for _, tc := range cases {
		cfg := Default()
		cfg.SetHubTarget(tc.in)
		if cfg.HubTarget != tc.want || cfg.Insecure != tc.insecure {
			t.Fatalf("SetHubTarget(%q) = %q insecure=%v, want %q insecure=%v", tc.in, cfg.HubTarget, cfg.Insecure, tc.want, tc.insecure)
		}
	}
}
