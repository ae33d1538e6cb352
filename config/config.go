// Package config resolves hub connection settings from the environment (and
// an optional .env file) or from a JSON/YAML file.
//
// Example YAML:
//
//	hub_target: https://hub.example.com:2283
//	network: mainnet
//	ready_timeout: 1s
//	archive_dir: /var/lib/fchub/envelopes
//
// Private keys are never read from config files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"xdao.co/fchub/message"
)

const (
	// DefaultHubPort is the gRPC port hubs listen on.
	DefaultHubPort = "2283"

	DefaultReadyTimeout = time.Second
)

type Config struct {
	// HubTarget is host:port. A scheme prefix is accepted and stripped:
	// http:// implies Insecure, https:// implies TLS.
	HubTarget    string
	Insecure     bool
	Network      message.Network
	ReadyTimeout time.Duration
	// RPCTimeout bounds each RPC after the readiness wait; zero means none.
	RPCTimeout  time.Duration
	MaxMsgBytes int
	ArchiveDir  string
	Env         string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Network:      message.NetworkMainnet,
		ReadyTimeout: DefaultReadyTimeout,
		Env:          "development",
	}
}

// IsDevelopment reports whether logs should be human-readable.
func (c Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// FromEnv loads .env if present, then reads HUB_GRPC_URL, HUB_INSECURE,
// FARCASTER_NETWORK, HUB_READY_TIMEOUT, HUB_RPC_TIMEOUT, HUB_MAX_MSG_BYTES,
// FCHUB_ARCHIVE_DIR and ENV. Variables already set in the process win over
// the file. Only malformed values are errors; call Validate once any
// overrides have been applied.
func FromEnv() (Config, error) {
	_ = godotenv.Load()
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var err error
	if v := get("HUB_GRPC_URL"); v != "" {
		cfg.HubTarget = v
	}
	if v := get("HUB_INSECURE"); v != "" {
		if cfg.Insecure, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("config: HUB_INSECURE: %w", err)
		}
	}
	if v := get("FARCASTER_NETWORK"); v != "" {
		if cfg.Network, err = message.ParseNetwork(v); err != nil {
			return cfg, fmt.Errorf("config: FARCASTER_NETWORK: %w", err)
		}
	}
	if v := get("HUB_READY_TIMEOUT"); v != "" {
		if cfg.ReadyTimeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("config: HUB_READY_TIMEOUT: %w", err)
		}
	}
	if v := get("HUB_RPC_TIMEOUT"); v != "" {
		if cfg.RPCTimeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("config: HUB_RPC_TIMEOUT: %w", err)
		}
	}
	if v := get("HUB_MAX_MSG_BYTES"); v != "" {
		if cfg.MaxMsgBytes, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("config: HUB_MAX_MSG_BYTES: %w", err)
		}
	}
	if v := get("FCHUB_ARCHIVE_DIR"); v != "" {
		cfg.ArchiveDir = v
	}
	if v := get("ENV"); v != "" {
		cfg.Env = v
	}
	cfg.normalize()
	return cfg, nil
}

type fileConfig struct {
	HubTarget    string `json:"hub_target" yaml:"hub_target"`
	Insecure     bool   `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	Network      string `json:"network,omitempty" yaml:"network,omitempty"`
	ReadyTimeout string `json:"ready_timeout,omitempty" yaml:"ready_timeout,omitempty"`
	RPCTimeout   string `json:"rpc_timeout,omitempty" yaml:"rpc_timeout,omitempty"`
	MaxMsgBytes  int    `json:"max_msg_bytes,omitempty" yaml:"max_msg_bytes,omitempty"`
	ArchiveDir   string `json:"archive_dir,omitempty" yaml:"archive_dir,omitempty"`
	Env          string `json:"env,omitempty" yaml:"env,omitempty"`
}

// LoadFile reads a JSON or YAML config file, chosen by extension. As with
// FromEnv, only unreadable or malformed files are errors; call Validate once
// any overrides have been applied.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	case ".json":
		err = json.Unmarshal(b, &fc)
	default:
		return cfg, fmt.Errorf("config: unsupported config file type %q", filepath.Ext(path))
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.HubTarget = fc.HubTarget
	cfg.Insecure = fc.Insecure
	cfg.MaxMsgBytes = fc.MaxMsgBytes
	cfg.ArchiveDir = fc.ArchiveDir
	if fc.Env != "" {
		cfg.Env = fc.Env
	}
	if fc.Network != "" {
		if cfg.Network, err = message.ParseNetwork(fc.Network); err != nil {
			return cfg, fmt.Errorf("config: network: %w", err)
		}
	}
	if fc.ReadyTimeout != "" {
		if cfg.ReadyTimeout, err = time.ParseDuration(fc.ReadyTimeout); err != nil {
			return cfg, fmt.Errorf("config: ready_timeout: %w", err)
		}
	}
	if fc.RPCTimeout != "" {
		if cfg.RPCTimeout, err = time.ParseDuration(fc.RPCTimeout); err != nil {
			return cfg, fmt.Errorf("config: rpc_timeout: %w", err)
		}
	}
	cfg.normalize()
	return cfg, nil
}

// SetHubTarget sets HubTarget from a URL or host[:port], applying the same
// normalization as the loaders.
func (c *Config) SetHubTarget(target string) {
	c.HubTarget = strings.TrimSpace(target)
	c.normalize()
}

func (c *Config) normalize() {
	t := c.HubTarget
	switch {
	case strings.HasPrefix(t, "http://"):
		t = strings.TrimPrefix(t, "http://")
		c.Insecure = true
	case strings.HasPrefix(t, "https://"):
		t = strings.TrimPrefix(t, "https://")
	}
	t = strings.TrimSuffix(t, "/")
	if t != "" && !strings.Contains(t, "://") {
		if _, _, err := net.SplitHostPort(t); err != nil {
			t = net.JoinHostPort(t, DefaultHubPort)
		}
	}
	c.HubTarget = t
}

func (c Config) Validate() error {
	if c.HubTarget == "" {
		return errors.New("config: hub target is required (HUB_GRPC_URL)")
	}
	if !c.Network.Valid() {
		return fmt.Errorf("config: invalid network %s", c.Network)
	}
	if c.ReadyTimeout < 0 || c.RPCTimeout < 0 {
		return errors.New("config: timeouts must not be negative")
	}
	if c.MaxMsgBytes < 0 {
		return errors.New("config: max message size must not be negative")
	}
	return nil
}
