package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"xdao.co/fchub/actions"
	"xdao.co/fchub/archive"
	"xdao.co/fchub/config"
	"xdao.co/fchub/hub"
	"xdao.co/fchub/internal/logging"
	"xdao.co/fchub/message"
	"xdao.co/fchub/signer"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "cast":
		return cmdCast(args[1:], out, errOut)
	case "delete-cast":
		return cmdDeleteCast(args[1:], out, errOut)
	case "like", "recast", "unlike", "unrecast":
		return cmdReact(args[0], args[1:], out, errOut)
	case "follow", "unfollow":
		return cmdFollow(args[0], args[1:], out, errOut)
	case "set-user-data":
		return cmdSetUserData(args[1:], out, errOut)
	case "username", "pfp", "display-name":
		return cmdUserData(args[0], args[1:], out, errOut)
	case "eth-address":
		return cmdEthAddress(args[1:], out, errOut)
	case "cast-get":
		return cmdCastGet(args[1:], out, errOut)
	case "reactions":
		return cmdReactions(args[1:], out, errOut)
	case "envelope":
		return cmdEnvelope(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "fcctl: build, sign and submit Farcaster messages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  fcctl cast --fid <fid> --text <text> [--parent-hash <0x..> --parent-fid <fid>] <key>")
	fmt.Fprintln(w, "  fcctl delete-cast --fid <fid> --hash <0x..> <key>")
	fmt.Fprintln(w, "  fcctl like|recast|unlike|unrecast --fid <fid> --hash <0x..> --author-fid <fid> <key>")
	fmt.Fprintln(w, "  fcctl follow|unfollow --fid <fid> --target <fid> <key>")
	fmt.Fprintln(w, "  fcctl set-user-data --fid <fid> --type username|pfp|display|bio|url --value <v> <key>")
	fmt.Fprintln(w, "  fcctl username|pfp|display-name --fid <fid>")
	fmt.Fprintln(w, "  fcctl eth-address --fid <fid> [--checksum]")
	fmt.Fprintln(w, "  fcctl cast-get --fid <fid> --hash <0x..>")
	fmt.Fprintln(w, "  fcctl reactions --fid <fid> --hash <0x..>")
	fmt.Fprintln(w, "  fcctl envelope --archive-dir <dir> <cid|0xhash>")
	fmt.Fprintln(w, "  fcctl key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  fcctl key list")
	fmt.Fprintln(w, "  fcctl key show --name <name>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Hub flags (all commands that talk to a hub):")
	fmt.Fprintln(w, "  --hub <url>  --insecure  --network mainnet|testnet|devnet  --config <file.json|yaml>")
	fmt.Fprintln(w, "  --ready-timeout <dur>  --archive-dir <dir>  --log-level <level>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Key (<key>), first match wins:")
	fmt.Fprintln(w, "  --key <64hex> | --key-file <path> | --signer <name> [--keys-dir <dir>] | $FARCASTER_PRIVATE_KEY")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - hub settings default to HUB_GRPC_URL, FARCASTER_NETWORK, ... (a .env file is read if present)")
	fmt.Fprintln(w, "  - writes print the message hash; reads exit 1 with \"not found\" when the hub has nothing")
	fmt.Fprintln(w, "  - key files hold a hex ed25519 seed; register the public key for your fid before use")
}

// hubFlags are shared by every command that dials a hub.
type hubFlags struct {
	hub          string
	configPath   string
	network      string
	insecure     bool
	readyTimeout time.Duration
	archiveDir   string
	logLevel     string
}

func (h *hubFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&h.hub, "hub", "", "Hub gRPC address (overrides HUB_GRPC_URL)")
	fs.StringVar(&h.configPath, "config", "", "JSON or YAML config file (instead of the environment)")
	fs.StringVar(&h.network, "network", "", "Farcaster network: mainnet, testnet or devnet")
	fs.BoolVar(&h.insecure, "insecure", false, "Use plaintext gRPC instead of TLS")
	fs.DurationVar(&h.readyTimeout, "ready-timeout", 0, "Max wait for the hub connection per call")
	fs.StringVar(&h.archiveDir, "archive-dir", "", "Store every signed envelope in this directory")
	fs.StringVar(&h.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

func (h *hubFlags) config() (config.Config, error) {
	var cfg config.Config
	var err error
	if h.configPath != "" {
		cfg, err = config.LoadFile(h.configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return cfg, err
	}
	if h.hub != "" {
		cfg.SetHubTarget(h.hub)
	}
	if h.insecure {
		cfg.Insecure = true
	}
	if h.network != "" {
		if cfg.Network, err = message.ParseNetwork(h.network); err != nil {
			return cfg, err
		}
	}
	if h.readyTimeout > 0 {
		cfg.ReadyTimeout = h.readyTimeout
	}
	if h.archiveDir != "" {
		cfg.ArchiveDir = h.archiveDir
	}
	return cfg, cfg.Validate()
}

// open dials the hub and returns Actions bound to it. The returned func
// closes the connection.
func (h *hubFlags) open(errOut io.Writer) (*actions.Actions, func(), error) {
	cfg, err := h.config()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Env, h.logLevel, errOut)

	client, err := hub.Dial(cfg.HubTarget, hub.DialOptions{
		Insecure:     cfg.Insecure,
		ReadyTimeout: cfg.ReadyTimeout,
		Timeout:      cfg.RPCTimeout,
		MaxMsgBytes:  cfg.MaxMsgBytes,
		Logger:       &logger,
	})
	if err != nil {
		return nil, nil, err
	}

	opts := actions.Options{Network: cfg.Network, Logger: &logger}
	if cfg.ArchiveDir != "" {
		store, err := archive.OpenDir(cfg.ArchiveDir)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		opts.Archive = store
	}
	return actions.New(client, opts), func() { _ = client.Close() }, nil
}

// keyFlags select the signing key.
type keyFlags struct {
	key     string
	keyFile string
	signer  string
	keysDir string
}

func (k *keyFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&k.key, "key", "", "Signer private key as 64 hex chars (0x prefix optional)")
	fs.StringVar(&k.keyFile, "key-file", "", "Path to a file holding the hex signer key")
	fs.StringVar(&k.signer, "signer", "", "Name of a key created with 'fcctl key init'")
	fs.StringVar(&k.keysDir, "keys-dir", "", "Key store directory (default ~/.fchub/keys)")
}

// hex returns the private key as hex. The key material is validated later by
// the action that uses it.
func (k *keyFlags) hex() (string, error) {
	switch {
	case k.key != "":
		return k.key, nil
	case k.keyFile != "":
		b, err := os.ReadFile(k.keyFile)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	case k.signer != "":
		ks, err := signer.OpenKeyStore(k.keysDir)
		if err != nil {
			return "", err
		}
		path, err := ks.KeyFile(k.signer)
		if err != nil {
			return "", err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	if v := strings.TrimSpace(os.Getenv("FARCASTER_PRIVATE_KEY")); v != "" {
		return v, nil
	}
	return "", errors.New("no signer key provided (use --key, --key-file, --signer or FARCASTER_PRIVATE_KEY)")
}

// report prints err with a hint for the error classes callers can act on and
// returns the exit code.
func report(errOut io.Writer, what string, err error) int {
	var merr *message.Error
	switch {
	case errors.Is(err, signer.ErrInvalidKeyFormat):
		fmt.Fprintf(errOut, "%s: invalid signer key: %v\n", what, err)
	case errors.As(err, &merr):
		fmt.Fprintf(errOut, "%s: %s [%s]\n", what, merr.Message, merr.RuleID)
	case errors.Is(err, hub.ErrUnavailable):
		fmt.Fprintf(errOut, "%s: hub unavailable: %v\n", what, err)
	default:
		if code, ok := hub.IsRejected(err); ok {
			fmt.Fprintf(errOut, "%s: hub rejected message (%s): %v\n", what, code, err)
			break
		}
		fmt.Fprintf(errOut, "%s: %v\n", what, err)
	}
	return 1
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
