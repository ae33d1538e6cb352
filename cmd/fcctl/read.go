package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/fchub/actions"
	"xdao.co/fchub/archive"
	"xdao.co/fchub/config"
	"xdao.co/fchub/message"
)

func cmdUserData(name string, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	hf.register(fs)
	fid := fs.Uint64("fid", 0, "Fid to look up")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fid == 0 {
		fmt.Fprintf(errOut, "usage: fcctl %s --fid <fid>\n", name)
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, name, err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	var v string
	switch name {
	case "username":
		v, err = a.GetUsername(ctx, *fid)
	case "pfp":
		v, err = a.GetPfp(ctx, *fid)
	default:
		v, err = a.GetDisplayName(ctx, *fid)
	}
	if err != nil {
		return report(errOut, name, err)
	}
	if v == "" {
		fmt.Fprintln(errOut, "not found")
		return 1
	}
	_, _ = fmt.Fprintln(out, v)
	return 0
}

func cmdEthAddress(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("eth-address", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	hf.register(fs)
	fid := fs.Uint64("fid", 0, "Fid to look up")
	checksum := fs.Bool("checksum", false, "Print the EIP-55 mixed-case form")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fid == 0 {
		fmt.Fprintln(errOut, "usage: fcctl eth-address --fid <fid> [--checksum]")
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, "eth-address", err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	addr, err := a.GetEthereumAddress(ctx, *fid)
	if err != nil {
		return report(errOut, "eth-address", err)
	}
	if addr == nil {
		fmt.Fprintln(errOut, "not found")
		return 1
	}
	if *checksum {
		_, _ = fmt.Fprintln(out, addr.Checksum())
		return 0
	}
	_, _ = fmt.Fprintln(out, addr.String())
	return 0
}

func cmdCastGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cast-get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	hf.register(fs)
	fid := fs.Uint64("fid", 0, "Author fid")
	hash := fs.String("hash", "", "Cast hash (0x..)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fid == 0 || *hash == "" {
		fmt.Fprintln(errOut, "usage: fcctl cast-get --fid <fid> --hash <0x..>")
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, "cast-get", err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	m, err := a.GetCastDetails(ctx, *fid, *hash)
	if err != nil {
		return report(errOut, "cast-get", err)
	}
	if m == nil {
		fmt.Fprintln(errOut, "not found")
		return 1
	}
	return writeJSON(out, errOut, view(m))
}

func cmdReactions(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("reactions", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	hf.register(fs)
	fid := fs.Uint64("fid", 0, "Author fid of the cast")
	hash := fs.String("hash", "", "Cast hash (0x..)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fid == 0 || *hash == "" {
		fmt.Fprintln(errOut, "usage: fcctl reactions --fid <fid> --hash <0x..>")
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, "reactions", err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	msgs, err := a.GetReactions(ctx, *fid, *hash)
	if err != nil {
		return report(errOut, "reactions", err)
	}
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, view(m))
	}
	return writeJSON(out, errOut, views)
}

func cmdEnvelope(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("envelope", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dir := fs.String("archive-dir", "", "Envelope archive directory (default $FCHUB_ARCHIVE_DIR)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fcctl envelope --archive-dir <dir> <cid|0xhash>")
		return 2
	}
	if *dir == "" {
		if cfg, err := config.FromEnv(); err == nil {
			*dir = cfg.ArchiveDir
		}
	}
	if *dir == "" {
		fmt.Fprintln(errOut, "envelope: --archive-dir or FCHUB_ARCHIVE_DIR is required")
		return 2
	}
	store, err := archive.OpenDir(*dir)
	if err != nil {
		return report(errOut, "envelope", err)
	}
	id, err := resolveEnvelope(store, fs.Arg(0))
	if err != nil && !archive.IsNotFound(err) {
		fmt.Fprintf(errOut, "envelope: %v\n", err)
		return 2
	}
	var m *message.Message
	if err == nil {
		m, err = store.Get(id)
	}
	if err != nil {
		if archive.IsNotFound(err) {
			fmt.Fprintln(errOut, "not found")
			return 1
		}
		return report(errOut, "envelope", err)
	}
	v := view(m)
	v.CID = id.String()
	return writeJSON(out, errOut, v)
}

// resolveEnvelope accepts a CID or a 0x-prefixed message hash.
func resolveEnvelope(store archive.Store, ref string) (cid.Cid, error) {
	if !strings.HasPrefix(ref, "0x") {
		return archive.Parse(ref)
	}
	hash, err := message.ParseHash(ref)
	if err != nil {
		return cid.Undef, err
	}
	return store.Lookup(hash)
}

type messageView struct {
	CID       string `json:"cid,omitempty"`
	Hash      string `json:"hash"`
	Type      string `json:"type"`
	Fid       uint64 `json:"fid"`
	Network   string `json:"network"`
	Timestamp string `json:"timestamp"`
	Signer    string `json:"signer"`

	Text       string   `json:"text,omitempty"`
	Mentions   []uint64 `json:"mentions,omitempty"`
	Embeds     []string `json:"embeds,omitempty"`
	ParentFid  uint64   `json:"parent_fid,omitempty"`
	ParentHash string   `json:"parent_hash,omitempty"`
	ParentURL  string   `json:"parent_url,omitempty"`

	Reaction   string `json:"reaction,omitempty"`
	TargetFid  uint64 `json:"target_fid,omitempty"`
	TargetHash string `json:"target_hash,omitempty"`
	TargetURL  string `json:"target_url,omitempty"`

	LinkType string `json:"link_type,omitempty"`

	UserDataType int32  `json:"user_data_type,omitempty"`
	Value        string `json:"value,omitempty"`

	Address string `json:"address,omitempty"`
}

func view(m *message.Message) messageView {
	d := m.Data
	v := messageView{
		Hash:      m.HexHash(),
		Type:      d.Type.String(),
		Fid:       d.Fid,
		Network:   d.Network.String(),
		Timestamp: message.FromFarcasterTime(d.Timestamp).Format(time.RFC3339),
		Signer:    "0x" + hex.EncodeToString(m.Signer),
	}
	switch b := d.Body.(type) {
	case *message.CastAddBody:
		v.Text = b.Text
		v.Mentions = b.Mentions
		v.ParentURL = b.ParentURL
		if b.ParentCastID != nil {
			v.ParentFid = b.ParentCastID.Fid
			v.ParentHash = "0x" + hex.EncodeToString(b.ParentCastID.Hash)
		}
		v.Embeds = append(v.Embeds, b.EmbedsDeprecated...)
		for _, e := range b.Embeds {
			if e.URL != "" {
				v.Embeds = append(v.Embeds, e.URL)
			} else if e.CastID != nil {
				v.Embeds = append(v.Embeds, fmt.Sprintf("cast:%d:0x%x", e.CastID.Fid, e.CastID.Hash))
			}
		}
	case *message.CastRemoveBody:
		v.TargetHash = "0x" + hex.EncodeToString(b.TargetHash)
	case *message.ReactionBody:
		v.Reaction = b.Type.String()
		v.TargetURL = b.TargetURL
		if b.TargetCastID != nil {
			v.TargetFid = b.TargetCastID.Fid
			v.TargetHash = "0x" + hex.EncodeToString(b.TargetCastID.Hash)
		}
	case *message.LinkBody:
		v.LinkType = b.Type
		v.TargetFid = b.TargetFid
	case *message.UserDataBody:
		v.UserDataType = int32(b.Type)
		v.Value = b.Value
	case *message.VerificationAddAddressBody:
		v.Address = actions.EthereumAddress(b.Address).String()
	case *message.VerificationRemoveBody:
		v.Address = actions.EthereumAddress(b.Address).String()
	}
	return v
}

func writeJSON(out io.Writer, errOut io.Writer, v any) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(errOut, "encode output: %v\n", err)
		return 1
	}
	return 0
}
