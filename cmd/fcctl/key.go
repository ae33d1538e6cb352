package main

import (
	"flag"
	"fmt"
	"io"

	"xdao.co/fchub/signer"
)

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: fcctl key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, list, show")
		return 2
	}
	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("key init", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "Key name")
		seedHex := fs.String("seed-hex", "", "Import this 32-byte seed instead of generating one")
		force := fs.Bool("force", false, "Overwrite an existing key")
		dir := fs.String("keys-dir", "", "Key store directory (default ~/.fchub/keys)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "usage: fcctl key init --name <name> [--seed-hex <64hex>] [--force]")
			return 2
		}
		var seed []byte
		if *seedHex != "" {
			var err error
			if seed, err = signer.ParseKeyHex(*seedHex); err != nil {
				fmt.Fprintf(errOut, "key init: %v\n", err)
				return 2
			}
		}
		ks, err := signer.OpenKeyStore(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key init: %v\n", err)
			return 1
		}
		s, err := ks.Create(*name, seed, *force)
		if err != nil {
			fmt.Fprintf(errOut, "key init: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, s.PublicKeyHex())
		return 0
	case "list":
		fs := flag.NewFlagSet("key list", flag.ContinueOnError)
		fs.SetOutput(errOut)
		dir := fs.String("keys-dir", "", "Key store directory (default ~/.fchub/keys)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		ks, err := signer.OpenKeyStore(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key list: %v\n", err)
			return 1
		}
		entries, err := ks.List()
		if err != nil {
			fmt.Fprintf(errOut, "key list: %v\n", err)
			return 1
		}
		for _, e := range entries {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", e.Name, e.PublicKey)
		}
		return 0
	case "show":
		fs := flag.NewFlagSet("key show", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "Key name")
		dir := fs.String("keys-dir", "", "Key store directory (default ~/.fchub/keys)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "usage: fcctl key show --name <name>")
			return 2
		}
		ks, err := signer.OpenKeyStore(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key show: %v\n", err)
			return 1
		}
		s, err := ks.Load(*name)
		if err != nil {
			fmt.Fprintf(errOut, "key show: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, s.PublicKeyHex())
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}
