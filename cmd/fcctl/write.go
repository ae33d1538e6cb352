package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"xdao.co/fchub/message"
)

func cmdCast(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cast", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	var kf keyFlags
	hf.register(fs)
	kf.register(fs)
	fid := fs.Uint64("fid", 0, "Author fid")
	text := fs.String("text", "", "Cast text")
	parentHash := fs.String("parent-hash", "", "Reply to this cast hash (0x..)")
	parentFid := fs.Uint64("parent-fid", 0, "Author fid of the parent cast")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fid == 0 || *text == "" || (*parentHash != "") != (*parentFid != 0) {
		fmt.Fprintln(errOut, "usage: fcctl cast --fid <fid> --text <text> [--parent-hash <0x..> --parent-fid <fid>] <key>")
		return 2
	}
	key, err := kf.hex()
	if err != nil {
		fmt.Fprintf(errOut, "cast: %v\n", err)
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, "cast", err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	var ack *message.Message
	if *parentHash != "" {
		ack, err = a.ReplyWithKey(ctx, *fid, *text, *parentHash, *parentFid, key)
	} else {
		ack, err = a.CastWithKey(ctx, *fid, *text, key)
	}
	if err != nil {
		return report(errOut, "cast", err)
	}
	_, _ = fmt.Fprintln(out, ack.HexHash())
	return 0
}

func cmdDeleteCast(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("delete-cast", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	var kf keyFlags
	hf.register(fs)
	kf.register(fs)
	fid := fs.Uint64("fid", 0, "Author fid")
	hash := fs.String("hash", "", "Hash of the cast to delete (0x..)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fid == 0 || *hash == "" {
		fmt.Fprintln(errOut, "usage: fcctl delete-cast --fid <fid> --hash <0x..> <key>")
		return 2
	}
	key, err := kf.hex()
	if err != nil {
		fmt.Fprintf(errOut, "delete-cast: %v\n", err)
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, "delete-cast", err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	ack, err := a.DeleteCastWithKey(ctx, *fid, *hash, key)
	if err != nil {
		return report(errOut, "delete-cast", err)
	}
	_, _ = fmt.Fprintln(out, ack.HexHash())
	return 0
}

func cmdReact(name string, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	var kf keyFlags
	hf.register(fs)
	kf.register(fs)
	fid := fs.Uint64("fid", 0, "Reacting fid")
	hash := fs.String("hash", "", "Target cast hash (0x..)")
	author := fs.Uint64("author-fid", 0, "Author fid of the target cast")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fid == 0 || *hash == "" || *author == 0 {
		fmt.Fprintf(errOut, "usage: fcctl %s --fid <fid> --hash <0x..> --author-fid <fid> <key>\n", name)
		return 2
	}
	key, err := kf.hex()
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", name, err)
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, name, err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	do := map[string]func() (*message.Message, error){
		"like":     func() (*message.Message, error) { return a.LikeWithKey(ctx, *fid, *hash, *author, key) },
		"recast":   func() (*message.Message, error) { return a.RecastWithKey(ctx, *fid, *hash, *author, key) },
		"unlike":   func() (*message.Message, error) { return a.UnlikeWithKey(ctx, *fid, *hash, *author, key) },
		"unrecast": func() (*message.Message, error) { return a.UnrecastWithKey(ctx, *fid, *hash, *author, key) },
	}[name]
	ack, err := do()
	if err != nil {
		return report(errOut, name, err)
	}
	_, _ = fmt.Fprintln(out, ack.HexHash())
	return 0
}

func cmdFollow(name string, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	var kf keyFlags
	hf.register(fs)
	kf.register(fs)
	fid := fs.Uint64("fid", 0, "Follower fid")
	target := fs.Uint64("target", 0, "Fid to follow or unfollow")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fid == 0 || *target == 0 {
		fmt.Fprintf(errOut, "usage: fcctl %s --fid <fid> --target <fid> <key>\n", name)
		return 2
	}
	key, err := kf.hex()
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", name, err)
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, name, err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	var ack *message.Message
	if name == "unfollow" {
		ack, err = a.UnfollowWithKey(ctx, *fid, *target, key)
	} else {
		ack, err = a.FollowWithKey(ctx, *fid, *target, key)
	}
	if err != nil {
		return report(errOut, name, err)
	}
	_, _ = fmt.Fprintln(out, ack.HexHash())
	return 0
}

var userDataTypes = map[string]message.UserDataType{
	"pfp":      message.UserDataTypePfp,
	"display":  message.UserDataTypeDisplay,
	"bio":      message.UserDataTypeBio,
	"url":      message.UserDataTypeURL,
	"username": message.UserDataTypeUsername,
}

func cmdSetUserData(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("set-user-data", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hf hubFlags
	var kf keyFlags
	hf.register(fs)
	kf.register(fs)
	fid := fs.Uint64("fid", 0, "Fid whose profile to update")
	typ := fs.String("type", "", "username, pfp, display, bio or url")
	value := fs.String("value", "", "New value")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	t, ok := userDataTypes[strings.ToLower(*typ)]
	if *fid == 0 || !ok {
		fmt.Fprintln(errOut, "usage: fcctl set-user-data --fid <fid> --type username|pfp|display|bio|url --value <v> <key>")
		return 2
	}
	key, err := kf.hex()
	if err != nil {
		fmt.Fprintf(errOut, "set-user-data: %v\n", err)
		return 2
	}
	a, closeFn, err := hf.open(errOut)
	if err != nil {
		return report(errOut, "set-user-data", err)
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	ack, err := a.SetUserDataWithKey(ctx, *fid, t, *value, key)
	if err != nil {
		return report(errOut, "set-user-data", err)
	}
	_, _ = fmt.Fprintln(out, ack.HexHash())
	return 0
}
