package actions

import (
	"context"

	"xdao.co/fchub/message"
)

// CastWithKey publishes text as a new cast by fid.
func (a *Actions) CastWithKey(ctx context.Context, fid uint64, text, privateKeyHex string) (*message.Message, error) {
	return a.build(ctx, privateKeyHex, func() (*message.Data, error) {
		return message.MakeCastAdd(message.CastAddBody{Text: text}, a.opts(fid))
	})
}

// ReplyWithKey publishes text as a reply to the cast (parentFid, parentHash).
func (a *Actions) ReplyWithKey(ctx context.Context, fid uint64, text, parentHash string, parentFid uint64, privateKeyHex string) (*message.Message, error) {
	return a.build(ctx, privateKeyHex, func() (*message.Data, error) {
		hash, err := message.ParseHash(parentHash)
		if err != nil {
			return nil, err
		}
		return message.MakeCastAdd(message.CastAddBody{
			Text:         text,
			ParentCastID: &message.CastID{Fid: parentFid, Hash: hash},
		}, a.opts(fid))
	})
}

// DeleteCastWithKey removes a cast previously published by fid.
func (a *Actions) DeleteCastWithKey(ctx context.Context, fid uint64, castHash, privateKeyHex string) (*message.Message, error) {
	return a.build(ctx, privateKeyHex, func() (*message.Data, error) {
		hash, err := message.ParseHash(castHash)
		if err != nil {
			return nil, err
		}
		return message.MakeCastRemove(hash, a.opts(fid))
	})
}

func (a *Actions) LikeWithKey(ctx context.Context, fid uint64, castHash string, castAuthorFid uint64, privateKeyHex string) (*message.Message, error) {
	return a.react(ctx, fid, message.ReactionTypeLike, false, castHash, castAuthorFid, privateKeyHex)
}

func (a *Actions) RecastWithKey(ctx context.Context, fid uint64, castHash string, castAuthorFid uint64, privateKeyHex string) (*message.Message, error) {
	return a.react(ctx, fid, message.ReactionTypeRecast, false, castHash, castAuthorFid, privateKeyHex)
}

func (a *Actions) UnlikeWithKey(ctx context.Context, fid uint64, castHash string, castAuthorFid uint64, privateKeyHex string) (*message.Message, error) {
	return a.react(ctx, fid, message.ReactionTypeLike, true, castHash, castAuthorFid, privateKeyHex)
}

func (a *Actions) UnrecastWithKey(ctx context.Context, fid uint64, castHash string, castAuthorFid uint64, privateKeyHex string) (*message.Message, error) {
	return a.react(ctx, fid, message.ReactionTypeRecast, true, castHash, castAuthorFid, privateKeyHex)
}

func (a *Actions) react(ctx context.Context, fid uint64, t message.ReactionType, remove bool, castHash string, castAuthorFid uint64, privateKeyHex string) (*message.Message, error) {
	return a.build(ctx, privateKeyHex, func() (*message.Data, error) {
		hash, err := message.ParseHash(castHash)
		if err != nil {
			return nil, err
		}
		body := message.ReactionBody{
			Type:         t,
			TargetCastID: &message.CastID{Fid: castAuthorFid, Hash: hash},
		}
		if remove {
			return message.MakeReactionRemove(body, a.opts(fid))
		}
		return message.MakeReactionAdd(body, a.opts(fid))
	})
}

func (a *Actions) FollowWithKey(ctx context.Context, fid, targetFid uint64, privateKeyHex string) (*message.Message, error) {
	return a.build(ctx, privateKeyHex, func() (*message.Data, error) {
		return message.MakeLinkAdd(message.LinkBody{Type: message.LinkFollow, TargetFid: targetFid}, a.opts(fid))
	})
}

func (a *Actions) UnfollowWithKey(ctx context.Context, fid, targetFid uint64, privateKeyHex string) (*message.Message, error) {
	return a.build(ctx, privateKeyHex, func() (*message.Data, error) {
		return message.MakeLinkRemove(message.LinkBody{Type: message.LinkFollow, TargetFid: targetFid}, a.opts(fid))
	})
}

// SetUserDataWithKey publishes a profile field such as the username or pfp.
func (a *Actions) SetUserDataWithKey(ctx context.Context, fid uint64, t message.UserDataType, value, privateKeyHex string) (*message.Message, error) {
	return a.build(ctx, privateKeyHex, func() (*message.Data, error) {
		return message.MakeUserDataAdd(message.UserDataBody{Type: t, Value: value}, a.opts(fid))
	})
}
