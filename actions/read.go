package actions

import (
	"context"

	"xdao.co/fchub/message"
)

// GetUsername returns fid's username, or "" if none is set.
func (a *Actions) GetUsername(ctx context.Context, fid uint64) (string, error) {
	return a.userData(ctx, fid, message.UserDataTypeUsername)
}

// GetPfp returns fid's profile picture URL, or "" if none is set.
func (a *Actions) GetPfp(ctx context.Context, fid uint64) (string, error) {
	return a.userData(ctx, fid, message.UserDataTypePfp)
}

// GetDisplayName returns fid's display name, or "" if none is set.
func (a *Actions) GetDisplayName(ctx context.Context, fid uint64) (string, error) {
	return a.userData(ctx, fid, message.UserDataTypeDisplay)
}

func (a *Actions) userData(ctx context.Context, fid uint64, t message.UserDataType) (string, error) {
	m, err := a.hub.GetUserData(ctx, fid, t)
	if err != nil {
		return "", err
	}
	body := m.UserData()
	if body == nil {
		return "", nil
	}
	return body.Value, nil
}

// GetEthereumAddress returns the earliest verified Ethereum address of fid,
// or nil if it has none.
func (a *Actions) GetEthereumAddress(ctx context.Context, fid uint64) (EthereumAddress, error) {
	msgs, err := a.hub.GetVerificationsByFid(ctx, fid)
	if err != nil {
		return nil, err
	}
	var best *message.Message
	for _, m := range msgs {
		v := m.VerificationAddAddress()
		if v == nil || v.Protocol != message.ProtocolEthereum || len(v.Address) == 0 {
			continue
		}
		if best == nil || m.Data.Timestamp < best.Data.Timestamp {
			best = m
		}
	}
	if best == nil {
		return nil, nil
	}
	a.log.Debug().Uint64("fid", fid).Int("verifications", len(msgs)).Msg("selected earliest ethereum verification")
	return EthereumAddress(best.VerificationAddAddress().Address), nil
}

// GetCastDetails fetches a cast by author fid and 0x-prefixed hash. It returns
// nil if the hub does not have it.
func (a *Actions) GetCastDetails(ctx context.Context, fid uint64, castHash string) (*message.Message, error) {
	hash, err := message.ParseHash(castHash)
	if err != nil {
		return nil, err
	}
	return a.hub.GetCast(ctx, fid, hash)
}

// GetReactions fetches the likes on a cast.
func (a *Actions) GetReactions(ctx context.Context, fid uint64, castHash string) ([]*message.Message, error) {
	hash, err := message.ParseHash(castHash)
	if err != nil {
		return nil, err
	}
	return a.hub.GetReactionsByCast(ctx, fid, hash, message.ReactionTypeLike)
}
