// Package actions composes signing, message building and hub submission into
// one-call operations, plus the derived reads the rest of an application
// needs (username, profile picture, verified address, casts, reactions).
//
// Every method returns a typed error on failure. Reads return a zero value
// with a nil error only when the hub has nothing for the query.
package actions

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"xdao.co/fchub/archive"
	"xdao.co/fchub/hub"
	"xdao.co/fchub/message"
	"xdao.co/fchub/signer"
)

// Hub is the subset of *hub.Client used here.
type Hub interface {
	SubmitMessage(ctx context.Context, m *message.Message) (*message.Message, error)
	GetUserData(ctx context.Context, fid uint64, t message.UserDataType) (*message.Message, error)
	GetVerificationsByFid(ctx context.Context, fid uint64) ([]*message.Message, error)
	GetCast(ctx context.Context, fid uint64, hash []byte) (*message.Message, error)
	GetReactionsByCast(ctx context.Context, fid uint64, hash []byte, t message.ReactionType) ([]*message.Message, error)
}

var _ Hub = (*hub.Client)(nil)

type Options struct {
	Network message.Network

	// Archive, when set, receives every envelope before it is submitted.
	Archive archive.Store

	Logger *zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Actions is safe for concurrent use if its Hub is.
type Actions struct {
	hub     Hub
	network message.Network
	archive archive.Store
	log     zerolog.Logger
	now     func() time.Time
}

func New(h Hub, opts Options) *Actions {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "actions").Logger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	network := opts.Network
	if network == message.NetworkNone {
		network = message.NetworkMainnet
	}
	return &Actions{hub: h, network: network, archive: opts.Archive, log: log, now: now}
}

// Submit finalizes data with s, archives the envelope if configured, and
// submits it to the hub.
func (a *Actions) Submit(ctx context.Context, data *message.Data, s message.Signer) (*message.Message, error) {
	m, err := message.Finalize(data, s)
	if err != nil {
		return nil, err
	}
	if a.archive != nil {
		id, err := a.archive.Put(m)
		if err != nil {
			return nil, err
		}
		a.log.Debug().Str("cid", id.String()).Str("hash", m.HexHash()).Msg("archived envelope")
	}
	ack, err := a.hub.SubmitMessage(ctx, m)
	if err != nil {
		return nil, err
	}
	a.log.Debug().
		Uint64("fid", data.Fid).
		Str("type", data.Type.String()).
		Str("hash", m.HexHash()).
		Msg("submitted message")
	return ack, nil
}

func (a *Actions) opts(fid uint64) message.Options {
	return message.Options{Fid: fid, Network: a.network, Timestamp: a.now()}
}

// build parses the key before anything else so a bad key never costs a
// builder call or a network round trip.
func (a *Actions) build(ctx context.Context, privateKeyHex string, newData func() (*message.Data, error)) (*message.Message, error) {
	s, err := signer.FromHex(privateKeyHex)
	if err != nil {
		return nil, err
	}
	data, err := newData()
	if err != nil {
		return nil, err
	}
	return a.Submit(ctx, data, s)
}
