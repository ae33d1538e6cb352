package hub

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/fchub/message"
)

// Hub errcodes returned by MemoryHub, matching the ones real hubs send.
const (
	CodeValidationFailure = "bad_request.validation_failure"
	CodeDuplicate         = "bad_request.duplicate"
	CodeConflict          = "bad_request.conflict"
	CodeNotFound          = "not_found"
)

// MemoryHub is an in-memory HubServiceServer. It verifies submissions the way
// a hub does (hash, signature, network) and keeps one message per CRDT key,
// so adds and removes of the same target replace each other.
//
// It backs fchubd and the tests; it does not sync, prune or check fid
// registration.
type MemoryHub struct {
	UnimplementedHubServiceServer

	network message.Network
	log     zerolog.Logger

	mu   sync.RWMutex
	seen map[string]struct{}
	sets map[string]*message.Message
}

// NewMemoryHub returns an empty hub for network. logger may be nil.
func NewMemoryHub(network message.Network, logger *zerolog.Logger) *MemoryHub {
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "memoryhub").Logger()
	}
	return &MemoryHub{
		network: network,
		log:     log,
		seen:    make(map[string]struct{}),
		sets:    make(map[string]*message.Message),
	}
}

func (h *MemoryHub) SubmitMessage(ctx context.Context, m *message.Message) (*message.Message, error) {
	typ := typeOf(m)
	if err := message.Verify(m); err != nil {
		submissionsAccepted.WithLabelValues(typ, "invalid").Inc()
		return nil, hubError(ctx, codes.InvalidArgument, CodeValidationFailure, err.Error())
	}
	if m.Data.Network != h.network {
		submissionsAccepted.WithLabelValues(typ, "invalid").Inc()
		return nil, hubError(ctx, codes.InvalidArgument, CodeValidationFailure,
			fmt.Sprintf("incorrect network: message is for %s, hub is %s", m.Data.Network, h.network))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, dup := h.seen[string(m.Hash)]; dup {
		submissionsAccepted.WithLabelValues(typ, "duplicate").Inc()
		return nil, hubError(ctx, codes.AlreadyExists, CodeDuplicate, "message has already been merged")
	}
	if err := h.merge(m); err != nil {
		submissionsAccepted.WithLabelValues(typ, "conflict").Inc()
		h.log.Info().Str("request_id", requestID(ctx)).Str("hash", m.HexHash()).Err(err).Msg("rejected conflicting message")
		return nil, hubError(ctx, codes.InvalidArgument, CodeConflict, err.Error())
	}
	submissionsAccepted.WithLabelValues(typ, "merged").Inc()
	h.log.Debug().
		Str("request_id", requestID(ctx)).
		Uint64("fid", m.Data.Fid).
		Str("type", typ).
		Str("hash", m.HexHash()).
		Msg("merged message")
	return m, nil
}

// Seed merges m without verifying it. Tests use it to plant state that the
// builders cannot produce, such as verifications.
func (h *MemoryHub) Seed(m *message.Message) error {
	if m == nil || m.Data == nil {
		return fmt.Errorf("hub: seed: message has no data")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.merge(m)
}

func (h *MemoryHub) GetUserData(ctx context.Context, in *UserDataRequest) (*message.Message, error) {
	h.mu.RLock()
	m := h.sets[userDataKey(in.Fid, in.UserDataType)]
	h.mu.RUnlock()
	if m == nil {
		return nil, hubError(ctx, codes.NotFound, CodeNotFound, "no user data")
	}
	return m, nil
}

func (h *MemoryHub) GetCast(ctx context.Context, in *message.CastID) (*message.Message, error) {
	h.mu.RLock()
	m := h.sets[castKey(in.Fid, in.Hash)]
	h.mu.RUnlock()
	if m == nil || m.Data.Type != message.MessageTypeCastAdd {
		return nil, hubError(ctx, codes.NotFound, CodeNotFound, "cast not found")
	}
	return m, nil
}

func (h *MemoryHub) GetVerificationsByFid(ctx context.Context, in *FidRequest) (*MessagesResponse, error) {
	prefix := fmt.Sprintf("verification/%d/", in.Fid)
	out := h.collect(func(key string, m *message.Message) bool {
		return strings.HasPrefix(key, prefix) && m.Data.Type == message.MessageTypeVerificationAddEthAddress
	})
	return page(out, in.PageSize, in.PageToken, in.Reverse)
}

func (h *MemoryHub) GetReactionsByCast(ctx context.Context, in *ReactionsByTargetRequest) (*MessagesResponse, error) {
	var target string
	switch {
	case in.TargetCastID != nil:
		target = castTarget(in.TargetCastID)
	case in.TargetURL != "":
		target = in.TargetURL
	default:
		return nil, hubError(ctx, codes.InvalidArgument, CodeValidationFailure, "reaction target is required")
	}
	out := h.collect(func(_ string, m *message.Message) bool {
		r := m.Reaction()
		if m.Data.Type != message.MessageTypeReactionAdd || r == nil {
			return false
		}
		if in.ReactionType != message.ReactionTypeNone && r.Type != in.ReactionType {
			return false
		}
		return reactionTarget(r) == target
	})
	return page(out, in.PageSize, in.PageToken, in.Reverse)
}

// Following returns the fids that fid currently follows, in ascending order.
func (h *MemoryHub) Following(fid uint64) []uint64 {
	prefix := fmt.Sprintf("link/%d/%s/", fid, message.LinkFollow)
	msgs := h.collect(func(key string, m *message.Message) bool {
		return strings.HasPrefix(key, prefix) && m.Data.Type == message.MessageTypeLinkAdd
	})
	out := make([]uint64, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Link().TargetFid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// merge stores m under its set key. Callers hold h.mu.
func (h *MemoryHub) merge(m *message.Message) error {
	key, ok := setKey(m)
	if !ok {
		return fmt.Errorf("unsupported message type %s", m.Data.Type)
	}
	if prev := h.sets[key]; prev != nil && !wins(m, prev) {
		return fmt.Errorf("message conflicts with a more recent %s", prev.Data.Type)
	}
	h.sets[key] = m
	h.seen[string(m.Hash)] = struct{}{}
	return nil
}

// wins reports whether next replaces prev in the same set. A cast remove
// always beats a cast add. Otherwise the later timestamp wins, a remove beats
// an add at the same timestamp, and the higher hash breaks remaining ties.
func wins(next, prev *message.Message) bool {
	nt, pt := next.Data.Type, prev.Data.Type
	if pt == message.MessageTypeCastRemove && nt == message.MessageTypeCastAdd {
		return false
	}
	if nt == message.MessageTypeCastRemove && pt == message.MessageTypeCastAdd {
		return true
	}
	if next.Data.Timestamp != prev.Data.Timestamp {
		return next.Data.Timestamp > prev.Data.Timestamp
	}
	if isRemove(nt) != isRemove(pt) {
		return isRemove(nt)
	}
	return bytes.Compare(next.Hash, prev.Hash) > 0
}

func isRemove(t message.MessageType) bool {
	switch t {
	case message.MessageTypeCastRemove, message.MessageTypeReactionRemove,
		message.MessageTypeLinkRemove, message.MessageTypeVerificationRemove:
		return true
	}
	return false
}

func setKey(m *message.Message) (string, bool) {
	d := m.Data
	switch b := d.Body.(type) {
	case *message.CastAddBody:
		return castKey(d.Fid, m.Hash), true
	case *message.CastRemoveBody:
		return castKey(d.Fid, b.TargetHash), true
	case *message.ReactionBody:
		return fmt.Sprintf("reaction/%d/%d/%s", d.Fid, b.Type, reactionTarget(b)), true
	case *message.LinkBody:
		return fmt.Sprintf("link/%d/%s/%d", d.Fid, b.Type, b.TargetFid), true
	case *message.UserDataBody:
		return userDataKey(d.Fid, b.Type), true
	case *message.VerificationAddAddressBody:
		return fmt.Sprintf("verification/%d/%x", d.Fid, b.Address), true
	case *message.VerificationRemoveBody:
		return fmt.Sprintf("verification/%d/%x", d.Fid, b.Address), true
	}
	return "", false
}

func castKey(fid uint64, hash []byte) string {
	return fmt.Sprintf("cast/%d/%x", fid, hash)
}

func userDataKey(fid uint64, t message.UserDataType) string {
	return fmt.Sprintf("user/%d/%d", fid, t)
}

func castTarget(c *message.CastID) string {
	return fmt.Sprintf("%d:%s", c.Fid, hex.EncodeToString(c.Hash))
}

func reactionTarget(r *message.ReactionBody) string {
	if r.TargetCastID != nil {
		return castTarget(r.TargetCastID)
	}
	return r.TargetURL
}

// collect returns matching messages ordered by timestamp, then hash.
func (h *MemoryHub) collect(match func(key string, m *message.Message) bool) []*message.Message {
	h.mu.RLock()
	var out []*message.Message
	for key, m := range h.sets {
		if match(key, m) {
			out = append(out, m)
		}
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Data, out[j].Data
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return bytes.Compare(out[i].Hash, out[j].Hash) < 0
	})
	return out
}

// page slices msgs; the page token is the varint offset of the next page.
func page(msgs []*message.Message, size uint32, token []byte, reverse bool) (*MessagesResponse, error) {
	if reverse {
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
	}
	var offset uint64
	if len(token) > 0 {
		v, n := protowire.ConsumeVarint(token)
		if n < 0 || n != len(token) || v > uint64(len(msgs)) {
			return nil, status.Error(codes.InvalidArgument, "invalid page token")
		}
		offset = v
	}
	msgs = msgs[offset:]
	resp := &MessagesResponse{}
	if size == 0 || int(size) >= len(msgs) {
		resp.Messages = msgs
		return resp, nil
	}
	resp.Messages = msgs[:size]
	resp.NextPageToken = protowire.AppendVarint(nil, offset+uint64(size))
	return resp, nil
}
