package message

import (
	"fmt"
	"slices"
	"time"
)

// MaxUserDataValueBytes bounds UserDataBody.Value.
const MaxUserDataValueBytes = 256

// Options is the metadata shared by every message variant.
type Options struct {
	Fid     uint64
	Network Network

	// Timestamp defaults to time.Now when zero.
	Timestamp time.Time
}

func (o Options) data(t MessageType, body Body) (*Data, error) {
	if o.Fid == 0 {
		return nil, newError(KindValidation, "MSG-META-001", "fid is required")
	}
	if !o.Network.Valid() {
		return nil, newError(KindValidation, "MSG-META-002", fmt.Sprintf("invalid network %s", o.Network))
	}
	at := o.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	ts, err := ToFarcasterTime(at)
	if err != nil {
		return nil, err
	}
	return &Data{Type: t, Fid: o.Fid, Timestamp: ts, Network: o.Network, Body: body}, nil
}

// MakeCastAdd validates body and returns unsigned CAST_ADD data.
func MakeCastAdd(body CastAddBody, opts Options) (*Data, error) {
	if err := validateCastAdd(&body); err != nil {
		return nil, err
	}
	b := body
	b.EmbedsDeprecated = slices.Clone(body.EmbedsDeprecated)
	b.Mentions = slices.Clone(body.Mentions)
	b.MentionsPositions = slices.Clone(body.MentionsPositions)
	b.Embeds = slices.Clone(body.Embeds)
	b.ParentCastID = cloneCastID(body.ParentCastID)
	return opts.data(MessageTypeCastAdd, &b)
}

// MakeCastRemove returns unsigned CAST_REMOVE data for the cast with targetHash.
func MakeCastRemove(targetHash []byte, opts Options) (*Data, error) {
	if len(targetHash) != HashLength {
		return nil, newError(KindValidation, "MSG-CASTRM-001", fmt.Sprintf("target hash must be %d bytes, got %d", HashLength, len(targetHash)))
	}
	return opts.data(MessageTypeCastRemove, &CastRemoveBody{TargetHash: slices.Clone(targetHash)})
}

// MakeReactionAdd returns unsigned REACTION_ADD data.
func MakeReactionAdd(body ReactionBody, opts Options) (*Data, error) {
	return makeReaction(MessageTypeReactionAdd, body, opts)
}

// MakeReactionRemove returns unsigned REACTION_REMOVE data.
func MakeReactionRemove(body ReactionBody, opts Options) (*Data, error) {
	return makeReaction(MessageTypeReactionRemove, body, opts)
}

func makeReaction(t MessageType, body ReactionBody, opts Options) (*Data, error) {
	if body.Type != ReactionTypeLike && body.Type != ReactionTypeRecast {
		return nil, newError(KindValidation, "MSG-REACT-001", fmt.Sprintf("invalid reaction type %s", body.Type))
	}
	switch {
	case body.TargetCastID != nil && body.TargetURL != "":
		return nil, newError(KindValidation, "MSG-REACT-004", "reaction target must be a cast id or a url, not both")
	case body.TargetCastID == nil && body.TargetURL == "":
		return nil, newError(KindValidation, "MSG-REACT-002", "reaction target is required")
	case body.TargetCastID != nil:
		if err := validateCastID(body.TargetCastID, "MSG-REACT-003", "reaction target"); err != nil {
			return nil, err
		}
	}
	b := body
	b.TargetCastID = cloneCastID(body.TargetCastID)
	return opts.data(t, &b)
}

// MakeLinkAdd returns unsigned LINK_ADD data (e.g. a follow).
func MakeLinkAdd(body LinkBody, opts Options) (*Data, error) {
	return makeLink(MessageTypeLinkAdd, body, opts)
}

// MakeLinkRemove returns unsigned LINK_REMOVE data (e.g. an unfollow).
func MakeLinkRemove(body LinkBody, opts Options) (*Data, error) {
	return makeLink(MessageTypeLinkRemove, body, opts)
}

func makeLink(t MessageType, body LinkBody, opts Options) (*Data, error) {
	if body.Type == "" || len(body.Type) > MaxLinkTypeBytes {
		return nil, newError(KindValidation, "MSG-LINK-001", fmt.Sprintf("link type must be 1-%d bytes", MaxLinkTypeBytes))
	}
	if body.TargetFid == 0 {
		return nil, newError(KindValidation, "MSG-LINK-002", "link target fid is required")
	}
	b := body
	if body.DisplayTimestamp != nil {
		ts := *body.DisplayTimestamp
		b.DisplayTimestamp = &ts
	}
	return opts.data(t, &b)
}

// MakeUserDataAdd returns unsigned USER_DATA_ADD data.
func MakeUserDataAdd(body UserDataBody, opts Options) (*Data, error) {
	switch body.Type {
	case UserDataTypeNone, 4:
		return nil, newError(KindValidation, "MSG-USER-001", fmt.Sprintf("invalid user data type %d", body.Type))
	}
	if len(body.Value) > MaxUserDataValueBytes {
		return nil, newError(KindValidation, "MSG-USER-002", fmt.Sprintf("user data value exceeds %d bytes", MaxUserDataValueBytes))
	}
	b := body
	return opts.data(MessageTypeUserDataAdd, &b)
}

func validateCastAdd(c *CastAddBody) error {
	limit := MaxCastBytes
	switch c.Type {
	case CastTypeCast:
	case CastTypeLongCast:
		limit = MaxLongCastBytes
	default:
		return newError(KindValidation, "MSG-CAST-010", fmt.Sprintf("unknown cast type %d", c.Type))
	}
	if len(c.Text) > limit {
		return newError(KindValidation, "MSG-CAST-001", fmt.Sprintf("text is %d bytes, limit is %d", len(c.Text), limit))
	}
	if len(c.Embeds)+len(c.EmbedsDeprecated) > MaxEmbeds {
		return newError(KindValidation, "MSG-CAST-002", fmt.Sprintf("at most %d embeds", MaxEmbeds))
	}
	if len(c.Mentions) > MaxMentions {
		return newError(KindValidation, "MSG-CAST-003", fmt.Sprintf("at most %d mentions", MaxMentions))
	}
	if len(c.Mentions) != len(c.MentionsPositions) {
		return newError(KindValidation, "MSG-CAST-004", fmt.Sprintf("mentions and mentionsPositions differ in length (%d != %d)", len(c.Mentions), len(c.MentionsPositions)))
	}
	for i, pos := range c.MentionsPositions {
		if int(pos) >= len(c.Text) {
			return newError(KindValidation, "MSG-CAST-005", fmt.Sprintf("mention position %d is outside text (%d bytes)", pos, len(c.Text)))
		}
		if i > 0 && pos <= c.MentionsPositions[i-1] {
			return newError(KindValidation, "MSG-CAST-006", "mention positions must be strictly increasing")
		}
	}
	if c.ParentCastID != nil && c.ParentURL != "" {
		return newError(KindValidation, "MSG-CAST-007", "parent must be a cast id or a url, not both")
	}
	if c.ParentCastID != nil {
		if err := validateCastID(c.ParentCastID, "MSG-CAST-008", "parent cast"); err != nil {
			return err
		}
	}
	for _, e := range c.Embeds {
		if (e.URL == "") == (e.CastID == nil) {
			return newError(KindValidation, "MSG-CAST-009", "embed must have exactly one of url or cast id")
		}
		if e.CastID != nil {
			if err := validateCastID(e.CastID, "MSG-CAST-009", "embedded cast"); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateCastID(c *CastID, ruleID, what string) error {
	if c.Fid == 0 {
		return newError(KindValidation, ruleID, what+" fid is required")
	}
	if len(c.Hash) != HashLength {
		return newError(KindValidation, ruleID, fmt.Sprintf("%s hash must be %d bytes, got %d", what, HashLength, len(c.Hash)))
	}
	return nil
}

func cloneCastID(c *CastID) *CastID {
	if c == nil {
		return nil
	}
	return &CastID{Fid: c.Fid, Hash: slices.Clone(c.Hash)}
}
