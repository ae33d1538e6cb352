package message

import (
	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/fchub/internal/wire"
)

// Field numbers of the hub protobuf schema.
const (
	fieldMessageData            = 1
	fieldMessageHash            = 2
	fieldMessageHashScheme      = 3
	fieldMessageSignature       = 4
	fieldMessageSignatureScheme = 5
	fieldMessageSigner          = 6
	fieldMessageDataBytes       = 7

	fieldDataType      = 1
	fieldDataFid       = 2
	fieldDataTimestamp = 3
	fieldDataNetwork   = 4

	fieldCastAddBody                = 5
	fieldCastRemoveBody             = 6
	fieldReactionBody               = 7
	fieldVerificationAddAddressBody = 9
	fieldVerificationRemoveBody     = 10
	fieldUserDataBody               = 12
	fieldLinkBody                   = 14
)

// EncodeData returns the canonical encoding of d.
//
// Fields are written in ascending field-number order, proto3 default values are
// omitted and repeated scalars are packed. The hash of a message is computed
// over exactly these bytes.
//
// Empty packed repeated fields are omitted as well. The ts-proto encoder used
// by the JavaScript hub clients writes empty mentions and mentions_positions
// as zero-length fields (12 00, 2a 00), so a cast without mentions hashes
// differently here than in those clients. Hubs accept both because the
// envelope carries the signed bytes in data_bytes and hubs hash those.
func EncodeData(d *Data) ([]byte, error) {
	if d == nil {
		return nil, newError(KindEncoding, "MSG-ENC-001", "nil message data")
	}
	var b []byte
	b = wire.AppendEnum(b, fieldDataType, int32(d.Type))
	b = wire.AppendUint(b, fieldDataFid, d.Fid)
	b = wire.AppendUint(b, fieldDataTimestamp, uint64(d.Timestamp))
	b = wire.AppendEnum(b, fieldDataNetwork, int32(d.Network))
	if d.Body != nil {
		body, err := encodeBody(d.Body)
		if err != nil {
			return nil, err
		}
		b = wire.AppendMessage(b, protowire.Number(d.Body.bodyField()), body)
	}
	return b, nil
}

func encodeBody(body Body) ([]byte, error) {
	switch v := body.(type) {
	case *CastAddBody:
		return v.encode(), nil
	case *CastRemoveBody:
		return wire.AppendBytes(nil, 1, v.TargetHash), nil
	case *ReactionBody:
		return v.encode(), nil
	case *LinkBody:
		return v.encode(), nil
	case *UserDataBody:
		var b []byte
		b = wire.AppendEnum(b, 1, int32(v.Type))
		b = wire.AppendString(b, 2, v.Value)
		return b, nil
	case *VerificationAddAddressBody:
		var b []byte
		b = wire.AppendBytes(b, 1, v.Address)
		b = wire.AppendBytes(b, 2, v.ClaimSignature)
		b = wire.AppendBytes(b, 3, v.BlockHash)
		b = wire.AppendUint(b, 4, uint64(v.VerificationType))
		b = wire.AppendUint(b, 5, uint64(v.ChainID))
		b = wire.AppendEnum(b, 7, int32(v.Protocol))
		return b, nil
	case *VerificationRemoveBody:
		var b []byte
		b = wire.AppendBytes(b, 1, v.Address)
		b = wire.AppendEnum(b, 2, int32(v.Protocol))
		return b, nil
	default:
		return nil, newError(KindEncoding, "MSG-ENC-002", "unsupported message body")
	}
}

func (c *CastAddBody) encode() []byte {
	var b []byte
	for _, s := range c.EmbedsDeprecated {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	if len(c.Mentions) > 0 {
		var packed []byte
		for _, m := range c.Mentions {
			packed = protowire.AppendVarint(packed, m)
		}
		b = wire.AppendMessage(b, 2, packed)
	}
	if c.ParentCastID != nil {
		b = wire.AppendMessage(b, 3, c.ParentCastID.encode())
	}
	b = wire.AppendString(b, 4, c.Text)
	if len(c.MentionsPositions) > 0 {
		var packed []byte
		for _, p := range c.MentionsPositions {
			packed = protowire.AppendVarint(packed, uint64(p))
		}
		b = wire.AppendMessage(b, 5, packed)
	}
	for _, e := range c.Embeds {
		var eb []byte
		if e.URL != "" {
			eb = wire.AppendString(eb, 1, e.URL)
		} else if e.CastID != nil {
			eb = wire.AppendMessage(eb, 2, e.CastID.encode())
		}
		b = wire.AppendMessage(b, 6, eb)
	}
	b = wire.AppendString(b, 7, c.ParentURL)
	b = wire.AppendEnum(b, 8, int32(c.Type))
	return b
}

func (r *ReactionBody) encode() []byte {
	var b []byte
	b = wire.AppendEnum(b, 1, int32(r.Type))
	if r.TargetCastID != nil {
		b = wire.AppendMessage(b, 2, r.TargetCastID.encode())
	}
	b = wire.AppendString(b, 3, r.TargetURL)
	return b
}

func (l *LinkBody) encode() []byte {
	var b []byte
	b = wire.AppendString(b, 1, l.Type)
	if l.DisplayTimestamp != nil {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*l.DisplayTimestamp))
	}
	b = wire.AppendUint(b, 3, l.TargetFid)
	return b
}

func (c *CastID) encode() []byte {
	var b []byte
	b = wire.AppendUint(b, 1, c.Fid)
	b = wire.AppendBytes(b, 2, c.Hash)
	return b
}

// MarshalBinary encodes a CastId message.
func (c *CastID) MarshalBinary() ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	return c.encode(), nil
}

// UnmarshalBinary decodes a CastId message.
func (c *CastID) UnmarshalBinary(b []byte) error {
	out, err := decodeCastID(b)
	if err != nil {
		return wrapError(KindEncoding, "MSG-ENC-101", "invalid cast id", err)
	}
	*c = *out
	return nil
}

// MarshalBinary encodes the full Message. When DataBytes is set it is sent as
// data_bytes and the structured data field is omitted, so the hub hashes the
// exact bytes that were signed.
func (m *Message) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, newError(KindEncoding, "MSG-ENC-003", "nil message")
	}
	var b []byte
	if len(m.DataBytes) == 0 && m.Data != nil {
		data, err := EncodeData(m.Data)
		if err != nil {
			return nil, err
		}
		b = wire.AppendMessage(b, fieldMessageData, data)
	}
	b = wire.AppendBytes(b, fieldMessageHash, m.Hash)
	b = wire.AppendEnum(b, fieldMessageHashScheme, int32(m.HashScheme))
	b = wire.AppendBytes(b, fieldMessageSignature, m.Signature)
	b = wire.AppendEnum(b, fieldMessageSignatureScheme, int32(m.SignatureScheme))
	b = wire.AppendBytes(b, fieldMessageSigner, m.Signer)
	b = wire.AppendBytes(b, fieldMessageDataBytes, m.DataBytes)
	return b, nil
}

// UnmarshalBinary decodes a Message. If data_bytes is present it wins over
// the structured data field, matching how the hub validates messages.
func (m *Message) UnmarshalBinary(b []byte) error {
	out, err := Decode(b)
	if err != nil {
		return err
	}
	*m = *out
	return nil
}

// Decode parses an encoded Message.
func Decode(b []byte) (*Message, error) {
	m := &Message{}
	var dataField []byte
	err := wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case fieldMessageData:
			return wire.ConsumeBytes(b, typ, &dataField)
		case fieldMessageHash:
			return wire.ConsumeBytes(b, typ, &m.Hash)
		case fieldMessageHashScheme:
			return wire.ConsumeEnum(b, typ, (*int32)(&m.HashScheme))
		case fieldMessageSignature:
			return wire.ConsumeBytes(b, typ, &m.Signature)
		case fieldMessageSignatureScheme:
			return wire.ConsumeEnum(b, typ, (*int32)(&m.SignatureScheme))
		case fieldMessageSigner:
			return wire.ConsumeBytes(b, typ, &m.Signer)
		case fieldMessageDataBytes:
			return wire.ConsumeBytes(b, typ, &m.DataBytes)
		}
		return 0
	})
	if err != nil {
		return nil, wrapError(KindEncoding, "MSG-ENC-102", "invalid message encoding", err)
	}

	raw := m.DataBytes
	if len(raw) == 0 {
		raw = dataField
	}
	if raw != nil {
		d, err := DecodeData(raw)
		if err != nil {
			return nil, err
		}
		m.Data = d
		m.DataBytes = raw
	}
	return m, nil
}

// DecodeData parses encoded MessageData. Unknown fields and body variants are
// skipped; Body stays nil for variants this package does not model.
func DecodeData(b []byte) (*Data, error) {
	d := &Data{}
	var bodyErr error
	err := wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case fieldDataType:
			return wire.ConsumeEnum(b, typ, (*int32)(&d.Type))
		case fieldDataFid:
			return wire.ConsumeUint(b, typ, &d.Fid)
		case fieldDataTimestamp:
			var ts uint64
			n := wire.ConsumeUint(b, typ, &ts)
			d.Timestamp = uint32(ts)
			return n
		case fieldDataNetwork:
			return wire.ConsumeEnum(b, typ, (*int32)(&d.Network))
		case fieldCastAddBody, fieldCastRemoveBody, fieldReactionBody,
			fieldVerificationAddAddressBody, fieldVerificationRemoveBody,
			fieldUserDataBody, fieldLinkBody:
			var raw []byte
			n := wire.ConsumeBytes(b, typ, &raw)
			if n <= 0 {
				return n
			}
			body, err := decodeBody(num, raw)
			if err != nil {
				bodyErr = err
				return n
			}
			d.Body = body
			return n
		}
		return 0
	})
	if err == nil {
		err = bodyErr
	}
	if err != nil {
		return nil, wrapError(KindEncoding, "MSG-ENC-103", "invalid message data encoding", err)
	}
	return d, nil
}

func decodeBody(num protowire.Number, b []byte) (Body, error) {
	switch num {
	case fieldCastAddBody:
		return decodeCastAdd(b)
	case fieldCastRemoveBody:
		v := &CastRemoveBody{}
		return v, wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
			if num == 1 {
				return wire.ConsumeBytes(b, typ, &v.TargetHash)
			}
			return 0
		})
	case fieldReactionBody:
		return decodeReaction(b)
	case fieldLinkBody:
		v := &LinkBody{}
		return v, wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
			switch num {
			case 1:
				return wire.ConsumeString(b, typ, &v.Type)
			case 2:
				var ts uint64
				n := wire.ConsumeUint(b, typ, &ts)
				if n > 0 {
					t := uint32(ts)
					v.DisplayTimestamp = &t
				}
				return n
			case 3:
				return wire.ConsumeUint(b, typ, &v.TargetFid)
			}
			return 0
		})
	case fieldUserDataBody:
		v := &UserDataBody{}
		return v, wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
			switch num {
			case 1:
				return wire.ConsumeEnum(b, typ, (*int32)(&v.Type))
			case 2:
				return wire.ConsumeString(b, typ, &v.Value)
			}
			return 0
		})
	case fieldVerificationAddAddressBody:
		v := &VerificationAddAddressBody{}
		return v, wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
			var u uint64
			switch num {
			case 1:
				return wire.ConsumeBytes(b, typ, &v.Address)
			case 2:
				return wire.ConsumeBytes(b, typ, &v.ClaimSignature)
			case 3:
				return wire.ConsumeBytes(b, typ, &v.BlockHash)
			case 4:
				n := wire.ConsumeUint(b, typ, &u)
				v.VerificationType = uint32(u)
				return n
			case 5:
				n := wire.ConsumeUint(b, typ, &u)
				v.ChainID = uint32(u)
				return n
			case 7:
				return wire.ConsumeEnum(b, typ, (*int32)(&v.Protocol))
			}
			return 0
		})
	case fieldVerificationRemoveBody:
		v := &VerificationRemoveBody{}
		return v, wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
			switch num {
			case 1:
				return wire.ConsumeBytes(b, typ, &v.Address)
			case 2:
				return wire.ConsumeEnum(b, typ, (*int32)(&v.Protocol))
			}
			return 0
		})
	}
	return nil, nil
}

func decodeCastAdd(b []byte) (*CastAddBody, error) {
	v := &CastAddBody{}
	var nested error
	err := wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			var s string
			n := wire.ConsumeString(b, typ, &s)
			if n > 0 {
				v.EmbedsDeprecated = append(v.EmbedsDeprecated, s)
			}
			return n
		case 2:
			return wire.ConsumeRepeatedUint(b, typ, func(u uint64) { v.Mentions = append(v.Mentions, u) })
		case 3:
			var raw []byte
			n := wire.ConsumeBytes(b, typ, &raw)
			if n > 0 {
				v.ParentCastID, nested = decodeCastID(raw)
			}
			return n
		case 4:
			return wire.ConsumeString(b, typ, &v.Text)
		case 5:
			return wire.ConsumeRepeatedUint(b, typ, func(u uint64) { v.MentionsPositions = append(v.MentionsPositions, uint32(u)) })
		case 6:
			var raw []byte
			n := wire.ConsumeBytes(b, typ, &raw)
			if n > 0 {
				var e Embed
				e, nested = decodeEmbed(raw)
				v.Embeds = append(v.Embeds, e)
			}
			return n
		case 7:
			return wire.ConsumeString(b, typ, &v.ParentURL)
		case 8:
			return wire.ConsumeEnum(b, typ, (*int32)(&v.Type))
		}
		return 0
	})
	if err == nil {
		err = nested
	}
	return v, err
}

func decodeReaction(b []byte) (*ReactionBody, error) {
	v := &ReactionBody{}
	var nested error
	err := wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return wire.ConsumeEnum(b, typ, (*int32)(&v.Type))
		case 2:
			var raw []byte
			n := wire.ConsumeBytes(b, typ, &raw)
			if n > 0 {
				v.TargetCastID, nested = decodeCastID(raw)
			}
			return n
		case 3:
			return wire.ConsumeString(b, typ, &v.TargetURL)
		}
		return 0
	})
	if err == nil {
		err = nested
	}
	return v, err
}

func decodeEmbed(b []byte) (Embed, error) {
	var e Embed
	var nested error
	err := wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return wire.ConsumeString(b, typ, &e.URL)
		case 2:
			var raw []byte
			n := wire.ConsumeBytes(b, typ, &raw)
			if n > 0 {
				e.CastID, nested = decodeCastID(raw)
			}
			return n
		}
		return 0
	})
	if err == nil {
		err = nested
	}
	return e, err
}

func decodeCastID(b []byte) (*CastID, error) {
	c := &CastID{}
	err := wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return wire.ConsumeUint(b, typ, &c.Fid)
		case 2:
			return wire.ConsumeBytes(b, typ, &c.Hash)
		}
		return 0
	})
	return c, err
}
