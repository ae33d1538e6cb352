package hub

import (
	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/fchub/internal/wire"
	"xdao.co/fchub/message"
)

// FidRequest selects messages by author fid, one page at a time.
type FidRequest struct {
	Fid       uint64
	PageSize  uint32
	PageToken []byte
	Reverse   bool
}

func (r *FidRequest) MarshalBinary() ([]byte, error) {
	var b []byte
	b = wire.AppendUint(b, 1, r.Fid)
	b = wire.AppendUint(b, 2, uint64(r.PageSize))
	b = wire.AppendBytes(b, 3, r.PageToken)
	b = wire.AppendBool(b, 4, r.Reverse)
	return b, nil
}

func (r *FidRequest) UnmarshalBinary(b []byte) error {
	*r = FidRequest{}
	return wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return wire.ConsumeUint(b, typ, &r.Fid)
		case 2:
			var v uint64
			n := wire.ConsumeUint(b, typ, &v)
			r.PageSize = uint32(v)
			return n
		case 3:
			return wire.ConsumeBytes(b, typ, &r.PageToken)
		case 4:
			return wire.ConsumeBool(b, typ, &r.Reverse)
		}
		return 0
	})
}

// UserDataRequest selects the latest user data of one type for a fid.
type UserDataRequest struct {
	Fid          uint64
	UserDataType message.UserDataType
}

func (r *UserDataRequest) MarshalBinary() ([]byte, error) {
	var b []byte
	b = wire.AppendUint(b, 1, r.Fid)
	b = wire.AppendEnum(b, 2, int32(r.UserDataType))
	return b, nil
}

func (r *UserDataRequest) UnmarshalBinary(b []byte) error {
	*r = UserDataRequest{}
	return wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return wire.ConsumeUint(b, typ, &r.Fid)
		case 2:
			return wire.ConsumeEnum(b, typ, (*int32)(&r.UserDataType))
		}
		return 0
	})
}

// ReactionsByTargetRequest selects reactions to a cast (or URL), optionally
// filtered by reaction type.
type ReactionsByTargetRequest struct {
	TargetCastID *message.CastID
	ReactionType message.ReactionType
	PageSize     uint32
	PageToken    []byte
	Reverse      bool
	TargetURL    string
}

func (r *ReactionsByTargetRequest) MarshalBinary() ([]byte, error) {
	var b []byte
	if r.TargetCastID != nil {
		target, err := r.TargetCastID.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = wire.AppendMessage(b, 1, target)
	}
	b = wire.AppendEnum(b, 2, int32(r.ReactionType))
	b = wire.AppendUint(b, 3, uint64(r.PageSize))
	b = wire.AppendBytes(b, 4, r.PageToken)
	b = wire.AppendBool(b, 5, r.Reverse)
	b = wire.AppendString(b, 6, r.TargetURL)
	return b, nil
}

func (r *ReactionsByTargetRequest) UnmarshalBinary(b []byte) error {
	*r = ReactionsByTargetRequest{}
	var nested error
	err := wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			var raw []byte
			n := wire.ConsumeBytes(b, typ, &raw)
			if n > 0 {
				r.TargetCastID = &message.CastID{}
				nested = r.TargetCastID.UnmarshalBinary(raw)
			}
			return n
		case 2:
			return wire.ConsumeEnum(b, typ, (*int32)(&r.ReactionType))
		case 3:
			var v uint64
			n := wire.ConsumeUint(b, typ, &v)
			r.PageSize = uint32(v)
			return n
		case 4:
			return wire.ConsumeBytes(b, typ, &r.PageToken)
		case 5:
			return wire.ConsumeBool(b, typ, &r.Reverse)
		case 6:
			return wire.ConsumeString(b, typ, &r.TargetURL)
		}
		return 0
	})
	if err != nil {
		return err
	}
	return nested
}

// MessagesResponse is one page of messages.
type MessagesResponse struct {
	Messages      []*message.Message
	NextPageToken []byte
}

func (r *MessagesResponse) MarshalBinary() ([]byte, error) {
	var b []byte
	for _, m := range r.Messages {
		enc, err := m.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = wire.AppendMessage(b, 1, enc)
	}
	b = wire.AppendBytes(b, 2, r.NextPageToken)
	return b, nil
}

func (r *MessagesResponse) UnmarshalBinary(b []byte) error {
	*r = MessagesResponse{}
	var nested error
	err := wire.ConsumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			var raw []byte
			n := wire.ConsumeBytes(b, typ, &raw)
			if n > 0 {
				m, err := message.Decode(raw)
				if err != nil {
					nested = err
					return n
				}
				r.Messages = append(r.Messages, m)
			}
			return n
		case 2:
			return wire.ConsumeBytes(b, typ, &r.NextPageToken)
		}
		return 0
	})
	if err != nil {
		return err
	}
	return nested
}
