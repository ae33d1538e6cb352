// Package wire holds the small protobuf helpers shared by the message and hub
// packages. Values equal to their proto3 default are never written.
package wire

import "google.golang.org/protobuf/encoding/protowire"

func AppendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// AppendEnum writes an enum (int32) field; negative values are sign-extended.
func AppendEnum(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func AppendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func AppendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func AppendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// AppendMessage writes an embedded message. Presence is explicit, so an empty
// sub-message is still written.
func AppendMessage(b []byte, num protowire.Number, sub []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub)
}

// ConsumeFields walks the fields of an encoded message. fn returns the number
// of bytes it consumed, 0 to skip the field, or a negative protowire error.
func ConsumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := fn(num, typ, b)
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func ConsumeUint(b []byte, typ protowire.Type, out *uint64) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n
	}
	*out = v
	return n
}

func ConsumeEnum(b []byte, typ protowire.Type, out *int32) int {
	var v uint64
	n := ConsumeUint(b, typ, &v)
	if n > 0 {
		*out = int32(v)
	}
	return n
}

func ConsumeBool(b []byte, typ protowire.Type, out *bool) int {
	var v uint64
	n := ConsumeUint(b, typ, &v)
	if n > 0 {
		*out = protowire.DecodeBool(v)
	}
	return n
}

// ConsumeBytes copies a length-delimited field into out.
func ConsumeBytes(b []byte, typ protowire.Type, out *[]byte) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	*out = append([]byte{}, v...)
	return n
}

func ConsumeString(b []byte, typ protowire.Type, out *string) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return n
	}
	*out = v
	return n
}

// ConsumeRepeatedUint accepts both packed and unpacked encodings.
func ConsumeRepeatedUint(b []byte, typ protowire.Type, add func(uint64)) int {
	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return n
		}
		add(v)
		return n
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return m
			}
			add(v)
			packed = packed[m:]
		}
		return n
	}
	return 0
}
