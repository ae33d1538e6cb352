package hub

import (
	stdencoding "encoding"
	"fmt"
)

// binaryCodec moves hub messages over gRPC using their MarshalBinary and
// UnmarshalBinary methods. It registers under the name "proto" so requests
// carry the content-type hubs expect (application/grpc+proto).
type binaryCodec struct{}

func (binaryCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(stdencoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("hub: cannot marshal %T", v)
	}
	return m.MarshalBinary()
}

func (binaryCodec) Unmarshal(data []byte, v any) error {
	u, ok := v.(stdencoding.BinaryUnmarshaler)
	if !ok {
		return fmt.Errorf("hub: cannot unmarshal into %T", v)
	}
	return u.UnmarshalBinary(data)
}

func (binaryCodec) Name() string { return "proto" }
