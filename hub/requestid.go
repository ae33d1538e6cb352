package hub

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

// requestIDKey carries a per-call id so client and hub logs can be joined.
const requestIDKey = "x-request-id"

func withRequestID(ctx context.Context) (context.Context, string) {
	id := uuid.Must(uuid.NewV7()).String()
	return metadata.AppendToOutgoingContext(ctx, requestIDKey, id), id
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(requestIDKey); len(v) > 0 {
		return v[0]
	}
	return ""
}
