package hub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	// ErrUnavailable means the hub connection was not ready in time or the
	// transport failed mid-call.
	ErrUnavailable = errors.New("hub: unavailable")
	// ErrNotFound is an explicit absence. Read methods turn it into a nil result.
	ErrNotFound = errors.New("hub: not found")
	// ErrTooManyPages means a list read hit the page cap while the hub still
	// had more pages. No partial result is returned.
	ErrTooManyPages = errors.New("hub: too many pages")
)

// errCodeKey is the trailer key hubs use for their error taxonomy.
const errCodeKey = "errcode"

// RejectedError is returned when the hub actively refuses a request.
// Code is the hub's errcode (e.g. "bad_request.duplicate"), or the gRPC code
// name when the hub sent none. It is passed through, never interpreted.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "hub: rejected (" + e.Code + ")"
	}
	return "hub: rejected (" + e.Code + "): " + e.Message
}

// IsRejected reports whether err is a hub rejection and returns its code.
func IsRejected(err error) (string, bool) {
	var r *RejectedError
	if !errors.As(err, &r) {
		return "", false
	}
	return r.Code, true
}

func mapRPC(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	var errCode string
	if v := trailer.Get(errCodeKey); len(v) > 0 {
		errCode = v[0]
	}

	switch {
	case st.Code() == codes.NotFound, errCode == "not_found":
		return ErrNotFound
	case st.Code() == codes.Unavailable, st.Code() == codes.DeadlineExceeded, st.Code() == codes.Canceled,
		strings.HasPrefix(errCode, "unavailable"):
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	}
	if errCode == "" {
		errCode = st.Code().String()
	}
	return &RejectedError{Code: errCode, Message: st.Message()}
}

// hubError builds a status error carrying an errcode trailer the way hubs do.
func hubError(ctx context.Context, code codes.Code, errCode, msg string) error {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(errCodeKey, errCode))
	return status.Error(code, msg)
}
