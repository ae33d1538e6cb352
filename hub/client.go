package hub

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"xdao.co/fchub/message"
)

// DefaultReadyTimeout bounds the readiness wait of every call.
const DefaultReadyTimeout = time.Second

// DefaultMaxPages caps pagination in list reads.
const DefaultMaxPages = 100

// Conn is the part of *grpc.ClientConn the client depends on.
type Conn interface {
	grpc.ClientConnInterface
	GetState() connectivity.State
	WaitForStateChange(ctx context.Context, sourceState connectivity.State) bool
	Connect()
	Close() error
}

// Client is a gateway to one hub over a single long-lived connection.
//
// A Client is safe for concurrent use: gRPC multiplexes calls over the
// connection and no call holds a lock across an RPC. Every call first waits
// (at most ReadyTimeout) for the connection to be ready; readiness is never
// cached between calls.
type Client struct {
	cc     Conn
	client HubServiceClient
	log    zerolog.Logger

	// ReadyTimeout bounds the readiness wait; DefaultReadyTimeout when zero.
	ReadyTimeout time.Duration
	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
	// PageSize is sent with list reads when non-zero.
	PageSize uint32
	// MaxPages caps the pages a list read follows; DefaultMaxPages when zero.
	// Reads that need more fail with ErrTooManyPages.
	MaxPages int
}

type DialOptions struct {
	// Insecure disables TLS. Hubs on the public internet expect TLS.
	Insecure bool
	// TLSConfig overrides the default TLS configuration.
	TLSConfig *tls.Config

	ReadyTimeout time.Duration
	Timeout      time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Dialer replaces the network dialer (tests use bufconn).
	Dialer func(ctx context.Context, addr string) (net.Conn, error)

	Logger *zerolog.Logger
}

// Dial creates a client for target. The connection is established lazily;
// the first call (or its readiness wait) starts connecting.
func Dial(target string, opts DialOptions) (*Client, error) {
	creds := insecure.NewCredentials()
	if !opts.Insecure {
		cfg := opts.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		creds = credentials.NewTLS(cfg)
	}
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  100 * time.Millisecond,
				Multiplier: 1.6,
				Jitter:     0.2,
				MaxDelay:   10 * time.Second,
			},
			MinConnectTimeout: 5 * time.Second,
		}),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	if opts.Dialer != nil {
		dialOpts = append(dialOpts, grpc.WithContextDialer(opts.Dialer))
	}

	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("hub: dial %s: %w", target, err)
	}
	c := NewClient(cc, opts.Logger)
	c.ReadyTimeout = opts.ReadyTimeout
	c.Timeout = opts.Timeout
	return c, nil
}

// NewClient wraps an existing connection. logger may be nil.
func NewClient(cc Conn, logger *zerolog.Logger) *Client {
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "hub").Logger()
	}
	return &Client{cc: cc, client: NewHubServiceClient(cc), log: log}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// State reports the current connectivity state without waiting.
func (c *Client) State() connectivity.State {
	return c.cc.GetState()
}

// AwaitReady blocks until the connection is Ready, the ready timeout elapses,
// or ctx is done. It fails with ErrUnavailable in the latter two cases.
func (c *Client) AwaitReady(ctx context.Context) error {
	if c == nil || c.cc == nil {
		return fmt.Errorf("%w: no connection", ErrUnavailable)
	}
	timeout := c.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		state := c.cc.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return fmt.Errorf("%w: connection closed", ErrUnavailable)
		case connectivity.Idle:
			c.cc.Connect()
		}
		if !c.cc.WaitForStateChange(ctx, state) {
			c.log.Warn().Str("state", state.String()).Dur("timeout", timeout).Msg("failed to connect to hub")
			return fmt.Errorf("%w: not ready after %s (state %s)", ErrUnavailable, timeout, state)
		}
	}
}

// SubmitMessage sends a signed message. Rejections surface as *RejectedError
// with the hub's code; transport failures as ErrUnavailable.
func (c *Client) SubmitMessage(ctx context.Context, m *message.Message) (ack *message.Message, err error) {
	start := time.Now()
	defer func() { observe("SubmitMessage", start, err) }()

	if err := c.AwaitReady(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	ctx, reqID := withRequestID(ctx)

	var trailer metadata.MD
	ack, err = c.client.SubmitMessage(ctx, m, grpc.Trailer(&trailer))
	if err != nil {
		err = mapRPC(err, trailer)
		if errors.Is(err, ErrNotFound) {
			// A write never "finds nothing"; report it as a rejection.
			err = &RejectedError{Code: "not_found"}
		}
		c.log.Warn().Err(err).Str("request_id", reqID).Str("hash", m.HexHash()).Msg("hub rejected message")
		return nil, err
	}
	c.log.Debug().Str("request_id", reqID).Str("hash", ack.HexHash()).Str("type", typeOf(ack)).Msg("message accepted")
	return ack, nil
}

// GetUserData returns the latest user data message of the given type, or nil
// if the hub has none.
func (c *Client) GetUserData(ctx context.Context, fid uint64, t message.UserDataType) (out *message.Message, err error) {
	start := time.Now()
	defer func() { observe("GetUserData", start, err) }()

	out, err = readOne(c, ctx, func(ctx context.Context, opts ...grpc.CallOption) (*message.Message, error) {
		return c.client.GetUserData(ctx, &UserDataRequest{Fid: fid, UserDataType: t}, opts...)
	})
	return out, err
}

// GetCast returns the cast identified by (fid, hash), or nil if absent.
func (c *Client) GetCast(ctx context.Context, fid uint64, hash []byte) (out *message.Message, err error) {
	start := time.Now()
	defer func() { observe("GetCast", start, err) }()

	out, err = readOne(c, ctx, func(ctx context.Context, opts ...grpc.CallOption) (*message.Message, error) {
		return c.client.GetCast(ctx, &message.CastID{Fid: fid, Hash: hash}, opts...)
	})
	return out, err
}

// GetVerificationsByFid returns all verification messages for fid, following
// pagination. The result is nil when there are none.
func (c *Client) GetVerificationsByFid(ctx context.Context, fid uint64) (out []*message.Message, err error) {
	start := time.Now()
	defer func() { observe("GetVerificationsByFid", start, err) }()

	out, err = readAll(c, ctx, func(ctx context.Context, token []byte, opts ...grpc.CallOption) (*MessagesResponse, error) {
		return c.client.GetVerificationsByFid(ctx, &FidRequest{Fid: fid, PageSize: c.PageSize, PageToken: token}, opts...)
	})
	return out, err
}

// GetReactionsByCast returns reactions of type t to the cast (fid, hash).
// ReactionTypeNone returns every type. The result is nil when there are none.
func (c *Client) GetReactionsByCast(ctx context.Context, fid uint64, hash []byte, t message.ReactionType) (out []*message.Message, err error) {
	start := time.Now()
	defer func() { observe("GetReactionsByCast", start, err) }()

	target := &message.CastID{Fid: fid, Hash: hash}
	out, err = readAll(c, ctx, func(ctx context.Context, token []byte, opts ...grpc.CallOption) (*MessagesResponse, error) {
		return c.client.GetReactionsByCast(ctx, &ReactionsByTargetRequest{
			TargetCastID: target,
			ReactionType: t,
			PageSize:     c.PageSize,
			PageToken:    token,
		}, opts...)
	})
	return out, err
}

func readOne(c *Client, ctx context.Context, call func(context.Context, ...grpc.CallOption) (*message.Message, error)) (*message.Message, error) {
	if err := c.AwaitReady(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	ctx, reqID := withRequestID(ctx)

	var trailer metadata.MD
	m, err := call(ctx, grpc.Trailer(&trailer))
	if err != nil {
		err = mapRPC(err, trailer)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		c.log.Warn().Err(err).Str("request_id", reqID).Msg("hub read failed")
		return nil, err
	}
	return m, nil
}

func readAll(c *Client, ctx context.Context, call func(context.Context, []byte, ...grpc.CallOption) (*MessagesResponse, error)) ([]*message.Message, error) {
	if err := c.AwaitReady(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	ctx, reqID := withRequestID(ctx)

	limit := c.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPages
	}
	var out []*message.Message
	var token []byte
	for page := 0; ; page++ {
		if page == limit {
			c.log.Warn().Str("request_id", reqID).Int("pages", limit).Int("messages", len(out)).Msg("hub read exceeded page cap")
			return nil, fmt.Errorf("%w: more than %d pages", ErrTooManyPages, limit)
		}
		var trailer metadata.MD
		resp, err := call(ctx, token, grpc.Trailer(&trailer))
		if err != nil {
			err = mapRPC(err, trailer)
			if errors.Is(err, ErrNotFound) {
				break
			}
			c.log.Warn().Err(err).Str("request_id", reqID).Int("page", page).Msg("hub read failed")
			return nil, err
		}
		out = append(out, resp.Messages...)
		if len(resp.NextPageToken) == 0 {
			break
		}
		token = resp.NextPageToken
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

func typeOf(m *message.Message) string {
	if m == nil || m.Data == nil {
		return ""
	}
	return m.Data.Type.String()
}
