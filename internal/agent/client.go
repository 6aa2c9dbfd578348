package agent

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/adamkadaban/kea-tui/internal/state"
)

// ClientOptions configure how the client reaches the agent.
type ClientOptions struct {
	Timeout time.Duration
	TLS     ClientTLS
	Logger  logrus.FieldLogger
	// DialOptions are appended to the defaults; tests use them to inject a dialer.
	DialOptions []grpc.DialOption
}

// ClientTLS enables TLS towards the agent when CAFile is set or Enabled is true.
type ClientTLS struct {
	Enabled    bool
	CAFile     string
	ServerName string
	Insecure   bool
}

// Client fetches app state from an agent over gRPC.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	log     logrus.FieldLogger
}

// Dial prepares a client for the agent at addr. The connection is
// established lazily on the first request.
func Dial(addr string, opts ClientOptions) (*Client, error) {
	target, err := dialTarget(addr)
	if err != nil {
		return nil, err
	}
	creds, err := opts.TLS.credentials()
	if err != nil {
		return nil, err
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, opts.DialOptions...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial agent %s: %w", addr, err)
	}

	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{conn: conn, timeout: timeout, log: log.WithField("component", "agent-client")}, nil
}

// FetchApp asks the agent for the app with the given id.
func (c *Client) FetchApp(ctx context.Context, id int64) (state.AppTab, error) {
	reqID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{"app": id, "request_id": reqID})

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, requestIDKey, reqID)

	req, err := structpb.NewStruct(map[string]any{"id": intField(id)})
	if err != nil {
		return state.AppTab{}, fmt.Errorf("encode request: %w", err)
	}
	resp := new(structpb.Struct)

	start := time.Now()
	if err := c.conn.Invoke(ctx, getAppMethod, req, resp); err != nil {
		log.WithError(err).Warn("get app failed")
		if status.Code(err) == codes.NotFound {
			return state.AppTab{}, fmt.Errorf("%w: %d", ErrAppNotFound, id)
		}
		return state.AppTab{}, fmt.Errorf("get app %d: %w", id, err)
	}

	app, err := decodeApp(resp)
	if err != nil {
		return state.AppTab{}, err
	}
	log.WithField("elapsed", time.Since(start)).Debug("fetched app")
	return state.AppTab{App: &app}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (t ClientTLS) credentials() (credentials.TransportCredentials, error) {
	if !t.Enabled && t.CAFile == "" {
		return insecure.NewCredentials(), nil
	}
	cfg := &tls.Config{
		ServerName:         t.ServerName,
		InsecureSkipVerify: t.Insecure,
		MinVersion:         tls.VersionTLS12,
	}
	if t.CAFile != "" {
		data, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read agent ca: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(data) {
			return nil, fmt.Errorf("append agent ca certs")
		}
		cfg.RootCAs = pool
	}
	return credentials.NewTLS(cfg), nil
}
