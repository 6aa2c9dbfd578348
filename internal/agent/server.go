package agent

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/adamkadaban/kea-tui/internal/controller"
)

const (
	serviceName   = "keatui.agent.v1.AppService"
	getAppMethod  = "/" + serviceName + "/GetApp"
	requestIDKey  = "x-request-id"
	defaultListen = "127.0.0.1:8080"
)

// Options configure the agent RPC server.
type Options struct {
	ListenAddr  string
	MaxMsgBytes int
	TLS         TLSOptions
	Logger      logrus.FieldLogger
}

// TLSOptions describe optional TLS configuration for the RPC server.
type TLSOptions struct {
	CertFile string
	KeyFile  string
}

// Server answers app state requests from a controller.AppSource.
type Server struct {
	source controller.AppSource
	opts   Options
	log    logrus.FieldLogger
	grpc   *grpc.Server
}

// appService is the handler type the hand written service descriptor binds to.
type appService interface {
	GetApp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var appServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*appService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetApp", Handler: getAppHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "keatui/agent/v1/app.proto",
}

// New creates a new agent RPC server.
func New(source controller.AppSource, opts Options) *Server {
	if opts.ListenAddr == "" {
		opts.ListenAddr = defaultListen
	}
	if opts.MaxMsgBytes == 0 {
		opts.MaxMsgBytes = 4 << 20
	}
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Server{source: source, opts: opts, log: log.WithField("component", "agent-server")}
}

// Start begins listening for requests until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	lis, err := Listen(s.opts.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve handles requests on lis until the context is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	serverOpts, err := s.serverOptions()
	if err != nil {
		lis.Close()
		return err
	}

	s.grpc = grpc.NewServer(serverOpts...)
	s.grpc.RegisterService(&appServiceDesc, s)

	go func() {
		<-ctx.Done()
		s.grpc.GracefulStop()
	}()

	s.log.WithField("addr", lis.Addr().String()).Info("agent server listening")
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// GetApp looks up the app named by the "id" field of the request.
func (s *Server) GetApp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	idValue, ok := req.GetFields()["id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing app id")
	}
	id := asInt(idValue.AsInterface())
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid app id %v", idValue.AsInterface())
	}

	log := s.log.WithFields(logrus.Fields{"app": id, "request_id": requestID(ctx)})
	tab, err := s.source.FetchApp(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppNotFound) {
			log.Warn("app not found")
			return nil, status.Errorf(codes.NotFound, "app %d not found", id)
		}
		log.WithError(err).Error("problem fetching app")
		return nil, status.Errorf(codes.Internal, "fetch app %d: %v", id, err)
	}
	if tab.App == nil {
		return nil, status.Errorf(codes.NotFound, "app %d not found", id)
	}

	resp, err := encodeApp(*tab.App)
	if err != nil {
		log.WithError(err).Error("problem encoding app")
		return nil, status.Error(codes.Internal, err.Error())
	}
	log.Debug("served app")
	return resp, nil
}

func getAppHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(appService).GetApp(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getAppMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(appService).GetApp(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func (s *Server) serverOptions() ([]grpc.ServerOption, error) {
	kaParams := keepalive.ServerParameters{
		Time:    30 * time.Second,
		Timeout: 20 * time.Second,
	}
	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(s.opts.MaxMsgBytes),
		grpc.MaxSendMsgSize(s.opts.MaxMsgBytes),
		grpc.KeepaliveParams(kaParams),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	if s.opts.TLS.CertFile != "" && s.opts.TLS.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.opts.TLS.CertFile, s.opts.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load tls keypair: %w", err)
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(&tls.Config{Certificates: []tls.Certificate{cert}})))
	}
	return opts, nil
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(requestIDKey); len(values) > 0 {
		return values[0]
	}
	return ""
}
