// Package grpc exposes the command dispatcher over gRPC. Callers prove their
// identity with a signed credential in the access_token metadata entry.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/mediagate/internal/logging"
	pb "github.com/dmitrijs2005/mediagate/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Dispatcher executes a command line on behalf of a caller.
type Dispatcher interface {
	Handle(ctx context.Context, caller, line string) (string, error)
}

type GRPCServer struct {
	address    string
	dispatcher Dispatcher
	logger     logging.Logger
	jwtSecret  []byte
}

func NewGRPCServer(a string, l logging.Logger, d Dispatcher, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		dispatcher: d,
		jwtSecret:  []byte(secretKey),
	}, nil
}

// Register attaches the command service to srv.
func (s *GRPCServer) Register(srv *grpc.Server) {
	pb.RegisterCommandServiceServer(srv, s)
}

func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	s.Register(srv)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) Execute(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing caller")
	}

	reply, err := s.dispatcher.Handle(ctx, caller, req.GetValue())
	if err != nil {
		s.logger.Error(ctx, "command failed", "caller", caller, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return wrapperspb.String(reply), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}
