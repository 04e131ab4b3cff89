package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	pb "github.com/dmitrijs2005/mediagate/internal/proto"
	"github.com/dmitrijs2005/mediagate/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// generateToken is a test seam for auth.GenerateToken.
var generateToken = auth.GenerateToken

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.CommandServiceClient

	callerID  string
	secretKey []byte
	validity  time.Duration
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if method == pb.CommandService_Execute_FullMethodName {
		token, err := generateToken(s.callerID, s.secretKey, s.validity)
		if err != nil {
			return fmt.Errorf("sign caller token: %w", err)
		}
		ctx = withAccessToken(ctx, token)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewCommandClient(endpointURL, callerID string, secretKey []byte, validity time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, callerID: callerID, secretKey: secretKey, validity: validity}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(extra ...grpc.DialOption) error {

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewCommandServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// CallerID is the identity the client acts as.
func (s *GRPCClient) CallerID() string {
	return s.callerID
}

// Execute sends one command line and returns the reply text.
func (s *GRPCClient) Execute(ctx context.Context, line string) (string, error) {
	resp, err := s.client.Execute(ctx, wrapperspb.String(line))
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetValue() != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
