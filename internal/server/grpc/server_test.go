package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	pb "github.com/dmitrijs2005/mediagate/internal/proto"
	"github.com/dmitrijs2005/mediagate/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeDispatcher struct {
	caller, line string
	reply        string
	err          error
}

func (f *fakeDispatcher) Handle(_ context.Context, caller, line string) (string, error) {
	f.caller, f.line = caller, line
	return f.reply, f.err
}

func dialBufconn(t *testing.T, s *GRPCServer) pb.CommandServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := s.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewCommandServiceClient(conn)
}

func withCaller(t *testing.T, caller string) context.Context {
	t.Helper()
	tok, err := auth.GenerateToken(caller, []byte("secret"), time.Minute)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)
}

func TestExecute_EndToEnd(t *testing.T) {
	d := &fakeDispatcher{reply: "pong"}
	s, err := NewGRPCServer("", logging.NopLogger{}, d, "secret")
	require.NoError(t, err)
	client := dialBufconn(t, s)

	resp, err := client.Execute(withCaller(t, "OWNER"), wrapperspb.String("/stats"))
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.GetValue())
	assert.Equal(t, "OWNER", d.caller)
	assert.Equal(t, "/stats", d.line)

	_, err = client.Execute(context.Background(), wrapperspb.String("/stats"))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ping, err := client.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "OK", ping.GetValue())
}

func TestExecute_DispatcherFailureIsInternal(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("db gone")}
	s, err := NewGRPCServer("", logging.NopLogger{}, d, "secret")
	require.NoError(t, err)
	client := dialBufconn(t, s)

	_, err = client.Execute(withCaller(t, "u1"), wrapperspb.String("mint-token"))
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, status.Convert(err).Message(), "db gone")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:0", logging.NopLogger{}, &fakeDispatcher{}, "secret")
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:99999", logging.NopLogger{}, &fakeDispatcher{}, "secret")
	if err != nil {
		t.Fatalf("NewGRPCServer error (constructor should not fail here): %v", err)
	}

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}
