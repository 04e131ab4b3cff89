package grpc

import (
	"context"

	"github.com/dmitrijs2005/mediagate/internal/common"
	pb "github.com/dmitrijs2005/mediagate/internal/proto"
	"github.com/dmitrijs2005/mediagate/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const callerIDKey ctxKey = "callerID"

// callerFromContext returns the caller id set by accessTokenInterceptor.
func callerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerIDKey).(string)
	return id, ok && id != ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if info.FullMethod == pb.CommandService_Execute_FullMethodName {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		callerID, err := auth.GetCallerIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, callerIDKey, callerID)

	}

	return handler(ctx, req)
}
