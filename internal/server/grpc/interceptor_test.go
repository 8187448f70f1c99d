package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/docrpc"
	"github.com/dmitrijs2005/marketsales/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
}

func TestInterceptor_PingNeedsNoToken(t *testing.T) {
	s := newTestServer(newFakeRepo())
	info := &grpc.UnaryServerInfo{FullMethod: docrpc.DocumentService_Ping_FullMethodName}

	called := false
	_, err := s.accessTokenInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		called = true
		return "ok", nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(newFakeRepo())
	info := &grpc.UnaryServerInfo{FullMethod: docrpc.DocumentService_Put_FullMethodName}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(newFakeRepo())
	info := &grpc.UnaryServerInfo{FullMethod: docrpc.DocumentService_Query_FullMethodName}

	tok, err := auth.GenerateToken("u1", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	_, err = s.accessTokenInterceptor(withToken(tok), nil, info, func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called with a bad token")
		return nil, nil
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_ValidTokenSetsUser(t *testing.T) {
	s := newTestServer(newFakeRepo())
	info := &grpc.UnaryServerInfo{FullMethod: docrpc.DocumentService_Query_FullMethodName}

	tok, err := auth.GenerateToken("u1", []byte("secret"), time.Hour)
	require.NoError(t, err)

	var got string
	_, err = s.accessTokenInterceptor(withToken(tok), nil, info, func(ctx context.Context, req any) (any, error) {
		got, _ = userIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", got)
}
