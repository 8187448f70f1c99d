// Package grpc exposes the document store over gRPC with the CBOR codec.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/marketsales/internal/docrpc"
	"github.com/dmitrijs2005/marketsales/internal/logging"
	"github.com/dmitrijs2005/marketsales/internal/server/repositories/documents"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	docrpc.UnimplementedDocumentServiceServer
	address   string
	docs      documents.Repository
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(address string, l logging.Logger, docs documents.Repository, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		docs:      docs,
		jwtSecret: []byte(secretKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	docrpc.RegisterDocumentServiceServer(srv, s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
