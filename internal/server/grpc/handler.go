package grpc

import (
	"context"
	"errors"
	"maps"

	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/docrpc"
	"github.com/dmitrijs2005/marketsales/internal/documents"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var knownCollections = map[string]struct{}{
	common.CollectionEvents:  {},
	common.CollectionTickets: {},
	common.CollectionLines:   {},
}

func (s *GRPCServer) Ping(ctx context.Context, req *docrpc.PingRequest) (*docrpc.PingResponse, error) {
	return &docrpc.PingResponse{Status: "OK"}, nil
}

// Put stores a document owned by the caller.
func (s *GRPCServer) Put(ctx context.Context, req *docrpc.PutRequest) (*docrpc.PutResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	if _, ok := knownCollections[req.Collection]; !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown collection %q", req.Collection)
	}
	if req.Document.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "document id is required")
	}
	if owner := req.Document.String(documents.FieldUserID, ""); owner != userID {
		return nil, status.Error(codes.PermissionDenied, "document belongs to another user")
	}

	if err := s.docs.Put(ctx, req.Collection, req.Document); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &docrpc.PutResponse{}, nil
}

// Query returns the caller's documents matching the query; the userId
// filter is always set to the caller.
func (s *GRPCServer) Query(ctx context.Context, req *docrpc.QueryRequest) (*docrpc.QueryResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	if _, ok := knownCollections[req.Query.Collection]; !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown collection %q", req.Query.Collection)
	}

	q := req.Query
	q.Equals = maps.Clone(q.Equals)
	if q.Equals == nil {
		q.Equals = map[string]any{}
	}
	q.Equals[documents.FieldUserID] = userID

	docs, err := s.docs.Query(ctx, q)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &docrpc.QueryResponse{Documents: docs}, nil
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrOwnershipConflict):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrInvalidRecord):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error(ctx, "document store failure", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
