package docrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "marketsales.documents.DocumentService"

const (
	DocumentService_Ping_FullMethodName  = "/" + ServiceName + "/Ping"
	DocumentService_Put_FullMethodName   = "/" + ServiceName + "/Put"
	DocumentService_Query_FullMethodName = "/" + ServiceName + "/Query"
)

// DocumentServiceClient is the client API of the document service.
type DocumentServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error)
	Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
}

type documentServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDocumentServiceClient binds the service to a connection. Calls are
// sent with the CBOR content-subtype.
func NewDocumentServiceClient(cc grpc.ClientConnInterface) DocumentServiceClient {
	return &documentServiceClient{cc: cc}
}

func (c *documentServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *documentServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.invoke(ctx, DocumentService_Ping_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *documentServiceClient) Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error) {
	out := new(PutResponse)
	if err := c.invoke(ctx, DocumentService_Put_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *documentServiceClient) Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	out := new(QueryResponse)
	if err := c.invoke(ctx, DocumentService_Query_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// DocumentServiceServer is the server API of the document service.
type DocumentServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Put(context.Context, *PutRequest) (*PutResponse, error)
	Query(context.Context, *QueryRequest) (*QueryResponse, error)
}

// UnimplementedDocumentServiceServer can be embedded to get Unimplemented
// errors for methods a server does not provide.
type UnimplementedDocumentServiceServer struct{}

func (UnimplementedDocumentServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedDocumentServiceServer) Put(context.Context, *PutRequest) (*PutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Put not implemented")
}

func (UnimplementedDocumentServiceServer) Query(context.Context, *QueryRequest) (*QueryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Query not implemented")
}

func RegisterDocumentServiceServer(s grpc.ServiceRegistrar, srv DocumentServiceServer) {
	s.RegisterService(&DocumentService_ServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(DocumentServiceServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DocumentServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DocumentServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DocumentService_ServiceDesc describes the service for grpc.Server.
var DocumentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocumentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler: unaryHandler(DocumentService_Ping_FullMethodName, func(s DocumentServiceServer, ctx context.Context, in *PingRequest) (any, error) {
				return s.Ping(ctx, in)
			}),
		},
		{
			MethodName: "Put",
			Handler: unaryHandler(DocumentService_Put_FullMethodName, func(s DocumentServiceServer, ctx context.Context, in *PutRequest) (any, error) {
				return s.Put(ctx, in)
			}),
		},
		{
			MethodName: "Query",
			Handler: unaryHandler(DocumentService_Query_FullMethodName, func(s DocumentServiceServer, ctx context.Context, in *QueryRequest) (any, error) {
				return s.Query(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docrpc",
}
