package grpc

// Service descriptor, client and message plumbing for frauddetect.v1.FraudService,
// written in the shape protoc-gen-go-grpc emits. Messages travel with the
// JSON codec registered in codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "frauddetect.v1.FraudService"

	FraudService_DetectFraud_FullMethodName          = "/" + ServiceName + "/DetectFraud"
	FraudService_GetTransaction_FullMethodName       = "/" + ServiceName + "/GetTransaction"
	FraudService_ListNotifications_FullMethodName    = "/" + ServiceName + "/ListNotifications"
	FraudService_MarkNotificationRead_FullMethodName = "/" + ServiceName + "/MarkNotificationRead"
)

// FraudServiceServer is the server API for FraudService.
type FraudServiceServer interface {
	DetectFraud(context.Context, *DetectFraudRequest) (*DetectFraudResponse, error)
	GetTransaction(context.Context, *GetTransactionRequest) (*GetTransactionResponse, error)
	ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error)
	MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error)
	mustEmbedUnimplementedFraudServiceServer()
}

// UnimplementedFraudServiceServer provides forward-compatible default implementations.
type UnimplementedFraudServiceServer struct{}

func (UnimplementedFraudServiceServer) DetectFraud(context.Context, *DetectFraudRequest) (*DetectFraudResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DetectFraud not implemented")
}
func (UnimplementedFraudServiceServer) GetTransaction(context.Context, *GetTransactionRequest) (*GetTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetTransaction not implemented")
}
func (UnimplementedFraudServiceServer) ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListNotifications not implemented")
}
func (UnimplementedFraudServiceServer) MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method MarkNotificationRead not implemented")
}
func (UnimplementedFraudServiceServer) mustEmbedUnimplementedFraudServiceServer() {}

// RegisterFraudServiceServer registers the FraudServiceServer with the gRPC server.
func RegisterFraudServiceServer(s grpclib.ServiceRegistrar, srv FraudServiceServer) {
	s.RegisterService(&FraudService_ServiceDesc, srv)
}

// FraudService_ServiceDesc is the grpc.ServiceDesc for FraudService.
var FraudService_ServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FraudServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "DetectFraud", Handler: _FraudService_DetectFraud_Handler},
		{MethodName: "GetTransaction", Handler: _FraudService_GetTransaction_Handler},
		{MethodName: "ListNotifications", Handler: _FraudService_ListNotifications_Handler},
		{MethodName: "MarkNotificationRead", Handler: _FraudService_MarkNotificationRead_Handler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "frauddetect/v1/fraud.proto",
}

// unary decodes the request and runs the method, through the interceptor when one is set.
func unary[Req any, Resp any](
	fullMethod string,
	call func(FraudServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpclib.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FraudServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FraudServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	_FraudService_DetectFraud_Handler = unary(FraudService_DetectFraud_FullMethodName,
		FraudServiceServer.DetectFraud)
	_FraudService_GetTransaction_Handler = unary(FraudService_GetTransaction_FullMethodName,
		FraudServiceServer.GetTransaction)
	_FraudService_ListNotifications_Handler = unary(FraudService_ListNotifications_FullMethodName,
		FraudServiceServer.ListNotifications)
	_FraudService_MarkNotificationRead_Handler = unary(FraudService_MarkNotificationRead_FullMethodName,
		FraudServiceServer.MarkNotificationRead)
)

// FraudServiceClient is the client API for FraudService.
type FraudServiceClient interface {
	DetectFraud(ctx context.Context, in *DetectFraudRequest, opts ...grpclib.CallOption) (*DetectFraudResponse, error)
	GetTransaction(ctx context.Context, in *GetTransactionRequest, opts ...grpclib.CallOption) (*GetTransactionResponse, error)
	ListNotifications(ctx context.Context, in *ListNotificationsRequest, opts ...grpclib.CallOption) (*ListNotificationsResponse, error)
	MarkNotificationRead(ctx context.Context, in *MarkNotificationReadRequest, opts ...grpclib.CallOption) (*MarkNotificationReadResponse, error)
}

type fraudServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewFraudServiceClient returns a client that speaks the JSON codec.
func NewFraudServiceClient(cc grpclib.ClientConnInterface) FraudServiceClient {
	return &fraudServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpclib.ClientConnInterface, method string, in any, opts []grpclib.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fraudServiceClient) DetectFraud(ctx context.Context, in *DetectFraudRequest, opts ...grpclib.CallOption) (*DetectFraudResponse, error) {
	return invoke[DetectFraudResponse](ctx, c.cc, FraudService_DetectFraud_FullMethodName, in, opts)
}

func (c *fraudServiceClient) GetTransaction(ctx context.Context, in *GetTransactionRequest, opts ...grpclib.CallOption) (*GetTransactionResponse, error) {
	return invoke[GetTransactionResponse](ctx, c.cc, FraudService_GetTransaction_FullMethodName, in, opts)
}

func (c *fraudServiceClient) ListNotifications(ctx context.Context, in *ListNotificationsRequest, opts ...grpclib.CallOption) (*ListNotificationsResponse, error) {
	return invoke[ListNotificationsResponse](ctx, c.cc, FraudService_ListNotifications_FullMethodName, in, opts)
}

func (c *fraudServiceClient) MarkNotificationRead(ctx context.Context, in *MarkNotificationReadRequest, opts ...grpclib.CallOption) (*MarkNotificationReadResponse, error) {
	return invoke[MarkNotificationReadResponse](ctx, c.cc, FraudService_MarkNotificationRead_FullMethodName, in, opts)
}
