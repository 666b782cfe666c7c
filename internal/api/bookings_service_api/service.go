package bookings_service_api

import (
	"context"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "triprex.v1.BookingsService"

	getBookingMethod    = "/" + ServiceName + "/GetBooking"
	cancelBookingMethod = "/" + ServiceName + "/CancelBooking"
	getReceiptMethod    = "/" + ServiceName + "/GetReceipt"
)

// BookingsServiceServer is the server API for triprex.v1.BookingsService.
// Requests carry the booking id; bookings travel as JSON-shaped Structs.
type BookingsServiceServer interface {
	GetBooking(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CancelBooking(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetReceipt(context.Context, *wrapperspb.StringValue) (*httpbody.HttpBody, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBooking", Handler: getBookingHandler},
		{MethodName: "CancelBooking", Handler: cancelBookingHandler},
		{MethodName: "GetReceipt", Handler: getReceiptHandler},
	},
	Metadata: "triprex/v1/bookings.proto",
}

func RegisterBookingsServiceServer(s grpc.ServiceRegistrar, srv BookingsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getBookingHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingsServiceServer).GetBooking(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getBookingMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BookingsServiceServer).GetBooking(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func cancelBookingHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingsServiceServer).CancelBooking(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: cancelBookingMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BookingsServiceServer).CancelBooking(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getReceiptHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingsServiceServer).GetReceipt(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getReceiptMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BookingsServiceServer).GetReceipt(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type BookingsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingsServiceClient(cc grpc.ClientConnInterface) *BookingsServiceClient {
	return &BookingsServiceClient{cc: cc}
}

func (c *BookingsServiceClient) GetBooking(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getBookingMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingsServiceClient) CancelBooking(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, cancelBookingMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingsServiceClient) GetReceipt(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*httpbody.HttpBody, error) {
	out := new(httpbody.HttpBody)
	if err := c.cc.Invoke(ctx, getReceiptMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
