package flights_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "triprex.v1.FlightsService"

	searchFlightsMethod = "/" + ServiceName + "/SearchFlights"
)

// FlightsServiceServer is the server API for triprex.v1.FlightsService.
type FlightsServiceServer interface {
	SearchFlights(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SearchFlights", Handler: searchFlightsHandler},
	},
	Metadata: "triprex/v1/flights.proto",
}

func RegisterFlightsServiceServer(s grpc.ServiceRegistrar, srv FlightsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func searchFlightsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).SearchFlights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: searchFlightsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FlightsServiceServer).SearchFlights(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type FlightsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFlightsServiceClient(cc grpc.ClientConnInterface) *FlightsServiceClient {
	return &FlightsServiceClient{cc: cc}
}

func (c *FlightsServiceClient) SearchFlights(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, searchFlightsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
