package bookings_service_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/triprex/internal/api/rpc"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RegisterGateway exposes the bookings service as REST routes on mux:
//
//	GET    /v1/bookings/{id}
//	DELETE /v1/bookings/{id}
//	GET    /v1/bookings/{id}/receipt
func RegisterGateway(mux *runtime.ServeMux, cc grpc.ClientConnInterface) error {
	client := NewBookingsServiceClient(cc)

	routes := []struct {
		method, pattern, rpcMethod string
		call                       func(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (proto.Message, error)
	}{
		{http.MethodGet, "/v1/bookings/{id}", getBookingMethod, func(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (proto.Message, error) {
			return client.GetBooking(ctx, id, opts...)
		}},
		{http.MethodDelete, "/v1/bookings/{id}", cancelBookingMethod, func(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (proto.Message, error) {
			return client.CancelBooking(ctx, id, opts...)
		}},
		{http.MethodGet, "/v1/bookings/{id}/receipt", getReceiptMethod, func(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (proto.Message, error) {
			return client.GetReceipt(ctx, id, opts...)
		}},
	}

	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			ctx, err := runtime.AnnotateContext(r.Context(), mux, r, rt.rpcMethod, runtime.WithHTTPPathPattern(rt.pattern))
			if err != nil {
				rpc.Forward(r.Context(), mux, w, r, nil, err)
				return
			}
			var md runtime.ServerMetadata
			resp, err := rt.call(ctx, wrapperspb.String(params["id"]), grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
			rpc.Forward(runtime.NewServerMetadataContext(ctx, md), mux, w, r, resp, err)
		}); err != nil {
			return fmt.Errorf("register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return nil
}
