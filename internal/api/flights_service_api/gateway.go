package flights_service_api

import (
	"net/http"

	"github.com/Domenick1991/triprex/internal/api/rpc"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const searchPattern = "/v1/flights:search"

// RegisterGateway exposes POST /v1/flights:search on mux.
func RegisterGateway(mux *runtime.ServeMux, cc grpc.ClientConnInterface) error {
	client := NewFlightsServiceClient(cc)

	return mux.HandlePath(http.MethodPost, searchPattern, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		ctx, err := runtime.AnnotateContext(r.Context(), mux, r, searchFlightsMethod, runtime.WithHTTPPathPattern(searchPattern))
		if err != nil {
			rpc.Forward(r.Context(), mux, w, r, nil, err)
			return
		}

		inbound, _ := runtime.MarshalerForRequest(mux, r)
		req := &structpb.Struct{}
		if err := inbound.NewDecoder(r.Body).Decode(req); err != nil {
			rpc.Forward(ctx, mux, w, r, nil, status.Errorf(codes.InvalidArgument, "decode body: %v", err))
			return
		}

		var md runtime.ServerMetadata
		resp, err := client.SearchFlights(ctx, req, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
		rpc.Forward(runtime.NewServerMetadataContext(ctx, md), mux, w, r, resp, err)
	})
}
