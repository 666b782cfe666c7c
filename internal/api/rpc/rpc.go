// Package rpc holds the pieces shared by the gRPC services and their
// grpc-gateway routes.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Status converts a domain error into a gRPC status error.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var invalid *domain.ValidationError
	var failed *domain.BookingFailedError
	switch {
	case errors.As(err, &failed):
		return status.Errorf(codes.Internal, "booking %s failed: %v", failed.BookingID, failed.Err)
	case errors.As(err, &invalid):
		return status.Error(codes.InvalidArgument, invalid.Message)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrURLNotAllowed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrBookingAlreadyCancelled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrNoFlightsFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrBookingBusy), errors.Is(err, domain.ErrRequestInProgress):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrProviderUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// ToStruct converts any JSON-encodable value into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return out, nil
}

// FromStruct decodes a protobuf Struct into v through its JSON form.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return status.Error(codes.InvalidArgument, "empty request")
	}
	data, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

// Forward writes a gateway response, or the error in the gateway's format.
func Forward(ctx context.Context, mux *runtime.ServeMux, w http.ResponseWriter, r *http.Request, resp proto.Message, err error) {
	_, outbound := runtime.MarshalerForRequest(mux, r)
	if err != nil {
		runtime.HTTPError(ctx, mux, outbound, w, r, err)
		return
	}
	runtime.ForwardResponseMessage(ctx, mux, outbound, w, r, resp)
}
