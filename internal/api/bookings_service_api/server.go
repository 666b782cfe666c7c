package bookings_service_api

import (
	"context"
	"strings"

	"github.com/Domenick1991/triprex/internal/api/rpc"
	"github.com/Domenick1991/triprex/internal/service/booking"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server implements BookingsServiceServer on top of the booking use case.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

func (s *Server) GetBooking(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := bookingID(req)
	if err != nil {
		return nil, err
	}
	view, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return rpc.ToStruct(view)
}

func (s *Server) CancelBooking(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := bookingID(req)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return rpc.ToStruct(cancelled)
}

func (s *Server) GetReceipt(ctx context.Context, req *wrapperspb.StringValue) (*httpbody.HttpBody, error) {
	id, err := bookingID(req)
	if err != nil {
		return nil, err
	}
	text, err := s.bookings.Receipt(ctx, id)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return &httpbody.HttpBody{
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(text),
	}, nil
}

func bookingID(req *wrapperspb.StringValue) (string, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "booking id is required")
	}
	return id, nil
}

var _ BookingsServiceServer = (*Server)(nil)
