package flights_service_api

import (
	"context"

	"github.com/Domenick1991/triprex/internal/api/rpc"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/service/flights"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements FlightsServiceServer. The request has the same fields
// as the REST search body; the response is {"offers": [...]}.
type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

func (s *Server) SearchFlights(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var q domain.FlightQuery
	if err := rpc.FromStruct(req, &q); err != nil {
		return nil, err
	}

	offers, err := s.flights.Search(ctx, q)
	if err != nil {
		return nil, rpc.Status(err)
	}
	for i := range offers {
		offers[i].Raw = nil
	}
	return rpc.ToStruct(map[string]any{"offers": offers})
}

var _ FlightsServiceServer = (*Server)(nil)
