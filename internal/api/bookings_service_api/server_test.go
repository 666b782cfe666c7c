package bookings_service_api

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/service/booking"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) BookFlight(ctx context.Context, in booking.BookFlightInput) (*domain.Booking, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) BookHotel(ctx context.Context, in booking.BookHotelInput) (*domain.Booking, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Get(ctx context.Context, id string) (*domain.BookingView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingView), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) FailStalePending(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) MarkPayment(ctx context.Context, ref string, st domain.PaymentStatus) (*domain.Booking, error) {
	args := m.Called(ctx, ref, st)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Receipt(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// startServer serves the bookings service over an in-memory listener and
// returns a client connection to it.
func startServer(t *testing.T, svc booking.BookingUseCase) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterBookingsServiceServer(srv, NewServer(svc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServer_GetBooking(t *testing.T) {
	svc := &MockBookingUseCase{}
	svc.On("Get", mock.Anything, "b-1").Return(&domain.BookingView{
		Booking: domain.Booking{ID: "b-1", Status: domain.BookingStatusConfirmed, Currency: "USD"},
	}, nil).Once()

	client := NewBookingsServiceClient(startServer(t, svc))
	resp, err := client.GetBooking(context.Background(), wrapperspb.String("b-1"))

	require.NoError(t, err)
	assert.Equal(t, "b-1", resp.Fields["id"].GetStringValue())
	assert.Equal(t, "confirmed", resp.Fields["status"].GetStringValue())
	svc.AssertExpectations(t)
}

func TestServer_GetBooking_notFound(t *testing.T) {
	svc := &MockBookingUseCase{}
	svc.On("Get", mock.Anything, "nope").Return(nil, domain.ErrBookingNotFound).Once()

	client := NewBookingsServiceClient(startServer(t, svc))
	_, err := client.GetBooking(context.Background(), wrapperspb.String("nope"))

	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_emptyID(t *testing.T) {
	srv := NewServer(&MockBookingUseCase{})

	_, err := srv.CancelBooking(context.Background(), wrapperspb.String(" "))

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func gateway(t *testing.T, svc booking.BookingUseCase) http.Handler {
	t.Helper()
	mux := runtime.NewServeMux()
	require.NoError(t, RegisterGateway(mux, startServer(t, svc)))
	return mux
}

func TestGateway_receipt(t *testing.T) {
	svc := &MockBookingUseCase{}
	svc.On("Receipt", mock.Anything, "b-1").Return("TripRex booking receipt\n", nil).Once()

	w := httptest.NewRecorder()
	gateway(t, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bookings/b-1/receipt", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	body, _ := io.ReadAll(w.Body)
	assert.Equal(t, "TripRex booking receipt\n", string(body))
	svc.AssertExpectations(t)
}

func TestGateway_cancel(t *testing.T) {
	svc := &MockBookingUseCase{}
	svc.On("Cancel", mock.Anything, "b-1").Return(&domain.Booking{ID: "b-1", Status: domain.BookingStatusCancelled}, nil).Once()
	svc.On("Cancel", mock.Anything, "b-2").Return(nil, domain.ErrBookingAlreadyCancelled).Once()
	h := gateway(t, svc)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/bookings/b-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cancelled"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/bookings/b-2", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestGateway_getNotFound(t *testing.T) {
	svc := &MockBookingUseCase{}
	svc.On("Get", mock.Anything, "nope").Return(nil, domain.ErrBookingNotFound).Once()

	w := httptest.NewRecorder()
	gateway(t, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bookings/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
