package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/metrics"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	Search(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error)
	ConfirmPrice(ctx context.Context, offerID string, offer json.RawMessage) (json.RawMessage, error)
}

type SearchProvider interface {
	Name() string
	SearchFlights(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error)
}

type PriceConfirmer interface {
	ConfirmPrice(ctx context.Context, offerID string, offer json.RawMessage) (json.RawMessage, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error)
	SetFlights(ctx context.Context, q domain.FlightQuery, offers []domain.FlightOffer) error
}

type FlightService struct {
	providers []SearchProvider
	pricer    PriceConfirmer
	cache     FlightCache
	logger    *zap.Logger
}

// NewFlightService tries providers in the given order. cache may be nil.
func NewFlightService(providers []SearchProvider, pricer PriceConfirmer, cache FlightCache, logger *zap.Logger) *FlightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightService{providers: providers, pricer: pricer, cache: cache, logger: logger}
}

func (s *FlightService) Search(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error) {
	q = q.Normalize()
	if q.Origin == "" || q.Destination == "" || q.DepartureDate == "" {
		return nil, domain.InvalidInput("origin, destination and date are required")
	}

	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx, q)
		if err != nil {
			s.logger.Warn("flight cache read failed", zap.Error(err))
		} else if len(cached) > 0 {
			s.logger.Debug("flight search served from cache", zap.String("origin", q.Origin), zap.String("destination", q.Destination))
			return cached, nil
		}
	}

	log := s.logger.With(zap.String("origin", q.Origin), zap.String("destination", q.Destination), zap.String("date", q.DepartureDate))
	for _, p := range s.providers {
		offers, err := p.SearchFlights(ctx, q)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		switch {
		case err != nil:
			log.Warn("flight provider failed, trying next", zap.String("provider", p.Name()), zap.Error(err))
		case len(offers) == 0:
			log.Info("flight provider returned no offers, trying next", zap.String("provider", p.Name()))
		default:
			log.Info("flight search succeeded", zap.String("provider", p.Name()), zap.Int("offers", len(offers)))
			if s.cache != nil {
				if err := s.cache.SetFlights(ctx, q, offers); err != nil {
					log.Warn("flight cache write failed", zap.Error(err))
				}
			}
			return offers, nil
		}
		metrics.FlightSearchFallbacks.WithLabelValues(p.Name()).Inc()
	}
	return nil, domain.ErrNoFlightsFound
}

// ConfirmPrice needs either an offer id or the full offer document.
func (s *FlightService) ConfirmPrice(ctx context.Context, offerID string, offer json.RawMessage) (json.RawMessage, error) {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" && isEmptyJSON(offer) {
		return nil, domain.InvalidInput("offerId is required")
	}
	if s.pricer == nil {
		return nil, fmt.Errorf("%w: no pricing provider", domain.ErrProviderUnavailable)
	}

	priced, err := s.pricer.ConfirmPrice(ctx, offerID, offer)
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: confirm price: %w", domain.ErrProviderUnavailable, err)
	}
	return priced, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == "{}"
}

var _ FlightUseCase = (*FlightService)(nil)
