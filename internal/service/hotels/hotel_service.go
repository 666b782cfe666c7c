package hotels

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/triprex/internal/domain"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type HotelUseCase interface {
	Search(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error)
	Details(ctx context.Context, pageURL string) (*domain.HotelDetails, error)
}

type HotelScraper interface {
	SearchHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error)
	HotelDetails(ctx context.Context, pageURL string) (*domain.HotelDetails, error)
}

type HotelCache interface {
	GetHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error)
	SetHotels(ctx context.Context, q domain.HotelQuery, hotels []domain.Hotel) error
}

type HotelService struct {
	scraper      HotelScraper
	cache        HotelCache
	allowedHosts []string
	logger       *zap.Logger
}

func NewHotelService(scraper HotelScraper, cache HotelCache, allowedHosts []string, logger *zap.Logger) *HotelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	hosts := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return &HotelService{scraper: scraper, cache: cache, allowedHosts: hosts, logger: logger}
}

func (s *HotelService) Search(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	q, err := ValidateQuery(q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.GetHotels(ctx, q)
		if err != nil {
			s.logger.Warn("hotel cache read failed", zap.Error(err))
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	hotels, err := s.scraper.SearchHotels(ctx, q)
	if err != nil {
		s.logger.Error("hotel search scrape failed", zap.String("location", q.Location), zap.Error(err))
		return nil, fmt.Errorf("%w: hotel search: %w", domain.ErrProviderUnavailable, err)
	}
	if hotels == nil {
		hotels = []domain.Hotel{}
	}

	if s.cache != nil && len(hotels) > 0 {
		if err := s.cache.SetHotels(ctx, q, hotels); err != nil {
			s.logger.Warn("hotel cache write failed", zap.Error(err))
		}
	}
	return hotels, nil
}

func (s *HotelService) Details(ctx context.Context, pageURL string) (*domain.HotelDetails, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, domain.InvalidInput("url is required")
	}
	if err := s.checkURL(pageURL); err != nil {
		return nil, err
	}

	details, err := s.scraper.HotelDetails(ctx, pageURL)
	if err != nil {
		s.logger.Error("hotel details scrape failed", zap.String("url", pageURL), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrHotelDetailsUnavailable, err)
	}
	return details, nil
}

// checkURL accepts http(s) URLs on an allowed host or one of its subdomains.
func (s *HotelService) checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return fmt.Errorf("%w: %q", domain.ErrURLNotAllowed, raw)
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range s.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: host %s", domain.ErrURLNotAllowed, host)
}

// ValidateQuery trims the query and checks dates and guest counts. Rooms
// default to one.
func ValidateQuery(q domain.HotelQuery) (domain.HotelQuery, error) {
	q.Location = strings.TrimSpace(q.Location)
	q.CheckIn = strings.TrimSpace(q.CheckIn)
	q.CheckOut = strings.TrimSpace(q.CheckOut)

	if q.Location == "" || q.CheckIn == "" || q.CheckOut == "" {
		return q, domain.InvalidInput("location, checkIn and checkOut are required")
	}
	in, err := time.Parse(dateLayout, q.CheckIn)
	if err != nil {
		return q, domain.InvalidInput("checkIn must be YYYY-MM-DD")
	}
	out, err := time.Parse(dateLayout, q.CheckOut)
	if err != nil {
		return q, domain.InvalidInput("checkOut must be YYYY-MM-DD")
	}
	if !out.After(in) {
		return q, domain.InvalidInput("checkOut must be after checkIn")
	}
	if q.Guests.Adults < 1 {
		return q, domain.InvalidInput("at least one adult is required")
	}
	if q.Guests.Children < 0 || q.Offset < 0 {
		return q, domain.InvalidInput("children and offset cannot be negative")
	}
	if q.Guests.Rooms < 1 {
		q.Guests.Rooms = 1
	}
	return q, nil
}

var _ HotelUseCase = (*HotelService)(nil)
