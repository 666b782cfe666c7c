// Package scraper drives a headless Chrome through chromedp to read hotel
// listings and hotel pages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/metrics"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultCookieConsent = "#onetrust-accept-btn-handler"
	cookieClickWait      = 2 * time.Second

	kindSearch  = "search"
	kindDetails = "details"
)

var cardSelectors = []string{
	`[data-testid="property-card"]`,
	`.sr_property_block`,
	`.sr-item`,
}

type Scraper struct {
	cfg         config.ScraperConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// New builds the browser allocator once. Every call opens its own browser
// context on top of it.
func New(cfg config.ScraperConfig, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.CookieConsent == "" {
		cfg.CookieConsent = defaultCookieConsent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.SelectorWait == 0 {
		cfg.SelectorWait = 10 * time.Second
	}

	s := &Scraper{cfg: cfg, logger: logger}
	if cfg.RemoteURL != "" {
		s.allocCtx, s.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return s
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox, chromedp.Flag("disable-setuid-sandbox", true))
	}
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return s
}

func (s *Scraper) Close() error {
	if s.allocCancel != nil {
		s.allocCancel()
	}
	return nil
}

func (s *Scraper) browser(ctx context.Context) (context.Context, context.CancelFunc) {
	browserCtx, cancelBrowser := chromedp.NewContext(s.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			s.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	// The browser context hangs off the allocator, so the caller's
	// cancellation is forwarded by hand.
	runCtx, cancelRun := context.WithTimeout(browserCtx, s.cfg.Timeout)
	stop := context.AfterFunc(ctx, cancelRun)
	return runCtx, func() {
		stop()
		cancelRun()
		cancelBrowser()
	}
}

func (s *Scraper) setup(viewport bool) chromedp.Tasks {
	tasks := chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language":           s.cfg.AcceptLanguage,
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Upgrade-Insecure-Requests": "1",
		}),
		emulation.SetUserAgentOverride(s.cfg.UserAgent).WithAcceptLanguage(s.cfg.AcceptLanguage),
	}
	if viewport {
		tasks = append(tasks, chromedp.EmulateViewport(1920, 1080))
	}
	return tasks
}

// SearchHotels scrapes one result page. A page without property cards is an
// empty result, not an error.
func (s *Scraper) SearchHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	target, err := SearchURL(s.cfg.SearchBaseURL, q)
	if err != nil {
		return nil, err
	}

	bctx, cancel := s.browser(ctx)
	defer cancel()

	log := s.logger.With(zap.String("location", q.Location), zap.Int("offset", q.Offset))
	log.Info("scraping hotel search", zap.String("url", target))

	var current string
	if err := chromedp.Run(bctx, s.setup(false), chromedp.Navigate(target), chromedp.Location(&current)); err != nil {
		metrics.ScraperRuns.WithLabelValues(kindSearch, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("navigate %s: %w", target, err)
	}
	log.Debug("landed", zap.String("url", current))
	s.acceptCookies(bctx)

	if !s.waitForAny(bctx, cardSelectors) {
		log.Info("no hotel cards found")
		metrics.ScraperRuns.WithLabelValues(kindSearch, metrics.OutcomeEmpty).Inc()
		return []domain.Hotel{}, nil
	}

	var cards []rawCard
	if err := chromedp.Run(bctx, chromedp.Evaluate(extractCardsJS, &cards)); err != nil {
		metrics.ScraperRuns.WithLabelValues(kindSearch, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("extract hotel cards: %w", err)
	}

	hotels := make([]domain.Hotel, 0, len(cards))
	for i, c := range cards {
		hotels = append(hotels, normalizeCard(c, current, q.Offset+i))
	}
	outcome := metrics.OutcomeSuccess
	if len(hotels) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.ScraperRuns.WithLabelValues(kindSearch, outcome).Inc()
	log.Info("hotel search scraped", zap.Int("hotels", len(hotels)))
	return hotels, nil
}

func (s *Scraper) HotelDetails(ctx context.Context, pageURL string) (*domain.HotelDetails, error) {
	bctx, cancel := s.browser(ctx)
	defer cancel()

	s.logger.Info("scraping hotel details", zap.String("url", pageURL))

	var (
		raw   rawDetails
		title string
	)
	err := chromedp.Run(bctx,
		s.setup(true),
		chromedp.Navigate(pageURL),
		chromedp.Title(&title),
		chromedp.Evaluate(extractDetailsJS, &raw),
	)
	if err != nil {
		metrics.ScraperRuns.WithLabelValues(kindDetails, metrics.OutcomeError).Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("hotel details timed out after %v: %w", s.cfg.Timeout, err)
		}
		return nil, fmt.Errorf("scrape %s: %w", pageURL, err)
	}

	s.logger.Debug("hotel page loaded", zap.String("title", title))
	details := normalizeDetails(raw)
	details.URL = pageURL
	metrics.ScraperRuns.WithLabelValues(kindDetails, metrics.OutcomeSuccess).Inc()
	return &details, nil
}

func (s *Scraper) acceptCookies(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, cookieClickWait)
	defer cancel()
	if err := chromedp.Run(cctx, chromedp.Click(s.cfg.CookieConsent, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		s.logger.Debug("cookie banner not dismissed", zap.Error(err))
	}
}

// waitForAny tries each selector in turn, each bounded by the selector wait.
func (s *Scraper) waitForAny(ctx context.Context, selectors []string) bool {
	for _, sel := range selectors {
		wctx, cancel := context.WithTimeout(ctx, s.cfg.SelectorWait)
		err := chromedp.Run(wctx, chromedp.WaitReady(sel, chromedp.ByQuery))
		cancel()
		if err == nil {
			s.logger.Debug("found cards", zap.String("selector", sel))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}
