// Command probe checks provider credentials and runs one-off searches
// against the configured flight providers and the hotel scraper.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/cache"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/kafka"
	"github.com/Domenick1991/triprex/internal/logger"
	"github.com/Domenick1991/triprex/internal/provider/amadeus"
	"github.com/Domenick1991/triprex/internal/provider/duffel"
	"github.com/Domenick1991/triprex/internal/provider/mock"
	"github.com/Domenick1991/triprex/internal/scraper"
	"github.com/Domenick1991/triprex/internal/service/flights"
	"github.com/Domenick1991/triprex/internal/service/hotels"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type options struct {
	Config  string `short:"c" long:"config" env:"CONFIG_PATH" default:"config.yaml" description:"path to config file"`
	Verbose bool   `short:"v" long:"verbose" description:"log provider requests"`
}

var opts options

type checkCommand struct{}

type searchCommand struct {
	From     string `long:"from" required:"true" description:"origin IATA code"`
	To       string `long:"to" required:"true" description:"destination IATA code"`
	Date     string `long:"date" description:"departure date, YYYY-MM-DD (default: 30 days from now)"`
	Adults   int    `long:"adults" default:"1"`
	Provider string `long:"provider" choice:"amadeus" choice:"duffel" choice:"mock" description:"query only this provider"`
}

type scrapeCommand struct {
	URL      string `long:"url" description:"scrape this hotel page instead of searching"`
	Location string `long:"location"`
	CheckIn  string `long:"check-in"`
	CheckOut string `long:"check-out"`
	Adults   int    `long:"adults" default:"2"`
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	must(parser.AddCommand("check", "Check provider and infrastructure connectivity", "", &checkCommand{}))
	must(parser.AddCommand("search", "Search flights", "", &searchCommand{}))
	must(parser.AddCommand("scrape", "Scrape hotel listings or a hotel page", "", &scrapeCommand{}))

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func must(_ *flags.Command, err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func setup() (*config.Config, *zap.Logger, context.Context, context.CancelFunc, error) {
	cfg, err := config.LoadConfig(opts.Config)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	level := "error"
	if opts.Verbose {
		level = "debug"
	}
	zlog, err := logger.NewForEnvironment("development", level, "console", "stderr")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return cfg, zlog, ctx, cancel, nil
}

func (c *checkCommand) Execute([]string) error {
	cfg, zlog, ctx, cancel, err := setup()
	if err != nil {
		return err
	}
	defer cancel()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.SearchCacheTTL)
	defer redisCache.Close()
	producer := kafka.NewProducer(cfg.Kafka.Brokers, zlog)
	defer producer.Close()

	checks := []struct {
		name  string
		check func(context.Context) error
	}{
		{"amadeus", amadeus.NewClient(cfg.Providers.Amadeus, cfg.Providers.Timeout, zlog).CheckConnection},
		{"redis", redisCache.Ping},
		{"kafka", producer.CheckConnection},
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	failed := 0
	for _, ch := range checks {
		checkCtx, done := context.WithTimeout(ctx, 10*time.Second)
		err := ch.check(checkCtx)
		done()
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s\tFAIL\t%v\n", ch.name, err)
			continue
		}
		fmt.Fprintf(w, "%s\tOK\t\n", ch.name)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

func (c *searchCommand) Execute([]string) error {
	cfg, zlog, ctx, cancel, err := setup()
	if err != nil {
		return err
	}
	defer cancel()

	order := cfg.Providers.Order
	if c.Provider != "" {
		order = []string{c.Provider}
	}
	providers := make([]flights.SearchProvider, 0, len(order))
	amadeusClient := amadeus.NewClient(cfg.Providers.Amadeus, cfg.Providers.Timeout, zlog)
	for _, name := range order {
		switch name {
		case amadeus.Name:
			providers = append(providers, amadeusClient)
		case duffel.Name:
			providers = append(providers, duffel.NewClient(cfg.Providers.Duffel, cfg.Providers.Timeout, zlog))
		case mock.Name:
			providers = append(providers, mock.NewGenerator())
		}
	}

	date := c.Date
	if date == "" {
		date = time.Now().AddDate(0, 0, 30).Format(time.DateOnly)
	}
	service := flights.NewFlightService(providers, amadeusClient, nil, zlog)
	offers, err := service.Search(ctx, domain.FlightQuery{
		Origin:        c.From,
		Destination:   c.To,
		DepartureDate: date,
		Adults:        c.Adults,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tFLIGHT\tAIRLINE\tDEPART\tARRIVE\tDURATION\tSTOPS\tPRICE")
	for _, o := range offers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Provider, o.FlightNumber, o.Airline, o.Departure, o.Arrival, o.Duration, o.Stops, o.Price)
	}
	return w.Flush()
}

func (c *scrapeCommand) Execute([]string) error {
	cfg, zlog, ctx, cancel, err := setup()
	if err != nil {
		return err
	}
	defer cancel()

	browser := scraper.New(cfg.Scraper, zlog)
	defer browser.Close()

	service := hotels.NewHotelService(browser, nil, cfg.Scraper.AllowedHosts, zlog)
	if c.URL != "" {
		details, err := service.Details(ctx, c.URL)
		if err != nil {
			return err
		}
		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		return out.Encode(details)
	}

	results, err := service.Search(ctx, domain.HotelQuery{
		Location: c.Location,
		CheckIn:  c.CheckIn,
		CheckOut: c.CheckOut,
		Guests:   domain.GuestConfig{Adults: c.Adults, Rooms: 1},
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRATING\tPRICE\tLINK")
	for _, h := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Name, h.Rating, h.Price, h.Link)
	}
	return w.Flush()
}
