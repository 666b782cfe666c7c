package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Worker    WorkerConfig    `yaml:"worker"`
	Providers ProvidersConfig `yaml:"providers"`
	Stripe    StripeConfig    `yaml:"stripe"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	SMTP      SMTPConfig      `yaml:"smtp"`
}

type AppConfig struct {
	Env  string `yaml:"env"`
	Name string `yaml:"name"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type HTTPConfig struct {
	Address     string `yaml:"address"`
	SwaggerDir  string `yaml:"swagger_dir"`
	DebugRoutes bool   `yaml:"debug_routes"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver         string `yaml:"driver"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"ssl_mode"`
	SQLitePath     string `yaml:"sqlite_path"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// MigrateURL is the DSN in the form expected by the migrate pgx/v5 driver.
func (d DatabaseConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
	PublishRetries     int      `yaml:"publish_retries"`
}

type BookingConfig struct {
	PendingTTL         time.Duration `yaml:"pending_ttl"`
	SearchCacheTTL     time.Duration `yaml:"search_cache_ttl"`
	LockTTL            time.Duration `yaml:"lock_ttl"`
	IdempotencyTTL     time.Duration `yaml:"idempotency_ttl"`
	DefaultGuestEmail  string        `yaml:"default_guest_email"`
	DefaultContactTel  string        `yaml:"default_contact_phone"`
	BookingRemark      string        `yaml:"booking_remark"`
	DefaultCurrency    string        `yaml:"default_currency"`
	LiveDetailsTimeout time.Duration `yaml:"live_details_timeout"`
}

type WorkerConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type ProvidersConfig struct {
	Order   []string       `yaml:"order"`
	Timeout time.Duration  `yaml:"timeout"`
	Amadeus AmadeusConfig  `yaml:"amadeus"`
	Duffel  DuffelConfig   `yaml:"duffel"`
	Mock    MockFlightConf `yaml:"mock"`
}

type AmadeusConfig struct {
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	MaxResults   int    `yaml:"max_results"`
}

type DuffelConfig struct {
	BaseURL     string `yaml:"base_url"`
	AccessToken string `yaml:"access_token"`
	Version     string `yaml:"version"`
}

type MockFlightConf struct {
	Enabled bool `yaml:"enabled"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type ScraperConfig struct {
	RemoteURL      string        `yaml:"remote_url"`
	NoSandbox      bool          `yaml:"no_sandbox"`
	Timeout        time.Duration `yaml:"timeout"`
	SelectorWait   time.Duration `yaml:"selector_wait"`
	UserAgent      string        `yaml:"user_agent"`
	AllowedHosts   []string      `yaml:"allowed_hosts"`
	SearchBaseURL  string        `yaml:"search_base_url"`
	CookieConsent  string        `yaml:"cookie_consent_selector"`
	AcceptLanguage string        `yaml:"accept_language"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv lets secrets live outside the config file.
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"APP_ENV":               &c.App.Env,
		"AMADEUS_CLIENT_ID":     &c.Providers.Amadeus.ClientID,
		"AMADEUS_CLIENT_SECRET": &c.Providers.Amadeus.ClientSecret,
		"DUFFEL_ACCESS_TOKEN":   &c.Providers.Duffel.AccessToken,
		"STRIPE_SECRET_KEY":     &c.Stripe.SecretKey,
		"STRIPE_WEBHOOK_SECRET": &c.Stripe.WebhookSecret,
		"SMTP_PASSWORD":         &c.SMTP.Password,
		"DATABASE_PASSWORD":     &c.Database.Password,
		"CHROME_REMOTE_URL":     &c.Scraper.RemoteURL,
	}
	for env, target := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*target = v
		}
	}
}

// Validate fills defaults and rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}

	switch c.Database.Driver {
	case "":
		c.Database.Driver = DriverPostgres
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverSQLite && c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "triprex.db"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Booking.PendingTTL == 0 {
		c.Booking.PendingTTL = 30 * time.Minute
	}
	if c.Booking.SearchCacheTTL == 0 {
		c.Booking.SearchCacheTTL = 5 * time.Minute
	}
	if c.Booking.LockTTL == 0 {
		c.Booking.LockTTL = 30 * time.Second
	}
	if c.Booking.IdempotencyTTL == 0 {
		c.Booking.IdempotencyTTL = 24 * time.Hour
	}
	if c.Booking.DefaultGuestEmail == "" {
		c.Booking.DefaultGuestEmail = "guest@triprex.com"
	}
	if c.Booking.DefaultContactTel == "" {
		c.Booking.DefaultContactTel = "+10000000000"
	}
	if c.Booking.BookingRemark == "" {
		c.Booking.BookingRemark = "Booked via TripRex"
	}
	if c.Booking.DefaultCurrency == "" {
		c.Booking.DefaultCurrency = "USD"
	}
	if c.Booking.LiveDetailsTimeout == 0 {
		c.Booking.LiveDetailsTimeout = 5 * time.Second
	}
	if c.Kafka.PublishRetries <= 0 {
		c.Kafka.PublishRetries = 3
	}
	if c.Worker.SweepInterval == 0 {
		c.Worker.SweepInterval = time.Minute
	}

	if len(c.Providers.Order) == 0 {
		c.Providers.Order = []string{"amadeus", "duffel"}
	}
	for _, name := range c.Providers.Order {
		switch name {
		case "amadeus", "duffel", "mock":
		default:
			return fmt.Errorf("unknown flight provider %q", name)
		}
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 30 * time.Second
	}
	if c.Providers.Amadeus.BaseURL == "" {
		c.Providers.Amadeus.BaseURL = "https://test.api.amadeus.com"
	}
	if c.Providers.Amadeus.MaxResults == 0 {
		c.Providers.Amadeus.MaxResults = 10
	}
	if c.Providers.Duffel.BaseURL == "" {
		c.Providers.Duffel.BaseURL = "https://api.duffel.com"
	}
	if c.Providers.Duffel.Version == "" {
		c.Providers.Duffel.Version = "v2"
	}

	if c.Scraper.Timeout == 0 {
		c.Scraper.Timeout = 60 * time.Second
	}
	if c.Scraper.SelectorWait == 0 {
		c.Scraper.SelectorWait = 10 * time.Second
	}
	if len(c.Scraper.AllowedHosts) == 0 {
		c.Scraper.AllowedHosts = []string{"booking.com"}
	}
	if c.Scraper.SearchBaseURL == "" {
		c.Scraper.SearchBaseURL = "https://www.booking.com/searchresults.html"
	}
	if c.Scraper.AcceptLanguage == "" {
		c.Scraper.AcceptLanguage = "en-US,en;q=0.9"
	}

	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
