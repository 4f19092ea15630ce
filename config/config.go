package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	VendorAlphaVantage = "alphavantage"
	VendorFMP          = "fmp"

	// a page of the telegram portfolio view must fit into one 4096 character message
	MaxStocksPerPage = 10
)

type Config struct {
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	HTTP               HTTP
	Proxy              Proxy
	Telegram           Telegram
	Redis              Redis
	API                API
	Cache              Cache
	Jobs               Jobs
	GoogleDrive        GoogleDrive
	SessionExpiration  time.Duration `env:"SESSION_EXPIRATION" envDefault:"24h"`
	SearchResultsLimit int           `env:"SEARCH_RESULTS_LIMIT" envDefault:"10"`
	StocksPerPage      int           `env:"STOCKS_PER_PAGE" envDefault:"10"`
}

type HTTP struct {
	Listen          string        `env:"HTTP_LISTEN" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Proxy is the address the UI uses to reach the quote proxy.
type Proxy struct {
	Url string `env:"PROXY_URL" envDefault:"http://localhost:8080"`
}

type Telegram struct {
	Token            string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout       time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	FileLimitInBytes int           `env:"TELEGRAM_FILE_LIMIT_IN_BYTES" envDefault:"52428800"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug        bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout      time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	SearchVendor string        `env:"SEARCH_VENDOR" envDefault:"fmp"`
	QuoteVendor  string        `env:"QUOTE_VENDOR" envDefault:"alphavantage"`
	AlphaVantage AlphaVantage
	FMP          FMP
}

type AlphaVantage struct {
	Url    string `env:"ALPHA_VANTAGE_URL" envDefault:"https://www.alphavantage.co"`
	ApiKey string `env:"ALPHA_VANTAGE_API_KEY" envDefault:""`
}

type FMP struct {
	Url    string `env:"FMP_URL" envDefault:"https://financialmodelingprep.com"`
	ApiKey string `env:"FMP_API_KEY" envDefault:""`
}

type Cache struct {
	QuotesExpiration time.Duration `env:"CACHE_QUOTES_EXPIRATION" envDefault:"5m"`
	SearchExpiration time.Duration `env:"CACHE_SEARCH_EXPIRATION" envDefault:"24h"`
}

type Jobs struct {
	// zero disables the job
	RefreshQuotesInterval time.Duration `env:"REFRESH_QUOTES_JOB_INTERVAL" envDefault:"0s"`
}

type GoogleDrive struct {
	// empty disables uploads of exports that exceed the telegram file limit
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"24h"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

// Parse reads the config from the environment without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	for _, vendor := range []string{c.API.SearchVendor, c.API.QuoteVendor} {
		switch vendor {
		case VendorAlphaVantage:
			if c.API.AlphaVantage.ApiKey == "" {
				return fmt.Errorf("ALPHA_VANTAGE_API_KEY is required when %s vendor is selected", vendor)
			}
		case VendorFMP:
			if c.API.FMP.ApiKey == "" {
				return fmt.Errorf("FMP_API_KEY is required when %s vendor is selected", vendor)
			}
		default:
			return fmt.Errorf("unknown vendor %q, expected %s or %s", vendor, VendorAlphaVantage, VendorFMP)
		}
	}

	if c.SearchResultsLimit <= 0 {
		return fmt.Errorf("SEARCH_RESULTS_LIMIT must be positive, got %d", c.SearchResultsLimit)
	}

	if c.StocksPerPage <= 0 || c.StocksPerPage > MaxStocksPerPage {
		return fmt.Errorf("STOCKS_PER_PAGE must be between 1 and %d, got %d", MaxStocksPerPage, c.StocksPerPage)
	}

	return nil
}
