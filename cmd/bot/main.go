package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
	"github.com/arvikm/upstox_threshold_bot/internal/infrastructure/exchange"
	"github.com/arvikm/upstox_threshold_bot/internal/infrastructure/logger"
	"github.com/arvikm/upstox_threshold_bot/internal/infrastructure/storage"
	"github.com/arvikm/upstox_threshold_bot/internal/usecase"
	"github.com/arvikm/upstox_threshold_bot/internal/web"
)

type Config struct {
	Upstox struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"upstox"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"` // 0 disables the status server
	} `yaml:"server"`
	Storage struct {
		Path string `yaml:"path"` // empty disables the trade journal
	} `yaml:"storage"`
}

func loadConfig(path string) (*Config, error) {
	var cfg Config
	cfg.Logging.Level = "info"

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// credentials come from the environment, optionally seeded from a .env file.
type credentials struct {
	APIKey      string
	APISecret   string
	AccessToken string
	RedirectURI string
	BaseURL     string
}

func credentialsFromEnv() credentials {
	_ = godotenv.Load()
	return credentials{
		APIKey:      os.Getenv("UPSTOX_API_KEY"),
		APISecret:   os.Getenv("UPSTOX_API_SECRET"),
		AccessToken: os.Getenv("UPSTOX_ACCESS_TOKEN"),
		RedirectURI: os.Getenv("UPSTOX_REDIRECT_URI"),
		BaseURL:     os.Getenv("UPSTOX_BASE_URL"),
	}
}

func main() {
	var (
		configPath    = flag.String("config", "config/config.yaml", "Path to yaml config")
		instrumentKey = flag.String("instrument-key", "", "Instrument key like NSE_EQ|RELIANCE")
		exchangeSeg   = flag.String("exchange", "NSE_EQ", "Exchange segment, e.g. NSE_EQ")
		symbol        = flag.String("symbol", "", "Trading symbol, e.g. RELIANCE")
		buyBelow      = flag.Float64("buy-below", math.NaN(), "Buy when LTP <= value")
		sellAbove     = flag.Float64("sell-above", math.NaN(), "Sell when LTP >= value")
		quantity      = flag.Int("quantity", 1, "Order quantity")
		interval      = flag.Float64("interval", 2.0, "Polling interval seconds")
		cooldown      = flag.Float64("cooldown", 5.0, "Cooldown seconds between trades")
		maxTrades     = flag.Int("max-trades", 0, "Stop after N trades (0 = unlimited)")
		dryRun        = flag.Bool("dry-run", false, "Do not place live orders")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	key := *instrumentKey
	if key == "" {
		if *symbol == "" {
			fmt.Fprintln(os.Stderr, "Either --instrument-key or --symbol is required")
			os.Exit(2)
		}
		key = domain.BuildInstrumentKey(*exchangeSeg, *symbol)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	creds := credentialsFromEnv()
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = cfg.Upstox.BaseURL
	}

	if creds.AccessToken == "" && !*dryRun {
		log.Warn("UPSTOX_ACCESS_TOKEN not found; forcing dry-run. Pass --dry-run to silence.")
		*dryRun = true
	}

	gateway := exchange.NewGateway(exchange.GatewayConfig{
		AccessToken: creds.AccessToken,
		BaseURL:     baseURL,
		DryRun:      *dryRun,
		Legacy:      nil, // no v1 session binding is wired in this build
	})

	var trades domain.TradeRepository
	if cfg.Storage.Path != "" {
		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatal("Failed to init trade journal", zap.Error(err))
		}
		defer store.Close()
		trades = store
	}

	params := usecase.Params{
		InstrumentKey: key,
		Quantity:      *quantity,
		PollInterval:  time.Duration(*interval * float64(time.Second)),
		Cooldown:      time.Duration(*cooldown * float64(time.Second)),
		MaxTrades:     *maxTrades,
	}
	if !math.IsNaN(*buyBelow) {
		params.BuyBelow = buyBelow
	}
	if !math.IsNaN(*sellAbove) {
		params.SellAbove = sellAbove
	}

	engine, err := usecase.NewEngine(gateway, trades, log, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Port > 0 {
		server := web.NewServer(cfg.Server.Port, engine, trades, log)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warn("status server shutdown failed", zap.Error(err))
			}
		}()
	}

	engine.Run(ctx)
}
