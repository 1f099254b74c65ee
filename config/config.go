package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"golang-papertrade/internal/dto"
)

type Config struct {
	Log          Logger       `mapstructure:"logger"`
	API          API          `mapstructure:"api"`
	Cache        Cache        `mapstructure:"cache"`
	YahooFinance YahooFinance `mapstructure:"yahoo_finance"`
	Backtest     Backtest     `mapstructure:"backtest"`
	MonteCarlo   MonteCarlo   `mapstructure:"montecarlo"`
	Strategies   Strategies   `mapstructure:"strategies"`
	Sizing       Sizing       `mapstructure:"sizing"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type API struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Backtest holds the defaults for historical backtests.
type Backtest struct {
	Window         int      `mapstructure:"window"`
	Period         string   `mapstructure:"period"`
	Interval       string   `mapstructure:"interval"`
	InitialCapital float64  `mapstructure:"initial_capital"`
	StopLossPct    *float64 `mapstructure:"stop_loss_pct"`
	MaxConcurrency int      `mapstructure:"max_concurrency"`
}

// MonteCarlo holds the defaults and bounds for risk analysis runs.
type MonteCarlo struct {
	HistoryPeriod      string  `mapstructure:"history_period"`
	DefaultSimulations int     `mapstructure:"default_simulations"`
	MaxSimulations     int     `mapstructure:"max_simulations"`
	DefaultHorizon     int     `mapstructure:"default_horizon"`
	MaxHorizon         int     `mapstructure:"max_horizon"`
	InitialCapital     float64 `mapstructure:"initial_capital"`
	Workers            int     `mapstructure:"workers"`
}

// Sizing holds the risk budget used to size a single new position.
// Percentages are expressed in percent (0.75 means 0.75%).
type Sizing struct {
	CapitalTotal   float64               `mapstructure:"capital_total"`
	MaxRiskPct     float64               `mapstructure:"max_risk_pct"`
	MaxPositionPct float64               `mapstructure:"max_position_pct"`
	FarStopPct     float64               `mapstructure:"far_stop_pct"`
	ATRPeriod      int                   `mapstructure:"atr_period"`
	ATRMultiplier  float64               `mapstructure:"atr_multiplier"`
	BaseCurrency   string                `mapstructure:"base_currency"`
	HistoryPeriod  string                `mapstructure:"history_period"`
	DefaultBroker  string                `mapstructure:"default_broker"`
	Brokers        map[string]Commission `mapstructure:"brokers"`
}

// Commission is the fee schedule of a broker. Max of zero means uncapped.
type Commission struct {
	Fixed float64 `mapstructure:"fixed"`
	Pct   float64 `mapstructure:"pct"`
	Min   float64 `mapstructure:"min"`
	Max   float64 `mapstructure:"max"`
}

type Strategies struct {
	StopLoss    StopLoss    `mapstructure:"stop_loss"`
	MACrossover MACrossover `mapstructure:"ma_crossover"`
	RSI         RSI         `mapstructure:"rsi"`
	Bollinger   Bollinger   `mapstructure:"bollinger"`
	SafeHaven   SafeHaven   `mapstructure:"safe_haven"`
}

type StopLoss struct {
	StopLossPct   float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct float64 `mapstructure:"take_profit_pct"`
}

type MACrossover struct {
	FastPeriod int `mapstructure:"fast_period"`
	SlowPeriod int `mapstructure:"slow_period"`
}

type RSI struct {
	Period     int     `mapstructure:"period"`
	Oversold   float64 `mapstructure:"oversold"`
	Overbought float64 `mapstructure:"overbought"`
}

type Bollinger struct {
	Period int     `mapstructure:"period"`
	StdDev float64 `mapstructure:"std_dev"`
}

type SafeHaven struct {
	DrawdownPct float64  `mapstructure:"drawdown_pct"`
	SafeTickers []string `mapstructure:"safe_tickers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.request_timeout", "2m")
	v.SetDefault("api.rate_limit", 2)
	v.SetDefault("api.rate_burst", 5)

	v.SetDefault("cache.default_expiration", "15m")
	v.SetDefault("cache.cleanup_interval", "30m")

	v.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("yahoo_finance.timeout", "15s")
	v.SetDefault("yahoo_finance.max_request_per_minute", 60)

	v.SetDefault("backtest.window", 60)
	v.SetDefault("backtest.period", "1y")
	v.SetDefault("backtest.interval", "1d")
	v.SetDefault("backtest.initial_capital", 10000)
	v.SetDefault("backtest.max_concurrency", 4)

	v.SetDefault("montecarlo.history_period", "2y")
	v.SetDefault("montecarlo.default_simulations", 100)
	v.SetDefault("montecarlo.max_simulations", 500)
	v.SetDefault("montecarlo.default_horizon", 90)
	v.SetDefault("montecarlo.max_horizon", 365)
	v.SetDefault("montecarlo.initial_capital", 10000)
	v.SetDefault("montecarlo.workers", 4)

	v.SetDefault("strategies.stop_loss.stop_loss_pct", 8)
	v.SetDefault("strategies.stop_loss.take_profit_pct", 15)
	v.SetDefault("strategies.ma_crossover.fast_period", 20)
	v.SetDefault("strategies.ma_crossover.slow_period", 50)
	v.SetDefault("strategies.rsi.period", 14)
	v.SetDefault("strategies.rsi.oversold", 30)
	v.SetDefault("strategies.rsi.overbought", 70)
	v.SetDefault("strategies.bollinger.period", 20)
	v.SetDefault("strategies.bollinger.std_dev", 2)
	v.SetDefault("strategies.safe_haven.drawdown_pct", 8)
	v.SetDefault("strategies.safe_haven.safe_tickers", []string{"GLD", "BND", "TLT", "SHY", "VGSH"})

	v.SetDefault("sizing.capital_total", 20000)
	v.SetDefault("sizing.max_risk_pct", 0.75)
	v.SetDefault("sizing.max_position_pct", 20)
	v.SetDefault("sizing.far_stop_pct", 15)
	v.SetDefault("sizing.atr_period", 14)
	v.SetDefault("sizing.atr_multiplier", 2)
	v.SetDefault("sizing.base_currency", "EUR")
	v.SetDefault("sizing.history_period", "3mo")
	v.SetDefault("sizing.default_broker", "paper")
	v.SetDefault("sizing.brokers", map[string]any{
		"degiro":     map[string]any{"fixed": 2.0},
		"myinvestor": map[string]any{"pct": 0.12, "min": 3.0, "max": 25.0},
		"paper":      map[string]any{"fixed": 2.0},
	})
}

// Default returns the configuration built purely from defaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("invalid default configuration: %v", err))
	}
	return &cfg
}

func Load() (*Config, error) {
	// A missing .env file is fine, env vars may come from the environment.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects bounds that would make every simulation fail.
func (c *Config) Validate() error {
	if c.Backtest.Window < 1 {
		return fmt.Errorf("backtest.window must be positive, got %d", c.Backtest.Window)
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive, got %v", c.Backtest.InitialCapital)
	}
	if c.Backtest.StopLossPct != nil && (*c.Backtest.StopLossPct <= 0 || *c.Backtest.StopLossPct >= 100) {
		return fmt.Errorf("backtest.stop_loss_pct must be in (0, 100), got %v", *c.Backtest.StopLossPct)
	}
	if c.MonteCarlo.MaxSimulations < 1 || c.MonteCarlo.DefaultSimulations < 1 || c.MonteCarlo.DefaultSimulations > c.MonteCarlo.MaxSimulations {
		return fmt.Errorf("montecarlo simulations out of bounds: default %d, max %d", c.MonteCarlo.DefaultSimulations, c.MonteCarlo.MaxSimulations)
	}
	if c.MonteCarlo.MaxHorizon < 1 || c.MonteCarlo.DefaultHorizon < 1 || c.MonteCarlo.DefaultHorizon > c.MonteCarlo.MaxHorizon {
		return fmt.Errorf("montecarlo horizon out of bounds: default %d, max %d", c.MonteCarlo.DefaultHorizon, c.MonteCarlo.MaxHorizon)
	}
	if c.MonteCarlo.MaxSimulations > dto.MonteCarloMaxSimulations {
		return fmt.Errorf("montecarlo.max_simulations must not exceed %d, got %d", dto.MonteCarloMaxSimulations, c.MonteCarlo.MaxSimulations)
	}
	if c.MonteCarlo.MaxHorizon > dto.MonteCarloMaxHorizon {
		return fmt.Errorf("montecarlo.max_horizon must not exceed %d, got %d", dto.MonteCarloMaxHorizon, c.MonteCarlo.MaxHorizon)
	}
	if c.MonteCarlo.InitialCapital <= 0 {
		return fmt.Errorf("montecarlo.initial_capital must be positive, got %v", c.MonteCarlo.InitialCapital)
	}
	return c.Sizing.validate()
}

func (s *Sizing) validate() error {
	if s.CapitalTotal <= 0 {
		return fmt.Errorf("sizing.capital_total must be positive, got %v", s.CapitalTotal)
	}
	if s.MaxRiskPct <= 0 || s.MaxRiskPct >= 100 {
		return fmt.Errorf("sizing.max_risk_pct must be in (0, 100), got %v", s.MaxRiskPct)
	}
	if s.MaxPositionPct <= 0 || s.MaxPositionPct > 100 {
		return fmt.Errorf("sizing.max_position_pct must be in (0, 100], got %v", s.MaxPositionPct)
	}
	if s.ATRPeriod < 1 || s.ATRMultiplier <= 0 {
		return fmt.Errorf("sizing atr settings out of bounds: period %d, multiplier %v", s.ATRPeriod, s.ATRMultiplier)
	}
	if s.BaseCurrency == "" {
		return errors.New("sizing.base_currency is required")
	}
	for name, c := range s.Brokers {
		if c.Fixed < 0 || c.Pct < 0 || c.Min < 0 || c.Max < 0 || (c.Max > 0 && c.Max < c.Min) {
			return fmt.Errorf("sizing.brokers.%s has an invalid commission schedule", name)
		}
	}
	if _, ok := s.Brokers[strings.ToLower(s.DefaultBroker)]; !ok {
		return fmt.Errorf("sizing.default_broker %q is not a configured broker", s.DefaultBroker)
	}
	return nil
}
