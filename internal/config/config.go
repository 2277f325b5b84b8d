package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	LogLevel  string `yaml:"log_level" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat string `yaml:"log_format" default:"console" validate:"oneof=console json"`

	Watchlist  []SectorList `yaml:"watchlist" validate:"required,min=1,dive"`
	Data       Data         `yaml:"data"`
	Run        Run          `yaml:"run"`
	Indicators Indicators   `yaml:"indicators"`
	Regime     Regime       `yaml:"regime"`
	Signal     Signal       `yaml:"signal"`
	Options    Options      `yaml:"options"`
	Schedule   Schedule     `yaml:"schedule"`

	// Secrets and endpoints come from the environment only
	Env Env `yaml:"-"`
}

// SectorList is one sector block of the watchlist
type SectorList struct {
	Sector  string   `yaml:"sector" validate:"required"`
	Tickers []string `yaml:"tickers" validate:"required,min=1,dive,required"`
}

// Data configures where price history comes from
type Data struct {
	Source         string        `yaml:"source" default:"twelvedata" validate:"oneof=twelvedata csv"`
	CSVDir         string        `yaml:"csv_dir" default:"data"`
	Interval       string        `yaml:"interval" default:"1day"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s" validate:"gt=0"`
	RequestsPerSec int           `yaml:"requests_per_sec" default:"5" validate:"gt=0"`
	MaxRetryTime   time.Duration `yaml:"max_retry_time" default:"30s" validate:"gte=0"`
	CacheTTL       time.Duration `yaml:"cache_ttl" default:"15m" validate:"gte=0"`
}

// Run configures the batch run
type Run struct {
	LookbackDays int     `yaml:"lookback_days" default:"400" validate:"gt=0"`
	Workers      int     `yaml:"workers" default:"8" validate:"gt=0"`
	MinCoverage  float64 `yaml:"min_coverage" default:"0.8" validate:"gt=0,lte=1"`
	// VolatilityIndex is an optional benchmark such as ^VIX; it never counts toward coverage
	VolatilityIndex string `yaml:"volatility_index"`
}

// Indicators holds lookback periods for the indicator engine
type Indicators struct {
	MinBars          int     `yaml:"min_bars" default:"0" validate:"gte=0"`
	SMAShort         int     `yaml:"sma_short" default:"20" validate:"gt=0,ltfield=SMAMedium"`
	SMAMedium        int     `yaml:"sma_medium" default:"50" validate:"gt=0,ltfield=SMALong"`
	SMALong          int     `yaml:"sma_long" default:"200" validate:"gt=0"`
	EMAFast          int     `yaml:"ema_fast" default:"9" validate:"gt=0,ltfield=EMASlow"`
	EMASlow          int     `yaml:"ema_slow" default:"21" validate:"gt=0"`
	RSIPeriod        int     `yaml:"rsi_period" default:"14" validate:"gt=0"`
	MACDFast         int     `yaml:"macd_fast" default:"12" validate:"gt=0,ltfield=MACDSlow"`
	MACDSlow         int     `yaml:"macd_slow" default:"26" validate:"gt=0"`
	MACDSignal       int     `yaml:"macd_signal" default:"9" validate:"gt=0"`
	BBPeriod         int     `yaml:"bb_period" default:"20" validate:"gt=1"`
	BBStdDev         float64 `yaml:"bb_std_dev" default:"2.0" validate:"gt=0"`
	ATRPeriod        int     `yaml:"atr_period" default:"14" validate:"gt=0"`
	StochK           int     `yaml:"stoch_k" default:"14" validate:"gt=0"`
	StochD           int     `yaml:"stoch_d" default:"3" validate:"gt=0"`
	VolumePeriod     int     `yaml:"volume_period" default:"20" validate:"gt=0"`
	MomentumPeriod   int     `yaml:"momentum_period" default:"20" validate:"gt=0"`
	VolatilityPeriod int     `yaml:"volatility_period" default:"20" validate:"gt=1"`
	SupportPeriod    int     `yaml:"support_period" default:"20" validate:"gt=0"`
}

// Regime holds the classifier thresholds
type Regime struct {
	Crash     CrashThresholds   `yaml:"crash"`
	Bearish   BearishThresholds `yaml:"bearish"`
	Bullish   BullishThresholds `yaml:"bullish"`
	Modifiers Modifiers         `yaml:"modifiers"`
}

// CrashThresholds trigger the Crash regime when any is met
type CrashThresholds struct {
	Volatility float64 `yaml:"volatility" default:"0.60" validate:"gt=0"`
	Drawdown   float64 `yaml:"drawdown" default:"0.15" validate:"gte=0,lte=1"`
	IndexLevel float64 `yaml:"index_level" default:"35" validate:"gte=0"`
}

// BearishThresholds trigger the Bearish regime when any is met
type BearishThresholds struct {
	MaxBreadth float64 `yaml:"max_breadth" default:"0.35" validate:"gte=0,lte=1"`
	Drawdown   float64 `yaml:"drawdown" default:"0.05" validate:"gte=0,lte=1"`
	IndexLevel float64 `yaml:"index_level" default:"25" validate:"gte=0"`
}

// BullishThresholds must all hold for the Bullish regime
type BullishThresholds struct {
	MinBreadth     float64 `yaml:"min_breadth" default:"0.60" validate:"gte=0,lte=1"`
	MinLongBreadth float64 `yaml:"min_long_breadth" default:"0.50" validate:"gte=0,lte=1"`
	MinMomentum    float64 `yaml:"min_momentum" default:"0"`
	MaxVolatility  float64 `yaml:"max_volatility" default:"0.45" validate:"gt=0"`
	MaxDispersion  float64 `yaml:"max_dispersion" default:"0.35" validate:"gte=0"`
}

// Modifiers scale the composite score per regime
type Modifiers struct {
	Bullish float64 `yaml:"bullish" default:"1.0" validate:"gte=0,lte=1"`
	Neutral float64 `yaml:"neutral" default:"0.7" validate:"gte=0,lte=1"`
	Bearish float64 `yaml:"bearish" default:"0.4" validate:"gte=0,lte=1"`
	Crash   float64 `yaml:"crash" default:"0.1" validate:"gte=0,lte=1"`
}

// Signal configures vote weights and direction thresholds
type Signal struct {
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`

	RSIOversold   float64 `yaml:"rsi_oversold" default:"30" validate:"gte=0,lte=100"`
	RSIOverbought float64 `yaml:"rsi_overbought" default:"70" validate:"gte=0,lte=100,gtfield=RSIOversold"`
	RSIBand       float64 `yaml:"rsi_band" default:"15" validate:"gt=0"`
	MomentumScale float64 `yaml:"momentum_scale" default:"0.05" validate:"gt=0"`
	VolumeSurge   float64 `yaml:"volume_surge" default:"1.5" validate:"gt=1"`
	Targets       Targets `yaml:"targets"`
}

// Targets are ATR multiples for the entry and exit ranges around the close
type Targets struct {
	BuyLowATR   float64 `yaml:"buy_low_atr" default:"1.5" validate:"gte=0,gtefield=BuyHighATR"`
	BuyHighATR  float64 `yaml:"buy_high_atr" default:"0.5" validate:"gte=0"`
	SellLowATR  float64 `yaml:"sell_low_atr" default:"0.5" validate:"gte=0"`
	SellHighATR float64 `yaml:"sell_high_atr" default:"2.0" validate:"gte=0,gtefield=SellLowATR"`
}

// Weights of each indicator vote; they must sum to 1
type Weights struct {
	Trend      float64 `yaml:"trend" default:"0.35" validate:"gte=0,lte=1"`
	Momentum   float64 `yaml:"momentum" default:"0.25" validate:"gte=0,lte=1"`
	MACD       float64 `yaml:"macd" default:"0.20" validate:"gte=0,lte=1"`
	RSI        float64 `yaml:"rsi" default:"0.08" validate:"gte=0,lte=1"`
	Bollinger  float64 `yaml:"bollinger" default:"0.07" validate:"gte=0,lte=1"`
	Volume     float64 `yaml:"volume" default:"0.03" validate:"gte=0,lte=1"`
	Stochastic float64 `yaml:"stochastic" default:"0.02" validate:"gte=0,lte=1"`
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Trend + w.Momentum + w.MACD + w.RSI + w.Bollinger + w.Volume + w.Stochastic
}

// Thresholds are score magnitudes in [0,1]; sell thresholds apply to the negative side
type Thresholds struct {
	Buy        float64 `yaml:"buy" default:"0.20" validate:"gt=0,lte=1"`
	StrongBuy  float64 `yaml:"strong_buy" default:"0.50" validate:"gt=0,lte=1,gtefield=Buy"`
	Sell       float64 `yaml:"sell" default:"0.20" validate:"gt=0,lte=1"`
	StrongSell float64 `yaml:"strong_sell" default:"0.50" validate:"gt=0,lte=1,gtefield=Sell"`
}

// Options configures the LEAPS recommender
type Options struct {
	Enabled       bool    `yaml:"enabled" default:"true"`
	MinConfidence float64 `yaml:"min_confidence" default:"0.30" validate:"gte=0,lte=1"`
	HorizonDays   int     `yaml:"horizon_days" default:"365" validate:"gte=365"`
	ExpiryCycle   string  `yaml:"expiry_cycle" default:"january" validate:"oneof=january monthly"`
	StrikePolicy  string  `yaml:"strike_policy" default:"delta" validate:"oneof=delta otm_percent"`
	TargetDelta   float64 `yaml:"target_delta" default:"0.70" validate:"gt=0,lt=1"`
	OTMPercent    float64 `yaml:"otm_percent" default:"0.10" validate:"gte=0,lte=1"`
	RiskFreeRate  float64 `yaml:"risk_free_rate" default:"0.04" validate:"gte=0,lte=1"`
	MinVolatility float64 `yaml:"min_volatility" default:"0.20" validate:"gt=0,lte=1"`
}

// Schedule configures the in-process schedule mode
type Schedule struct {
	Timezone string        `yaml:"timezone" default:"America/New_York" validate:"required"`
	Checks   []string      `yaml:"checks" default:"[\"09:35\",\"12:30\",\"15:00\"]" validate:"required,min=1,dive,datetime=15:04"`
	LockTTL  time.Duration `yaml:"lock_ttl" default:"30m" validate:"gt=0"`
}

// Env holds secrets and endpoints read from the environment
type Env struct {
	TwelveAPIKey     string `envconfig:"TWELVE_API_KEY"`
	TelegramToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	RedisAddr        string `envconfig:"REDIS_ADDR"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	RedisDB          int    `envconfig:"REDIS_DB"`
	PushgatewayURL   string `envconfig:"PUSHGATEWAY_URL"`
	LogLevelOverride string `envconfig:"LOG_LEVEL"`
}

// Tickers flattens the watchlist in configuration order
func (c *Config) Tickers() []model.Ticker {
	var out []model.Ticker
	for _, block := range c.Watchlist {
		sector, _ := model.ParseSector(block.Sector)
		for _, symbol := range block.Tickers {
			out = append(out, model.Ticker{Symbol: strings.ToUpper(strings.TrimSpace(symbol)), Sector: sector})
		}
	}
	return out
}

var validate = validator.New()

// Defaults returns a Config with every default applied and an empty watchlist
func Defaults() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load reads the YAML file at path, applies defaults and environment, and validates the result
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse builds a Config from YAML bytes and the process environment
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if cfg.Env.LogLevelOverride != "" {
		cfg.LogLevel = strings.ToLower(cfg.Env.LogLevelOverride)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks field ranges and the rules that span several fields
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	seen := make(map[string]string)
	for _, block := range c.Watchlist {
		if _, err := model.ParseSector(block.Sector); err != nil {
			return err
		}
		for _, symbol := range block.Tickers {
			s := strings.ToUpper(strings.TrimSpace(symbol))
			if prev, ok := seen[s]; ok {
				return fmt.Errorf("ticker %s listed in both %q and %q", s, prev, block.Sector)
			}
			seen[s] = block.Sector
		}
	}

	if sum := c.Signal.Weights.Sum(); math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("signal.weights must sum to 1, got %.4f", sum)
	}
	if c.Regime.Bearish.MaxBreadth >= c.Regime.Bullish.MinBreadth {
		return fmt.Errorf("regime.bearish.max_breadth (%.2f) must be below regime.bullish.min_breadth (%.2f)",
			c.Regime.Bearish.MaxBreadth, c.Regime.Bullish.MinBreadth)
	}
	if c.Regime.Bearish.Drawdown > c.Regime.Crash.Drawdown {
		return fmt.Errorf("regime.bearish.drawdown must not exceed regime.crash.drawdown")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if c.Data.Source == "twelvedata" && c.Env.TwelveAPIKey == "" {
		return fmt.Errorf("TWELVE_API_KEY is required when data.source is twelvedata")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a clock time like 09:35", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
