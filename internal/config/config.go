package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"storebot/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig          `yaml:"app"`
	Telegram   TelegramConfig     `yaml:"telegram"`
	Database   DatabaseConfig     `yaml:"database"`
	Redis      RedisConfig        `yaml:"redis"`
	Backup     BackupConfig       `yaml:"backup"`
	Monitoring MonitoringConfig   `yaml:"monitoring"`
	Logging    LoggingConfig      `yaml:"logging"`
	API        APIConfig          `yaml:"api"`
	Admins     []int64            `yaml:"admins"`
	Blacklist  []int64            `yaml:"blacklist"`
	PromoCodes []models.PromoCode `yaml:"promo_codes"`
	Exports    ExportConfig       `yaml:"exports"`
	Google     GoogleConfig       `yaml:"google"`
	Bot        BotConfig          `yaml:"bot"`
}

type BotConfig struct {
	Currency          string `yaml:"currency"`
	PaginationSize    int    `yaml:"pagination_size"`
	TopProductsLimit  int    `yaml:"top_products_limit"`
	SessionTTL        int    `yaml:"session_ttl"`
	CartTTL           int    `yaml:"cart_ttl"`
	RateLimitMessages int    `yaml:"rate_limit_messages"`
	RateLimitWindow   int    `yaml:"rate_limit_window"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Port       int          `yaml:"port"`
	Reflection bool         `yaml:"reflection"`
	TLS        APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type GoogleConfig struct {
	CredentialsFile   string `yaml:"credentials_file"`
	OrdersSpreadsheet string `yaml:"orders_spreadsheet_id"`
	OrdersSheetName   string `yaml:"orders_sheet_name"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryDelaySeconds int    `yaml:"retry_delay_seconds"`
	MaxDelaySeconds   int    `yaml:"max_delay_seconds"`
}

// Enabled reports whether order sync to Google Sheets is configured.
func (g GoogleConfig) Enabled() bool {
	return g.CredentialsFile != "" && g.OrdersSpreadsheet != ""
}

func Load(configPath string) (*Config, error) {
	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if len(c.Admins) == 0 {
		return errors.New("at least one admin id is required")
	}

	return ValidatePromoCodes(c.PromoCodes)
}

// ValidateProducts checks a seed catalog before it is written to the database.
func ValidateProducts(products []models.Product) error {
	names := make(map[string]bool)
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		key := strings.ToLower(p.Name)
		if names[key] {
			return fmt.Errorf("duplicate product name found: %s", p.Name)
		}
		names[key] = true
	}
	return nil
}

func ValidatePromoCodes(codes []models.PromoCode) error {
	seen := make(map[string]bool)
	for _, pc := range codes {
		code := models.NormalizePromoCode(pc.Code)
		if code == "" {
			return errors.New("promo code must not be empty")
		}
		if pc.Discount < 0 || pc.Discount > 100 {
			return fmt.Errorf("promo code %s has discount %d outside 0..100", code, pc.Discount)
		}
		if seen[code] {
			return fmt.Errorf("duplicate promo code found: %s", code)
		}
		seen[code] = true
	}
	return nil
}

// IsAdmin reports whether id is on the admin allow-list.
func (c *Config) IsAdmin(id int64) bool {
	for _, a := range c.Admins {
		if a == id {
			return true
		}
	}
	return false
}

func (c *Config) applyDefaults() {
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 5
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "./exports"
	}
	if c.Google.OrdersSheetName == "" {
		c.Google.OrdersSheetName = "Orders"
	}

	if c.Bot.Currency == "" {
		c.Bot.Currency = "so'm"
	}
	if c.Bot.PaginationSize == 0 {
		c.Bot.PaginationSize = models.DefaultPaginationSize
	}
	if c.Bot.TopProductsLimit == 0 {
		c.Bot.TopProductsLimit = models.DefaultTopProducts
	}
	if c.Bot.SessionTTL == 0 {
		c.Bot.SessionTTL = models.DefaultSessionTTL
	}
	if c.Bot.CartTTL == 0 {
		c.Bot.CartTTL = models.DefaultCartTTL
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
}
