package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Mollie   MollieConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type MollieConfig struct {
	// Endpoint is the merchant backend's Mollie bridge base URL.
	Endpoint string
	// MethodsMapping maps gateway method ids to store payment method codes,
	// parsed from "id:code,id:code" pairs. Only mapped methods are enabled.
	MethodsMapping map[string]string
	// ErrorURL is the safe route the shopper lands on after a failed saga.
	ErrorURL string
	// CurrencyCode is the active store currency.
	CurrencyCode string
	// RedirectBase prefixes the gateway's return URL.
	RedirectBase string
	// RedirectDelay is the pause between the redirect signal and navigation.
	RedirectDelay time.Duration
	// GuardTTL bounds the once-per-order payment creation window.
	GuardTTL time.Duration
	// SweepSpec is the 6-field cron expression of the reconciliation sweep.
	SweepSpec string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("MOLLIE_ERROR_URL", "/")
	viper.SetDefault("MOLLIE_CURRENCY", "EUR")
	viper.SetDefault("MOLLIE_REDIRECT_DELAY", "250ms")
	viper.SetDefault("MOLLIE_GUARD_TTL", "30m")
	viper.SetDefault("MOLLIE_SWEEP_SPEC", "0 */5 * * * *")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Mollie: MollieConfig{
			Endpoint:       viper.GetString("MOLLIE_ENDPOINT"),
			MethodsMapping: parseMethodsMapping(viper.GetString("MOLLIE_METHODS_MAPPING")),
			ErrorURL:       viper.GetString("MOLLIE_ERROR_URL"),
			CurrencyCode:   viper.GetString("MOLLIE_CURRENCY"),
			RedirectBase:   viper.GetString("MOLLIE_REDIRECT_BASE"),
			RedirectDelay:  durationOr("MOLLIE_REDIRECT_DELAY", 250*time.Millisecond),
			GuardTTL:       durationOr("MOLLIE_GUARD_TTL", 30*time.Minute),
			SweepSpec:      viper.GetString("MOLLIE_SWEEP_SPEC"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
	}

	if cfg.Mollie.Endpoint == "" {
		log.Println("WARNING: MOLLIE_ENDPOINT is not set")
	}
	if len(cfg.Mollie.MethodsMapping) == 0 {
		log.Println("WARNING: MOLLIE_METHODS_MAPPING is empty, no methods will be enabled")
	}

	return cfg, nil
}

// parseMethodsMapping parses "ideal:ideal,creditcard:cc" into a map. A pair
// without a colon maps the id to itself.
func parseMethodsMapping(raw string) map[string]string {
	mapping := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		id := strings.TrimSpace(parts[0])
		if id == "" {
			continue
		}
		code := id
		if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
			code = strings.TrimSpace(parts[1])
		}
		mapping[id] = code
	}
	return mapping
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
