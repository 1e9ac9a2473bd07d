package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	LogLevel         string `env:"LOG_LEVEL" envDefault:"INFO"`
	Timezone         string `env:"TIMEZONE" envDefault:"Europe/Oslo"`
	DatabaseURL      string `env:"DATABASE_URL"`
	MigrationsFolder string `env:"MIGRATIONS_FOLDER"`

	HTTP      HTTPConfig      `envPrefix:"HTTP_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	SpotPrice SpotPriceConfig `envPrefix:"SPOT_PRICE_"`
	Tariff    TariffConfig    `envPrefix:"TARIFF_"`
	Pricing   PricingConfig   `envPrefix:"PRICING_"`
	Mqtt      MqttConfig      `envPrefix:"MQTT_"`
}

type HTTPConfig struct {
	Addr         string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type SpotPriceConfig struct {
	Host          string        `env:"HOST" envDefault:"https://www.hvakosterstrommen.no"`
	Areas         []string      `env:"AREAS" envDefault:"NO1,NO2,NO3,NO4,NO5" envSeparator:","`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"10s"`
	FetchCron     string        `env:"FETCH_CRON" envDefault:"CRON_TZ=Europe/Oslo 15 14 * * *"`
	RetentionDays int           `env:"RETENTION_DAYS" envDefault:"730"`
}

type TariffConfig struct {
	// DefaultRateOre is used when no tariff window matches, øre/kWh.
	DefaultRateOre   float64 `env:"DEFAULT_RATE_ORE" envDefault:"45"`
	FallbackApplyTax bool    `env:"FALLBACK_APPLY_TAX" envDefault:"false"`
}

type PricingConfig struct {
	Workers int `env:"WORKERS" envDefault:"4"`
}

type MqttConfig struct {
	Host        string `env:"HOST"`
	Username    string `env:"USER"`
	Password    string `env:"PASS"`
	TopicPrefix string `env:"TOPIC_PREFIX" envDefault:"ev-reimbursement"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MqttEnabled reports whether an MQTT broker has been configured.
func (c *Config) MqttEnabled() bool {
	return c.Mqtt.Host != ""
}
