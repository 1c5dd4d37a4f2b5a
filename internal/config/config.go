package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server      ServerConfig
	Store       StoreConfig
	Credentials CredentialsConfig
	Kafka       KafkaConfig
	App         AppConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// StoreConfig describes the relational store endpoint. The password is absent
// on purpose: connections authenticate with an ephemeral token fetched per
// request from the credential provider.
type StoreConfig struct {
	Host     string `envconfig:"ORDERS_DB_HOST" default:"localhost"`
	Port     string `envconfig:"ORDERS_DB_PORT" default:"5432"`
	User     string `envconfig:"ORDERS_DB_USER" default:"orders"`
	Database string `envconfig:"ORDERS_DB_NAME" default:"orders_db"`
	SSLMode  string `envconfig:"ORDERS_DB_SSLMODE" default:"disable"`
}

type CredentialsConfig struct {
	VendorURL   string `envconfig:"CREDENTIALS_VENDOR_URL"`
	Region      string `envconfig:"CREDENTIALS_REGION" default:"ap-south-1"`
	StaticToken string `envconfig:"CREDENTIALS_STATIC_TOKEN"`
}

type KafkaConfig struct {
	Brokers      []string `envconfig:"KAFKA_BROKER_URL" default:"localhost:9092"`
	SuccessTopic string   `envconfig:"KAFKA_SUCCESS_TOPIC" default:"orders_success"`
	FailureTopic string   `envconfig:"KAFKA_FAILURE_TOPIC" default:"orders_failure"`
}

type AppConfig struct {
	Timezone       string        `envconfig:"TZ" default:"Asia/Kolkata"`
	PollPathPrefix string        `envconfig:"POLL_PATH_PREFIX" default:"/eks-saga/trail"`
	CallTimeout    time.Duration `envconfig:"EXTERNAL_CALL_TIMEOUT" default:"10s"`
	MigrationsPath string        `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

// BuildDSN renders a lib/pq connection string for the store endpoint using the
// supplied ephemeral token as the password.
func (c *StoreConfig) BuildDSN(token string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, token, c.Database, c.SSLMode)
}

// MigrationDSN is the URL form golang-migrate expects. The token is escaped
// because vendor-issued tokens routinely contain URL metacharacters.
func (c *StoreConfig) MigrationDSN(token string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, url.QueryEscape(token), c.Host, c.Port, c.Database, c.SSLMode)
}

// Location resolves the configured timezone used for createdAt formatting.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
