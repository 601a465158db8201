package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Application struct {
	Name        string
	Environment string
	Port        int
	Debug       bool
	Timeout     time.Duration
	BaseURL     string
}

type Postgres struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Redis struct {
	Address  string
	Password string
	DB       int
}

type Kafka struct {
	BrokerList string
}

type GCP struct {
	ProjectID      string
	ServiceAccount []byte
}

type Payment struct {
	ChargeExpiry   time.Duration
	GatewayTimeout time.Duration
	OpenPixBaseURL string
}

type CORS struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	MaxAge           int
	AllowCredentials bool
}

type Config struct {
	Application Application
	Postgres    Postgres
	Redis       Redis
	Kafka       Kafka
	GCP         GCP
	Payment     Payment
	CORS        CORS
}

var (
	c    *Config
	once sync.Once
)

func Get() *Config {
	once.Do(func() {
		v := viper.New()
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		v.SetDefault("app.name", "om-order")
		v.SetDefault("app.environment", "development")
		v.SetDefault("app.port", 9000)
		v.SetDefault("app.debug", false)
		v.SetDefault("app.timeout", "10s")
		v.SetDefault("app.base_url", "http://localhost:9000")
		v.SetDefault("postgres.max_open_conns", 25)
		v.SetDefault("postgres.max_idle_conns", 5)
		v.SetDefault("postgres.conn_max_lifetime", "30m")
		v.SetDefault("redis.address", "localhost:6379")
		v.SetDefault("redis.db", 0)
		v.SetDefault("payment.charge_expiry", "30m")
		v.SetDefault("payment.gateway_timeout", "8s")
		v.SetDefault("cors.max_age", 300)

		c = &Config{
			Application: Application{
				Name:        v.GetString("app.name"),
				Environment: v.GetString("app.environment"),
				Port:        v.GetInt("app.port"),
				Debug:       v.GetBool("app.debug"),
				Timeout:     v.GetDuration("app.timeout"),
				BaseURL:     v.GetString("app.base_url"),
			},
			Postgres: Postgres{
				DSN:             v.GetString("postgres.dsn"),
				MaxOpenConns:    v.GetInt("postgres.max_open_conns"),
				MaxIdleConns:    v.GetInt("postgres.max_idle_conns"),
				ConnMaxLifetime: v.GetDuration("postgres.conn_max_lifetime"),
			},
			Redis: Redis{
				Address:  v.GetString("redis.address"),
				Password: v.GetString("redis.password"),
				DB:       v.GetInt("redis.db"),
			},
			Kafka: Kafka{
				BrokerList: v.GetString("kafka.broker_list"),
			},
			GCP: GCP{
				ProjectID:      v.GetString("gcp.project_id"),
				ServiceAccount: []byte(v.GetString("gcp.service_account")),
			},
			Payment: Payment{
				ChargeExpiry:   v.GetDuration("payment.charge_expiry"),
				GatewayTimeout: v.GetDuration("payment.gateway_timeout"),
				OpenPixBaseURL: v.GetString("payment.openpix_base_url"),
			},
			CORS: CORS{
				AllowedOrigins:   v.GetStringSlice("cors.allowed_origins"),
				AllowedMethods:   v.GetStringSlice("cors.allowed_methods"),
				AllowedHeaders:   v.GetStringSlice("cors.allowed_headers"),
				ExposedHeaders:   v.GetStringSlice("cors.exposed_headers"),
				MaxAge:           v.GetInt("cors.max_age"),
				AllowCredentials: v.GetBool("cors.allow_credentials"),
			},
		}
	})

	return c
}
