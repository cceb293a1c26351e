package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HttpServer     HttpServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	MessageStream  MessageStreamConfig
	HttpClient     HttpClientConfig
	UserService    UserServiceConfig
	CarService     CarServiceConfig
	PaymentGateway PaymentGatewayConfig
	Booking        BookingConfig
}

type HttpServerConfig struct {
	Port string `envconfig:"http_server_port" default:"8081"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"db_host" default:"localhost"`
	Port     string `envconfig:"db_port" default:"5432"`
	User     string `envconfig:"db_user" default:"postgres"`
	Password string `envconfig:"db_password" default:"postgres"`
	Name     string `envconfig:"db_name" default:"rental"`
	SSLMode  string `envconfig:"db_ssl_mode" default:"disable"`
	MaxConn  int    `envconfig:"db_max_conn" default:"10"`
}

type RedisConfig struct {
	Host     string `envconfig:"redis_host" default:"localhost"`
	Port     string `envconfig:"redis_port" default:"6379"`
	Password string `envconfig:"redis_password" default:""`
	DB       int    `envconfig:"redis_db" default:"0"`
}

type MessageStreamConfig struct {
	Host     string `envconfig:"amqp_host" default:"localhost"`
	Port     string `envconfig:"amqp_port" default:"5672"`
	User     string `envconfig:"amqp_user" default:"guest"`
	Password string `envconfig:"amqp_password" default:"guest"`
}

type HttpClientConfig struct {
	Type                string  `envconfig:"http_client_type" default:"consecutive"`
	Timeout             int     `envconfig:"http_client_timeout" default:"5"`
	ConsecutiveFailures int64   `envconfig:"http_client_consecutive_failures" default:"5"`
	ErrorRate           float64 `envconfig:"http_client_error_rate" default:"0.1"`
	MinSamples          int64   `envconfig:"http_client_min_samples" default:"100"`
}

type UserServiceConfig struct {
	Host string `envconfig:"user_service_host" default:"localhost"`
	Port string `envconfig:"user_service_port" default:"8080"`
}

type CarServiceConfig struct {
	Host string `envconfig:"car_service_host" default:"localhost"`
	Port string `envconfig:"car_service_port" default:"8082"`
}

type PaymentGatewayConfig struct {
	BaseURL       string `envconfig:"payment_gateway_base_url" default:"https://api.payment.localhost"`
	SecretKey     string `envconfig:"payment_gateway_secret_key" default:""`
	WebhookSecret string `envconfig:"payment_gateway_webhook_secret" default:""`
	Currency      string `envconfig:"payment_gateway_currency" default:"usd"`
}

type BookingConfig struct {
	// PaymentWindowMinutes is how long a pending booking may wait for payment
	// before it is expired and its dates released.
	PaymentWindowMinutes int `envconfig:"booking_payment_window_minutes" default:"30"`
}

func InitConfig() *Config {
	var cfg Config
	err := envconfig.Process("rental", &cfg)
	if err != nil {
		log.Fatal(err)
	}
	return &cfg
}
