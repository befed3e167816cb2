package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Razorpay   RazorpayConfig   `yaml:"razorpay"`
	PayPal     PayPalConfig     `yaml:"paypal"`
	OTP        OTPConfig        `yaml:"otp"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Notify     NotifyConfig     `yaml:"notify"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// JWTConfig настройка jwt
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// RazorpayConfig - провайдер с заказом и подписью
type RazorpayConfig struct {
	BaseURL   string        `yaml:"base_url" env-default:"https://api.razorpay.com"`
	KeyID     string        `yaml:"key_id" env:"RAZORPAY_KEY_ID"`
	KeySecret string        `yaml:"-" env:"RAZORPAY_KEY_SECRET"`
	Currency  string        `yaml:"currency" env-default:"INR"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

// PayPalConfig - провайдер с токеном, подтверждение без локальной проверки
type PayPalConfig struct {
	Currency string `yaml:"currency" env-default:"USD"`
}

// OTPConfig настройка одноразовых кодов
type OTPConfig struct {
	// Backend: memory (данные теряются при рестарте) или postgres
	Backend       string        `yaml:"backend" env-default:"memory"`
	TTL           time.Duration `yaml:"ttl" env-default:"5m"`
	VerifiedTTL   time.Duration `yaml:"verified_ttl" env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"1m"`
}

// KafkaConfig - шина уведомлений; пустой список брокеров отключает Kafka
type KafkaConfig struct {
	Brokers string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string `yaml:"topic" env-default:"checkout.notifications"`
}

// NotifyConfig - таймауты отправки уведомлений
type NotifyConfig struct {
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// TracingConfig - экспорт трейсов по OTLP/HTTP
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" env-default:"false"`
	ServiceName string `yaml:"service_name" env-default:"checkout-service"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}
