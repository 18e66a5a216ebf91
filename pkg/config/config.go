package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Review  ReviewConfig  `mapstructure:"review"`
	Notary  NotaryConfig  `mapstructure:"notary"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// GatewayConfig points the engine at a ledger gateway.
type GatewayConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	NetworkID        uint8  `mapstructure:"network_id"`
	RequestTimeoutMS int    `mapstructure:"request_timeout_ms"`
	PollIntervalMS   int    `mapstructure:"poll_interval_ms"`
	MaxPollTries     int    `mapstructure:"max_poll_tries"`
}

type ReviewConfig struct {
	// DefaultGuaranteePercent pre-populates guarantees on estimated
	// deposits. 100 means the full estimated amount.
	DefaultGuaranteePercent int `mapstructure:"default_guarantee_percent"`
	MetadataWorkers         int `mapstructure:"metadata_workers"`
}

type NotaryConfig struct {
	KeyFile string `mapstructure:"key_file"`
}

var Global Config

func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "review_user")
	viper.SetDefault("db.password", "review_password")
	viper.SetDefault("db.name", "review_db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.mq_type", "redis")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})

	viper.SetDefault("gateway.base_url", "http://localhost:8088")
	viper.SetDefault("gateway.network_id", 2)
	viper.SetDefault("gateway.request_timeout_ms", 30000)
	viper.SetDefault("gateway.poll_interval_ms", 2000)
	viper.SetDefault("gateway.max_poll_tries", 20)

	viper.SetDefault("review.default_guarantee_percent", 100)
	viper.SetDefault("review.metadata_workers", 4)

	viper.SetDefault("notary.key_file", "notary.json")
}
