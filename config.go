package datahub

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	WirelessAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	KafkaBrokers string
	KafkaTopic   string

	TgToken  string
	TgChatID string

	// Optional YAML file overriding the built-in threshold table.
	ThresholdsFile string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		WirelessAddr:   getEnv("WIRELESS_ADDR", ":9050"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "agriculture_hub"),
		KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "agriculture.sensor.data"),
		TgToken:        os.Getenv("TG_TOKEN"),
		TgChatID:       os.Getenv("TG_CHAT_ID"),
		ThresholdsFile: os.Getenv("THRESHOLDS_FILE"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
