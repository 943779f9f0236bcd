package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// Redis
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// External judge service
	JudgeURL    string `mapstructure:"JUDGE_URL"`
	JudgeAPIKey string `mapstructure:"JUDGE_API_KEY"`

	// Timezone used for users without a stored preference
	DefaultTimezone string `mapstructure:"DEFAULT_TIMEZONE"`
}

var AppConfig *Config

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if AppConfig.DefaultTimezone == "" {
		AppConfig.DefaultTimezone = "UTC"
	}
}
