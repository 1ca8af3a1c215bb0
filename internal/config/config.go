package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort              string `mapstructure:"SERVER_PORT"`
	ClientOrigin            string `mapstructure:"CLIENT_ORIGIN"`
	PublicBaseURL           string `mapstructure:"PUBLIC_BASE_URL"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	LogLevel                string `mapstructure:"LOG_LEVEL"`
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseWebAPIKey       string `mapstructure:"FIREBASE_WEB_API_KEY"`
	EnquiryNotifyFrom       string `mapstructure:"ENQUIRY_NOTIFY_FROM"`
	EnquiryNotifyTo         string `mapstructure:"ENQUIRY_NOTIFY_TO"`
	AWSRegion               string `mapstructure:"AWS_REGION"`
}

// required backend credentials: missing any of these produces an
// unrecoverable blank-page failure mode downstream, so startup fails fast
// instead of deferring to first use.
var required = []string{
	"JWT_SECRET",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_CREDENTIALS_FILE",
	"FIREBASE_WEB_API_KEY",
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range required {
		if viper.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return &cfg, nil
}
