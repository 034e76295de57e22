package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Refusal release policies: what happens to a refused mission's parcels.
const (
	ReleaseAuto   = "auto"   // parcels return to the pending pool immediately
	ReleaseManual = "manual" // parcels are held until staff re-release them
)

type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	ClientOrigin         string `mapstructure:"CLIENT_ORIGIN"`
	RefusalReleasePolicy string `mapstructure:"REFUSAL_RELEASE_POLICY"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REFUSAL_RELEASE_POLICY", ReleaseAuto)

	err := viper.ReadInConfig()
	if err != nil {
		// Allow a missing .env file; everything can come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RefusalReleasePolicy != ReleaseAuto && cfg.RefusalReleasePolicy != ReleaseManual {
		return nil, fmt.Errorf("config: unknown REFUSAL_RELEASE_POLICY %q", cfg.RefusalReleasePolicy)
	}

	return &cfg, nil
}
