package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration with viper
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it. Using default values and environment variables.")
	}

	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("db.path", "./data/tunelog.db")
	viper.SetDefault("auth.headers_path", "./data/browser.json")

	// tracker defaults
	viper.SetDefault("tracker.interval", 10)
	viper.SetDefault("tracker.pause", 300)
	viper.SetDefault("tracker.max_recent", 4)

	// seed values for the settings store; the stored row wins once it exists
	viper.SetDefault("rating.min", 1)
	viper.SetDefault("rating.max", 10)
	viper.SetDefault("analytics.shrinkage_c", 5.0)

	viper.AutomaticEnv()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config file: %v", err)
		}
		log.Println("Config file not found, using default values and environment variables")
	} else {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
}
