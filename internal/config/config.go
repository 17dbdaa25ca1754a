package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Bus      BusConfig      `mapstructure:"bus"`
	Mock     MockConfig     `mapstructure:"mock"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type BusConfig struct {
	Type string `mapstructure:"type"` // system, session
	Name string `mapstructure:"name"`
}

type MockConfig struct {
	NoModem   bool   `mapstructure:"no_modem"`
	ModemName string `mapstructure:"modem_name"`
}

type AdminConfig struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	JWTSecret string `mapstructure:"jwt_secret"` // empty disables auth
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, mysql
	DSN    string `mapstructure:"dsn"`
}

var AppConfig Config

func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only resolves keys viper already knows about.
	viper.SetDefault("bus.type", "system")
	viper.SetDefault("bus.name", "org.ofono")
	viper.SetDefault("mock.no_modem", false)
	viper.SetDefault("mock.modem_name", "ril_0")
	viper.SetDefault("admin.port", ":8080")
	viper.SetDefault("admin.mode", "debug")
	viper.SetDefault("admin.jwt_secret", "")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults. Error: %v", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	ApplyDefaults(&AppConfig)
	log.Println("Configuration loaded successfully")
}

// ApplyDefaults fills every unset field of cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Bus.Type == "" {
		cfg.Bus.Type = "system"
	}
	if cfg.Bus.Name == "" {
		cfg.Bus.Name = "org.ofono"
	}
	if cfg.Mock.ModemName == "" {
		cfg.Mock.ModemName = "ril_0"
	}
	if cfg.Admin.Port == "" {
		cfg.Admin.Port = ":8080"
	}
	if cfg.Admin.Mode == "" {
		cfg.Admin.Mode = "debug"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "ofonomock.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
