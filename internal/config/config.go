package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// StorageConfig configures where finished outputs are delivered.
type StorageConfig struct {
	// Backend selects the storage variant: "file", "pg" or "sqlite".
	// Empty means outputs are not published by reference.
	Backend string `mapstructure:"backend"`
	Target  string `mapstructure:"target"`   // file backend: output directory
	BaseURL string `mapstructure:"base_url"` // file backend: public URL prefix
}

type DatabaseConfig struct {
	Dialect  string `mapstructure:"dialect"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`   // sqlite database file
	Schema   string `mapstructure:"schema"` // pg: namespace for output tables
}

// DSN returns the dialect-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Dialect == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// ConnString returns the keyword/value form consumed by the external
// conversion tools (raster2pgsql, ogr2ogr).
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d",
		d.Name, d.User, d.Password, d.Host, d.Port)
}

func (d DatabaseConfig) IsSQLite() bool {
	return d.Dialect == "sqlite"
}

func Load() (*Config, error) {
	viper.SetConfigName("gowps")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.target", "./outputs")
	viper.SetDefault("storage.base_url", "http://localhost:8080/outputs/")
	viper.SetDefault("database.dialect", "pg")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.schema", "gowps_outputs")
	viper.SetDefault("database.path", "./data/outputs.db")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
