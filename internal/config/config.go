// Package config assembles runtime configuration from flags and
// environment variables. Environment variables win over flag defaults.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database *Database
	HTTP     *HTTP
	App      *App
}

type Database struct {
	Path string `env:"DB_PATH"`
}

type HTTP struct {
	Addr string `env:"RUN_ADDRESS"`
}

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
}

func NewConfig() (*Config, error) {
	var db Database
	var http HTTP
	var app App

	flag.StringVar(&db.Path, "d", "./data/tabkeeper.db", "SQLite database path")
	flag.StringVar(&http.Addr, "a", ":8080", "HTTP server listen address")
	flag.StringVar(&app.LogLevel, "l", "info", "Log level")
	flag.Parse()

	if err := env.Parse(&db); err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	if err := env.Parse(&http); err != nil {
		return nil, fmt.Errorf("error parsing env http config: %w", err)
	}
	if err := env.Parse(&app); err != nil {
		return nil, fmt.Errorf("error parsing env app config: %w", err)
	}

	return &Config{Database: &db, HTTP: &http, App: &app}, nil
}
