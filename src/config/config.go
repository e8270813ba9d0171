package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// Defaults are suitable for local development. Deployments override them
// through the environment (BIOSTAR_* variables).
var Config = BiostarConfig{
	Env:      Dev,
	LogLevel: zerolog.InfoLevel,
	Postgres: PostgresConfig{
		User:     "biostar",
		Password: "password",
		Hostname: "localhost",
		Port:     5432,
		DbName:   "biostar",

		LogLevel: tracelog.LogLevelWarn,
		MinConn:  2,
		MaxConn:  10,
	},
}

func init() {
	if err := env.Parse(&Config); err != nil {
		panic(fmt.Errorf("failed to parse config from environment: %w", err))
	}
}
