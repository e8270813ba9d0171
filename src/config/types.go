package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta Environment = "beta"
	Dev  Environment = "dev"
)

type BiostarConfig struct {
	Env      Environment   `env:"BIOSTAR_ENV"`
	LogLevel zerolog.Level `env:"BIOSTAR_LOG_LEVEL"`

	Postgres PostgresConfig `envPrefix:"BIOSTAR_DB_"`
}

type PostgresConfig struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Hostname string `env:"HOST"`
	Port     int    `env:"PORT"`
	DbName   string `env:"NAME"`

	LogLevel tracelog.LogLevel `env:"LOG_LEVEL"`
	MinConn  int32             `env:"MIN_CONN"`
	MaxConn  int32             `env:"MAX_CONN"`
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}
