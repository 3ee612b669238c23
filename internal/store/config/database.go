package config

import (
	"fmt"
)

// PostgresConfig holds the database connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"STORE_POSTGRES_HOST" env-default:"0.0.0.0"`
	Port     int    `yaml:"port" env:"STORE_POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"STORE_POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"STORE_POSTGRES_PASSWORD" env-default:"postgres"`
	Database string `yaml:"database" env:"STORE_POSTGRES_DB" env-default:"store"`
	MinConn  int    `yaml:"min_conn" env:"STORE_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn  int    `yaml:"max_conn" env:"STORE_POSTGRES_MAX_CONN" env-default:"10"`
}

// GetDSN returns the Postgres connection string.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL returns the URL-style connection string used by migrations.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}
