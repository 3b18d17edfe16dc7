package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

type DB struct {
	conn *sql.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c Config) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

func Connect(cfg Config) (*DB, error) {
	conn, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("[DB] Connected to PostgreSQL at %s:%d", cfg.Host, cfg.Port)
	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS aircraft_performance (
		aircraft_type VARCHAR(16) PRIMARY KEY,
		name VARCHAR(100),
		cruise_speed_kt DOUBLE PRECISION,
		fuel_burn_lbs_hr DOUBLE PRECISION,
		max_fuel_lbs DOUBLE PRECISION,
		useful_load_lbs DOUBLE PRECISION,
		max_takeoff_weight_lbs DOUBLE PRECISION,
		empty_weight_lbs DOUBLE PRECISION,
		passenger_weight_lbs DOUBLE PRECISION,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS registration_performance (
		registration VARCHAR(10) PRIMARY KEY,
		aircraft_type VARCHAR(16),
		cruise_speed_kt DOUBLE PRECISION,
		fuel_burn_lbs_hr DOUBLE PRECISION,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_registration_performance_type ON registration_performance(aircraft_type);
	`

	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("[DB] Database schema migrated successfully")
	return nil
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}
