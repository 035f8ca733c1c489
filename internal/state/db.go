// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS engine_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,

			-- Risk engine knobs
			threshold_safe DECIMAL(10, 4) NOT NULL,
			threshold_low DECIMAL(10, 4) NOT NULL,
			threshold_medium DECIMAL(10, 4) NOT NULL,
			threshold_high DECIMAL(10, 4) NOT NULL,
			position_size_scaling BOOLEAN NOT NULL,
			trend_window_size INTEGER NOT NULL,
			trend_min_samples INTEGER NOT NULL,

			-- Protection engine knobs
			target_health_factor DECIMAL(10, 4) NOT NULL,
			max_protection_usd DECIMAL(20, 8) NOT NULL,
			dry_run BOOLEAN NOT NULL,
			preferred_strategy VARCHAR(50) NOT NULL,
			yield_rates JSONB,

			CONSTRAINT uq_engine_parameters_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_engine_parameters_config_active ON engine_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS wallet_assessments (
			assessment_id SERIAL PRIMARY KEY,
			cycle_number INTEGER NOT NULL,
			assessment_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			wallet VARCHAR(255) NOT NULL,
			risk_level VARCHAR(20) NOT NULL,
			risk_score DECIMAL(10, 4) NOT NULL,
			positions JSONB,
			factors JSONB,
			recommendations JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_wallet_assessments_wallet ON wallet_assessments(wallet, assessment_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_wallet_assessments_cycle ON wallet_assessments(cycle_number DESC);
		CREATE INDEX IF NOT EXISTS idx_wallet_assessments_level ON wallet_assessments(risk_level);

		CREATE TABLE IF NOT EXISTS protection_results (
			result_id SERIAL PRIMARY KEY,
			cycle_number INTEGER NOT NULL,
			result_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			wallet VARCHAR(255) NOT NULL,
			protocol VARCHAR(50) NOT NULL,
			action VARCHAR(50) NOT NULL,
			success BOOLEAN NOT NULL,
			dry_run BOOLEAN NOT NULL,
			amount_usd DECIMAL(20, 8),
			previous_hf DECIMAL(20, 8),
			new_hf DECIMAL(20, 8),
			tx_signature TEXT,
			error_message TEXT,
			execution_time_ms BIGINT,
			option_detail JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_protection_results_wallet ON protection_results(wallet, result_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_protection_results_cycle ON protection_results(cycle_number DESC);
		CREATE INDEX IF NOT EXISTS idx_protection_results_action ON protection_results(action);

		-- Cycle counter table for persistent global cycle tracking
		CREATE TABLE IF NOT EXISTS cycle_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_cycle INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		-- Insert initial row if it doesn't exist
		INSERT INTO cycle_counter (id, current_cycle)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
