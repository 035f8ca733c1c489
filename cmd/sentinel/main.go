package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/solvency-labs/sentinel/internal/collateral"
	"github.com/solvency-labs/sentinel/internal/config"
	"github.com/solvency-labs/sentinel/internal/executor"
	"github.com/solvency-labs/sentinel/internal/logger"
	"github.com/solvency-labs/sentinel/internal/monitor"
	"github.com/solvency-labs/sentinel/internal/positions"
	"github.com/solvency-labs/sentinel/internal/protection"
	"github.com/solvency-labs/sentinel/internal/risk"
	"github.com/solvency-labs/sentinel/internal/state"
)

// main is the entry point for the sentinel system.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Sentinel Core Logic Starting...")

	// Initialize Database Connection. The database is optional: without it
	// the sentinel still monitors and protects, it just keeps no audit trail.
	persistState := false
	if os.Getenv("DB_HOST") != "" {
		dbCfg := state.DBConfig{
			Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
			User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
			DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
		persistState = true
	} else {
		log.Warn().Msg("DB_HOST not set. Running without persistence; assessments and protection results will not be stored.")
	}

	// Load Engine Parameters
	riskParams := config.DefaultRiskParameters
	protectionParams := config.DefaultProtectionParameters
	if persistState {
		loadedRisk, loadedProtection, err := state.LoadActiveEngineParameters(monitor.DEFAULT_PARAMS_CONFIG_NAME)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load active engine parameters, using defaults and saving.")
			if _, err := state.SaveEngineParameters(riskParams, protectionParams, monitor.DEFAULT_PARAMS_CONFIG_NAME, monitor.DEFAULT_PARAMS_CONFIG_VERSION, true); err != nil {
				log.Fatal().Err(err).Msg("Failed to save initial default engine parameters.")
			}
		} else {
			riskParams = *loadedRisk
			protectionParams = *loadedProtection
		}
	}
	log.Info().Msg("Engine parameters loaded successfully.")

	// --- Safety Switch ---
	// Dry-run is the default; real execution is opt-in per process.
	sentinelMode := os.Getenv("SENTINEL_MODE")
	if sentinelMode == "live" {
		log.Warn().Msg("Initializing sentinel in LIVE mode. Protection transactions will be executed.")
		protectionParams.DryRun = false
	} else {
		log.Info().Msg("SENTINEL_MODE is not 'live'. Forcing dry-run; protection actions will be recorded but not executed.")
		protectionParams.DryRun = true
	}

	// --- Metrics Endpoint ---
	if config.MetricsAddr != "" {
		go func() {
			log.Info().Str("addr", config.MetricsAddr).Msg("Starting Prometheus metrics endpoint")
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(config.MetricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("Metrics endpoint failed")
			}
		}()
	}

	// --- 2. Position Provider ---
	provider, err := positions.NewFileProvider(config.WatchlistPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", config.WatchlistPath).Msg("Failed to load watchlist")
	}
	wallets := provider.Wallets()
	if len(wallets) == 0 {
		log.Fatal().Str("path", config.WatchlistPath).Msg("Watchlist contains no wallets")
	}
	log.Info().Int("wallets", len(wallets)).Str("path", config.WatchlistPath).Msg("Watchlist loaded")

	// --- 3. Create Monitor Instance with Dependency Injection ---
	log.Info().Msg("Creating monitor instance with dependency injection...")

	monitorConfig := monitor.Config{
		Provider:         provider,
		RiskEngine:       risk.NewEngine(riskParams),
		ProtectionEngine: protection.NewEngine(protectionParams),
		Analyzer:         collateral.NewAnalyzer(config.DefaultCollateralSafetyFloor),
		Executor:         executor.Noop{},
		Wallets:          wallets,
		PersistState:     persistState,
	}

	monitorInstance, err := monitor.NewMonitor(monitorConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create monitor instance")
	}

	log.Info().Msg("Monitor instance created successfully")

	// --- 4. Start Main Loop ---
	log.Info().Str("interval", config.MonitorInterval.String()).Msg("Starting monitoring main loop")

	ctx := context.Background()

	// Start the monitoring loop (this will run indefinitely)
	monitorInstance.RunLoop(ctx, config.MonitorInterval)
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
