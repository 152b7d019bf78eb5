package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"stockAlertBot/config"
	"stockAlertBot/internal/adapters/binanceoracle"
	"stockAlertBot/internal/adapters/logger"
	"stockAlertBot/internal/adapters/smtpmail"
	"stockAlertBot/internal/adapters/sqlite"
	"stockAlertBot/internal/adapters/telegram"
	"stockAlertBot/internal/adapters/yahoo"
	"stockAlertBot/internal/app"
	"stockAlertBot/internal/forecast"
	"stockAlertBot/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Alert Store (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize alert repository")
		log.Fatalf("FATAL: Failed to initialize alert repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing alert repository")
		}
	}()
	appLogger.Info(context.Background(), "Alert repository initialized")

	// 4. Initialize Price Oracle
	var oracle ports.PriceOracle
	switch cfg.Oracle {
	case "binance":
		oracle, err = binanceoracle.New(binanceoracle.Config{
			APIKey:    cfg.BinanceAPIKey,
			SecretKey: cfg.BinanceSecretKey,
			Logger:    appLogger,
		})
	default:
		oracle, err = yahoo.New(yahoo.Config{
			Logger: appLogger,
			Proxy:  cfg.Proxy,
		})
	}
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize price oracle")
		log.Fatalf("FATAL: Failed to initialize price oracle: %v", err)
	}
	appLogger.Info(context.Background(), "Price oracle initialized", map[string]interface{}{"provider": oracle.Name()})

	// 5. Initialize Notifier
	var notifier ports.Notifier
	switch cfg.Notifier {
	case "telegram":
		notifier, err = telegram.New(telegram.Config{
			BotToken: cfg.TelegramBotToken,
			Proxy:    cfg.Proxy,
			Logger:   appLogger,
		})
	default:
		notifier, err = smtpmail.New(smtpmail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Logger:   appLogger,
		})
	}
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize notifier")
		log.Fatalf("FATAL: Failed to initialize notifier: %v", err)
	}
	appLogger.Info(context.Background(), "Notifier initialized", map[string]interface{}{"transport": cfg.Notifier})

	// 6. Initialize Forecast Model and Engine
	model, err := forecast.NewSeasonalModel(forecast.ModelConfig{
		MinPoints:   cfg.MinHistoryPoints,
		Sensitivity: cfg.TrendSensitivity,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize forecast model")
		log.Fatalf("FATAL: Failed to initialize forecast model: %v", err)
	}
	engine, err := forecast.NewEngine(forecast.EngineConfig{
		Lookback:    cfg.HistoryLookback,
		Granularity: cfg.HistoryResolution,
		Horizon:     cfg.ForecastHorizon,
		Step:        cfg.ForecastStep,
		Window:      cfg.ConfidenceWindow,
	}, appLogger, oracle, model)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize forecast engine")
		log.Fatalf("FATAL: Failed to initialize forecast engine: %v", err)
	}
	appLogger.Info(context.Background(), "Forecast engine initialized")

	// 7. Initialize Monitor Service
	monitor, err := app.NewMonitorService(cfg, appLogger, repo, oracle, notifier, engine)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize monitor service")
		log.Fatalf("FATAL: Failed to initialize monitor service: %v", err)
	}
	appLogger.Info(context.Background(), "Monitor service initialized")

	// 8. Start the Service
	if err := monitor.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Monitor service exited with error")
		log.Fatalf("FATAL: Monitor service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
