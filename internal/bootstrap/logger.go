package bootstrap

import (
	"log/slog"

	"github.com/osse101/HarvestShare_Go/internal/config"
	"github.com/osse101/HarvestShare_Go/internal/logger"
)

// SetupLogger installs the process-wide slog logger from the application config
func SetupLogger(cfg *config.Config) {
	logCfg := logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		cfg.ServiceName,
		cfg.Version,
		cfg.Environment,
		cfg.Environment == logger.EnvironmentDev,
	)
	logger.InitLogger(logCfg)

	slog.Info(LogMsgLoggingInitialized, "level", logCfg.LogLevel().String(), "format", cfg.LogFormat)
	slog.Info(LogMsgStartingApp,
		"environment", cfg.Environment,
		"version", cfg.Version,
		"db_driver", cfg.DBDriver)
	slog.Debug(LogMsgConfigLoaded,
		"db_host", cfg.DBHost,
		"db_port", cfg.DBPort,
		"db_name", cfg.DBName,
		"port", cfg.Port,
		"sweep_interval", cfg.ExpirySweepInterval.String())
}
