package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/fixity/pkg/fixity/config"
	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// initializeLogging starts file logging from the configuration. It is the
// root PersistentPreRunE hook. A logging failure leaves loggers silent
// rather than failing the command.
func initializeLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}
	if getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(logCfg); err != nil {
		printVerbose("logging disabled: %v", err)
		return nil
	}

	if cmd != nil {
		logger.Debug("command started", "command", cmd.CommandPath())
	}
	return nil
}

// parseRotationConfig converts configured rotation settings. An empty or
// invalid max_size falls back to the default.
func parseRotationConfig(c config.RotationConfig) logging.RotationConfig {
	rc := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Daily:      c.Daily,
	}

	if c.MaxSize != "" {
		if size, err := types.ParseSize(c.MaxSize); err == nil && size > 0 {
			rc.MaxSize = size
		}
	}
	return rc
}
