package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/fixity/pkg/fixity/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage fixity configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/fixity/config.yaml (if set)
  2. ~/.config/fixity/config.yaml

Environment variables can override config file settings using the FIXITY_ prefix:
  FIXITY_ALGORITHM=SHA-256
  FIXITY_CACHE_ENABLED=false
  FIXITY_REPORT_FORMAT=json`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// envOverrides lists the environment variables config show reports.
var envOverrides = []string{
	"algorithm",
	"algorithms",
	"buffer_size",
	"workers",
	"exclude",
	"cache.enabled",
	"cache.path",
	"loader.layout",
	"loader.xml_digest_prefix",
	"loader.normalize_case",
	"report.format",
	"report.path",
	"logging.level",
	"logging.path",
}

// envName returns the environment variable overriding key.
func envName(key string) string {
	return config.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprintln(out, "Config file: (using defaults, no file found)")
		fmt.Fprintln(out)
	}

	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = config.DefaultCachePath()
	}

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "algorithm:                 %s\n", cfg.Algorithm)
	fmt.Fprintf(out, "algorithms:                %v\n", cfg.Algorithms)
	fmt.Fprintf(out, "buffer_size:               %s\n", cfg.BufferSize)
	fmt.Fprintf(out, "workers:                   %d\n", cfg.Workers)
	fmt.Fprintf(out, "exclude:                   %v\n", cfg.Exclude)
	fmt.Fprintf(out, "cache.enabled:             %t\n", cfg.Cache.Enabled)
	fmt.Fprintf(out, "cache.path:                %s\n", cachePath)
	fmt.Fprintf(out, "loader.layout:             %s\n", cfg.Loader.Layout)
	fmt.Fprintf(out, "loader.xml_digest_prefix:  %s\n", cfg.Loader.XMLDigestPrefix)
	fmt.Fprintf(out, "loader.normalize_case:     %t\n", cfg.Loader.NormalizeCase)
	fmt.Fprintf(out, "report.format:             %s\n", cfg.Report.Format)
	fmt.Fprintf(out, "report.path:               %s\n", cfg.Report.Path)
	fmt.Fprintf(out, "logging.level:             %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "logging.path:              %s\n", cfg.Logging.Path)

	fmt.Fprintln(out, "\nEnvironment Overrides:")
	fmt.Fprintln(out, "----------------------")
	anyOverrides := false
	for _, key := range envOverrides {
		name := envName(key)
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(out, "(none)")
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigFile()
	if err != nil {
		return err
	}

	written, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	if !written {
		printInfo("Config file already exists: %s", path)
		return nil
	}

	printInfo("Created default config file: %s", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigFile()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)

	if _, err := os.Stat(path); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}
