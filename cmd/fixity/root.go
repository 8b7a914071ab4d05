package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/fixity/pkg/fixity/config"
	"github.com/jamesainslie/fixity/pkg/fixity/logging"
)

var logger = logging.Get("cli")

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "fixity",
		Short: "Digest files and reconcile checksum inventories",
		Long: `Fixity computes file digests and reconciles checksum inventories.

Two inventories are compared by checksum and by case-insensitive file base
name; whatever one side holds that the other lacks is reported. An inventory
is a checksum text file, a crawler XML report, or a directory digested on the
fly.

Examples:
  fixity digest photo.tif                   # Every configured digest of a file
  fixity generate /srv/archive > inv.txt    # Inventory of a tree
  fixity diff inv.txt /mnt/copy             # Inventory against a live copy
  fixity diff crc.txt crawl.xml -o json     # Two inventories, JSON report
  fixity config show                        # Show configuration`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initializeLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/fixity/config.yaml)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "override hashing worker count (0=auto)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().StringP("algorithm", "a", "", "digest keying directory inventories (default: cksum)")
	rootCmd.PersistentFlags().StringSlice("algorithms", nil, "digests printed by the digest command")
	rootCmd.PersistentFlags().String("buffer-size", "", "read size per file (e.g., 32KiB, 1M)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the digest cache")
	rootCmd.PersistentFlags().String("layout", "", "text inventory column order: checksum-first or filename-first")
	rootCmd.PersistentFlags().String("xml-prefix", "", "digest attribute prefix selecting XML checksums")
	rootCmd.PersistentFlags().StringP("format", "o", "", "report format: plain, pretty, json, yaml")
	rootCmd.PersistentFlags().StringP("report", "r", "", "also write the report to this file")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("algorithm", rootCmd.PersistentFlags().Lookup("algorithm"))
	_ = viper.BindPFlag("algorithms", rootCmd.PersistentFlags().Lookup("algorithms"))
	_ = viper.BindPFlag("buffer_size", rootCmd.PersistentFlags().Lookup("buffer-size"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("loader.layout", rootCmd.PersistentFlags().Lookup("layout"))
	_ = viper.BindPFlag("loader.xml_digest_prefix", rootCmd.PersistentFlags().Lookup("xml-prefix"))
	_ = viper.BindPFlag("report.format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("report.path", rootCmd.PersistentFlags().Lookup("report"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	v := viper.GetViper()
	config.Configure(v, cfgFile)
	if err := config.Read(v); err != nil {
		printError("%v", err)
	}
}

// loadConfig decodes the merged file, environment and flag settings.
func loadConfig() (*config.Config, error) {
	return config.Decode(viper.GetViper())
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a status message to stderr unless quiet mode is enabled.
// Stdout is reserved for digests, inventories and reports.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
