// Package cmd implements the voucherscan command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/receiptworks/voucherscan/internal/config"
)

var (
	configLoader *config.Loader
	globalConfig *config.Config
	cfgFile      string
)

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "voucherscan",
	Short: "Extract structured data from scanned purchase vouchers",
	Long: `voucherscan reads scanned purchase vouchers and receipts and turns
them into structured records: voucher number, date, supplier, line
items, deductions and totals.

The pipeline analyzes image quality, preprocesses adaptively, runs
tesseract OCR under two page-segmentation assumptions, repairs the
usual OCR garbling in receipt text, and parses and cross-validates
the extracted fields.

Examples:
  voucherscan scan voucher.jpg
  voucherscan scan statement.pdf --pages 1-3 --format yaml
  voucherscan batch scans/ --workers 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/voucherscan, /etc/voucherscan)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("strategy", "optimal",
		"preprocessing strategy (baseline, conservative, aggressive, adaptive, optimal)")
	rootCmd.PersistentFlags().String("format", "json", "output format (json, yaml, text)")
	rootCmd.PersistentFlags().String("languages", "", "comma-separated tesseract languages (default eng)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("preprocess.strategy", rootCmd.PersistentFlags().Lookup("strategy"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}

		var level slog.Level
		if globalConfig.Verbose {
			level = slog.LevelDebug
		} else {
			switch globalConfig.LogLevel {
			case "debug":
				level = slog.LevelDebug
			case "warn":
				level = slog.LevelWarn
			case "error":
				level = slog.LevelError
			default:
				level = slog.LevelInfo
			}
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	}
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the resolved configuration including flag
// overrides. Flag binding happens after the initial load, so the
// viper state is re-unmarshaled here.
func getConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}
	var cfg config.Config
	if err := configLoader.GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}
	return &cfg
}
