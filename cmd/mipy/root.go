package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mipy/internal/config"
	"mipy/internal/constants"
	"mipy/internal/router"
	"mipy/internal/voucher"
)

var (
	// Global flags
	cfgFile string
	envFile string
	timeout time.Duration

	// Shared state set during PersistentPreRun
	provider *config.FileProvider
)

var rootCmd = &cobra.Command{
	Use:   constants.AppName,
	Short: "Mikrotik hotspot voucher generator",
	Long: `mipy provisions and inspects Mikrotik hotspot vouchers.
Run "mipy config" once, then "mipy bot" for the Telegram bot or
"mipy shell" for the same dialogues in the terminal.`,
	Version:       constants.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := config.LoadEnv(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		} else if err := config.LoadEnv(); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		path := cfgFile
		if path == "" {
			path = config.Path()
		}
		provider = config.NewFileProvider(path)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default $MIPY_CONFIG or config.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout for one-shot router commands")
}

func newService() *voucher.Service {
	return voucher.NewService(provider.Router, router.NewManager())
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
