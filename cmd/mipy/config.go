package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mipy/internal/config"
	"mipy/internal/console"
	"mipy/internal/constants"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the router and Telegram settings interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := config.Load(provider.Path)
		if err != nil && !errors.Is(err, config.ErrNotFound) {
			return err
		}

		console.PrintBanner()
		console.PrintHint("Settings file: " + provider.Path)
		if os.Getenv(constants.EnvSecretKey) != "" {
			console.PrintHint(console.ColorGreen + "🔒 Secrets are sealed with " + constants.EnvSecretKey + console.ColorReset)
		}
		fmt.Println()

		updated := console.RunConfigWizard(bufio.NewReader(os.Stdin), current)
		if _, err := updated.RouterSettings(); err != nil {
			return err
		}
		if err := config.Save(provider.Path, updated); err != nil {
			return err
		}

		console.PrintSep()
		console.PrintOK("Settings saved")
		console.PrintHint("Run `mipy test-router` to check the connection")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := provider.Settings()
		if err != nil {
			return err
		}
		console.PrintField("host", s.RouterHost, console.ColorCyan)
		console.PrintField("port", s.RouterPort, console.ColorReset)
		console.PrintField("api-ssl", fmt.Sprint(s.UseSSL), console.ColorReset)
		console.PrintField("verify", fmt.Sprint(s.VerifySSL), console.ColorReset)
		console.PrintField("username", s.Username, console.ColorReset)
		console.PrintField("password", console.Mask(s.Password), console.ColorDim)
		console.PrintField("token", console.Mask(s.TelegramToken), console.ColorDim)
		console.PrintField("chat id", s.TelegramChatID, console.ColorReset)
		console.PrintField("login url", s.HotspotLoginURL, console.ColorReset)
		return nil
	},
}

func init() {
	configCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
}
