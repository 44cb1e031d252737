package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mipy/internal/bot"
	"mipy/internal/console"
	"mipy/internal/logger"
	"mipy/internal/server"
	"mipy/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := server.NewServer(provider.Path)
		if err != nil {
			return err
		}
		s.Run()
		return nil
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run the voucher dialogues in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := logger.Open()
		if err != nil {
			log.Printf("Warning: Failed to initialize operation journal: %v", err)
		}
		defer journal.Close()

		return console.Run(cmd.Context(), newService(), journal, func(b *bot.Bot) {
			b.Settings = provider.Settings
		})
	},
}

var testTelegramCmd = &cobra.Command{
	Use:   "test-telegram",
	Short: "Validate the bot token and send a test message",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := provider.Settings()
		if err != nil {
			return err
		}
		if s.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
		chatID, _ := s.ChatID()
		name, err := telegram.Test(s.TelegramToken, chatID)
		if err != nil {
			console.PrintFail(err.Error())
			return err
		}
		console.PrintOK("Connected to Telegram as @" + name)
		if chatID == 0 {
			console.PrintHint("TELEGRAM_CHAT_ID is not set, no test message sent")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(botCmd, shellCmd, testTelegramCmd)
}
