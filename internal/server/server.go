package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mipy/internal/bot"
	"mipy/internal/config"
	"mipy/internal/constants"
	"mipy/internal/dialogue"
	"mipy/internal/logger"
	"mipy/internal/router"
	"mipy/internal/telegram"
	"mipy/internal/voucher"
)

// Server runs the Telegram front end of the voucher bot.
type Server struct {
	Store    dialogue.Store
	Provider *config.FileProvider
	Service  *voucher.Service
	Journal  *logger.Journal
	Telegram *telegram.Client
	Bot      *bot.Bot
}

func NewServer(configPath string) (*Server, error) {
	provider := config.NewFileProvider(configPath)
	settings, err := provider.Settings()
	if errors.Is(err, config.ErrNotFound) {
		return nil, fmt.Errorf("no settings at %s, run `%s config` first", provider.Path, constants.AppName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	tg, err := telegram.New(settings.TelegramToken)
	if err != nil {
		return nil, err
	}
	if chatID, ok := settings.ChatID(); ok {
		tg.AllowedChat = chatID
		log.Printf("🔒 Restricted to chat %d", chatID)
	}

	journal, err := logger.Open()
	if err != nil {
		log.Printf("Warning: Failed to initialize operation journal: %v", err)
	}

	store := dialogue.NewStore()
	service := voucher.NewService(provider.Router, router.NewManager())

	s := &Server{
		Store:    store,
		Provider: provider,
		Service:  service,
		Journal:  journal,
		Telegram: tg,
	}
	s.Bot = bot.New(tg, service, store, journal)
	s.Bot.Settings = provider.Settings

	return s, nil
}

func (s *Server) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Telegram.Run(ctx, s.Bot)
	}()

	log.Printf("🚀 %s bot v%s started", constants.AppName, constants.Version)
	if path := s.Journal.Path(); path != "" {
		log.Printf("📝 Journal: %s", path)
	}

	select {
	case <-sigChan:
		log.Println("🛑 Shutting down bot...")
	case <-done:
		log.Println("🛑 Update channel closed")
	}
	cancel()
	<-done

	s.Cleanup()
	log.Println("✅ Bot stopped")
}

func (s *Server) Cleanup() {
	if err := s.Store.Close(); err != nil {
		log.Printf("Failed to close dialogue store: %v", err)
	}
	s.Journal.Close()
}
