package main

import (
	"log"

	"mipy/internal/config"
	"mipy/internal/server"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: Failed to read .env: %v", err)
	}

	s, err := server.NewServer(config.Path())
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}

	s.Run()
}
