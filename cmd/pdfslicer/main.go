package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfslicer/internal/config"
)

func main() {
	// .env is optional
	_ = godotenv.Load()
	cfg := config.FromEnv()

	if err := newApp(cfg, os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
