package main

import (
	"os"

	"github.com/rs/zerolog"

	"bloodconnect/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("server failed")
	}
}
