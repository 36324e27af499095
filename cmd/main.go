// Package main provides the API to manage accounts and money transfers between them.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-transfers/cmd/httpserver"
	"github.com/go-petr/pet-transfers/internal/middleware"
	"github.com/go-petr/pet-transfers/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	server, err := httpserver.New(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}
	defer server.Close()

	logger.Info().Str("address", config.ServerAddress).Msg("TRANSFER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Error().Err(err).Msg("cannot start server")
	}
}
