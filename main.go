package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"regbot/config"
	"regbot/handler"
	"regbot/repo"
	"regbot/service"
	"regbot/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registrations, err := repo.NewSheetsConnector(ctx, cfg.CredentialsFile, cfg.SpreadsheetID)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing sheets connector")
	}

	sessions := session.NewStore()
	broadcaster := service.NewBroadcaster(registrations)
	reg := handler.NewRegistrationHandler(sessions, registrations, cfg.AdminIDs, cfg.SupportUsername, cfg.PolicyURL)
	admin := handler.NewAdminHandler(sessions, cfg.AdminIDs, broadcaster)
	dispatcher := handler.NewDispatcher(sessions, reg, admin)

	b, err := bot.New(cfg.BotToken, bot.WithDefaultHandler(dispatcher.Handle))
	if err != nil {
		log.Fatal().Err(err).Msg("error creating bot")
	}

	reporter := service.NewStatsReporter(registrations, sessions, cfg.AdminIDs)
	go reporter.Run(ctx, b)

	log.Info().Int("admins", len(cfg.AdminIDs)).Msg("bot started")
	b.Start(ctx)
	log.Info().Msg("bot stopped")
}
