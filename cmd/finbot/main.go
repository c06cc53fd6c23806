package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ovolkov/finbot/internal/bot"
	"github.com/ovolkov/finbot/internal/config"
	"github.com/ovolkov/finbot/internal/conversation"
	"github.com/ovolkov/finbot/internal/database"
	"github.com/ovolkov/finbot/internal/ledger"
	"github.com/ovolkov/finbot/internal/logger"
	"github.com/ovolkov/finbot/internal/report"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.Telegram.Token == "" {
		log.Fatal().Msg("telegram token is not set (FINBOT_TELEGRAM_TOKEN)")
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	svc := ledger.NewService(db)
	engine := conversation.NewEngine(svc, cfg.UI.CurrencySymbol, cfg.UI.WishlistPageSize, cfg.UI.HistoryPageSize, log)
	reports := report.NewService(svc.Transactions, cfg.Report.WorkDir, cfg.Report.CleanupDelay, cfg.UI.CurrencySymbol, log)

	b, err := bot.New(cfg.Telegram.Token, cfg.Telegram.PollTimeout, engine, reports, log)
	if err != nil {
		log.Fatal().Err(err).Msg("start bot")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		b.Stop()
	}()

	b.Start()
}
