package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"copart-watcher/config"
	"copart-watcher/notify"
	"copart-watcher/scraper/copart"
	"copart-watcher/services"
	"copart-watcher/storage"
	"copart-watcher/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	if err := run(cfg, logger); err != nil {
		logger.Error("Sync failed: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger) error {
	// ================== Bootstrap ====================
	logger.Info("Copart Lot Watcher")
	logger.Info("Max pages: %d | Page delay: %s | Selector timeout: %s | Retries: %d",
		cfg.MaxPages, cfg.PageDelay, cfg.SelectorTimeout, cfg.MaxRetries)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =================== PostgreSQL Setup ========================================
	store, err := storage.NewPostgresStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Make sure PostgreSQL is reachable at DATABASE_URL")
		return err
	}
	defer store.Close()

	if err := store.CreateTables(); err != nil {
		return err
	}

	// =============== Telegram ===================================
	var notifier notify.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		if err != nil {
			return err
		}
		notifier = tg
	} else {
		logger.Warn("Telegram credentials missing, price alerts disabled")
	}

	// =============== Browser session ===================================
	browser, err := copart.NewBrowser(logger)
	if err != nil {
		return err
	}
	defer browser.Close()

	// =============== Sync ===================================
	orchestrator := services.NewSyncOrchestrator(
		copart.NewPaginator(browser, cfg, logger),
		copart.NewFieldExtractor(cfg.SiteOrigin),
		store,
		services.NewChangeDetector(store, logger),
		notifier,
		storage.NewCSVWriter(cfg.CSVFilePath, logger),
		logger,
	)

	summary, err := orchestrator.Run(ctx, cfg.BaseURL, cfg.MaxPages)
	services.PrintRunReport(summary)
	return err
}
