package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"jersey-bot/internal/config"
	"jersey-bot/internal/jersey"
	"jersey-bot/internal/server"
	"jersey-bot/internal/session"
	"jersey-bot/internal/sheets"
	"jersey-bot/internal/storage/sqlite"
	"jersey-bot/internal/tgbot"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	log.Info("bye")
}

func run(cfg config.Config, log *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return errors.Wrap(err, "storage")
	}
	defer store.Close()

	botApp, err := tgbot.New(cfg.TelegramToken, cfg.Workers, log)
	if err != nil {
		return err
	}

	var sink jersey.OrderSink
	if cfg.SheetsEnabled() {
		sheetsClient, err := sheets.New(ctx, cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID, loc)
		if err != nil {
			return errors.Wrap(err, "sheets")
		}
		if err := sheetsClient.EnsureHeader(ctx); err != nil {
			log.Warn("sheets header", "error", err)
		}
		sink = sheetsClient
		log.Info("mirroring orders to google sheets", "spreadsheet_id", sheetsClient.SpreadsheetID())
	}

	base := cfg.BasePublicURL
	if base == "" {
		base = "http://localhost" + cfg.HTTPAddr()
	}

	bot, err := jersey.New(jersey.Options{
		Store:     store,
		Sessions:  session.NewStore(cfg.SessionTTL, time.Now),
		Messenger: botApp,
		Sink:      sink,
		Admins:    cfg.AdminTGIDs,
		Location:  loc,
		Logger:    log,
		ExportURL: server.ExportURL(base, cfg.ExportSecret),
	})
	if err != nil {
		return err
	}

	httpSrv := server.New(cfg.HTTPAddr(), cfg.ExportSecret, bot, log)

	// Start HTTP server
	go func() {
		log.Info("HTTP listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			stop()
		}
	}()

	// Start Telegram
	botErr := make(chan error, 1)
	go func() {
		botErr <- botApp.Run(ctx, bot)
	}()

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down...")
		<-botErr
	case err := <-botErr:
		runErr = errors.Wrap(err, "telegram")
	}
	stop()

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctxTimeout); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	return runErr
}
