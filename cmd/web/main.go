package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/courtside/internal/config"
	"github.com/AdamBeresnev/courtside/internal/db"
	"github.com/AdamBeresnev/courtside/internal/notify"
	"github.com/AdamBeresnev/courtside/internal/service"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/jmoiron/sqlx"
)

type application struct {
	db          *sqlx.DB
	userStore   *store.UserStore
	users       *service.UserService
	tournaments *service.TournamentService
	entries     *service.EntryService
	schedule    *service.ScheduleService
	matches     *service.MatchService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsURL); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	notifier, err := newDispatcher(cfg)
	if err != nil {
		log.Fatal("Failed to set up notifications:", err)
	}

	tournamentStore := store.NewTournamentStore()
	userStore := store.NewUserStore()
	app := &application{
		db:          database,
		userStore:   userStore,
		users:       service.NewUserService(database, userStore, tournamentStore, notifier),
		tournaments: service.NewTournamentService(database, tournamentStore, userStore, notifier),
		entries:     service.NewEntryService(database, tournamentStore, userStore, notifier),
		schedule:    service.NewScheduleService(database, tournamentStore, userStore),
		matches:     service.NewMatchService(database, tournamentStore, userStore),
	}

	router := newRouter(app, cfg.AllowedOrigins)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	log.Printf("Server starting on http://localhost%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	// let queued notifications go out before the process exits
	notifier.Wait()
}

// newDispatcher enables each channel only when it is configured.
func newDispatcher(cfg *config.Config) (*notify.Dispatcher, error) {
	d := &notify.Dispatcher{}

	if cfg.ResendAPIKey != "" {
		d.Email = notify.NewEmailChannel(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		slog.Info("RESEND_API_KEY not set, email notifications disabled")
	}

	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramChannel(cfg.TelegramToken, cfg.BroadcastChatID)
		if err != nil {
			return nil, err
		}
		d.Telegram = tg
		if cfg.BroadcastChatID != 0 {
			d.Broadcast = tg
		}
	} else {
		slog.Info("TELEGRAM_TOKEN not set, telegram notifications disabled")
	}

	return d, nil
}
