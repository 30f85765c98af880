package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"scalper-journal-go/internal/config"
	"scalper-journal-go/internal/database"
	"scalper-journal-go/internal/discipline"
	"scalper-journal-go/internal/journal"
	"scalper-journal-go/internal/leaderboard"
	"scalper-journal-go/internal/logger"
	"scalper-journal-go/internal/notify"
	"scalper-journal-go/internal/store"
	"scalper-journal-go/internal/wallet"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database. A broken database downgrades the journal to
	// an in-memory store instead of refusing to start.
	var st store.Store
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Warn("Database unavailable, journal will not persist", zap.Error(err))
		st = store.NewMemory()
	} else {
		st = store.NewGorm(db)
	}

	settings, err := st.Settings()
	if err != nil {
		log.Fatal("Failed to load settings", zap.Error(err))
	}

	clock := discipline.SystemClock()
	notifier := notify.NewLogNotifier(log)

	guard := discipline.NewGuard(clock, notifier, log, discipline.Config{
		DailyMaxLoss: settings.DailyMaxLoss,
		LockOnHit:    settings.LockOnHit,
		Locked:       settings.Locked,
	})
	defer guard.Close()
	guard.OnChange(func(locked bool) {
		s, err := st.Settings()
		if err != nil {
			log.Error("Failed to load settings for lock persistence", zap.Error(err))
			return
		}
		s.Locked = locked
		if err := st.SaveSettings(s); err != nil {
			log.Error("Failed to persist lock state", zap.Error(err))
		}
	})

	// The leaderboard is optional; without a base URL sessions close locally
	// and nothing is pushed upstream.
	var lb *leaderboard.Client
	var recorder journal.SessionRecorder
	if cfg.Leaderboard.BaseURL != "" {
		lb = leaderboard.NewClient(&cfg.Leaderboard, log)
		recorder = lb
	}

	manager := journal.NewManager(log, st, guard, recorder, clock, cfg.Account.UserID)
	book := wallet.NewBook(st)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, st, manager, guard, book, lb, clock, cfg.Webhook.ApiKey)
	apiHandler.Register(mux)

	// Static file serving for CSS, JS, etc.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))

	// HTML template serving
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/templates/index.html")
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting web server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
