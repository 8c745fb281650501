package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/callflow"
	"github.com/superparty/callcenter/internal/config"
	"github.com/superparty/callcenter/internal/events"
	"github.com/superparty/callcenter/internal/handler"
	"github.com/superparty/callcenter/internal/ledger"
	"github.com/superparty/callcenter/internal/service/classifier"
	"github.com/superparty/callcenter/internal/service/dispatcher"
	"github.com/superparty/callcenter/internal/service/resolver"
	"github.com/superparty/callcenter/internal/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file, continuing with system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Ledger: external tabular store, or in-memory when unconfigured.
	var store ledger.Store
	if cfg.Ledger.Enabled() {
		store = ledger.NewSheetsStore(ledger.SheetsConfig{
			BaseURL:       cfg.Ledger.BaseURL,
			SpreadsheetID: cfg.Ledger.SpreadsheetID,
			Token:         cfg.Ledger.Token,
			Timeout:       cfg.Ledger.Timeout,
		})
	} else {
		log.Warn().Msg("ledger store not configured, records are kept in memory only")
		store = ledger.NewMemoryStore()
	}
	ledgerClient := ledger.NewClient(store)

	resolverSvc := resolver.New(ledgerClient, log)

	// Classifier: LLM-backed when credentials exist, fallback-only otherwise.
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("chat model unavailable, classifier will answer with the fallback reply")
		chatModel = nil
	}
	classifierSvc, err := classifier.New(ctx, chatModel, classifier.Config{
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize classifier")
	}

	controller := callflow.New(callflow.Targets{
		Rezervari: cfg.Routing.RezervariPhone,
		Info:      cfg.Routing.InfoPhone,
		Agent:     cfg.Routing.AgentPhone,
	}, cfg.Routing.MenuAction)

	var messenger transport.Messenger
	if cfg.Messaging.Enabled() {
		messenger = transport.NewMessagingClient(transport.MessagingConfig{
			BaseURL:    cfg.Messaging.BaseURL,
			AccountSID: cfg.Messaging.AccountSID,
			AuthToken:  cfg.Messaging.AuthToken,
			FromNumber: cfg.Messaging.WhatsAppNumber,
		})
	} else {
		log.Warn().Msg("messaging credentials not configured, outbound sends are dry-run")
		messenger = transport.DryRunMessenger{Log: log}
	}

	bus := events.NewBus()

	dispatcherSvc := dispatcher.New(ledgerClient, resolverSvc, classifierSvc, controller, messenger, bus, log)

	router := handler.NewRouter(dispatcherSvc, bus, log)

	startServer(ctx, cfg.Server, router, log)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log zerolog.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("call center engine listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
