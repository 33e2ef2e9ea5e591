// Package bootstrap wires the application from configuration. Both binaries
// build on it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/PabloGalante/canvas-agent/internal/adapters/http"
	"github.com/PabloGalante/canvas-agent/internal/adapters/llm"
	"github.com/PabloGalante/canvas-agent/internal/adapters/render"
	firestorestore "github.com/PabloGalante/canvas-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/canvas-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/canvas-agent/internal/app/canvas"
	"github.com/PabloGalante/canvas-agent/internal/app/conversation"
	"github.com/PabloGalante/canvas-agent/internal/app/prompts"
	"github.com/PabloGalante/canvas-agent/internal/app/routing"
	"github.com/PabloGalante/canvas-agent/internal/app/search"
	"github.com/PabloGalante/canvas-agent/internal/config"
	"github.com/PabloGalante/canvas-agent/internal/domain"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config   *config.Config
	Language prompts.Language
	LLM      domain.LLMClient

	Router       *routing.Router
	Canvas       *canvas.Generator
	Search       *search.Service
	Conversation *conversation.Service

	closers []func() error
}

// New builds the LLM client, the stores and the services described by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := observability.WithFields("component", "bootstrap")
	app := &App{
		Config:   cfg,
		Language: prompts.ForCode(cfg.Language),
	}

	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		app.LLM = llm.NewMockLLM()
	} else {
		log.Info("using Gemini LLM client", "router_model", cfg.RouterModel, "canvas_model", cfg.CanvasModel)
		client, err := llm.NewGeminiClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		app.LLM = client
	}

	var (
		sessionStore domain.SessionStore
		messageStore domain.MessageStore
	)

	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("init firestore store: %w", err)
		}
		app.closers = append(app.closers, fsStore.Close)

		// 1 store, implements 2 interfaces
		sessionStore = fsStore
		messageStore = fsStore

	default:
		log.Info("using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		messageStore = memstore.NewMessageStore()
	}

	app.Router = routing.NewRouter(app.LLM, cfg.RouterModel, app.Language)
	app.Canvas = canvas.NewGenerator(app.LLM, canvas.Config{
		Model:           cfg.CanvasModel,
		ClassifierModel: cfg.RouterModel,
		ThinkingBudget:  cfg.ThinkingBudget,
	}, app.Language)
	app.Search = search.NewService(app.LLM, cfg.SearchModel, app.Language)

	app.Conversation = conversation.NewService(conversation.Deps{
		Router:   app.Router,
		Canvas:   app.Canvas,
		Search:   app.Search,
		Sessions: sessionStore,
		Messages: messageStore,
		Language: app.Language,
	})

	return app, nil
}

// Handler returns the HTTP API for the app.
func (a *App) Handler() *httpadapter.Server {
	return httpadapter.NewServer(a.Conversation, render.NewPreviewer(), httpadapter.Options{
		RateLimit: a.Config.RateLimit,
	})
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	api := a.Handler()
	srv := &http.Server{
		Addr:    ":" + a.Config.Port,
		Handler: api,
	}

	errc := make(chan error, 1)
	go func() {
		observability.Logger().Info("canvas API listening", "port", a.Config.Port, "language", a.Language.Code)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		observability.Logger().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		// Shutdown does not track hijacked connections.
		if err := api.Wait(shutdownCtx); err != nil {
			observability.Logger().Warn("websocket requests still running at shutdown", "error", err)
		}
		return nil
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
