// Package app wires the client's services from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"entervio-client/internal/api"
	"entervio-client/internal/auth"
	"entervio-client/internal/config"
	"entervio-client/internal/feedback"
	"entervio-client/internal/interview"
	"entervio-client/internal/interviews"
	"entervio-client/internal/jobs"
	"entervio-client/internal/media"
	"entervio-client/internal/metrics"
	"entervio-client/internal/observability"
	"entervio-client/internal/router"
	"entervio-client/internal/setup"
	"entervio-client/internal/storage"
)

// LocalStorageFile is the file under the data dir that backs local storage.
const LocalStorageFile = "local_storage.json"

type App struct {
	Config  *config.AppConfig
	Storage storage.LocalStorage
	Metrics *metrics.Metrics
	API     *api.Client
	Auth    *auth.Context
	Router  *router.Router
	Catalog *config.Catalog
	Capture media.AudioCapture
	Player  media.AudioPlayer
	Logger  *slog.Logger
}

// Options replaces parts of the default wiring, mostly for tests.
type Options struct {
	Storage    storage.LocalStorage
	HTTPClient *http.Client
	Capture    media.AudioCapture
	Player     media.AudioPlayer
	Logger     *slog.Logger
}

func New(ctx context.Context, cfg *config.AppConfig, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = observability.Logger()
	}

	local := opts.Storage
	if local == nil {
		fs, err := storage.OpenFileStorage(filepath.Join(cfg.Storage.DataDir, LocalStorageFile))
		if err != nil {
			return nil, err
		}
		local = fs
	}

	catalog, err := config.LoadCatalog(cfg.PersonasFile)
	if err != nil {
		return nil, fmt.Errorf("loading interviewer catalog: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Backend.Timeout}
	}

	m := metrics.NewMetrics()
	client := api.NewClient(api.Options{
		BaseURL:    cfg.Backend.URL,
		HTTPClient: httpClient,
		Tokens:     local,
		Metrics:    m,
		Logger:     logger,
	})

	provider := auth.NewSupabaseProvider(cfg.Supabase, local, httpClient, logger)
	authCtx := auth.NewContext(provider, local, logger)
	authCtx.Init(ctx)

	capture := opts.Capture
	if capture == nil {
		capture = media.NewFFmpegCapture(cfg.Audio.FFmpegPath, cfg.Audio.InputFormat, cfg.Audio.InputDevice)
	}
	player := opts.Player
	if player == nil {
		player = media.NewFFplayPlayer(cfg.Audio.FFplayPath)
	}

	return &App{
		Config:  cfg,
		Storage: local,
		Metrics: m,
		API:     client,
		Auth:    authCtx,
		Router:  router.New(),
		Catalog: catalog,
		Capture: capture,
		Player:  player,
		Logger:  logger,
	}, nil
}

func (a *App) Close() {
	a.Auth.Close()
}

func (a *App) InterviewStore() *interview.Store {
	return interview.NewStore(interview.Options{
		Backend:  a.API,
		Capture:  a.Capture,
		Player:   a.Player,
		Language: a.Config.Backend.Language,
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	})
}

func (a *App) SetupStore() *setup.Store {
	return setup.NewStore(a.API, a.Metrics, a.Logger)
}

func (a *App) FeedbackStore() *feedback.Store {
	return feedback.NewStore(a.API, a.Logger)
}

func (a *App) InterviewsStore() *interviews.Store {
	return interviews.NewStore(a.API, a.Logger)
}

func (a *App) JobsStore() *jobs.Store {
	return jobs.NewStore(a.API, a.Logger)
}
