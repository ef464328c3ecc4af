// Package app wires configuration, extraction chains, storage and
// notification into a FormService shared by the server, MCP and export
// commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/email/noop"
	"voxform/internal/email/ses"
	"voxform/internal/extractor"
	"voxform/internal/extractor/cache"
	"voxform/internal/extractor/providers"
	"voxform/internal/logger"
	"voxform/internal/memory"
	"voxform/internal/observe"
	"voxform/internal/port"
	"voxform/internal/repository/sqlstore"
	"voxform/internal/service"
	"voxform/internal/session"
	"voxform/internal/storage"
	s3storage "voxform/internal/storage/s3"
	"voxform/internal/validator"
)

const janitorInterval = 5 * time.Minute

// App owns every long-lived collaborator of the form service.
type App struct {
	Config      *config.Config
	Service     service.FormService
	Tokens      service.SessionTokens
	Metrics     *observe.Metrics
	Submissions port.SubmissionRepository
	TextChain   *extractor.Chain
	AudioChain  *extractor.Chain

	sessions port.SessionStore
	text     []port.FieldExtractor
	audio    []port.FieldExtractor
	learner  *cache.Cache
	db       *sqlx.DB

	// closers run in reverse order on Close.
	closers []func(context.Context) error
	cancel  context.CancelFunc
}

// Option injects a collaborator instead of building it from config.
type Option func(*App)

// WithStores replaces the configured session and submission stores.
func WithStores(sessions port.SessionStore, subs port.SubmissionRepository) Option {
	return func(a *App) {
		a.sessions = sessions
		a.Submissions = subs
	}
}

// WithExtractors replaces the provider chains built from config.
func WithExtractors(text, audio []port.FieldExtractor) Option {
	return func(a *App) {
		a.text = text
		a.audio = audio
	}
}

// New builds the application. Background janitors stop when Close is called.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg}
	for _, o := range opts {
		o(a)
	}
	ctx, a.cancel = context.WithCancel(ctx)

	if err := a.initMetrics(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("app: init metrics: %w", err)
	}
	if err := a.initChains(); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("app: init providers: %w", err)
	}
	if err := a.initStores(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("app: init stores: %w", err)
	}
	archive, err := a.newArchive()
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("app: init archive: %w", err)
	}
	sender, err := a.newEmailSender()
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("app: init email: %w", err)
	}

	deps := service.FormServiceDeps{
		TextChain:      a.TextChain,
		AudioChain:     a.AudioChain,
		Sessions:       session.NewManager(a.sessions),
		Submissions:    a.Submissions,
		Validators:     validator.NewDefaultRegistry(),
		Archive:        archive,
		Email:          sender,
		Metrics:        a.Metrics,
		MaxInputLength: cfg.Limits.MaxInputLength,
		MaxAudioBytes:  cfg.Limits.MaxAudioBytes,
	}
	if a.learner != nil {
		deps.Learner = a.learner
	}
	a.Service = service.NewFormService(deps)
	a.Tokens = service.NewSessionTokens(cfg.Session)

	logger.Info(ctx, "application initialised",
		"text_chain", a.TextChain.Names(),
		"audio_chain", a.AudioChain.Names(),
		"session_store", storeName(cfg),
	)
	return a, nil
}

// Close stops janitors and releases resources in reverse order.
func (a *App) Close(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) initMetrics(ctx context.Context) error {
	if !a.Config.Metrics.Enabled {
		return nil
	}
	mp, shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "voxform"})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)
	a.Metrics, err = observe.NewMetrics(mp)
	return err
}

func (a *App) initChains() error {
	cfg := a.Config
	opts := []extractor.ChainOption{
		extractor.WithAttemptTimeout(cfg.Providers.AttemptTimeout),
		extractor.WithMetrics(a.Metrics),
	}

	if a.text == nil && a.audio == nil {
		providers.RegisterBuiltins()
		deps := extractor.Deps{Metrics: a.Metrics}
		// The cache keeps learning whenever it exists; it only answers
		// requests when providers.priority lists it.
		if cfg.Cache.Enabled || slices.Contains(cfg.Providers.Priority, cache.Name) {
			learner, err := cache.New(&cfg.Cache)
			if err != nil {
				return err
			}
			a.learner = learner
			deps.Learned = learner
		}

		var err error
		if a.text, err = extractor.BuildExtractors(cfg.Providers.Priority, cfg, deps); err != nil {
			return err
		}
		if a.audio, err = extractor.BuildExtractors(cfg.Providers.AudioPriority, cfg, deps); err != nil {
			return err
		}
	}

	a.TextChain = extractor.NewChain(domain.InputText, a.text, opts...)
	a.AudioChain = extractor.NewChain(domain.InputAudio, a.audio, opts...)
	return nil
}

func (a *App) initStores(ctx context.Context) error {
	if a.sessions != nil {
		if a.Submissions == nil {
			a.Submissions = memory.NewSubmissionRepo()
		}
		return nil
	}

	cfg := a.Config
	db, err := sqlstore.Open(cfg)
	if err != nil {
		return err
	}
	if db == nil {
		store := session.NewMemoryStore(cfg.Session.TTL)
		store.StartJanitor(ctx, janitorInterval)
		a.sessions = store
		a.Submissions = memory.NewSubmissionRepo()
		return nil
	}

	a.db = db
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	a.sessions = sqlstore.NewSessionRepo(db)
	a.Submissions = sqlstore.NewSubmissionRepo(db)
	if cfg.Session.TTL > 0 {
		go a.sweepIdle(ctx, cfg.Session.TTL)
	}
	return nil
}

// sweepIdle deletes database sessions untouched for longer than ttl.
func (a *App) sweepIdle(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sqlstore.DeleteIdle(ctx, a.db, time.Now().Add(-ttl))
			if err != nil {
				logger.Warn(ctx, "session janitor: sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug(ctx, "session janitor: idle sessions removed", "count", n)
			}
		}
	}
}

func (a *App) newArchive() (port.AudioArchive, error) {
	if !a.Config.Archive.Enabled {
		return storage.NewNoopArchive(), nil
	}
	client, err := s3storage.NewS3Client(&a.Config.Archive)
	if err != nil {
		return nil, err
	}
	return storage.NewAudioArchive(client, a.Config.Archive.Bucket), nil
}

func (a *App) newEmailSender() (port.EmailSender, error) {
	switch a.Config.Email.Provider {
	case "ses":
		return ses.NewSESSender(&a.Config.Email)
	case "", "noop":
		return noop.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", a.Config.Email.Provider)
	}
}

func storeName(cfg *config.Config) string {
	if cfg.Session.Store == "" {
		return "memory"
	}
	return cfg.Session.Store
}
