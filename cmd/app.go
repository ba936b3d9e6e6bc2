package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/config"
	"github.com/examshare/examshare-client/internal/credentials"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/metrics"
	"github.com/examshare/examshare-client/internal/model"
	"github.com/examshare/examshare-client/internal/navigation"
	"github.com/examshare/examshare-client/internal/repository/postgres"
	redisrepo "github.com/examshare/examshare-client/internal/repository/redis"
	"github.com/examshare/examshare-client/internal/service"
)

// app holds everything a command needs. It is built once per process.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	in       io.Reader
	out      io.Writer
	session  *credentials.Session
	client   *apiclient.Client
	files    *http.Client
	registry *prometheus.Registry

	auth            *service.Auth
	epreuves        *service.Epreuves
	commentaires    *service.Commentaires
	evaluations     *service.Evaluations
	recommendations *service.Recommendations
	admin           *service.Admin

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, out, errOut io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: log, in: os.Stdin, out: out, registry: prometheus.NewRegistry()}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.session = credentials.NewSession(store, cfg.Credentials.Profile)

	httpClient, err := apiclient.NewTransport(apiclient.TransportConfig{
		Timeout: cfg.API.Timeout,
		CAFile:  cfg.API.CAFile,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build transport: %w", err)
	}
	a.files = httpClient

	opts := []apiclient.Option{
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithLogger(log),
		apiclient.WithMetrics(metrics.NewPrometheusRecorderWithRegistry(a.registry)),
		apiclient.WithNavigator(navigation.NewNotice(errOut)),
		apiclient.WithLoginPath(cfg.API.LoginPath),
		apiclient.WithRefreshPath(cfg.API.RefreshPath),
	}
	if cfg.API.CoalesceRefresh {
		opts = append(opts, apiclient.WithRefreshCoalescing())
	}

	a.client, err = apiclient.New(cfg.API.BaseURL, a.session, opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	a.auth = service.NewAuth(a.client, a.session, log)
	a.epreuves = service.NewEpreuves(a.client, log)
	a.commentaires = service.NewCommentaires(a.client, log)
	a.evaluations = service.NewEvaluations(a.client, log)
	a.recommendations = service.NewRecommendations(a.client, log)
	a.admin = service.NewAdmin(a.client, log)

	return a, nil
}

func (a *app) openStore(ctx context.Context) (model.CredentialStore, error) {
	switch a.cfg.Credentials.Backend {
	case config.BackendMemory:
		return credentials.NewMemoryStore(), nil
	case config.BackendFile:
		store, err := credentials.NewFileStore(a.cfg.Credentials.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open credentials file: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		return redisrepo.NewCredentialStore(rdb, a.cfg.Redis.Prefix, a.cfg.Redis.TTL), nil
	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, a.cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize credential database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return newPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown credentials backend %q", a.cfg.Credentials.Backend)
	}
}

// newPostgresStore keeps every profile in the default namespace: the session
// already prefixes its keys with the profile.
func newPostgresStore(db *postgres.Connection) model.CredentialStore {
	return postgres.NewCredentialRepository(db, "")
}

// Close releases backend connections.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close backend", "error", err)
		}
	}
	a.closers = nil
}

// flushMetrics writes the counters to the configured textfile, if any.
func (a *app) flushMetrics() {
	if a.cfg.Metrics.Textfile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile, a.registry); err != nil {
		a.logger.Warn("failed to write metrics textfile", "path", a.cfg.Metrics.Textfile, "error", err)
	}
}
