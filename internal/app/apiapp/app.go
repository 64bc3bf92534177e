package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/config"
	"github.com/ivanholub/giveline/backend/internal/infra/ledger"
	s3infra "github.com/ivanholub/giveline/backend/internal/infra/s3"
	"github.com/ivanholub/giveline/backend/internal/infra/telegram"
	pgrepo "github.com/ivanholub/giveline/backend/internal/repo/postgres"
	redrepo "github.com/ivanholub/giveline/backend/internal/repo/redis"
	analyticssvc "github.com/ivanholub/giveline/backend/internal/services/analytics"
	authsvc "github.com/ivanholub/giveline/backend/internal/services/auth"
	claimssvc "github.com/ivanholub/giveline/backend/internal/services/claims"
	evidencesvc "github.com/ivanholub/giveline/backend/internal/services/evidence"
	resolutionsvc "github.com/ivanholub/giveline/backend/internal/services/resolution"
	suspensionsvc "github.com/ivanholub/giveline/backend/internal/services/suspension"
	workflowsvc "github.com/ivanholub/giveline/backend/internal/services/workflow"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler

	analytics *analyticssvc.Service
	items     *pgrepo.ItemRepo
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	itemRepo := pgrepo.NewItemRepo(pool)
	auditRepo := pgrepo.NewAuditRepo(pool)
	reviewerRepo := pgrepo.NewReviewerRepo(pool)
	accountRepo := pgrepo.NewAccountRepo(pool)
	leaderboardCache := redrepo.NewLeaderboardCacheRepo(redisClient)

	inTx := func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, pool, fn)
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, reviewerRepo)
	evidenceStorage := evidencesvc.NewStorage(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := evidenceStorage.EnsureBucket(ctx); err != nil {
			log.Warn("ensure evidence bucket failed", zap.Error(err))
		}
	}

	var notifier resolutionsvc.Notifier
	if cfg.Notify.TelegramToken != "" {
		n, err := telegram.NewNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, log)
		if err != nil {
			log.Warn("telegram notifier init failed, decisions will not be announced", zap.Error(err))
		} else {
			notifier = n
		}
	}

	var ledgerClient resolutionsvc.LedgerClient
	if cfg.Ledger.BaseURL != "" {
		ledgerClient = ledger.NewClient(cfg.Ledger.BaseURL, cfg.Ledger.APIToken, cfg.Ledger.Timeout, log)
	}
	effects := resolutionsvc.NewDomainEffects(ledgerClient, log)

	workflowService := workflowsvc.NewService(itemRepo, auditRepo, inTx, log)
	claimService := claimssvc.NewService(itemRepo, auditRepo, inTx, log)
	resolutionService := resolutionsvc.NewService(itemRepo, auditRepo, effects, notifier, evidenceStorage, inTx, log)
	suspensionService := suspensionsvc.NewService(itemRepo, auditRepo, accountRepo, inTx, log)

	targets := make([]analyticssvc.MilestoneTarget, 0, len(cfg.Analytics.Milestones))
	for _, m := range cfg.Analytics.Milestones {
		targets = append(targets, analyticssvc.MilestoneTarget{
			ID:     m.ID,
			Title:  m.Title,
			Group:  m.Group,
			Target: m.Target,
		})
	}
	analyticsService := analyticssvc.NewService(auditRepo, reviewerRepo, leaderboardCache, itemRepo, targets, cfg.Analytics.CacheTTL, log)

	RegisterRoutes(r, Dependencies{
		JWTManager:        jwtManager,
		AuthService:       authService,
		WorkflowService:   workflowService,
		ClaimService:      claimService,
		ResolutionService: resolutionService,
		SuspensionService: suspensionService,
		AnalyticsService:  analyticsService,
		EvidenceStorage:   evidenceStorage,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
		analytics:  analyticsService,
		items:      itemRepo,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// AnalyticsService exposes the aggregator for the recompute job.
func (a *App) AnalyticsService() *analyticssvc.Service {
	return a.analytics
}

// ItemRepo exposes the item store for the stale-claim report.
func (a *App) ItemRepo() *pgrepo.ItemRepo {
	return a.items
}
