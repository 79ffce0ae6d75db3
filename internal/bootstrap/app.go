package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	authhandler "housy-backend/internal/auth"
	"housy-backend/internal/enrichment"
	"housy-backend/internal/events"
	"housy-backend/internal/leads"
	"housy-backend/internal/photos"
	"housy-backend/internal/properties"
	"housy-backend/internal/services/health"
	"housy-backend/internal/shared/auth"
	"housy-backend/internal/shared/config"
	"housy-backend/internal/shared/server"
	"housy-backend/internal/shared/server/middleware"
	"housy-backend/internal/shared/storage/db"
	"housy-backend/internal/shared/storage/object"
	cloudinarystore "housy-backend/internal/shared/storage/object/cloudinary"
	localstore "housy-backend/internal/shared/storage/object/local"
	miniostore "housy-backend/internal/shared/storage/object/minio"
	s3store "housy-backend/internal/shared/storage/object/s3"
	"housy-backend/internal/shared/telemetry"
	"housy-backend/internal/users"
	"housy-backend/internal/visits"
)

const (
	redisDialTimeout   = 5 * time.Second
	bucketCheckTimeout = 10 * time.Second
	aiRequestTimeout   = 30 * time.Second
	enrichmentTTL      = time.Hour
)

// App holds shared dependencies and the wired router.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Redis   *redis.Client
	Backend object.Backend
	Tokens  *auth.TokenManager
	Events  events.Publisher

	UsersService      *users.Service
	PropertiesService *properties.Service
	PhotosService     *photos.Service
	LeadsService      *leads.Service
	VisitsService     *visits.Service
	EnrichmentService *enrichment.Service
}

// Build connects infrastructure, selects the storage backend and wires every handler.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	cfg.StorageProvider = object.NormalizeProvider(cfg.StorageProvider)

	secret, err := auth.ResolveSecret(cfg.Env, cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		telemetry.Warn("bootstrap: JWT_SECRET empty; using development secret", map[string]any{"env": cfg.Env})
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, filesDir, err := buildBackend(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	publisher, err := buildPublisher(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Redis:   buildRedis(ctx, cfg),
		Backend: backend,
		Tokens:  auth.NewTokenManager(secret, cfg.JWTExpiresIn),
		Events:  publisher,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Tokens: app.Tokens,
		Health: health.NewService(pinger(sqlDB), cfg.StorageProvider),
		Auth:   authhandler.NewHandler(app.UsersService, app.Tokens),
		GoogleAuth: authhandler.NewGoogleService(authhandler.GoogleConfig{
			ClientID:      cfg.GoogleClientID,
			ClientSecret:  cfg.GoogleClientSecret,
			RedirectURL:   cfg.GoogleRedirectURL,
			UIRedirectURL: cfg.UIRedirectURL,
		}, app.UsersService, app.Tokens),
		Users:       users.NewHandler(app.UsersService),
		UsersSvc:    app.UsersService,
		Properties:  properties.NewHandler(app.PropertiesService),
		Photos:      photos.NewHandler(app.PhotosService),
		Leads:       leads.NewHandler(app.LeadsService),
		Visits:      visits.NewHandler(app.VisitsService),
		Enrichment:  enrichment.NewHandler(app.EnrichmentService),
		FilesDir:    filesDir,
		RateLimiter: middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Close releases the database pool and the redis client.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap: DATABASE_URL empty; using in-memory repositories", nil)
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap: database connect failed; using in-memory repositories", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if config.IsDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			closeDB(sqlDB)
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

// buildBackend returns the configured photo backend and, for local storage, the
// directory to serve under /files. Missing credentials are logged here and
// surface as object.ErrNotConfigured on first use.
func buildBackend(ctx context.Context, cfg config.Config) (object.Backend, string, error) {
	fields := map[string]any{"provider": cfg.StorageProvider}

	switch cfg.StorageProvider {
	case object.ProviderS3:
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			telemetry.Warn("storage: S3_BUCKET missing; uploads will fail", fields)
		}
		store, err := s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil

	case object.ProviderMinio:
		store, err := miniostore.New(miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Prefix:    cfg.S3Prefix,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, "", err
		}
		if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
			telemetry.Warn("storage: MINIO_ENDPOINT or credentials missing; uploads will fail", fields)
			return store, "", nil
		}
		checkCtx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
		defer cancel()
		if err := store.EnsureBucket(checkCtx); err != nil {
			fields["error"] = err.Error()
			telemetry.Warn("storage: minio bucket check failed", fields)
		}
		return store, "", nil

	case object.ProviderCloudinary:
		store := cloudinarystore.New(cloudinarystore.Options{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		})
		if !store.Configured() {
			telemetry.Warn("storage: cloudinary credentials missing; uploads will fail", fields)
		} else {
			telemetry.Warn("storage: cloudinary backend is not implemented; uploads will fail", fields)
		}
		return store, "", nil

	default:
		store := localstore.New(cfg.LocalStoreDir, cfg.LocalPublicBaseURL)
		return store, store.Dir(), nil
	}
}

func buildPublisher(ctx context.Context, cfg config.Config) (events.Publisher, error) {
	if strings.TrimSpace(cfg.EventsQueueURL) == "" {
		return events.Nop{}, nil
	}
	return events.NewSQSPublisher(ctx, cfg.AWSRegion, cfg.EventsQueueURL)
}

// buildRedis connects the enrichment cache. The cache is optional, so a failed
// ping only disables it.
func buildRedis(ctx context.Context, cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(dialCtx).Err(); err != nil {
		telemetry.Warn("bootstrap: redis unavailable; enrichment cache disabled", map[string]any{
			"addr":  addr,
			"error": err.Error(),
		})
		_ = client.Close()
		return nil
	}
	return client
}

func buildServices(app *App) {
	var (
		userRepo       users.Repo
		propertyRepo   properties.Repo
		photoRepo      photos.Repo
		leadRepo       leads.Repo
		visitRepo      visits.Repo
		enrichmentRepo enrichment.Repo
		dependents     []properties.DependentStore
	)

	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		propertyRepo = &properties.PGRepo{DB: app.DB}
		photoRepo = &photos.PGRepo{DB: app.DB}
		leadRepo = &leads.PGRepo{DB: app.DB}
		visitRepo = &visits.PGRepo{DB: app.DB}
		enrichmentRepo = &enrichment.PGRepo{DB: app.DB}
	} else {
		memPhotos := photos.NewMemoryRepo()
		memLeads := leads.NewMemoryRepo()
		memVisits := visits.NewMemoryRepo()
		memEnrichment := enrichment.NewMemoryRepo()

		userRepo = users.NewMemoryRepo()
		propertyRepo = properties.NewMemoryRepo()
		photoRepo = memPhotos
		leadRepo = memLeads
		visitRepo = memVisits
		enrichmentRepo = memEnrichment
		dependents = []properties.DependentStore{memPhotos, memLeads, memVisits, memEnrichment}
	}

	var cache enrichment.Cache
	if app.Redis != nil {
		cache = enrichment.NewRedisCache(app.Redis, enrichmentTTL)
	}

	app.UsersService = users.NewService(userRepo)
	app.PropertiesService = properties.NewService(propertyRepo, app.Events)
	app.PropertiesService.Dependents = dependents
	app.PhotosService = photos.NewService(app.Backend, photoRepo, app.PropertiesService)
	app.LeadsService = leads.NewService(leadRepo, app.PropertiesService, app.Events)
	app.VisitsService = visits.NewService(visitRepo, app.PropertiesService, app.Events)
	app.EnrichmentService = enrichment.NewService(
		enrichment.NewHTTPClient(app.Config.AIServiceURL, aiRequestTimeout),
		enrichmentRepo,
		cache,
		app.PropertiesService,
		app.Events,
	)
}

// pinger avoids handing a typed nil *sql.DB to the health service.
func pinger(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
