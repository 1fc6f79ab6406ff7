package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"vault-backend/internal/activity"
	"vault-backend/internal/documents"
	"vault-backend/internal/quota"
	"vault-backend/internal/shared/config"
	"vault-backend/internal/shared/server"
	"vault-backend/internal/shared/storage/db"
	"vault-backend/internal/shared/storage/object"
	"vault-backend/internal/shared/storage/object/local"
	"vault-backend/internal/shared/storage/object/s3"
	"vault-backend/internal/shared/telemetry"
	"vault-backend/internal/stats"
	"vault-backend/internal/users"
)

// App is the wired application.
type App struct {
	Router *gin.Engine
	DB     *sql.DB
	Config config.Config
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// Build wires the full application from config: database, object store,
// repositories, services, handlers and router.
//
// Without DATABASE_URL outside production everything runs on in-memory
// repositories so the API can be exercised with no infrastructure. Guest
// traffic always runs on in-memory repositories, even with a database.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		telemetry.Warn("JWT_SECRET not set, using dev fallback", nil)
		cfg.JWTSecret = "dev-secret"
	}

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	} else {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		telemetry.Warn("DATABASE_URL not set, using in-memory repositories", nil)
	}

	store, uploadsDir, err := buildObjectStore(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, err
	}

	// Guest traffic lives in its own in-memory repos regardless of the
	// primary backend.
	guestDocs := documents.NewMemoryRepo()
	guestActivity := activity.NewMemoryRepo()
	guestQuota := quota.NewMemoryStore(cfg.GuestLimitBytes)

	var docRepo documents.Repo
	var activityRepo activity.Repo
	var quotaStore quota.Store
	var userRepo users.Repo
	if sqlDB != nil {
		docRepo = &documents.RoutedRepo{Primary: &documents.PGRepo{DB: sqlDB}, Guest: guestDocs}
		activityRepo = &activity.RoutedRepo{Primary: &activity.PGRepo{DB: sqlDB}, Guest: guestActivity}
		quotaStore = &quota.RoutedStore{Primary: &quota.PGStore{DB: sqlDB}, Guest: guestQuota}
		userRepo = &users.PGRepo{DB: sqlDB}
	} else {
		docRepo = &documents.RoutedRepo{Primary: documents.NewMemoryRepo(), Guest: guestDocs}
		activityRepo = &activity.RoutedRepo{Primary: activity.NewMemoryRepo(), Guest: guestActivity}
		quotaStore = &quota.RoutedStore{Primary: quota.NewMemoryStore(cfg.StorageLimitBytes), Guest: guestQuota}
		userRepo = users.NewMemoryRepo()
	}

	ledger := quota.NewLedger(quotaStore)
	recorder := activity.NewRecorder(activityRepo)

	docService := documents.NewService(docRepo, store, ledger, recorder, cfg.AllowedFileTypes)
	userService := users.NewService(userRepo, ledger, []byte(cfg.JWTSecret))
	statsService := stats.NewService(docRepo, ledger)

	router := server.NewRouter(server.RouterDeps{
		Config:     cfg,
		Documents:  documents.NewHandler(docService, cfg.MaxUploadBytes),
		Activities: activity.NewHandler(recorder),
		Users:      users.NewHandler(userService),
		Stats:      stats.NewHandler(statsService),
		UploadsDir: uploadsDir,
	})

	return &App{Router: router, DB: sqlDB, Config: cfg}, nil
}

// buildObjectStore picks the storage backend once at startup. The uploads
// dir is returned only for local mode, where the router serves the files.
func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, string, error) {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3.New(ctx, s3.Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			KMSKeyID:        cfg.SSEKMSKeyID,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("init s3 store: %w", err)
		}
		telemetry.Info("object store ready", map[string]any{"provider": "s3", "bucket": cfg.S3Bucket})
		return store, "", nil
	}

	store := local.New(cfg.LocalStoreDir, cfg.PublicBaseURL)
	telemetry.Info("object store ready", map[string]any{"provider": "local", "dir": cfg.LocalStoreDir})
	return store, store.BaseDir(), nil
}
