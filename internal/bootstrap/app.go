// Package bootstrap wires configuration, storage, the token engine, and the
// HTTP surface into a runnable application.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/documents"
	"docvault-backend/internal/files"
	"docvault-backend/internal/preview"
	"docvault-backend/internal/shared/config"
	"docvault-backend/internal/shared/server"
	"docvault-backend/internal/shared/storage/db"
	"docvault-backend/internal/shared/storage/object"
	localstore "docvault-backend/internal/shared/storage/object/local"
	s3store "docvault-backend/internal/shared/storage/object/s3"
	"docvault-backend/internal/tokens"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.Store
	Repo             documents.Repo
	Issuer           *tokens.Issuer
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
	SignedFiles      *files.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, signedFiles, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo documents.Repo
	if sqlDB != nil {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, err
		}
		repo = &documents.PGRepo{DB: sqlDB}
	} else {
		repo = documents.NewMemoryRepo()
	}

	issuer := &tokens.Issuer{
		Signer:  store,
		Records: documents.RecordSource{Repo: repo},
	}

	svc := &documents.Service{
		Store:     store,
		Repo:      repo,
		Tokens:    issuer,
		Converter: preview.Fitz{},
	}

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		Store:            store,
		Repo:             repo,
		Issuer:           issuer,
		DocumentsService: svc,
		DocumentsHandler: documents.NewHandler(svc),
		SignedFiles:      signedFiles,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		DocumentsHandler: app.DocumentsHandler,
		SignedFiles:      app.SignedFiles,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// buildStore returns the object store and, for the local backend, the handler
// that dereferences its signed URLs. S3 presigned URLs resolve against AWS so
// no local route is needed.
func buildStore(ctx context.Context, cfg config.Config) (object.Store, *files.Handler, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store := localstore.New(cfg.LocalStoreDir, cfg.LocalSignSecret)
		return store, files.NewHandler(store), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
