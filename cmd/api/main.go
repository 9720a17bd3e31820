// Command api runs the second brain backend HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"secondbrain-backend/internal/blob"
	"secondbrain-backend/internal/cache"
	"secondbrain-backend/internal/chunk"
	"secondbrain-backend/internal/config"
	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/graph"
	"secondbrain-backend/internal/handlers"
	"secondbrain-backend/internal/repository/ddb"
	"secondbrain-backend/internal/service/ai"
	"secondbrain-backend/internal/service/canvas"
	"secondbrain-backend/internal/service/clip"
	"secondbrain-backend/internal/service/note"
	"secondbrain-backend/internal/service/search"
)

func main() {
	// Missing .env is fine outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.DynamoDB.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	dbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = &cfg.DynamoDB.Endpoint
		}
	})
	repo := ddb.NewRepository(dbClient, cfg.DynamoDB.TableName, cfg.DynamoDB.IndexName)

	blobs, err := blob.NewMinioStore(ctx, blob.MinioConfig{
		Endpoint:  cfg.Blob.Endpoint,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		Bucket:    cfg.Blob.Bucket,
		UseSSL:    cfg.Blob.UseSSL,
		PublicURL: cfg.Blob.PublicURL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to blob store: %w", err)
	}

	var listingCache cache.Cache
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, running without listing cache", zap.Error(err))
			rdb.Close()
			rdb = nil
		} else {
			listingCache = cache.NewRedisCache(rdb)
			defer rdb.Close()
		}
	}

	var provider ai.Provider
	if cfg.AI.APIKey != "" {
		provider = ai.NewBreakerProvider(
			ai.NewOpenAIProvider(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model), logger)
	} else {
		logger.Warn("no AI API key configured, using canned responses")
		provider = ai.NewMockProvider("AI features are not configured on this server.")
	}

	codec := chunk.NewCodec(cfg.Chunk.Ceiling, blobs, logger)
	noteSvc := note.NewService(repo, codec, blobs, listingCache, logger)
	aiSvc := ai.NewService(provider, logger)
	canvasSvc := canvas.NewService(noteSvc, repo, blobs, logger)
	clipSvc := clip.NewService(noteSvc, logger)
	searchSvc := search.NewService(noteSvc, aiSvc, logger)
	builder := graph.NewBuilder(domain.Position{}, rand.New(rand.NewSource(rand.Int63())))

	validate := validator.New()
	router := &handlers.Router{
		Notes:          handlers.NewNoteHandler(noteSvc, validate, logger),
		Graph:          handlers.NewGraphHandler(noteSvc, builder, logger),
		Canvas:         handlers.NewCanvasHandler(canvasSvc, logger),
		Clips:          handlers.NewClipHandler(clipSvc, validate, logger),
		AI:             handlers.NewAIHandler(aiSvc, noteSvc, validate, logger),
		Search:         handlers.NewSearchHandler(searchSvc, logger),
		JWTSecret:      []byte(cfg.JWTSecret),
		AllowedOrigins: cfg.AllowedOrigins,
		Ready: func() error {
			if rdb != nil {
				return rdb.Ping(context.Background()).Err()
			}
			return nil
		},
		Logger: logger,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" && cfg.IsDevelopment() {
		watcher, err := config.NewWatcher(cfg, path, logger)
		if err != nil {
			logger.Warn("config hot reload unavailable", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router.Setup(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.Int("port", cfg.Port),
			zap.String("environment", string(cfg.Environment)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
