package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/config"
	"github.com/steveyeow/academi/internal/db"
	"github.com/steveyeow/academi/internal/filestore"
	"github.com/steveyeow/academi/internal/handler"
	"github.com/steveyeow/academi/internal/job"
	"github.com/steveyeow/academi/internal/middleware"
	"github.com/steveyeow/academi/internal/repo"
	"github.com/steveyeow/academi/internal/schedule"
	"github.com/steveyeow/academi/internal/service"
	"github.com/steveyeow/academi/internal/skill"
	"github.com/steveyeow/academi/internal/sources"
	"github.com/steveyeow/academi/internal/vector"
)

const votePromotionCron = "30 * * * *"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "academi",
		Short: "academi book agent server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run academi server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.Int("providers", len(cfg.AI.Providers)),
	)

	bookRepo := repo.NewBookRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	voteRepo := repo.NewVoteRepo(conn)
	messageRepo := repo.NewMessageRepo(conn)
	questionRepo := repo.NewQuestionRepo(conn)

	providers := make([]ai.Provider, 0, len(cfg.AI.Providers))
	for _, pc := range cfg.AI.Providers {
		provider, err := ai.NewProvider(pc.Name, pc.Args)
		if err != nil {
			return fmt.Errorf("init provider %s: %w", pc.Name, err)
		}
		providers = append(providers, provider)
	}
	gateway := ai.NewGateway(providers, time.Duration(cfg.AI.Timeout)*time.Second)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	vectorStore := vector.NewStore(gateway, chunkRepo)
	chunker := ai.NewChunker(cfg.Pipeline.MaxChunkChars, cfg.Pipeline.ChunkOverlap)
	fetcher := sources.NewFetcher()

	questionService := service.NewQuestionService(questionRepo, gateway)
	agentService := service.NewAgentService(bookRepo, vectorStore, chunker, fetcher, questionService, store)
	discoveryService := service.NewDiscoveryService(agentService, voteRepo, gateway,
		cfg.Discovery.VoteThreshold, cfg.Discovery.BatchSize, cfg.Discovery.TopicCount)

	resolver := skill.NewResolver(
		skill.NewRAG(vectorStore, gateway, cfg.Pipeline.MinSimilarity),
		skill.NewContentFetch(fetcher, gateway),
		skill.NewWebSearch(gateway),
		skill.NewLLMKnowledge(gateway),
	)
	chatService := service.NewChatService(agentService, discoveryService, messageRepo, resolver,
		cfg.Pipeline.TopK, cfg.Pipeline.HistoryLimit)

	if cfg.Discovery.SeedCatalog {
		if err := agentService.SeedCatalog(ctx); err != nil {
			logutil.GetLogger(ctx).Warn("seed catalog failed", zap.Error(err))
		}
	}

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewDiscoveryJob(discoveryService), cfg.Discovery.Cron); err != nil {
		return fmt.Errorf("schedule discovery job: %w", err)
	}
	if err := scheduler.AddJob(job.NewVotePromotionJob(discoveryService), votePromotionCron); err != nil {
		return fmt.Errorf("schedule vote promotion job: %w", err)
	}

	deps := handler.RouterDeps{
		Auth:           handler.NewAuthHandler(cfg.Admin),
		Agents:         handler.NewAgentHandler(agentService, questionService),
		Chat:           handler.NewChatHandler(chatService),
		Discovery:      handler.NewDiscoveryHandler(discoveryService),
		Votes:          handler.NewVoteHandler(discoveryService),
		JWTSecret:      []byte(cfg.Admin.JWTSecret),
		ChatRateWindow: time.Duration(cfg.RateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(runCtx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
