package cmd

import (
	"context"
	"fmt"

	"melodify/config"
	"melodify/core/auth"
	"melodify/db"
	"melodify/logger"
	"melodify/repository"
	"melodify/server"
	"melodify/storage"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动Melodify服务器",
	Long:  `启动Melodify的HTTP API服务器：连接数据库、Redis与MinIO，然后监听PORT。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()

	gormDB, err := db.ConnectGorm(cfg)
	if err != nil {
		return err
	}
	defer db.CloseGorm(gormDB)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	redisClient, err := db.ConnectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis", logger.String("host", cfg.RedisHost), logger.Int("db", cfg.RedisDB))

	store, err := storage.NewMinioStore(cfg)
	if err != nil {
		return err
	}
	if err := store.EnsureBuckets(ctx, cfg.AudioBucket, cfg.ReelAudioBucket, cfg.CoverBucket); err != nil {
		return err
	}

	provider := auth.NewIdentityService(
		repository.NewGormUserRepository(gormDB),
		auth.NewRedisSessionStore(redisClient),
		newMailer(cfg),
		auth.Options{
			SigningKey:               cfg.ServiceKey,
			AccessTokenTTL:           cfg.AccessTokenTTL,
			RequireEmailConfirmation: cfg.RequireEmailConfirmation,
			VerifyURL:                cfg.ServiceURL + "/auth/verify",
		},
	)

	handler := server.NewAPIHandler(
		repository.NewGormSongRepository(gormDB),
		repository.NewGormLikeRepository(gormDB),
		repository.NewGormPlaylistRepository(gormDB),
		store,
		provider,
		cfg,
		server.HealthCheck{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		server.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)

	return server.Start(cfg, server.NewRouter(handler, cfg))
}

// newMailer sends real mail when SMTP is configured and logs links otherwise.
func newMailer(cfg *config.Config) auth.Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, verification links will only be logged")
		return auth.LogMailer{}
	}
	return auth.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
}
