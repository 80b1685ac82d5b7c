package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"ecg-notify/internal/config"
	"ecg-notify/internal/consumer"
	"ecg-notify/internal/httpapi"
	"ecg-notify/internal/notify"
	"ecg-notify/internal/repository"
	"ecg-notify/internal/transport"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// NotifyService 通知服务
// 组装存储、传输、派发器、消费者和 HTTP 接口
type NotifyService struct {
	cfg    *config.Config
	logger *zap.Logger

	db     *sql.DB
	redis  *redis.Client
	server *http.Server

	alertConsumer *consumer.AlertConsumer
}

// NewNotifyService 创建并组装通知服务
func NewNotifyService(cfg *config.Config, logger *zap.Logger) (*NotifyService, error) {
	// ============ 存储 ============
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	careTeamRepo := repository.NewCareTeamRepository(db, logger)
	patientsRepo := repository.NewPatientsRepository(db, logger)
	logsRepo := repository.NewNotificationLogsRepository(db, logger)
	lineConnRepo := repository.NewLineConnectionRepository(db, logger)

	// ============ 传输 ============
	emailSender, err := transport.NewEmailSender(
		cfg.Email.Host,
		cfg.Email.Port,
		cfg.Email.User,
		cfg.Email.Password,
		cfg.Email.SenderName,
		logger,
	)
	if err != nil {
		db.Close()
		rdb.Close()
		return nil, fmt.Errorf("failed to create email transport: %w", err)
	}
	if emailSender.Configured() {
		// 启动探测失败不阻断，运行期失败走 mailto 降级
		verifyCtx, cancelVerify := context.WithTimeout(context.Background(), 10*time.Second)
		_ = emailSender.Verify(verifyCtx)
		cancelVerify()
	}

	lineClient := transport.NewLineClient(cfg.Line.APIBaseURL, cfg.Line.ChannelAccessToken, logger)

	// ============ 派发 ============
	dispatcher := notify.NewDispatcher(
		careTeamRepo,
		patientsRepo,
		logsRepo,
		emailSender,
		lineClient,
		cfg.Notify.WebsiteURL,
		time.Duration(cfg.Notify.SendTimeoutSeconds)*time.Second,
		logger,
	)

	alertConsumer := consumer.NewAlertConsumer(
		rdb,
		dispatcher,
		cfg.Notify.Stream.Name,
		cfg.Notify.Stream.Group,
		cfg.Notify.Stream.Consumer,
		logger,
	)

	// ============ HTTP ============
	router := httpapi.NewRouter(
		httpapi.NewEmailHandler(emailSender, logger),
		httpapi.NewNotifyHandler(dispatcher, logsRepo, logger),
		httpapi.NewLineHandler(lineConnRepo, lineClient, cfg.Line.ChannelSecret, logger),
		cfg.HTTP.AllowedOrigins,
		logger,
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return &NotifyService{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		redis:         rdb,
		server:        server,
		alertConsumer: alertConsumer,
	}, nil
}

// Start 启动消费者和 HTTP 服务
func (s *NotifyService) Start(ctx context.Context) error {
	if err := s.alertConsumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start alert consumer: %w", err)
	}

	s.logger.Info("http server starting", zap.String("addr", s.cfg.HTTP.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		return nil
	}
}

// Stop 优雅停机
func (s *NotifyService) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http server shutdown failed", zap.Error(err))
	}

	s.alertConsumer.Stop()

	if err := s.redis.Close(); err != nil {
		s.logger.Warn("failed to close redis", zap.Error(err))
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("failed to close database", zap.Error(err))
	}

	s.logger.Info("notify service stopped")
}
