package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appoutbox "carryon/internal/app/outbox"
	authsvc "carryon/internal/app/services/auth"
	chatsvc "carryon/internal/app/services/chat"
	postsvc "carryon/internal/app/services/posts"
	requestsvc "carryon/internal/app/services/requests"
	"carryon/internal/app/uow"
	domainauth "carryon/internal/domain/auth"
	domainchat "carryon/internal/domain/chat"
	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
	"carryon/internal/infra/broker/kafka"
	"carryon/internal/infra/config"
	mongodb "carryon/internal/infra/db/mongo"
	ginserver "carryon/internal/infra/http/gin"
	"carryon/internal/infra/obs"
	infraoutbox "carryon/internal/infra/outbox"
	"carryon/internal/infra/security"
	"carryon/internal/infra/storage/memory"
	"carryon/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	ready    func() error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		users       domainuser.Repository
		travellers  domainpost.TravellerRepository
		senders     domainpost.SenderRepository
		requests    domainrequest.Repository
		chat        domainchat.Repository
		uowFactory  uow.Factory
		outboxStore infraoutbox.Store
		ready       = func() error { return nil }
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		users = mongodb.NewUserRepository(client.DB)
		travellers = mongodb.NewTravellerPostRepository(client.DB)
		senders = mongodb.NewSenderPostRepository(client.DB)
		requests = mongodb.NewRequestRepository(client.DB)
		chat = mongodb.NewChatRepository(client.DB)
		uowFactory = mongodb.Factory{
			DB:             client.DB,
			UsersRepo:      users,
			TravellersRepo: travellers,
			SendersRepo:    senders,
			RequestsRepo:   requests,
			ChatRepo:       chat,
		}
		outboxStore = infraoutbox.NewMongoStore(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("mongo storage configured", "database", cfg.MongoDB)
	} else {
		users = memory.NewUserRepository()
		travellers = memory.NewTravellerPostRepository()
		senders = memory.NewSenderPostRepository()
		requests = memory.NewRequestRepository()
		chat = memory.NewChatRepository()
		uowFactory = memory.Factory{
			UsersRepo:      users,
			TravellersRepo: travellers,
			SendersRepo:    senders,
			RequestsRepo:   requests,
			ChatRepo:       chat,
		}
		outboxStore = memory.NewOutbox()
		logger.Warn("MONGO_URI not set, using in-memory storage")
	}

	sessions := buildSessionStore()
	authService := &authsvc.Service{
		Users:      users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	uploader := buildUploader(cfg, logger)
	postService := &postsvc.Service{
		Travellers: travellers,
		Senders:    senders,
		Users:      users,
		Photos:     uploader,
		Logger:     logger,
	}
	requestService := &requestsvc.Service{
		UoW:     uowFactory,
		Outbox:  outboxStore,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
	}
	chatService := &chatsvc.Service{
		Chat:     chat,
		Requests: requests,
		Users:    users,
		Logger:   logger,
	}

	var worker *infraoutbox.Worker
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, err
		}
		worker = &infraoutbox.Worker{
			Store:       outboxStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		logger.Info("outbox worker configured", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, event publication disabled")
	}

	authMiddleware := ginserver.AuthMiddleware{Service: authService, Logger: logger}
	handlers := ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Posts:          ginserver.PostHandler{Service: postService, Logger: logger},
		Requests:       ginserver.RequestHandler{Service: requestService, Logger: logger},
		Chat:           ginserver.ChatHandler{Service: chatService, Logger: logger},
		AuthMiddleware: authMiddleware.Handle,
	}

	return application{handlers: handlers, worker: worker, ready: ready}, nil
}

func buildSessionStore() domainauth.SessionStore {
	return memory.NewSessionStore()
}

func buildUploader(cfg config.Config, logger *slog.Logger) postsvc.PhotoStore {
	client, err := s3.NewClient(
		cfg.S3Endpoint,
		cfg.S3UseSSL,
		cfg.S3AccessKey,
		cfg.S3SecretKey,
		cfg.S3Bucket,
		cfg.S3PublicEndpoint,
		logger,
	)
	if err != nil {
		logger.Warn("s3 uploader unavailable, photo uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
