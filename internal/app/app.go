package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lnkz/internal/config"
	"github.com/fsdevblog/lnkz/internal/controllers"
	"github.com/fsdevblog/lnkz/internal/db"
	"github.com/fsdevblog/lnkz/internal/logs"
	"github.com/fsdevblog/lnkz/internal/ratelimit"
	"github.com/fsdevblog/lnkz/internal/services"
)

const (
	ReadTimeout       = 5 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ReadHeaderTimeout = 2 * time.Second
	ShutdownTimeout   = 10 * time.Second
	redisPingTimeout  = 3 * time.Second
)

type App struct {
	config     config.Config
	conn       any
	dbServices *services.Services
	sweeper    *ratelimit.FixedWindow // nil, если лимит считается в redis
	closers    []func() error
	Logger     *logrus.Logger
}

func New(conf config.Config) (*App, error) {
	logger, logErr := logs.New(func(o *logs.LoggerOptions) {
		if conf.LogLevel != "" {
			o.Level = logs.LevelType(conf.LogLevel)
		}
		o.InitialFields = logrus.Fields{"app": "lnkz"}
	})
	if logErr != nil {
		return nil, fmt.Errorf("init logger: %w", logErr)
	}

	a := &App{config: conf, Logger: logger}
	if err := a.init(context.Background()); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

func (a *App) init(ctx context.Context) error {
	baseURL, err := a.config.ParsedBaseURL()
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	a.conn, err = db.NewConnectionFactory(ctx, db.FactoryConfig{
		StorageType:  db.StorageType(a.config.DBType),
		PostgresDSN:  &a.config.DatabaseDSN,
		SqliteDBPath: &a.config.SQLiteDBPath,
		TursoToken:   a.config.TursoToken,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	conn := a.conn
	a.closers = append(a.closers, func() error { return db.CloseConnection(conn) })

	limiter, err := a.initLimiter(ctx)
	if err != nil {
		return err
	}

	a.dbServices, err = services.Factory(services.FactoryParams{
		Conn:    a.conn,
		Limiter: limiter,
		Logger:  a.Logger,
		LinkOptions: []func(*services.LinkServiceOptions){func(o *services.LinkServiceOptions) {
			o.BaseURL = baseURL
			o.MaxURLsPerIP = a.config.MaxURLsPerIP
			o.GenerateRetries = a.config.GenerateRetries
			o.StoreTimeout = a.config.StoreTimeout
		}},
		ClickOptions: []func(*services.ClickRecorderOptions){func(o *services.ClickRecorderOptions) {
			o.QueueSize = a.config.ClickQueueSize
			o.StoreTimeout = a.config.StoreTimeout
		}},
	})
	if err != nil {
		return fmt.Errorf("init services: %w", err)
	}

	if a.config.VisitorJWTSecret == "" {
		// Куки посетителей станут недействительны после перезапуска.
		a.Logger.Warn("VISITOR_JWT_SECRET is not set, using a random secret")
		a.config.VisitorJWTSecret = uuid.NewString()
	}
	return nil
}

// initLimiter создает общий ограничитель в redis, если задан адрес, иначе локальный.
func (a *App) initLimiter(ctx context.Context) (services.RateLimiter, error) {
	if a.config.RateLimitRedisAddr == "" {
		a.sweeper = ratelimit.NewFixedWindow(a.config.RateLimitWindow, a.config.RateLimitMax, a.Logger)
		return a.sweeper, nil
	}

	client := redis.NewClient(&redis.Options{Addr: a.config.RateLimitRedisAddr})
	a.closers = append(a.closers, client.Close)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis `%s`: %w", a.config.RateLimitRedisAddr, err)
	}
	return ratelimit.NewRedis(client, a.config.RateLimitWindow, a.config.RateLimitMax), nil
}

// Run запускает web сервер и фоновые задачи, ждет сигнала остановки.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.dbServices.ClickRecorder.Start()
	if a.sweeper != nil {
		go a.sweeper.Run(ctx)
	}

	router := controllers.SetupRouter(controllers.RouterParams{
		LinkService: a.dbServices.LinkService,
		PingService: a.dbServices.PingService,
		AppConf:     a.config,
		Logger:      a.Logger,
	})

	server := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           router,
		ReadTimeout:       ReadTimeout,
		ReadHeaderTimeout: ReadHeaderTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	a.Logger.WithField("address", a.config.ServerAddress).Info("Server started")

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.WithError(serverErr).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.WithError(err).Error("server shutdown error")
	}
	// Переходы, принятые до остановки, должны попасть в хранилище.
	if err := a.dbServices.ClickRecorder.Close(shutdownCtx); err != nil {
		a.Logger.WithError(err).Error("click queue was not drained")
	}
	a.close()

	return serverErr
}

// close освобождает ресурсы в обратном порядке.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.WithError(err).Error("close resource error")
		}
	}
	a.closers = nil
}
