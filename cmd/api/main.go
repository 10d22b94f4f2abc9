package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/config"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	appHTTP "github.com/cmlabs-hris/dtr-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/notify"
	"github.com/cmlabs-hris/dtr-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/dtr-backend-go/internal/service/authz"
	dtrService "github.com/cmlabs-hris/dtr-backend-go/internal/service/dtr"
	leaveService "github.com/cmlabs-hris/dtr-backend-go/internal/service/leave"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logLevel, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	location, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("error loading timezone: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.ApplySchema(ctx, db); err != nil {
			return err
		}
		slog.Info("Database schema applied")
	}

	notifier, closeNotifier, err := newNotifier(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeNotifier()

	dtrRepo := postgresql.NewDTRRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	workScheduleRepo := postgresql.NewWorkScheduleRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveTransactionRepo := postgresql.NewLeaveTransactionRepository(db)
	auditLogRepo := postgresql.NewAuditLogRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	reconciler := leaveService.NewReconciler(leaveBalanceRepo, leaveTransactionRepo)
	dtrSvc := dtrService.NewDTRService(
		postgresql.NewTransactor(db),
		authz.NewClaimsAuthorizer(),
		dtrRepo,
		employeeRepo,
		workScheduleRepo,
		leaveTypeRepo,
		reconciler,
		auditLogRepo,
		notifier,
		dtrService.Policy{
			Location:            location,
			DefaultBreakMinutes: cfg.DTR.DefaultBreakMinutes,
		},
	)

	dtrHandler := appHTTP.NewDTRHandler(dtrSvc)

	router := appHTTP.NewRouter(JWTService, dtrHandler, appHTTP.RouterOptions{
		AppName:        cfg.App.Name,
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       logLevel,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "timezone", location.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newNotifier connects to Redis when REDIS_URL is set. Without it DTR
// changes are not broadcast.
func newNotifier(ctx context.Context, cfg config.RedisConfig) (dtr.Notifier, func(), error) {
	if cfg.URL == "" {
		slog.Warn("REDIS_URL not set, DTR change notifications are disabled")
		return notify.NoopNotifier{}, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return notify.NewRedisNotifier(client), func() {
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}, nil
}
