package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/ybooking/internal/app"
	"github.com/Freeeeeet/ybooking/internal/config"
	"github.com/Freeeeeet/ybooking/internal/controller"
	"github.com/Freeeeeet/ybooking/internal/controller/handlers"
	"github.com/Freeeeeet/ybooking/internal/lock"
	"github.com/Freeeeeet/ybooking/internal/metrics"
	"github.com/Freeeeeet/ybooking/internal/repository"
	"github.com/Freeeeeet/ybooking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ybooking",
		Short:        "Запись пациентов на приём к врачу",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить бота, планировщик генерации и служебный HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции базы данных",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.migrate(cmd.Context())
		},
	}
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Один раз сгенерировать слоты для всех врачей",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			deps, err := rt.services(prometheus.NewRegistry())
			if err != nil {
				return err
			}

			report, err := deps.generation.GenerateTimeslots(cmd.Context(), time.Now().In(rt.cfg.Location()))
			if err != nil {
				return fmt.Errorf("generate timeslots: %w", err)
			}

			fmt.Printf("Batch %s: doctors=%d skipped=%d failed=%d slots=%d\n",
				report.BatchID, report.Doctors, report.Skipped, report.Failed, report.Slots)
			return nil
		},
	}
}

// runtime общие для всех команд ресурсы
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := app.NewLogger(cfg.IsProduction())

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, pool: pool}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rt.redis = redis.NewClient(opts)
	}

	return rt, nil
}

func (rt *runtime) close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	rt.pool.Close()
	_ = rt.logger.Sync()
}

func (rt *runtime) migrate(ctx context.Context) error {
	migrator, err := app.NewMigrator(rt.pool, rt.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Run(ctx)
}

type services struct {
	persons      *service.PersonService
	booking      *service.BookingService
	availability *service.AvailabilityService
	statistics   *service.StatisticsService
	generation   *service.GenerationService
}

func (rt *runtime) services(reg prometheus.Registerer) (*services, error) {
	m := metrics.New(reg)

	personRepo := repository.NewPersonRepository(rt.pool)
	availabilityRepo := repository.NewAvailabilityRepository(rt.pool, rt.logger)
	timetableRepo := repository.NewTimetableRepository(rt.pool)

	var locker lock.Locker = lock.NopLocker{}
	if rt.redis != nil {
		locker = lock.NewRedisLocker(rt.redis, "ybooking:")
	} else {
		rt.logger.Warn("REDIS_URL is not set, generation lock is process-local")
	}

	return &services{
		persons:      service.NewPersonService(personRepo, timetableRepo, rt.logger),
		booking:      service.NewBookingService(personRepo, timetableRepo, m, rt.logger),
		availability: service.NewAvailabilityService(personRepo, availabilityRepo, rt.logger),
		statistics:   service.NewStatisticsService(timetableRepo, rt.cfg.Location().String()),
		generation:   service.NewGenerationService(availabilityRepo, timetableRepo, locker, rt.cfg.GenerationLockTTL, m, rt.logger),
	}, nil
}

func runServe(ctx context.Context) error {
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg, logger := rt.cfg, rt.logger

	if cfg.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required for serve")
	}

	logger.Info("Starting ybooking",
		zap.String("environment", cfg.Environment),
		zap.String("timezone", cfg.Location().String()),
	)

	if cfg.MigrateOnStart {
		if err := rt.migrate(ctx); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps, err := rt.services(reg)
	if err != nil {
		return err
	}

	scheduler := app.NewScheduler(deps.generation, cfg.Location(), cfg.GenerationHour, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	ops := app.NewOpsServer(cfg.OpsAddr, app.NewOpsRouter(rt.pool, reg), logger)
	ops.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Ops server shutdown failed", zap.Error(err))
		}
	}()

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	cmdHandlers := handlers.NewHandlers(
		deps.persons,
		deps.booking,
		deps.availability,
		deps.statistics,
		deps.generation,
		cfg,
		cfg.Location(),
		logger,
	)

	botController := controller.NewBotController(b, cmdHandlers, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Bot commands menu not set", zap.Error(err))
	}

	// блокируется до SIGINT/SIGTERM
	botController.Start(ctx)

	logger.Info("Shutting down")
	return nil
}
