package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	stageRepo := repository.NewStageRepository(pool)
	periodRepo := repository.NewWaitingPeriodRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	partnerRepo := repository.NewPartnerRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	sequenceRepo := repository.NewSequenceRepository(pool)
	priorityRepo := repository.NewPriorityCrossRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	lookupRepo := repository.NewLookupRepository(pool)

	lifecycleService := service.NewLifecycleService(cfg.Helpdesk, service.LifecycleDependencies{
		TicketRepo:        ticketRepo,
		StageRepo:         stageRepo,
		WaitingPeriodRepo: periodRepo,
		TaskRepo:          taskRepo,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	numberingService := service.NewNumberingService(cfg.Helpdesk, sequenceRepo, partnerRepo)
	priorityService := service.NewPriorityService(priorityRepo)
	assignmentService := service.NewAssignmentService(teamRepo, ticketRepo, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		PartnerRepo: partnerRepo,
		ProjectRepo: projectRepo,
		TaskRepo:    taskRepo,
		MessageRepo: messageRepo,
		Lifecycle:   lifecycleService,
		Numbering:   numberingService,
		Priorities:  priorityService,
		Assignment:  assignmentService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	slaService := service.NewSLAService(cfg.Helpdesk, service.SLADependencies{
		TicketRepo: ticketRepo,
		TeamRepo:   teamRepo,
		Reminders:  service.NewRedisReminderStore(redis),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(cfg.Notification, partnerRepo, userRepo, logger)
	reportService := service.NewReportService(reportRepo)
	hrService := service.NewHRService(employeeRepo)
	lookupService := service.NewLookupService(lookupRepo, stageRepo)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, userRepo, partnerRepo, numberingService, tokenManager, logger)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo, partnerRepo)

	worker.StartNotificationWorker(dispatcher, notificationService)
	worker.StartSLAWorker(ctx, slaService, cfg.Helpdesk.SLASweepInterval(), logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, lifecycleService),
		Lookups:        handlers.NewLookupsHandler(lookupService),
		Reports:        handlers.NewReportsHandler(reportService),
		HR:             handlers.NewHRHandler(hrService),
		AuthMiddleware: authMiddleware,
		HRAPIKey:       cfg.Helpdesk.HRAPIKey,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
