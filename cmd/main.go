package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	attemptBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/attempt_booking"
	cancelReservationHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/cancel_reservation"
	completeReservationHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/complete_reservation"
	confirmReservationHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/confirm_reservation"
	deleteFacilityConfigHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/delete_facility_config"
	expireHoldsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/expire_holds"
	getDailyAvailabilityHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_daily_availability"
	getFacilityConfigHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_facility_config"
	getFacilityReservationsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_facility_reservations"
	getMergedAvailabilityHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_merged_availability"
	getReservationHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_reservation"
	getSlotAvailabilityHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_slot_availability"
	getUserReservationsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_user_reservations"
	listFacilityConfigsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/list_facility_configs"
	updateFacilityConfigHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/update_facility_config"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/config"
	"github.com/m04kA/SMC-CourtBooking/internal/consumer"
	"github.com/m04kA/SMC-CourtBooking/internal/events"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/migrations"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/config"
	ratesRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/rates"
	scheduleRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/schedule"
	facilityServiceClient "github.com/m04kA/SMC-CourtBooking/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtBooking/internal/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/scheduler"
	availabilityService "github.com/m04kA/SMC-CourtBooking/internal/service/availability"
	configService "github.com/m04kA/SMC-CourtBooking/internal/service/config"
	reservationsService "github.com/m04kA/SMC-CourtBooking/internal/service/reservations"
	attemptBookingUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/attempt_booking"
	expireHoldsUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/expire_holds"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
	"github.com/m04kA/SMC-CourtBooking/pkg/metrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/mq"
	"github.com/m04kA/SMC-CourtBooking/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CourtBooking...")

	// Инициализируем метрики (если включены)
	// Методы *metrics.Metrics безопасны для nil, поэтому без метрик передаём nil
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.RunMigrations {
		if err := migrations.Up(db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	// Репозитории работают через обёртку с метриками запросов
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	configRepository := configRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	ratesRepository := ratesRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Справочник площадок
	facilityClient := facilityServiceClient.NewClient(
		cfg.FacilityService.URL,
		time.Duration(cfg.FacilityService.Timeout)*time.Second,
		log,
	)
	log.Info("Facility service client initialized (url=%s, timeout=%ds)",
		cfg.FacilityService.URL, cfg.FacilityService.Timeout)

	// Брокер событий (опционально)
	// Интерфейс остаётся nil, если брокер выключен: события только логируются
	var broker events.Broker
	var mqPublisher *mq.Publisher
	if cfg.Broker.Enabled {
		mqPublisher, err = mq.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to broker: %v", err)
		}
		defer mqPublisher.Close()
		broker = mqPublisher
		log.Info("Broker publisher connected (exchange=%s)", cfg.Broker.Exchange)
	}

	clock := &attemptBookingUC.RealTimeProvider{}
	eventPublisher := events.NewPublisher(broker, metricsCollector, log, clock)
	resolver := pricing.NewResolver()

	// Инициализируем сервисы
	availabilitySvc := availabilityService.NewService(
		facilityClient,
		configRepository,
		scheduleRepository,
		bookingRepository,
		ratesRepository,
		resolver,
		&availabilityService.RealTimeProvider{},
		cfg.Booking.DefaultHoldWindowMinutes,
		log,
	)
	reservationsSvc := reservationsService.NewService(
		bookingRepository,
		facilityClient,
		eventPublisher,
		clock,
		log,
	)
	configSvc := configService.NewService(
		configRepository,
		facilityClient,
		cfg.Booking.DefaultHoldWindowMinutes,
		log,
	)

	// Инициализируем use cases
	attemptBookingUseCase := attemptBookingUC.NewUseCase(
		bookingRepository,
		configRepository,
		scheduleRepository,
		ratesRepository,
		facilityClient,
		resolver,
		availabilitySvc,
		eventPublisher,
		metricsCollector,
		txMgr,
		clock,
		attemptBookingUC.Settings{
			DefaultHoldWindowMinutes: cfg.Booking.DefaultHoldWindowMinutes,
			SerializationRetries:     cfg.Booking.SerializationRetries,
		},
		log,
	)
	expireHoldsUseCase := expireHoldsUC.NewUseCase(bookingRepository, eventPublisher, metricsCollector, log)

	// Планировщик очистки истёкших удержаний
	sched, err := scheduler.New(log)
	if err != nil {
		log.Fatal("Failed to create scheduler: %v", err)
	}
	if cfg.Sweep.Enabled {
		job := scheduler.NewExpireHoldsJob(expireHoldsUseCase, clock, scheduler.SweepSettings{
			Cron:       cfg.Sweep.Cron,
			MaxRetries: cfg.Sweep.MaxRetries,
			RetryDelay: time.Duration(cfg.Sweep.RetryDelayMs) * time.Millisecond,
			Timeout:    time.Duration(cfg.Sweep.TimeoutSeconds) * time.Second,
		}, log)
		if err := job.Register(sched); err != nil {
			log.Fatal("Failed to register expire holds job: %v", err)
		}
	}

	// Инициализируем handlers
	getDailyAvailability := getDailyAvailabilityHandler.NewHandler(availabilitySvc, log)
	getSlotAvailability := getSlotAvailabilityHandler.NewHandler(availabilitySvc, log)
	getMergedAvailability := getMergedAvailabilityHandler.NewHandler(availabilitySvc, log)
	attemptBooking := attemptBookingHandler.NewHandler(attemptBookingUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	confirmReservation := confirmReservationHandler.NewHandler(reservationsSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationsSvc, log)
	completeReservation := completeReservationHandler.NewHandler(reservationsSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationsSvc, log)
	getFacilityReservations := getFacilityReservationsHandler.NewHandler(reservationsSvc, log)
	expireHolds := expireHoldsHandler.NewHandler(expireHoldsUseCase, clock, log)
	getFacilityConfig := getFacilityConfigHandler.NewHandler(configSvc, log)
	listFacilityConfigs := listFacilityConfigsHandler.NewHandler(configSvc, log)
	updateFacilityConfig := updateFacilityConfigHandler.NewHandler(configSvc, log)
	deleteFacilityConfig := deleteFacilityConfigHandler.NewHandler(configSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/facilities/{facilityId}/sports/{sportId}/availability",
		getDailyAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/facilities/{facilityId}/sports/{sportId}/availability/slot",
		getSlotAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/availability/merged", getMergedAvailability.Handle).Methods(http.MethodPost)
	api.HandleFunc("/facilities/{facilityId}/config", getFacilityConfig.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Брони ---
	var attemptBookingRoute http.Handler = http.HandlerFunc(attemptBooking.Handle)
	if cfg.RateLimit.Enabled {
		store, err := middleware.NewRateLimitStore(cfg.RateLimit.RedisURL)
		if err != nil {
			log.Fatal("Failed to create rate limit store: %v", err)
		}
		attemptBookingRoute = middleware.RateLimit(
			store,
			cfg.RateLimit.Limit,
			time.Duration(cfg.RateLimit.PeriodSeconds)*time.Second,
		)(attemptBookingRoute)
		log.Info("Rate limit on booking attempts: %d per %ds", cfg.RateLimit.Limit, cfg.RateLimit.PeriodSeconds)
	}
	protected.Handle("/reservations", attemptBookingRoute).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/confirm", confirmReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/complete", completeReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/me/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Управление площадкой (для менеджеров) ---
	protected.HandleFunc("/facilities/{facilityId}/reservations", getFacilityReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/facilities/{facilityId}/configs", listFacilityConfigs.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/facilities/{facilityId}/config", updateFacilityConfig.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/facilities/{facilityId}/config", deleteFacilityConfig.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/admin/holds/expire", expireHolds.Handle).Methods(http.MethodPost)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	sched.Start()

	// Сигналы платёжного сервиса
	if cfg.Broker.Enabled {
		mqConsumer, err := mq.NewConsumer(
			cfg.Broker.URL,
			cfg.Broker.Exchange,
			cfg.Broker.PaymentQueue,
			[]string{events.RKPaymentPaid, events.RKPaymentFailed},
			cfg.Broker.Prefetch,
		)
		if err != nil {
			log.Fatal("Failed to create payment consumer: %v", err)
		}
		defer mqConsumer.Close()

		payments := consumer.NewPaymentConsumer(mqConsumer, reservationsSvc, log)
		g.Go(func() error {
			return payments.Run(gctx)
		})
		log.Info("Payment consumer started (queue=%s)", cfg.Broker.PaymentQueue)
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")

		if err := sched.Stop(); err != nil {
			log.Error("Scheduler stop failed: %v", err)
		}

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown: %v", err)
		}

		// Останавливаем сбор метрик connection pool
		close(stopMetricsCh)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error: %v", err)
	}

	log.Info("Service stopped gracefully")
}
