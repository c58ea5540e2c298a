package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"companionhub/config"
	"companionhub/cron"
	"companionhub/database"
	bookingRepo "companionhub/database/repository/booking"
	chatRepo "companionhub/database/repository/chat"
	"companionhub/database/repository/memory"
	paymentRepo "companionhub/database/repository/payment"
	userRepo "companionhub/database/repository/user"
	"companionhub/handlers"
	"companionhub/middleware"
	"companionhub/routes"
	"companionhub/services/auth"
	"companionhub/services/booking"
	"companionhub/services/chat"
	"companionhub/services/notification"
	"companionhub/services/payment"
	"companionhub/services/user"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// stores is the persistence and fan-out backend selected by DATABASE_URL.
type stores struct {
	users     userRepo.UserRepository
	bookings  bookingRepo.BookingRepository
	chats     chatRepo.ChatRepository
	payments  paymentRepo.PaymentRepository
	broker    notification.Broker
	reminders booking.ReminderScheduler
	checks    map[string]utils.HealthCheck
	shutdown  []func(context.Context)
}

func memoryStores(logger *zap.Logger) *stores {
	logger.Warn("main: using the in-memory store; data is lost on restart")
	return &stores{
		users:    memory.NewUserRepo(),
		bookings: memory.NewBookingRepo(),
		chats:    memory.NewChatRepo(),
		payments: memory.NewPaymentRepo(),
		broker:   notification.NewHub(),
		checks: map[string]utils.HealthCheck{
			"database": func(context.Context) error { return nil },
		},
	}
}

func productionStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) *stores {
	mongoClient, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	db := mongoClient.Database(cfg.DatabaseName)
	logger.Info("main: connected to MongoDB", zap.String("database", cfg.DatabaseName))

	redisClient, err := utils.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisPubSubDB)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	bookings := bookingRepo.NewMongoBookingRepo(db, logger)
	publisher := notification.NewRedisPublisher(redisClient, logger)

	queueOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
	queue := asynq.NewClient(queueOpt)
	worker, err := cron.StartWorker(queueOpt, &cron.Worker{Bookings: bookings, Publisher: publisher, Logger: logger}, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to start reminder worker: %v", err)
	}

	return &stores{
		users:     userRepo.NewMongoUserRepo(db, logger),
		bookings:  bookings,
		chats:     chatRepo.NewMongoChatRepo(db, logger),
		payments:  paymentRepo.NewMongoPaymentRepo(db, logger),
		broker:    publisher,
		reminders: cron.NewAsynqReminderScheduler(queue, cfg.ReminderLead(), logger),
		checks: map[string]utils.HealthCheck{
			"database": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		shutdown: []func(context.Context){
			func(context.Context) { worker.Shutdown() },
			func(context.Context) { _ = queue.Close() },
			func(context.Context) { _ = redisClient.Close() },
			func(ctx context.Context) { _ = mongoClient.Disconnect(ctx) },
		},
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	var st *stores
	if cfg.UsesMemoryStore() {
		st = memoryStores(logger)
	} else {
		st = productionStores(rootCtx, cfg, logger)
	}

	if cfg.StripeKey == "" {
		logger.Warn("main: STRIPE_KEY is not set; payment calls will fail")
	}

	// services.
	tokens := utils.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL())
	gate := auth.NewGate(st.users, tokens, logger)

	userService := &user.DefaultUserService{
		Repo:   st.users,
		Tokens: tokens,
		Logger: logger,
	}
	bookingService := &booking.DefaultBookingService{
		Bookings:  st.bookings,
		Users:     st.users,
		Publisher: st.broker,
		Reminders: st.reminders,
		Config: booking.Config{
			DefaultPricePerHour:      cfg.DefaultPricePerHour,
			DefaultCommissionPercent: cfg.DefaultCommissionPercent,
		},
		Logger: logger,
	}
	paymentService := &payment.DefaultPaymentService{
		Bookings:  st.bookings,
		Payments:  st.payments,
		Engine:    bookingService,
		Gateway:   payment.NewStripeGateway(cfg.StripeKey),
		Currency:  cfg.PaymentCurrency,
		Publisher: st.broker,
		Logger:    logger,
	}
	chatService := &chat.DefaultChatService{
		Chats:     st.chats,
		Bookings:  st.bookings,
		Users:     st.users,
		Publisher: st.broker,
		Logger:    logger,
	}

	monitor := utils.NewHealthMonitor(time.Minute, st.checks)
	monitor.Start(rootCtx)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Auth:     handlers.NewAuthHandler(userService, logger),
		Users:    handlers.NewUserHandler(userService, logger),
		Bookings: handlers.NewBookingHandler(bookingService, logger),
		Payments: handlers.NewPaymentHandler(paymentService, logger),
		Chat:     handlers.NewChatHandler(chatService, logger),
		Admin:    handlers.NewAdminHandler(userService, logger),
		Events:   handlers.NewEventsHandler(st.broker, logger),
		Health:   handlers.NewHealthHandler(monitor),
	}

	router := gin.New()
	if err := middleware.TrustProxies(router, cfg.TrustedProxyList()); err != nil {
		logger.Sugar().Fatalf("main: invalid TRUSTED_PROXIES: %v", err)
	}
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimit(cfg.MaxRequestsPerMin, logger))
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		Gate:           gate,
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	for _, closeFn := range st.shutdown {
		closeFn(ctx)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
