package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixerhub/config"
	"fixerhub/cron"
	"fixerhub/database"
	"fixerhub/database/repository"
	"fixerhub/handlers"
	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/routes"
	"fixerhub/services/admin"
	"fixerhub/services/booking"
	"fixerhub/services/certification"
	"fixerhub/services/chatbot"
	"fixerhub/services/dispute"
	"fixerhub/services/events"
	"fixerhub/services/notification"
	"fixerhub/services/payment"
	"fixerhub/services/review"
	"fixerhub/services/storage"
	"fixerhub/services/user"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database.InitDB()
	authCache := utils.GetAuthCacheClient()
	chatCache := utils.GetChatCacheClient()
	if err := utils.FirebaseInit(ctx); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	stripe.Key = config.AppConfig.StripeKey

	store, err := storage.NewCloudinaryStorage(
		config.AppConfig.CloudinaryCloudName,
		config.AppConfig.CloudinaryAPIKey,
		config.AppConfig.CloudinaryAPISecret,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	queue := asynq.NewClient(cron.RedisOpt())
	notifier := notification.NewQueueNotifier(queue)

	publisher, closeEvents, err := events.Connect(config.AppConfig.NatsURL)
	if err != nil {
		logger.Warn("events disabled", zap.Error(err))
		publisher, closeEvents = events.Noop{}, func() {}
	}

	// repositories.
	repos := repository.NewMongoRepositories(database.DB())

	// services.
	userService := &user.DefaultUserService{
		Repo:        repos.Users,
		Tokens:      user.NewRedisTokenStore(authCache),
		Notifier:    notifier,
		Storage:     store,
		FrontendURL: config.AppConfig.FrontendURL,
	}
	if clientID := config.AppConfig.GoogleClientID; clientID != "" {
		verifier, err := user.NewGoogleVerifier(ctx, clientID)
		if err != nil {
			logger.Warn("google sign-in disabled", zap.Error(err))
		} else {
			userService.Google = verifier
		}
	}

	bookingService := &booking.DefaultBookingService{
		Repo:     repos.Bookings,
		Users:    repos.Users,
		Notifier: notifier,
		Events:   publisher,
		Currency: config.AppConfig.DefaultCurrency,
	}

	paymentService := &payment.DefaultPaymentService{
		Repo:     repos.Payments,
		Bookings: repos.Bookings,
		Booking:  bookingService,
		Users:    repos.Users,
		Gateway:  &payment.StripeGateway{WebhookSecret: config.AppConfig.StripeWebhookSecret},
		Notifier: notifier,
		Events:   publisher,
		Currency: models.Currency(config.AppConfig.DefaultCurrency),
	}

	certificationService := &certification.DefaultCertificationService{
		Repo:     repos.Certifications,
		Users:    repos.Users,
		Storage:  store,
		Notifier: notifier,
		Events:   publisher,
	}

	disputeService := &dispute.DefaultDisputeService{
		Repo:     repos.Disputes,
		Bookings: repos.Bookings,
		Users:    repos.Users,
		Refunds:  paymentService,
		Storage:  store,
		Notifier: notifier,
		Events:   publisher,
	}

	reviewService := &review.DefaultReviewService{
		Repo:     repos.Reviews,
		Bookings: repos.Bookings,
		Users:    repos.Users,
		Notifier: notifier,
		Events:   publisher,
	}

	chatService := &chatbot.DefaultChatService{
		Providers: userService,
		Store:     chatbot.NewRedisContextStore(chatCache, 30*time.Minute),
	}
	gemini, err := chatbot.NewGeminiClient(ctx, config.AppConfig.GeminiAPIKey)
	if err != nil {
		logger.Warn("chatbot generation disabled", zap.Error(err))
	} else if gemini != nil {
		chatService.Generator = gemini
		defer gemini.Close()
	}

	adminService := &admin.DefaultAdminService{
		Users:          repos.Users,
		Bookings:       repos.Bookings,
		Certifications: repos.Certifications,
		Disputes:       repos.Disputes,
		Queue:          queue,
	}

	worker := cron.NewWorker(
		notification.NewResendSender(config.AppConfig.ResendAPIKey, config.AppConfig.EmailFrom),
		notification.NewFCMSender(utils.FCMClient, repos.Users),
		certificationService,
	)
	if err := worker.Start(); err != nil {
		logger.Sugar().Fatalf("main: failed to start task worker: %v", err)
	}

	utils.StartHealthMonitor(ctx, []*redis.Client{authCache, chatCache}, database.MongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Auth:           handlers.NewAuthHandler(userService),
		Users:          handlers.NewUserHandler(userService, certificationService, reviewService),
		Bookings:       handlers.NewBookingHandler(bookingService),
		Payments:       handlers.NewPaymentHandler(paymentService),
		Certifications: handlers.NewCertificationHandler(certificationService),
		Disputes:       handlers.NewDisputeHandler(disputeService),
		Reviews:        handlers.NewReviewHandler(reviewService),
		Chat:           handlers.NewChatHandler(chatService),
		Admin:          handlers.NewAdminHandler(userService, adminService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("Server running on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("Server forced to shutdown: %v", err)
	}

	worker.Shutdown()
	closeEvents()
	if err := queue.Close(); err != nil {
		logger.Warn("failed to close task queue client", zap.Error(err))
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
	}
	logger.Sugar().Info("Server exiting")
}
