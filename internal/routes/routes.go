package routes

import (
	"context"
	"log"

	"github.com/danielagrograos-wq/senior/internal/config"
	"github.com/danielagrograos-wq/senior/internal/handlers"
	"github.com/danielagrograos-wq/senior/internal/middleware"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/danielagrograos-wq/senior/internal/services"
	chatws "github.com/danielagrograos-wq/senior/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	caregiverRepo := repository.NewCaregiverRepository(db)
	clientRepo := repository.NewClientRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	careLogRepo := repository.NewCareLogRepository(db)
	emergencyRepo := repository.NewEmergencyRepository(db)
	shareRepo := repository.NewFamilyShareRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	pushTokenRepo := repository.NewPushTokenRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	if cfg.DefaultAdminMail != "" {
		promoted, err := userRepo.PromoteToAdmin(ctx, cfg.DefaultAdminMail)
		if err != nil {
			log.Printf("promote default admin %s: %v", cfg.DefaultAdminMail, err)
		} else if promoted > 0 {
			log.Printf("promoted %s to admin", cfg.DefaultAdminMail)
		}
	}

	hub := chatws.NewHub()
	go hub.Run()

	pushService := services.NewExpoPushService(cfg.PushGatewayURL)
	notificationService := services.NewNotificationService(notificationRepo, pushTokenRepo, pushService, hub)
	go notificationService.Run(ctx)

	summarizer := services.NewLLMSummarizer(cfg.SummarizerURL, cfg.SummarizerKey, cfg.SummarizerModel)
	matchingService := services.NewMatchingService(caregiverRepo)
	bookingService := services.NewBookingService(db, bookingRepo, caregiverRepo, clientRepo, userRepo, notificationService)
	careLogService := services.NewCareLogService(careLogRepo, emergencyRepo, bookingRepo, caregiverRepo, summarizer, notificationService)
	shareService := services.NewFamilyShareService(db, shareRepo, bookingRepo, userRepo, notificationService)
	paymentService := services.NewPaymentService(db, paymentRepo, payoutRepo, bookingRepo, caregiverRepo, cfg.StripePublicKey, cfg.StripeSecretKey, notificationService)
	reviewService := services.NewReviewService(reviewRepo, bookingRepo, caregiverRepo, userRepo, notificationService)
	chatService := services.NewChatService(chatRepo, bookingRepo, userRepo, notificationService, hub)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	storage := services.NewSupabaseStorage(cfg.StorageURL, cfg.StorageBucket, cfg.StorageKey)
	caregiverHandler := handlers.NewCaregiverHandler(caregiverRepo, clientRepo, userRepo, verificationRepo, matchingService, storage)
	clientHandler := handlers.NewClientHandler(clientRepo)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	careLogHandler := handlers.NewCareLogHandler(careLogService)
	shareHandler := handlers.NewFamilyShareHandler(shareService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	chatHandler := handlers.NewChatHandler(chatService, hub, cfg.JWTSecret)
	adminHandler := handlers.NewAdminHandler(statsRepo, verificationRepo, caregiverRepo, notificationService)
	referenceHandler := handlers.NewReferenceHandler()

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	api.Get("/cities", referenceHandler.ListCities)
	api.Get("/specializations", referenceHandler.ListSpecializations)
	api.Get("/care-levels", referenceHandler.ListCareLevels)

	protected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := protected.Group("/users")
	users.Put("/senior-mode", authHandler.SetSeniorMode)

	caregivers := protected.Group("/caregivers")
	caregivers.Get("", caregiverHandler.ListCaregivers)
	caregivers.Post("/profile", caregiverHandler.CreateProfile)
	caregivers.Get("/profile", caregiverHandler.GetMyProfile)
	caregivers.Put("/profile", caregiverHandler.UpdateProfile)
	caregivers.Post("/profile/photo", caregiverHandler.UploadProfilePhoto)
	caregivers.Post("/documents", caregiverHandler.UploadVerificationDocument)
	caregivers.Get("/documents", caregiverHandler.ListMyDocuments)
	caregivers.Get("/:id", caregiverHandler.GetCaregiver)
	caregivers.Get("/:id/reviews", reviewHandler.ListForCaregiver)

	clients := protected.Group("/clients")
	clients.Post("/profile", clientHandler.CreateProfile)
	clients.Get("/profile", clientHandler.GetMyProfile)
	clients.Put("/profile", clientHandler.UpdateProfile)

	bookings := protected.Group("/bookings")
	bookings.Post("", bookingHandler.CreateBooking)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Put("/:id/status", bookingHandler.UpdateStatus)
	bookings.Post("/:id/care-log", careLogHandler.CreateEntry)
	bookings.Get("/:id/care-log", careLogHandler.ListEntries)
	bookings.Get("/:id/care-summary", careLogHandler.GetSummary)
	bookings.Post("/:id/emergency", careLogHandler.TriggerEmergency)
	bookings.Get("/:id/shares", shareHandler.Breakdown)
	bookings.Post("/:id/release-escrow", paymentHandler.ReleaseEscrow)

	shares := protected.Group("/family-shares")
	shares.Post("", shareHandler.Invite)
	shares.Get("/invitations", shareHandler.ListInvitations)
	shares.Post("/:id/accept", shareHandler.Accept)
	shares.Post("/:id/decline", shareHandler.Decline)
	shares.Post("/:id/pay", shareHandler.Pay)

	payments := protected.Group("/payments")
	payments.Post("/create-intent", paymentHandler.CreateIntent)
	payments.Post("/confirm", paymentHandler.ConfirmPayment)
	payments.Get("/history", paymentHandler.History)

	reviews := protected.Group("/reviews")
	reviews.Post("", reviewHandler.CreateReview)

	notifications := protected.Group("/notifications")
	notifications.Get("", notificationHandler.ListNotifications)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Put("/read-all", notificationHandler.MarkAllRead)
	notifications.Put("/:id/read", notificationHandler.MarkRead)
	notifications.Post("/push-token", notificationHandler.RegisterPushToken)
	notifications.Delete("/push-token", notificationHandler.UnregisterPushToken)

	chat := protected.Group("/chat")
	chat.Post("/rooms", chatHandler.OpenRoom)
	chat.Get("/rooms", chatHandler.ListRooms)
	chat.Get("/rooms/:id/messages", chatHandler.GetMessages)
	chat.Post("/rooms/:id/messages", chatHandler.SendMessage)

	admin := protected.Group("/admin", middleware.RoleRequired("admin"))
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Get("/verifications", adminHandler.ListPendingVerifications)
	admin.Put("/verifications/:id", adminHandler.ReviewVerification)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
