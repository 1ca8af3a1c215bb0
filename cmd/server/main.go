package main

import (
	"context"
	"log"
	"net/http"

	"alf-logistics/internal/config"
	custommw "alf-logistics/internal/middleware"
	"alf-logistics/internal/models"
	"alf-logistics/internal/modules/auth"
	"alf-logistics/internal/modules/enquiry"
	"alf-logistics/internal/modules/feedback"
	"alf-logistics/internal/modules/orders"
	"alf-logistics/internal/platform/firebase"
	"alf-logistics/pkg/notify"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	fb, err := firebase.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		logger.Fatal("failed to connect to Firebase", zap.Error(err))
	}
	defer fb.Close()

	var notifier notify.ServiceInterface
	if cfg.EnquiryNotifyFrom != "" && cfg.EnquiryNotifyTo != "" && cfg.AWSRegion != "" {
		ses, err := notify.NewSESService(ctx, cfg.AWSRegion, cfg.EnquiryNotifyFrom, cfg.EnquiryNotifyTo)
		if err != nil {
			logger.Warn("email notifications disabled", zap.Error(err))
		} else {
			notifier = ses
		}
	} else {
		logger.Info("email notifications not configured")
	}

	// Repositories
	orderRepo := orders.NewRepository(fb.Firestore)
	feedbackRepo := feedback.NewRepository(fb.Firestore)
	enquiryRepo := enquiry.NewRepository(fb.Firestore)
	adminRepo := auth.NewRepository(fb.Firestore)

	// Services
	orderService := orders.NewService(orderRepo, logger)
	feedbackService := feedback.NewService(feedbackRepo, orderRepo, logger, cfg.PublicBaseURL)
	enquiryService := enquiry.NewService(enquiryRepo, notifier, logger)
	authService := auth.NewService(adminRepo, logger, cfg.FirebaseWebAPIKey, cfg.JWTSecret)

	// Handlers
	orderHandler := orders.NewHandler(orderService)
	feedbackHandler := feedback.NewHandler(feedbackService)
	enquiryHandler := enquiry.NewHandler(enquiryService)
	authHandler := auth.NewHandler(authService)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if cfg.ClientOrigin != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{cfg.ClientOrigin},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "Internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}
		c.JSON(code, models.ErrorResponse{Message: message})
	}

	api := e.Group("/api")

	// Public surface: enquiry intake, login, share view, feedback.
	api.POST("/enquiries", enquiryHandler.SubmitEnquiry)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/share/:orderId", orderHandler.GetPublicOrder)
	api.GET("/share/:orderId/stream", orderHandler.StreamPublicOrder)
	api.GET("/f/:token", feedbackHandler.ResolveFeedbackLink)
	api.POST("/feedback", feedbackHandler.SubmitFeedback)
	api.GET("/feedback/orders/:orderId", orderHandler.GetPublicOrder)

	// Admin surface behind the session token.
	admin := api.Group("/admin", custommw.JWT(cfg.JWTSecret), custommw.RequireAdmin())
	admin.POST("/orders", orderHandler.CreateOrder)
	admin.GET("/orders", orderHandler.ListOrders)
	admin.GET("/orders/stream", orderHandler.StreamOrders)
	admin.GET("/orders/search", orderHandler.SearchOrders)
	admin.GET("/orders/:orderId", orderHandler.GetOrder)
	admin.GET("/orders/:orderId/stream", orderHandler.StreamOrder)
	admin.POST("/orders/:orderId/checkpoints", orderHandler.AddCheckpoint)
	admin.POST("/orders/:orderId/deliver", orderHandler.MarkDelivered)
	admin.DELETE("/orders/:orderId", orderHandler.DeleteOrder)
	admin.GET("/orders/:orderId/feedback", feedbackHandler.GetOrderFeedback)
	admin.POST("/feedback-links", feedbackHandler.CreateFeedbackLink)
	admin.GET("/feedback", feedbackHandler.ListFeedback)
	admin.GET("/feedback/stream", feedbackHandler.StreamFeedback)
	admin.GET("/feedback/stats", feedbackHandler.GetStats)
	admin.GET("/enquiries", enquiryHandler.ListEnquiries)
	admin.GET("/enquiries/stream", enquiryHandler.StreamEnquiries)
	admin.POST("/enquiries/:enquiryId/contacted", enquiryHandler.MarkContacted)

	logger.Info("starting server", zap.String("port", cfg.ServerPort))
	if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
