package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vital/config"
	"vital/internal/domain"
	"vital/internal/handler"
	"vital/internal/middleware"
	"vital/internal/payments"
	"vital/internal/repository"
	"vital/internal/service"
	"vital/pkg/mailer"
	"vital/pkg/provider"
)

func Setup(cfg *config.Config, db *gorm.DB, mail mailer.Sender) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(300, 60*time.Second)))

	// Repositories
	orderRepo := repository.NewOrderRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Provider clients
	gatewayClient := provider.NewGatewayClient(cfg.Gateway.SecretKey)
	bnplAClient := provider.NewCaptureClient(cfg.BnplA.BaseURL, cfg.BnplA.APIKey)
	bnplBClient := provider.NewFinalizeClient(cfg.BnplB.BaseURL, cfg.BnplB.APIKey)

	// Services
	normalizer := payments.NewNormalizer(gatewayClient)
	materializer := service.NewMaterializer(orderRepo, membershipRepo)
	documentSvc := service.NewDocumentService(documentRepo, orderRepo)
	notifier := service.NewNotifier(mail, documentSvc)
	confirmationRouter := service.NewConfirmationRouter(normalizer, materializer, documentSvc, notifier, cfg.Payment.PipelineBudget)
	authSvc := service.NewAuthService(cfg, adminRepo)

	// Handlers
	webhookHandler := handler.NewWebhookHandler(confirmationRouter, cfg)
	redirectHandler := handler.NewRedirectHandler(confirmationRouter, bnplAClient, bnplBClient, gatewayClient, cfg)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	adminHandler := handler.NewAdminHandler(authSvc, orderRepo, documentSvc, notifier)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/webhook/:provider", webhookHandler.Handle)

	api := r.Group("/api/v1")
	{
		api.GET("/checkout/confirm/:provider", redirectHandler.Confirm)
		api.GET("/documents/:number", documentHandler.Get)

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)
			protected := admin.Group("", authMw, middleware.RequireRole(domain.RoleAdmin, domain.RoleSupport))
			{
				protected.GET("/orders", adminHandler.ListOrders)
				protected.GET("/orders/:number", adminHandler.GetOrder)
				protected.POST("/orders/:number/documents", adminHandler.RetriggerDocuments)
				protected.POST("/orders/:number/resend-email", adminHandler.ResendEmail)
			}
		}
	}
	return r
}
