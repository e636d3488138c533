package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"echoforge.backend/internal/interfaces/http/handlers"
	"echoforge.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler        *handlers.AuthHandler
	paymentHandler     *handlers.PaymentHandler
	webhookHandler     *handlers.WebhookHandler
	marketplaceHandler *handlers.MarketplaceHandler
	analysisHandler    *handlers.AnalysisHandler
	adminHandler       *handlers.AdminHandler
	authMiddleware     gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/logout", d.authMiddleware, d.authHandler.Logout)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Payment routes (protected except the network directory)
		payments := v1.Group("/payments")
		{
			payments.GET("/networks", d.paymentHandler.ListNetworks)

			payments.POST("", d.authMiddleware, d.paymentHandler.InitiatePayment)
			payments.GET("", d.authMiddleware, d.paymentHandler.ListPayments)
			payments.GET("/:id", d.authMiddleware, d.paymentHandler.GetPayment)
			payments.POST("/:id/submit", d.authMiddleware, d.paymentHandler.SubmitPayment)
		}

		// Marketplace routes (public listings, protected checkout)
		marketplace := v1.Group("/marketplace")
		{
			marketplace.GET("/listings", d.marketplaceHandler.ListListings)

			marketplace.POST("/listings", d.authMiddleware, d.marketplaceHandler.CreateListing)
			marketplace.POST("/checkout", d.authMiddleware, d.marketplaceHandler.Checkout)
			marketplace.GET("/orders/:id", d.authMiddleware, d.marketplaceHandler.GetOrder)
			marketplace.GET("/licenses", d.authMiddleware, d.marketplaceHandler.ListLicenses)
		}

		// Analysis routes (protected)
		analyses := v1.Group("/analyses")
		analyses.Use(d.authMiddleware)
		{
			analyses.POST("", d.analysisHandler.RunAnalysis)
			analyses.GET("", d.analysisHandler.ListAnalyses)
			analyses.GET("/:id", d.analysisHandler.GetAnalysis)
		}

		// Token ledger routes (protected)
		tokens := v1.Group("/tokens")
		tokens.Use(d.authMiddleware)
		{
			tokens.GET("/balance", d.analysisHandler.GetBalance)
			tokens.GET("/usage", d.analysisHandler.GetUsageHistory)
		}

		// Provider webhooks (authenticated by signature, not by bearer token)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/stripe", d.webhookHandler.HandleStripeWebhook)
			webhooks.POST("/flutterwave", d.webhookHandler.HandleFlutterwaveWebhook)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdminOrSupport())
		{
			admin.GET("/payments/pending", d.adminHandler.ListPendingVerifications)
			admin.POST("/payments/:id/verify", middleware.RequireAdmin(), d.adminHandler.VerifyPayment)
			admin.GET("/stats", d.adminHandler.GetStats)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "echoforge-backend",
			"version": "0.1.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID, X-Session-Id")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
