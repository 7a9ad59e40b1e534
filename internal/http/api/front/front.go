package front

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/ads"
	"github.com/sokoyetu/marketplace/internal/config"
	handlers "github.com/sokoyetu/marketplace/internal/http/api/front/handlers"
	"github.com/sokoyetu/marketplace/internal/models"
	"github.com/sokoyetu/marketplace/internal/payments"
	"github.com/sokoyetu/marketplace/internal/ratelimit"
	"github.com/sokoyetu/marketplace/internal/security"
	"gorm.io/gorm"
)

// Request budgets for the rate-limited public endpoints, per client IP
// per rateLimitWindow.
const (
	callbackRateLimit = 60
	listingRateLimit  = 240
	rateLimitWindow   = time.Minute
)

// RegisterFrontRoutes registers public and user-facing routes, middleware,
// and handlers.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, ledger *payments.Ledger, catalog *ads.Service, limiter ratelimit.Limiter) {
	if r == nil || db == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	userHandler := handlers.NewUserHandler(db)
	adHandler := handlers.NewAdHandler(catalog)
	catalogHandler := handlers.NewCatalogHandler(catalog)
	planHandler := handlers.NewPlanFrontHandler(db)
	paymentHandler := handlers.NewPaymentHandler(ledger)

	v0 := r.Group("/v0")

	v0.POST("/auth/register", authHandler.Register)
	v0.POST("/auth/login", authHandler.Login)

	v0.GET("/categories", catalogHandler.Categories)
	v0.GET("/categories/:slug", catalogHandler.Category)
	v0.GET("/locations", catalogHandler.Locations)

	listing := v0.Group("")
	listing.Use(ratelimit.Middleware(limiter, "listing", listingRateLimit, rateLimitWindow))
	listing.GET("/ads", adHandler.List)
	listing.GET("/ads/:slug", adHandler.Get)

	v0.GET("/payments/plans", planHandler.List)

	callback := v0.Group("")
	callback.Use(ratelimit.Middleware(limiter, "callback", callbackRateLimit, rateLimitWindow))
	callback.POST("/payments/callback", paymentHandler.Callback)

	authed := v0.Group("")
	authed.Use(userAuthMiddleware(db, jwtCfg))

	authed.GET("/users/me", userHandler.Me)

	authed.POST("/ads", adHandler.Create)
	authed.PUT("/ads/:slug", adHandler.Update)
	authed.POST("/ads/:slug/sold", adHandler.MarkSold)

	authed.GET("/payments/subscriptions", paymentHandler.Subscriptions)
	authed.GET("/payments/subscriptions/active", paymentHandler.ActiveSubscription)
	authed.POST("/payments/subscriptions/purchase", paymentHandler.PurchaseSubscription)
	authed.POST("/payments/subscriptions/:id/cancel", paymentHandler.CancelSubscription)

	authed.GET("/payments/boosts", paymentHandler.Boosts)
	authed.POST("/payments/boosts/purchase", paymentHandler.PurchaseBoost)

	authed.GET("/payments/transactions", paymentHandler.Transactions)
	authed.GET("/payments/transactions/:id", paymentHandler.Transaction)
}

// userAuthMiddleware validates user JWTs and loads the user context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}
