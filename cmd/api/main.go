package main

import (
	"context"
	"os"
	"time"

	"tapin/internal/auth"
	"tapin/internal/bundle"
	"tapin/internal/cart"
	"tapin/internal/checkout"
	"tapin/internal/db"
	"tapin/internal/loyalty"
	"tapin/internal/middleware"
	"tapin/internal/payment"
	"tapin/internal/policy"
	"tapin/internal/redemption"
	"tapin/internal/restaurant"
	"tapin/internal/transactions"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	required := []string{
		"JWT_SECRET",
		"DATABASE_URL",
	}

	for _, k := range required {
		if os.Getenv(k) == "" {
			logrus.Fatalf("missing env var: %s", k)
		}
	}

	// ───────────────────────── DB ─────────────────────────
	pgDB := db.ConnectPostgres()
	defer pgDB.Close()

	// ───────────────────────── GIN ─────────────────────────
	r := gin.Default()

	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ───────────────────────── AUTH ─────────────────────────
	userRepo := auth.NewPostgresUserRepository(pgDB)
	authService := auth.NewService(userRepo)
	authHandler := auth.NewHandler(authService)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// ───────────────────────── CORE REPOS ─────────────────────────
	restaurantRepo := restaurant.NewPostgresRepository(pgDB)
	policyRepo := policy.NewRepository(pgDB)
	bundleRepo := bundle.NewRepository(pgDB)
	loyaltyRepo := loyalty.NewRepository(pgDB)
	txnRepo := transactions.NewRepository(pgDB)

	// ───────────────────────── SERVICES ─────────────────────────
	restaurantService := restaurant.NewService(restaurantRepo)
	cartStore := cart.NewStore()
	processor := payment.NewMockProcessor()

	checkoutService := checkout.NewService(
		restaurantService,
		policyRepo,
		bundleRepo,
		loyaltyRepo,
		txnRepo,
		cartStore,
		processor,
	)

	redemptionService := redemption.NewService(txnRepo)

	// ───────────────────────── SEED ─────────────────────────
	if path := os.Getenv("POLICY_SEED_FILE"); path != "" {
		seedPolicies(policyRepo, path)
	}

	// ───────────────────────── HANDLERS ─────────────────────────
	restaurantHandler := restaurant.NewHandler(restaurantService)
	policyHandler := policy.NewHandler(policyRepo)
	bundleHandler := bundle.NewHandler(bundleRepo, policyRepo, restaurantService)
	loyaltyHandler := loyalty.NewHandler(loyaltyRepo)
	txnHandler := transactions.NewHandler(txnRepo)
	checkoutHandler := checkout.NewHandler(checkoutService)
	redemptionHandler := redemption.NewHandler(redemptionService)

	// ───────────────────────── PUBLIC ROUTES ─────────────────────────
	r.GET("/restaurants", restaurantHandler.List())
	r.GET("/restaurants/:id", restaurantHandler.Get())
	r.GET("/restaurants/:id/policies", policyHandler.List())
	r.GET("/restaurants/:id/policies/:policyId", policyHandler.Get())
	r.GET("/restaurants/:id/bundles", bundleHandler.List())

	// ───────────────────────── CART + CHECKOUT ROUTES ─────────────────────────
	authed := r.Group("/restaurants/:id")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/cart", checkoutHandler.GetQuote())
		authed.POST("/cart/items", checkoutHandler.AddItem())
		authed.PATCH("/cart/items/:lineId", checkoutHandler.UpdateItem())
		authed.POST("/cart/policies/:policyId", checkoutHandler.SelectPolicy())
		authed.DELETE("/cart/policies/:policyId", checkoutHandler.DeselectPolicy())
		authed.GET("/policies/:policyId/missing-items", checkoutHandler.MissingItems())

		authed.GET("/loyalty", loyaltyHandler.Balance())
		authed.GET("/transactions", txnHandler.List())
		authed.GET("/ownerships", bundleHandler.Owned())

		authed.POST("/bundles/:bundleId/purchase",
			middleware.RateLimit(rate.Limit(1), 5),
			checkoutHandler.PurchaseBundle())
	}

	checkoutGroup := r.Group("/checkout")
	checkoutGroup.Use(
		middleware.AuthMiddleware(),
		middleware.RateLimit(rate.Limit(1), 5),
	)
	{
		checkoutGroup.POST("/intent", checkoutHandler.CreateIntent())
		checkoutGroup.POST("/submit", checkoutHandler.Submit())
	}

	redeemGroup := r.Group("/redeem")
	redeemGroup.Use(
		middleware.AuthMiddleware(),
		middleware.RateLimit(rate.Limit(2), 10),
	)
	{
		redeemGroup.POST("", redemptionHandler.Redeem())
	}

	// ───────────────────────── ADMIN ROUTES ─────────────────────────
	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole(auth.RoleAdmin),
	)
	{
		admin.POST("/restaurants/:id/refresh", restaurantHandler.Refresh())
		admin.PUT("/restaurants/:id/policies", policyHandler.Upsert())
	}

	// ───────────────────────── HEALTH + METRICS ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ───────────────────────── START ─────────────────────────
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	logrus.Infof("API running at http://localhost:%s", port)
	r.Run(":" + port)
}

// seedPolicies upserts the policies of a YAML seed file, used for
// local development and venue onboarding.
func seedPolicies(repo *policy.Repository, path string) {
	seed, err := policy.LoadSeedFile(path)
	if err != nil {
		logrus.Fatal("policy seed: ", err)
	}
	for _, p := range seed.Policies {
		if err := repo.Upsert(context.Background(), seed.RestaurantID, p); err != nil {
			logrus.Fatalf("policy seed %s: %v", p.PolicyID, err)
		}
	}
	logrus.Infof("seeded %d policies for %s", len(seed.Policies), seed.RestaurantID)
}
