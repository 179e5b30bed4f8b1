package main

import (
	"log"

	_ "storeadmin/api/swagger" // swagger docs
	"storeadmin/internal/config"
	"storeadmin/internal/database"
	"storeadmin/internal/handler"
	"storeadmin/internal/middleware"
	"storeadmin/internal/repository"
	"storeadmin/internal/service"
	"storeadmin/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           E-commerce Admin API
// @version         1.0
// @description     Authorization-gated administration API for products, orders, customers and shipping configuration.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket audit feed hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	auditService := service.NewAuditService(auditRepo, wsHub)
	policy := service.NewAccessPolicy(cfg.AuthPolicy)
	authzService := service.NewAuthorizationService(adminRepo, userRepo, txManager, policy, auditService)
	authService := service.NewAuthService(userRepo)
	shippingService := service.NewShippingService(shippingRepo, cfg.FreeShippingBypassesConstraints, auditService)

	middleware.InitAuthorization(authzService)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, authzService)
	adminHandler := handler.NewAdminHandler(authzService)
	shippingHandler := handler.NewShippingHandler(shippingService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Admin panel frontend
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket audit feed
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, authzService)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	adminHandler.RegisterRoutes(router.Group(""))
	shippingHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
