package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"checkin-backend/checkin"
	"checkin-backend/config"
	"checkin-backend/handlers"
	"checkin-backend/hub"
	"checkin-backend/session"
	"checkin-backend/stats"
	"checkin-backend/store"
)

func connectToDatabase(databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to the database!")
	return pool, nil
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using default environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load configuration: %v\n", err)
	}

	// Database connection
	pool, err := connectToDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	// Schema migrations
	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Unable to run migrations: %v\n", err)
	}

	// Wire the core
	db := store.NewPostgres(pool)
	sessions := session.NewManager(db, cfg.JWTSecret, cfg.SessionTTL)
	aggregator := stats.NewAggregator(db)
	broadcastHub := hub.New(cfg.HubBuffer)
	coordinator := checkin.NewCoordinator(db, sessions, aggregator, broadcastHub)

	// Create handlers
	staffHandler := handlers.NewStaffHandler(sessions)
	checkinHandler := handlers.NewCheckinHandler(coordinator)
	statsHandler := handlers.NewStatsHandler(aggregator, db)
	dashboardHandler := handlers.NewDashboardHandler(broadcastHub, sessions, cfg.AllowedOrigins)

	// Setup Gin
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// API routes
	api := router.Group("/api/v1")
	{
		// Staff session routes
		api.POST("/staff/login", staffHandler.Login)
		api.POST("/staff/logout", staffHandler.Logout)

		// Check-in route (the coordinator validates the session itself)
		api.POST("/checkin", checkinHandler.CheckIn)

		// Dashboard routes
		authed := api.Group("/", handlers.RequireSession(sessions))
		authed.GET("/events/:id/stats", statsHandler.GetStats)
		authed.GET("/events/:id/arrivals", statsHandler.GetArrivals)

		// Live dashboard stream (token travels as a query parameter)
		api.GET("/events/:id/live", dashboardHandler.Live)

		// Health check route
		api.GET("/test-db", func(c *gin.Context) {
			err := pool.Ping(context.Background())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed: " + err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "Database connection OK"})
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	log.Printf("Server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v\n", err)
	}
}
