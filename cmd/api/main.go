package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"spot-optimizer/internal/api/handlers"
	"spot-optimizer/internal/api/middleware"
	"spot-optimizer/internal/config"
	"spot-optimizer/internal/data"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Credentials usually come from a .env file in development.
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	var fetcher handlers.MarketDataFetcher = cfg.NewMarketClient()
	if cache := data.CacheFromEnv(); cache != nil {
		log.Printf("Price cache enabled")
		fetcher = &data.CachedFetcher{Inner: fetcher, Cache: cache}
	}
	optimizationHandler := handlers.NewOptimizationHandler(fetcher, cfg)
	marketDataHandler := handlers.NewMarketDataHandler(fetcher, cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/market-data", marketDataHandler.GetMarketData)

		api.POST("/optimization/optimize", optimizationHandler.Optimize)
		api.POST("/optimization/optimize-csv", optimizationHandler.OptimizeCSV)
		api.POST("/optimization/upload-csv", optimizationHandler.UploadCSV)
		api.POST("/optimization/upload-csv-download", optimizationHandler.UploadCSVDownload)
	}

	// Serve the bundled UI if present.
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./static"
	}
	if _, err := os.Stat(staticDir); err == nil {
		router.Static("/static", staticDir)
		router.GET("/", func(c *gin.Context) {
			c.File(staticDir + "/index.html")
		})
		log.Printf("Serving static files from %s", staticDir)
	} else {
		log.Printf("Static directory %s not found, skipping static file serving", staticDir)
	}

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
