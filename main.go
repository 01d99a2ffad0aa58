package main

import (
	"os"
	"strconv"
	"time"

	"earnings-scanner/controllers"
	"earnings-scanner/database"
	"earnings-scanner/interfaces"
	"earnings-scanner/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	apiKey := os.Getenv("ALPACA_API_KEY")
	secretKey := os.Getenv("ALPACA_SECRET_KEY")
	if apiKey == "" || secretKey == "" {
		logger.Fatal("ALPACA_API_KEY and ALPACA_SECRET_KEY must be set")
	}

	dbPath := getEnv("DATABASE_PATH", "./data/scanner.db")
	listenAddr := getEnv("LISTEN_ADDR", ":8080")

	var storage interfaces.StorageService
	localStorage, err := database.NewLocalStorage(dbPath)
	if err != nil {
		logger.WithError(err).Warn("Cache database unavailable, running without cache")
	} else {
		storage = localStorage
		defer localStorage.Close()
	}

	calendar := services.NewEarningsCalendarService()
	dataService := services.NewAlpacaMarketDataService(apiKey, secretKey, calendar, storage)
	recommendation := services.NewRecommendationService(dataService)

	scanner := services.NewScannerService(calendar, dataService, recommendation)
	scanner.SetBatching(getEnvInt("SCAN_BATCH_SIZE", services.DefaultScanBatchSize),
		time.Duration(getEnvInt("SCAN_COOLDOWN_SECONDS", 3))*time.Second)

	scanController := controllers.NewScanController(recommendation, scanner, dataService)

	router := gin.Default()
	router.GET("/health", scanController.HandleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/evaluate/:symbol", scanController.HandleEvaluate)
		v1.POST("/scan", scanController.HandleScan)
	}

	logger.WithField("addr", listenAddr).Info("Starting earnings scanner")
	if err := router.Run(listenAddr); err != nil {
		logger.WithError(err).Fatal("Server exited")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
