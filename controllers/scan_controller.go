package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"earnings-scanner/interfaces"
	"earnings-scanner/services"

	"github.com/gin-gonic/gin"
)

// ScanController exposes the recommendation engine over REST
type ScanController struct {
	recommendation *services.RecommendationService
	scanner        *services.ScannerService
	dataService    interfaces.MarketDataService
}

// NewScanController creates a new scan controller
func NewScanController(recommendation *services.RecommendationService, scanner *services.ScannerService, dataService interfaces.MarketDataService) *ScanController {
	return &ScanController{
		recommendation: recommendation,
		scanner:        scanner,
		dataService:    dataService,
	}
}

// HandleEvaluate evaluates a single symbol
// GET /api/v1/evaluate/:symbol
func (sc *ScanController) HandleEvaluate(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No stock symbol provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	vix, err := sc.dataService.GetVixLevel(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch VIX level",
			"details": err.Error(),
		})
		return
	}

	rec, err := sc.recommendation.Evaluate(ctx, symbol, vix)
	if err != nil {
		status := http.StatusInternalServerError
		if isDataShortfall(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{
			"symbol": symbol,
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":         symbol,
		"decision":       services.Classify(rec),
		"recommendation": rec,
	})
}

// ScanRequest represents a request to scan an earnings date
type ScanRequest struct {
	Date string `json:"date" binding:"required"` // ISO calendar date
}

// HandleScan evaluates every ticker reporting earnings around a date
// POST /api/v1/scan
func (sc *ScanController) HandleScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid date, expected YYYY-MM-DD",
			"details": err.Error(),
		})
		return
	}

	report, err := sc.scanner.ScanDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Scan failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// HandleHealth reports service liveness
// GET /health
func (sc *ScanController) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func isDataShortfall(err error) bool {
	return errors.Is(err, interfaces.ErrNoOptions) ||
		errors.Is(err, interfaces.ErrInsufficientExpirations) ||
		errors.Is(err, interfaces.ErrNoPrice) ||
		errors.Is(err, interfaces.ErrNoAtmIV) ||
		errors.Is(err, interfaces.ErrInsufficientHistory)
}
