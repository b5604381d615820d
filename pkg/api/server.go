package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/maritime-sec/port-twin/pkg/attack"
	"github.com/maritime-sec/port-twin/pkg/config"
	"github.com/maritime-sec/port-twin/pkg/models"
	"github.com/maritime-sec/port-twin/pkg/scoring"
)

// AnalysisRecord is one dashboard history entry
type AnalysisRecord struct {
	ID        string                `json:"analysis_id"`
	Timestamp time.Time             `json:"timestamp"`
	UseAI     bool                  `json:"use_ai"`
	Result    models.AnalysisResult `json:"result"`
}

// analyzeRequest is the body of POST /api/analyze
type analyzeRequest struct {
	UseAI bool `json:"use_ai"`
}

// DashboardServer exposes the port twin over HTTP for the dashboard frontend
type DashboardServer struct {
	router   *gin.Engine
	logger   *logrus.Logger
	config   config.Config
	analyzer *attack.Analyzer

	devices []models.Device
	history []AnalysisRecord
	mutex   sync.RWMutex

	registry       *prometheus.Registry
	analysesTotal  *prometheus.CounterVec
	fallbacksTotal prometheus.Counter
}

// NewDashboardServer creates the dashboard API server
func NewDashboardServer(cfg config.Config, analyzer *attack.Analyzer, devices []models.Device, logger *logrus.Logger) *DashboardServer {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.DashboardPort == "" {
		cfg.DashboardPort = "8080"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}

	gin.SetMode(gin.ReleaseMode)

	s := &DashboardServer{
		router:   gin.Default(),
		logger:   logger,
		config:   cfg,
		analyzer: analyzer,
		devices:  devices,
		history:  make([]AnalysisRecord, 0, cfg.HistoryLimit),
		registry: prometheus.NewRegistry(),
	}

	s.analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "porttwin_analyses_total",
		Help: "Attack vector analyses served, by outcome",
	}, []string{"outcome"})
	s.fallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "porttwin_generation_fallbacks_total",
		Help: "Remote generations that degraded to the simulated generator",
	})
	s.registry.MustRegister(s.analysesTotal, s.fallbacksTotal)

	s.setupRoutes()

	return s
}

func (s *DashboardServer) setupRoutes() {
	if s.config.EnableCORS {
		s.router.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		api.GET("/devices", s.handleGetDevices)
		api.POST("/devices", s.handleSetDevices)
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/history", s.handleGetHistory)
		api.GET("/summary", s.handleGetSummary)
	}
}

// Start runs the HTTP server on the configured port
func (s *DashboardServer) Start() error {
	s.logger.Infof("Dashboard API listening on port %s", s.config.DashboardPort)
	return s.router.Run(":" + s.config.DashboardPort)
}

// Router exposes the gin engine for tests and custom servers
func (s *DashboardServer) Router() http.Handler {
	return s.router
}

func (s *DashboardServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *DashboardServer) handleGetDevices(c *gin.Context) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c.JSON(http.StatusOK, s.devices)
}

func (s *DashboardServer) handleSetDevices(c *gin.Context) {
	var devices []models.Device
	if err := c.ShouldBindJSON(&devices); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mutex.Lock()
	s.devices = devices
	s.mutex.Unlock()

	s.logger.Infof("Device inventory replaced: %d devices", len(devices))
	c.JSON(http.StatusOK, gin.H{"count": len(devices)})
}

func (s *DashboardServer) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mutex.RLock()
	devices := make([]models.Device, len(s.devices))
	copy(devices, s.devices)
	s.mutex.RUnlock()

	result := s.analyzer.Analyze(c.Request.Context(), devices, req.UseAI)

	record := AnalysisRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		UseAI:     req.UseAI,
		Result:    result,
	}

	s.mutex.Lock()
	s.history = append(s.history, record)
	if len(s.history) > s.config.HistoryLimit {
		s.history = s.history[len(s.history)-s.config.HistoryLimit:]
	}
	s.mutex.Unlock()

	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	s.analysesTotal.WithLabelValues(outcome).Inc()
	if result.Success && containsFallbackNote(result.AttackVector) {
		s.fallbacksTotal.Inc()
	}

	c.JSON(http.StatusOK, record)
}

func (s *DashboardServer) handleGetHistory(c *gin.Context) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c.JSON(http.StatusOK, s.history)
}

func (s *DashboardServer) handleGetSummary(c *gin.Context) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ragCounts := map[string]int{"RED": 0, "AMBER": 0, "GREEN": 0}
	deviceTypes := make(map[string]int)
	for _, device := range s.devices {
		ragCounts[scoring.Classify(device.VulnScore).RAG()]++
		deviceTypes[device.TypeLabel()]++
	}

	c.JSON(http.StatusOK, gin.H{
		"device_count": len(s.devices),
		"rag_status":   ragCounts,
		"device_types": deviceTypes,
	})
}

func containsFallbackNote(narrative string) bool {
	return strings.Contains(narrative, "AI-enhanced analysis unavailable")
}
