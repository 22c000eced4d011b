package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"agentic-xai/internal/agent"
	"agentic-xai/internal/store"
)

// Config defines server dependencies.
type Config struct {
	DBPath         string
	AllowedOrigins []string
	SilentDB       bool
	AIConfig       agent.Config
	DisableAI      bool
}

// Server wires HTTP handlers with the decision pipeline and history store.
type Server struct {
	db             *store.Database
	provider       agent.Provider
	allowedOrigins []string
	notifier       *DecisionNotifier
	vendor         string
	model          string
	aiEnabled      bool
}

// NewServer constructs the API server. A missing API key disables the remote
// provider and the service runs fallback-only; it never fails boot for that.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	engine := agent.NewEngine()
	server := &Server{
		db:             db,
		provider:       engine,
		allowedOrigins: cfg.AllowedOrigins,
		notifier:       NewDecisionNotifier(),
		vendor:         "none",
		model:          agent.FallbackModelName,
	}

	if cfg.DisableAI {
		logrus.Info("AI provider disabled via configuration; running fallback-only")
		return server, nil
	}

	client, err := agent.NewProvider(cfg.AIConfig)
	switch {
	case err == nil:
		server.provider = agent.WithFallback(client, engine)
		server.vendor = strings.ToLower(strings.TrimSpace(cfg.AIConfig.Vendor))
		if server.vendor == "" {
			server.vendor = agent.VendorOpenAI
		}
		server.model = cfg.AIConfig.Model
		server.aiEnabled = true
		logrus.WithFields(logrus.Fields{
			"vendor": server.vendor,
			"model":  server.model,
		}).Info("AI provider enabled")
	case errors.Is(err, agent.ErrDisabled):
		logrus.Info("no AI credentials configured; running fallback-only")
	default:
		return nil, fmt.Errorf("ai provider: %w", err)
	}

	return server, nil
}

// Close releases the history database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/task", s.handleTask)
		api.GET("/decisions", s.handleListDecisions)
		api.GET("/decisions/:id", s.handleGetDecision)
		api.GET("/export.csv", s.handleExportCSV)
		api.GET("/export.json", s.handleExportJSON)
		api.GET("/stream", s.handleStream)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	summary, err := s.db.Summarize()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ai_enabled": s.aiEnabled,
		"vendor":     s.vendor,
		"model":      s.model,
		"history":    summary,
	})
}

func (s *Server) handleListDecisions(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 25
	}
	minConfidence, _ := strconv.ParseFloat(c.Query("minConfidence"), 64)

	rows, total, err := s.db.ListDecisions(store.DecisionQuery{
		Query:         strings.TrimSpace(c.Query("q")),
		Source:        strings.TrimSpace(c.Query("source")),
		MinConfidence: minConfidence,
		Offset:        page * pageSize,
		Limit:         pageSize,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]DecisionDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, DecisionFromModel(row))
	}
	c.JSON(http.StatusOK, DecisionsResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetDecision(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("decision id required"))
		return
	}

	record, err := s.db.GetDecision(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("decision %s not found", id))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, DecisionFromModel(*record))
}

func (s *Server) handleExportCSV(c *gin.Context) {
	rows, _, err := s.db.ListDecisions(store.DecisionQuery{Limit: -1})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=decision-history.csv")
	c.Header("Content-Type", "text/csv")

	writer := csv.NewWriter(c.Writer)
	headers := []string{"id", "created_at", "task_description", "decision", "confidence", "source", "model", "processing_time_ms"}
	if err := writer.Write(headers); err != nil {
		return
	}
	for _, row := range rows {
		dto := DecisionFromModel(row)
		line := []string{
			dto.ID,
			dto.CreatedAt.Format(time.RFC3339),
			dto.TaskDescription,
			dto.Decision,
			fmt.Sprintf("%.2f", dto.Confidence),
			dto.Source,
			dto.ModelName,
			strconv.FormatInt(dto.ProcessingTimeMs, 10),
		}
		if err := writer.Write(line); err != nil {
			return
		}
	}
	writer.Flush()
}

func (s *Server) handleExportJSON(c *gin.Context) {
	rows, _, err := s.db.ListDecisions(store.DecisionQuery{Limit: -1})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]DecisionDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, DecisionFromModel(row))
	}
	c.Header("Content-Disposition", "attachment; filename=decision-history.json")
	c.JSON(http.StatusOK, dtos)
}

func (s *Server) handleStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("decision websocket connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("decision websocket closed")
			} else {
				logrus.WithError(err).Warn("decision websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
