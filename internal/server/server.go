package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/models"
	"github.com/rupai/finagents/internal/orchestrator"
	"github.com/rupai/finagents/internal/storage"
)

// Server is the thin HTTP surface over the orchestrator and the insight
// store.
type Server struct {
	orch    *orchestrator.Orchestrator
	store   storage.Storage
	timeout time.Duration
	logger  *zap.Logger
}

func New(orch *orchestrator.Orchestrator, store storage.Storage, timeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		orch:    orch,
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Echo builds the configured echo instance without starting it.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	// Unified error handler: log and render {"error": msg}
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		s.logger.Error("Request failed",
			zap.Int("status", code),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"error": msg})
		}
	}

	e.POST("/analyze-document", s.analyzeDocument)
	e.POST("/chat", s.chat)
	e.GET("/user/:user_id/insights", s.userInsights)
	e.POST("/user/:user_id/refresh-analysis", s.refreshAnalysis)
	e.GET("/health", s.health)

	return e
}

// Start runs the HTTP server until the listener fails or is shut down.
func (s *Server) Start(addr string) error {
	return s.Echo().Start(addr)
}

// boundedContext caps every external suspension point (LLM and store calls)
// reached from a handler with the configured timeout.
func (s *Server) boundedContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), s.timeout)
}

func (s *Server) analyzeDocument(c echo.Context) error {
	var req struct {
		DocumentID string `json:"document_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DocumentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document_id required")
	}

	ctx, cancel := s.boundedContext(c)
	defer cancel()

	report, err := s.orch.RunFullAnalysis(ctx, req.DocumentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"analysis": report,
	})
}

func (s *Server) chat(c echo.Context) error {
	var req struct {
		UserID    string `json:"user_id"`
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and message required")
	}

	ctx, cancel := s.boundedContext(c)
	defer cancel()

	response, err := s.orch.RouteQuery(ctx, req.UserID, req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"response": response})
}

func (s *Server) userInsights(c echo.Context) error {
	ctx, cancel := s.boundedContext(c)
	defer cancel()

	insights, err := s.store.GetActiveInsights(ctx, c.Param("user_id"), "")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if insights == nil {
		insights = []models.Insight{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"insights": insights})
}

func (s *Server) refreshAnalysis(c echo.Context) error {
	ctx, cancel := s.boundedContext(c)
	defer cancel()

	counts, err := s.orch.RefreshUserAnalysis(ctx, c.Param("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":          true,
		"updated_insights": counts,
	})
}

func (s *Server) health(c echo.Context) error {
	agents := make([]string, len(models.AllAgentTypes))
	for i, agentType := range models.AllAgentTypes {
		agents[i] = string(agentType)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"agents": agents,
	})
}
