// Package api exposes the dispatcher, agency clients and demo dataset as
// a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"consumer-portal/internal/common/logger"
)

type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	handler    *Handler
	addr       string
	log        logger.Logger
	startTime  time.Time
}

func NewServer(handler *Handler, addr string, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(log))
	engine.Use(CORSMiddleware())

	s := &Server{
		engine:    engine,
		handler:   handler,
		addr:      addr,
		log:       log,
		startTime: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/health", s.handler.Health)
		v1.GET("/sources", s.handler.Sources)
		v1.GET("/search", s.handler.Search)
		v1.POST("/chat", s.handler.Chat)
		v1.GET("/dataset", s.handler.Dataset)

		recalls := v1.Group("/recalls")
		{
			recalls.GET("/products", s.handler.ProductRecalls)
			recalls.GET("/vehicles", s.handler.VehicleRecalls)
		}
		v1.GET("/fraud", s.handler.Fraud)
	}

	s.engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/api/v1/health")
	})
}

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("API server listening", map[string]interface{}{"address": s.addr})

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}

// Engine is exposed for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
