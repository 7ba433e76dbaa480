package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"databroker/api"
	"databroker/internal/config"
	"databroker/internal/middleware"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config
}

func New(cfg config.Config, adaptors api.AdaptorService, topo api.TopologyService) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.CORS(), middleware.Timeout(30*time.Second))

	api.RegisterRoutes(r, adaptors, topo)

	return &Server{
		engine: r,
		cfg:    cfg,
	}
}

func (s *Server) Start() error {
	return s.engine.Run(s.cfg.Addr())
}

// Engine returns the underlying Gin engine (for testing)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
