// Package api exposes the agent service over HTTP.
package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	bookingx "github.com/lenslink/lenslink-agent/agent/agents/booking"
	communicationx "github.com/lenslink/lenslink-agent/agent/agents/communication"
	pricingx "github.com/lenslink/lenslink-agent/agent/agents/pricing"
	statex "github.com/lenslink/lenslink-agent/agent/state"
)

type Config struct {
	Port int  `envconfig:"PORT" split_words:"true" default:"8001"`
	Dev  bool `envconfig:"DEV" split_words:"true" default:"false"`
}

type Server struct {
	booking       *bookingx.Assistant
	pricing       *pricingx.Agent
	communication *communicationx.Agent
	sessions      statex.Store

	engine *gin.Engine

	now func() time.Time
}

func NewServer(
	booking *bookingx.Assistant,
	pricing *pricingx.Agent,
	communication *communicationx.Agent,
	sessions statex.Store,
	cfg Config,
) (*Server, error) {
	if booking == nil {
		return nil, errors.New("booking assistant is required")
	}
	if pricing == nil {
		return nil, errors.New("pricing agent is required")
	}
	if communication == nil {
		return nil, errors.New("communication agent is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}

	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		booking:       booking,
		pricing:       pricing,
		communication: communication,
		sessions:      sessions,
		now:           time.Now,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	engine.GET("/health", s.handleHealth)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/chat", s.handleChat)
		v1.GET("/session/:id", s.handleGetSession)
		v1.DELETE("/session/:id", s.handleDeleteSession)
		v1.POST("/pricing/analyze", s.handlePricingAnalyze)
		v1.POST("/communication/send", s.handleCommunicationSend)
	}
	s.engine = engine

	return s, nil
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run(cfg Config) error {
	return s.engine.Run(fmt.Sprintf(":%d", cfg.Port))
}
