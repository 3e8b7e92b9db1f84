package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	communicationx "github.com/lenslink/lenslink-agent/agent/agents/communication"
	pricingx "github.com/lenslink/lenslink-agent/agent/agents/pricing"
	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	routerx "github.com/lenslink/lenslink-agent/agent/router"
	statex "github.com/lenslink/lenslink-agent/agent/state"
)

// Defaults for quick pricing questions asked through chat, where no concrete
// photographer or shoot is in scope yet.
const (
	chatPricingPhotographer = "default"
	chatPricingServiceType  = "portrait"
	chatPricingLocation     = "New York"
	chatPricingDuration     = 2.0
)

type chatRequest struct {
	Message   string `json:"message"`
	ClientID  string `json:"client_id"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	req.ClientID = strings.TrimSpace(req.ClientID)
	if req.Message == "" || req.ClientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message and client_id are required"})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s_%s", req.ClientID, uuid.New().String())
	}

	now := s.now()
	sess, err := statex.GetOrCreate(c.Request.Context(), s.sessions, sessionID, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}

	var resp contractx.Response
	switch routerx.Classify(req.Message) {
	case routerx.WorkflowPricing:
		result, err := s.pricing.Run(c.Request.Context(), pricingx.Request{
			PhotographerID: chatPricingPhotographer,
			ServiceType:    chatPricingServiceType,
			Location:       chatPricingLocation,
			DurationHours:  chatPricingDuration,
		})
		if err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("api: chat pricing run failed")
			resp = contractx.Response{
				Success: false,
				Type:    "pricing_error",
				Message: "I couldn't analyze pricing right now. Please try again.",
			}
		} else {
			resp = contractx.Response{
				Success: true,
				Type:    "pricing_info",
				Message: fmt.Sprintf("Based on market analysis, I recommend $%.0f for this service.", result.SuggestedPrice),
			}
		}
	default:
		resp, err = s.booking.HandleBookingRequest(c.Request.Context(), req.Message, req.ClientID, sess)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("api: booking run failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "booking workflow failed"})
			return
		}
	}
	resp.SessionID = sessionID

	sess.AppendHistory("user", req.Message, now)
	sess.AppendHistory("assistant", resp.Message, now)
	if err := s.sessions.Save(c.Request.Context(), sess); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("api: session save failed")
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetSession(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := s.sessions.Load(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, statex.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"state":      sess,
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := s.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Session %s cleared", sessionID),
	})
}

type pricingRecommendation struct {
	SuggestedPrice   float64            `json:"suggested_price"`
	MarketAverage    float64            `json:"market_average"`
	CompetitiveRange map[string]float64 `json:"competitive_range"`
	Reasoning        string             `json:"reasoning"`
}

func (s *Server) handlePricingAnalyze(c *gin.Context) {
	var req pricingx.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := s.pricing.Run(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("photographer_id", req.PhotographerID).Msg("api: pricing run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pricing workflow failed"})
		return
	}

	compMin, compMax := 0.0, 0.0
	for i, p := range result.CompetitorPrices {
		if i == 0 || p < compMin {
			compMin = p
		}
		if i == 0 || p > compMax {
			compMax = p
		}
	}

	c.JSON(http.StatusOK, pricingRecommendation{
		SuggestedPrice: result.SuggestedPrice,
		MarketAverage:  result.MarketData.AveragePrice,
		CompetitiveRange: map[string]float64{
			"min": compMin,
			"max": compMax,
		},
		Reasoning: result.Reasoning,
	})
}

func (s *Server) handleCommunicationSend(c *gin.Context) {
	var req communicationx.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := s.communication.Run(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("client_id", req.ClientID).Msg("api: communication run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "communication workflow failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lenslink-agent",
		"agents":  []string{"booking", "pricing", "communication"},
	})
}
