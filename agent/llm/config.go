package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	openrouterx "github.com/lenslink/lenslink-agent/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	BookingModel             string  `envconfig:"BOOKING_MODEL" split_words:"true"`
	PricingModel             string  `envconfig:"PRICING_MODEL" split_words:"true"`
	CommunicationModel       string  `envconfig:"COMMUNICATION_MODEL" split_words:"true"`
	BookingTemperature       float32 `envconfig:"BOOKING_TEMPERATURE" split_words:"true" default:"-1"`
	PricingTemperature       float32 `envconfig:"PRICING_TEMPERATURE" split_words:"true" default:"-1"`
	CommunicationTemperature float32 `envconfig:"COMMUNICATION_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the effective model and temperature for one agent,
// falling back to the shared defaults when no per-agent override is set.
func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeBooking:
		if v := strings.TrimSpace(c.BookingModel); v != "" {
			modelName = v
		}
		if c.BookingTemperature >= 0 {
			temp = c.BookingTemperature
		}
	case contractx.AgentTypePricing:
		if v := strings.TrimSpace(c.PricingModel); v != "" {
			modelName = v
		}
		if c.PricingTemperature >= 0 {
			temp = c.PricingTemperature
		}
	case contractx.AgentTypeCommunication:
		if v := strings.TrimSpace(c.CommunicationModel); v != "" {
			modelName = v
		}
		if c.CommunicationTemperature >= 0 {
			temp = c.CommunicationTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
