// Package llm wires the workflow agents to their OpenRouter chat models.
package llm

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

// Completer adapts an eino chat model to the single-turn prompt/response
// shape the workflow stages use.
type Completer struct {
	chatModel einomodel.BaseChatModel
}

var _ contractx.Completer = (*Completer)(nil)

func NewCompleter(chatModel einomodel.BaseChatModel) *Completer {
	return &Completer{chatModel: chatModel}
}

func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	out, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrUnavailable, err)
	}
	if out == nil {
		return "", fmt.Errorf("%w: empty completion", contractx.ErrUnavailable)
	}
	return out.Content, nil
}

// Registry holds one completer per agent so each workflow can carry its own
// model and temperature override.
type Registry struct {
	booking       *Completer
	pricing       *Completer
	communication *Completer
}

var _ contractx.Registry = (*Registry)(nil)

func NewRegistry(ctx context.Context, cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	build := func(agentType contractx.AgentType) (*Completer, error) {
		orCfg := cfg.OpenRouterFor(agentType)
		chatModel, err := orCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("build %s chat model: %w", agentType, err)
		}
		return NewCompleter(chatModel), nil
	}

	booking, err := build(contractx.AgentTypeBooking)
	if err != nil {
		return nil, err
	}
	pricing, err := build(contractx.AgentTypePricing)
	if err != nil {
		return nil, err
	}
	communication, err := build(contractx.AgentTypeCommunication)
	if err != nil {
		return nil, err
	}

	return &Registry{
		booking:       booking,
		pricing:       pricing,
		communication: communication,
	}, nil
}

func (r *Registry) Booking() contractx.Completer       { return r.booking }
func (r *Registry) Pricing() contractx.Completer       { return r.pricing }
func (r *Registry) Communication() contractx.Completer { return r.communication }
