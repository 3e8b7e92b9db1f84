// Package communication runs the client-communication workflow: fetch
// client data, generate a typed message, personalize it, and deliver it to
// the session history and the outgoing-message queue.
package communication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	promptx "github.com/lenslink/lenslink-agent/agent/prompt"
	statex "github.com/lenslink/lenslink-agent/agent/state"
)

const outgoingMessageTTL = 7 * 24 * time.Hour

// Request is one communication run. Context carries optional delivery hints:
// "session_id" appends the message to that session's history and
// "send_via_email" queues an outgoing-message row.
type Request struct {
	ClientID    string         `json:"client_id"`
	MessageType string         `json:"message_type"`
	Context     map[string]any `json:"context,omitempty"`
}

// Result is the terminal state of one run.
type Result struct {
	ClientID               string `json:"client_id"`
	MessageType            string `json:"message_type"`
	Message                string `json:"message"`
	TotalBookings          int    `json:"total_bookings"`
	PersonalizationApplied bool   `json:"personalization_applied"`
	MessageSent            bool   `json:"message_sent"`
	CurrentStep            string `json:"current_step"`
}

type runState struct {
	Request

	Profile  *contractx.ClientProfile
	Upcoming []contractx.BookingRecord

	GeneratedMessage       string
	TotalBookings          int
	PersonalizationApplied bool
	MessageSent            bool
	CurrentStep            string
}

type Agent struct {
	repo      contractx.Repository
	completer contractx.Completer
	sessions  statex.Store

	prompts promptx.PromptSet

	graphRunner compose.Runnable[Request, Result]

	now func() time.Time
}

func New(
	repo contractx.Repository,
	completer contractx.Completer,
	sessions statex.Store,
	prompts promptx.PromptSet,
) (*Agent, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}

	a := &Agent{
		repo:      repo,
		completer: completer,
		sessions:  sessions,
		prompts:   prompts,
		now:       time.Now,
	}

	graphRunner, err := a.compileGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// Run executes the full communication workflow for one request.
func (a *Agent) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.ClientID) == "" {
		return Result{}, fmt.Errorf("%w: client id is required", contractx.ErrValidation)
	}
	if req.Context == nil {
		req.Context = map[string]any{}
	}
	if strings.TrimSpace(req.MessageType) == "" {
		req.MessageType = "faq"
	}

	return a.graphRunner.Invoke(ctx, req)
}
