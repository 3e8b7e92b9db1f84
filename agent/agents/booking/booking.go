// Package booking runs the booking workflow: intent analysis, request
// dispatch, and response finalization over one conversation session.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	statex "github.com/lenslink/lenslink-agent/agent/state"
)

// GraphInput is one booking turn. Session is mutated in place by the
// handlers so the caller persists whatever the run decided.
type GraphInput struct {
	Message  string
	ClientID string
	Session  *statex.Session
}

// GraphOutput is the terminal response of one run.
type GraphOutput struct {
	Response contractx.Response
}

type runState struct {
	Message  string
	ClientID string
	Session  *statex.Session

	Intent   contractx.Intent
	Matches  []contractx.Candidate
	Response contractx.Response

	CurrentStep string
}

// Assistant owns the compiled booking graph and its collaborators.
type Assistant struct {
	repo      contractx.Repository
	tools     contractx.ToolGateway
	backend   contractx.BookingBackend
	completer contractx.Completer

	intentPrompt string

	graphRunner compose.Runnable[GraphInput, GraphOutput]

	now func() time.Time
}

func New(
	repo contractx.Repository,
	tools contractx.ToolGateway,
	backend contractx.BookingBackend,
	completer contractx.Completer,
	intentPrompt string,
) (*Assistant, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if backend == nil {
		return nil, errors.New("booking backend is required")
	}
	if completer == nil {
		return nil, errors.New("completer is required")
	}

	a := &Assistant{
		repo:         repo,
		tools:        tools,
		backend:      backend,
		completer:    completer,
		intentPrompt: intentPrompt,
		now:          time.Now,
	}

	graphRunner, err := a.compileGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// HandleBookingRequest runs one booking turn. The session is read and
// mutated but not persisted; persisting is the caller's job.
func (a *Assistant) HandleBookingRequest(ctx context.Context, message, clientID string, sess *statex.Session) (contractx.Response, error) {
	if sess == nil {
		return contractx.Response{}, statex.ErrNilSession
	}

	out, err := a.graphRunner.Invoke(ctx, GraphInput{
		Message:  message,
		ClientID: clientID,
		Session:  sess,
	})
	if err != nil {
		return contractx.Response{}, err
	}
	return out.Response, nil
}
