package communication

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	statex "github.com/lenslink/lenslink-agent/agent/state"
)

// fetchClientData loads the client profile and next upcoming booking. A
// missing profile degrades to an anonymous client, it never aborts the run.
func (a *Agent) fetchClientData(ctx context.Context, req Request) (*runState, error) {
	st := &runState{Request: req}

	profile, err := a.repo.ClientByID(ctx, req.ClientID)
	if err != nil {
		log.Warn().Err(err).Str("client_id", req.ClientID).Msg("communication: client read failed")
	} else {
		st.Profile = profile
	}

	upcoming, err := a.repo.UpcomingBookings(ctx, req.ClientID)
	if err != nil {
		log.Warn().Err(err).Str("client_id", req.ClientID).Msg("communication: booking read failed")
		upcoming = nil
	}
	st.Upcoming = upcoming
	st.TotalBookings = len(upcoming)

	st.CurrentStep = "data_fetched"
	return st, nil
}

// generateMessage selects the template for the message type (faq for unknown
// types) and asks the model for the message body.
func (a *Agent) generateMessage(ctx context.Context, st *runState) (*runState, error) {
	system := a.prompts.MessageTemplate(st.MessageType)

	clientData := map[string]any{
		"profile":         st.Profile,
		"booking_history": st.Upcoming,
		"total_bookings":  st.TotalBookings,
	}
	user := fmt.Sprintf("%s\nContext: %s", mustJSON(clientData), mustJSON(st.Context))

	message, err := a.completer.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("generate %s message: %w", st.MessageType, err)
	}

	st.GeneratedMessage = message
	st.CurrentStep = "message_generated"
	return st, nil
}

// personalize rewrites the generated message with the client's first name
// and booking count. A failed rewrite keeps the unpersonalized message.
func (a *Agent) personalize(ctx context.Context, st *runState) (*runState, error) {
	name := "Valued Client"
	if st.Profile != nil && strings.TrimSpace(st.Profile.FirstName) != "" {
		name = strings.TrimSpace(st.Profile.FirstName)
	}

	user := fmt.Sprintf("Message: %s\nClient Name: %s\nBooking Count: %d\nPersonalize this message.",
		st.GeneratedMessage, name, st.TotalBookings)

	personalized, err := a.completer.Complete(ctx, a.prompts.Personalize, user)
	if err != nil {
		log.Warn().Err(err).Msg("communication: personalization failed, keeping generated message")
		st.CurrentStep = "personalized"
		return st, nil
	}

	st.GeneratedMessage = personalized
	st.PersonalizationApplied = true
	st.CurrentStep = "personalized"
	return st, nil
}

// sendMessage records the final message: into the session history when the
// context names a session, and into the outgoing-message queue when
// asynchronous delivery is requested. Both writes are best-effort.
func (a *Agent) sendMessage(ctx context.Context, st *runState) (Result, error) {
	if sessionID, ok := st.Context["session_id"].(string); ok && sessionID != "" {
		if err := a.appendToSession(ctx, sessionID, st); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("communication: session append failed")
		}
	}

	if send, ok := st.Context["send_via_email"].(bool); ok && send {
		now := a.now().UTC()
		err := a.repo.InsertOutgoingMessage(ctx, &contractx.OutgoingMessage{
			ClientID:       st.ClientID,
			MessageType:    st.MessageType,
			MessageContent: st.GeneratedMessage,
			Status:         "pending",
			SentAt:         now,
			ExpiresAt:      now.Add(outgoingMessageTTL),
		})
		if err != nil {
			log.Warn().Err(err).Str("client_id", st.ClientID).Msg("communication: outgoing message insert failed")
		}
	}

	st.MessageSent = true
	st.CurrentStep = "completed"

	return Result{
		ClientID:               st.ClientID,
		MessageType:            st.MessageType,
		Message:                st.GeneratedMessage,
		TotalBookings:          st.TotalBookings,
		PersonalizationApplied: st.PersonalizationApplied,
		MessageSent:            st.MessageSent,
		CurrentStep:            st.CurrentStep,
	}, nil
}

func (a *Agent) appendToSession(ctx context.Context, sessionID string, st *runState) error {
	now := a.now()
	sess, err := statex.GetOrCreate(ctx, a.sessions, sessionID, now)
	if err != nil {
		return err
	}

	sess.History = append(sess.History, statex.HistoryEntry{
		Role:      "assistant",
		Content:   st.GeneratedMessage,
		Timestamp: now.UTC(),
		Metadata: map[string]any{
			"client_id":    st.ClientID,
			"message_type": st.MessageType,
		},
	})
	sess.Touch(now)

	return a.sessions.Save(ctx, sess)
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
