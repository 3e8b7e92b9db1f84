package booking

import (
	"context"
	"strings"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	extractx "github.com/lenslink/lenslink-agent/agent/extract"
	statex "github.com/lenslink/lenslink-agent/agent/state"
)

// analyzeIntent classifies the message. When the session is showing ranked
// options the raw message IS the selection, so the model is bypassed; any
// model or parse failure degrades to an unclear intent, never an error.
func (a *Assistant) analyzeIntent(ctx context.Context, in GraphInput) (*runState, error) {
	st := &runState{
		Message:  in.Message,
		ClientID: in.ClientID,
		Session:  in.Session,
	}

	if in.Session.Step == statex.StepShowingOptions {
		st.Intent = contractx.Intent{
			Type:             contractx.IntentSelection,
			PhotographerName: strings.TrimSpace(in.Message),
			Requirements:     contractx.Requirements{},
		}
		st.CurrentStep = "intent_analyzed"
		return st, nil
	}

	completion, err := a.completer.Complete(ctx, a.intentPrompt, "Message: "+in.Message)
	if err != nil {
		st.Intent = unclearIntent(in.Message)
		st.CurrentStep = "intent_analyzed"
		return st, nil
	}

	var intent contractx.Intent
	if err := extractx.JSONObject(completion, &intent); err != nil {
		st.Intent = unclearIntent(in.Message)
		st.CurrentStep = "intent_analyzed"
		return st, nil
	}

	switch intent.Type {
	case contractx.IntentDirectBooking, contractx.IntentRecommendation, contractx.IntentUnclear:
	default:
		intent.Type = contractx.IntentUnclear
	}
	intent.OriginalMessage = in.Message

	st.Intent = intent
	st.CurrentStep = "intent_analyzed"
	return st, nil
}

func unclearIntent(message string) contractx.Intent {
	return contractx.Intent{
		Type:            contractx.IntentUnclear,
		OriginalMessage: message,
	}
}
