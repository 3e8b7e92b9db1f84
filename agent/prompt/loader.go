package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/intent.txt
	intentRaw string

	//go:embed template/pricing_optimal.txt
	pricingOptimalRaw string

	//go:embed template/pricing_explain.txt
	pricingExplainRaw string

	//go:embed template/comm_questionnaire.txt
	questionnaireRaw string

	//go:embed template/comm_reminder.txt
	reminderRaw string

	//go:embed template/comm_followup.txt
	followupRaw string

	//go:embed template/comm_faq.txt
	faqRaw string

	//go:embed template/personalize.txt
	personalizeRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Intent         string
	PricingOptimal string
	PricingExplain string
	Questionnaire  string
	Reminder       string
	Followup       string
	FAQ            string
	Personalize    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Intent:         strings.TrimSpace(intentRaw),
		PricingOptimal: strings.TrimSpace(pricingOptimalRaw),
		PricingExplain: strings.TrimSpace(pricingExplainRaw),
		Questionnaire:  strings.TrimSpace(questionnaireRaw),
		Reminder:       strings.TrimSpace(reminderRaw),
		Followup:       strings.TrimSpace(followupRaw),
		FAQ:            strings.TrimSpace(faqRaw),
		Personalize:    strings.TrimSpace(personalizeRaw),
	}
}

// MessageTemplate maps a communication message type to its system prompt,
// defaulting to the FAQ prompt for unknown types.
func (p PromptSet) MessageTemplate(messageType string) string {
	switch messageType {
	case "questionnaire":
		return p.Questionnaire
	case "reminder":
		return p.Reminder
	case "followup":
		return p.Followup
	case "faq":
		return p.FAQ
	default:
		return p.FAQ
	}
}
