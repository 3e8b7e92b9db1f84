// Package router maps an inbound message to a workflow.
package router

import "strings"

type Workflow int

const (
	WorkflowBooking Workflow = iota
	WorkflowPricing
)

func (w Workflow) String() string {
	switch w {
	case WorkflowPricing:
		return "pricing"
	default:
		return "booking"
	}
}

var pricingKeywords = []string{
	"price",
	"cost",
	"how much",
	"pricing",
	"package",
	"rate",
}

// Classify picks the workflow for a message. Pricing wins on any pricing
// keyword; everything else is a booking conversation.
func Classify(message string) Workflow {
	lowered := strings.ToLower(message)
	for _, kw := range pricingKeywords {
		if strings.Contains(lowered, kw) {
			return WorkflowPricing
		}
	}
	return WorkflowBooking
}
