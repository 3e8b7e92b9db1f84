package tool

import (
	"fmt"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

// mockResult is the clearly-tagged stand-in returned when a tool server is
// unconfigured. Payload shapes mirror the real servers closely enough that
// callers need no special-casing.
func mockResult(serverName, toolName string, payload map[string]any) contractx.ToolResult {
	switch serverName {
	case ServerAvailability:
		return contractx.ToolResult{
			"photographer_id": stringArg(payload, "photographer_id"),
			"date":            stringArg(payload, "date"),
			"available":       true,
			"reason":          "availability server unconfigured; assuming available",
			"mock":            true,
		}
	case ServerWeather:
		return contractx.ToolResult{
			"location":               stringArg(payload, "location"),
			"date":                   stringArg(payload, "date"),
			"condition":              "Clear",
			"good_for_outdoor_shoot": true,
			"photography_tips":       "Perfect weather for outdoor photography!",
			"note":                   "mock forecast; configure the weather server for real data",
			"mock":                   true,
		}
	case ServerSearch:
		query := stringArg(payload, "query")
		results := make([]any, 0, 3)
		for i := 1; i <= 3; i++ {
			results = append(results, map[string]any{
				"title":    fmt.Sprintf("Mock Result %d for '%s'", i, query),
				"url":      fmt.Sprintf("https://example.com/result%d", i),
				"snippet":  "Mock search result; configure the search server for real results.",
				"position": i,
			})
		}
		return contractx.ToolResult{
			"query":         query,
			"total_results": 3,
			"results":       results,
			"note":          "mock results; configure the search server for real data",
			"mock":          true,
		}
	default:
		return contractx.ToolResult{
			"error": fmt.Sprintf("server %s is disabled", serverName),
			"mock":  true,
		}
	}
}

func stringArg(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
