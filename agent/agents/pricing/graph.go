package pricing

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

func (a *Agent) compileGraph(ctx context.Context) (compose.Runnable[Request, contractx.PricingResult], error) {
	graph := compose.NewGraph[Request, contractx.PricingResult]()

	if err := graph.AddLambdaNode("analyze_market",
		compose.InvokableLambda(func(ctx context.Context, in Request) (*contractx.PricingResult, error) {
			return a.analyzeMarket(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node analyze_market: %w", err)
	}

	if err := graph.AddLambdaNode("get_competitor_prices",
		compose.InvokableLambda(func(ctx context.Context, in *contractx.PricingResult) (*contractx.PricingResult, error) {
			return a.getCompetitorPrices(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node get_competitor_prices: %w", err)
	}

	if err := graph.AddLambdaNode("analyze_photographer_history",
		compose.InvokableLambda(func(ctx context.Context, in *contractx.PricingResult) (*contractx.PricingResult, error) {
			return a.analyzeHistory(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node analyze_photographer_history: %w", err)
	}

	if err := graph.AddLambdaNode("calculate_optimal_price",
		compose.InvokableLambda(func(ctx context.Context, in *contractx.PricingResult) (*contractx.PricingResult, error) {
			return a.calculateOptimalPrice(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node calculate_optimal_price: %w", err)
	}

	if err := graph.AddLambdaNode("generate_recommendation",
		compose.InvokableLambda(func(ctx context.Context, in *contractx.PricingResult) (contractx.PricingResult, error) {
			return a.generateRecommendation(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_recommendation: %w", err)
	}

	edges := [][2]string{
		{compose.START, "analyze_market"},
		{"analyze_market", "get_competitor_prices"},
		{"get_competitor_prices", "analyze_photographer_history"},
		{"analyze_photographer_history", "calculate_optimal_price"},
		{"calculate_optimal_price", "generate_recommendation"},
		{"generate_recommendation", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("pricing.process"))
	if err != nil {
		return nil, fmt.Errorf("compile pricing graph: %w", err)
	}
	return runner, nil
}
