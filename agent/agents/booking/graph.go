package booking

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (a *Assistant) compileGraph(ctx context.Context) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("analyze_intent",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*runState, error) {
			return a.analyzeIntent(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node analyze_intent: %w", err)
	}

	if err := graph.AddLambdaNode("process_request",
		compose.InvokableLambda(func(ctx context.Context, in *runState) (*runState, error) {
			return a.processRequest(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node process_request: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_response",
		compose.InvokableLambda(func(ctx context.Context, in *runState) (GraphOutput, error) {
			in.CurrentStep = "completed"
			return GraphOutput{Response: in.Response}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_response: %w", err)
	}

	edges := [][2]string{
		{compose.START, "analyze_intent"},
		{"analyze_intent", "process_request"},
		{"process_request", "finalize_response"},
		{"finalize_response", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("booking.handle_request"))
	if err != nil {
		return nil, fmt.Errorf("compile booking graph: %w", err)
	}
	return runner, nil
}
