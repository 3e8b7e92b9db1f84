package communication

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (a *Agent) compileGraph(ctx context.Context) (compose.Runnable[Request, Result], error) {
	graph := compose.NewGraph[Request, Result]()

	if err := graph.AddLambdaNode("fetch_client_data",
		compose.InvokableLambda(func(ctx context.Context, in Request) (*runState, error) {
			return a.fetchClientData(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node fetch_client_data: %w", err)
	}

	if err := graph.AddLambdaNode("generate_message",
		compose.InvokableLambda(func(ctx context.Context, in *runState) (*runState, error) {
			return a.generateMessage(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_message: %w", err)
	}

	if err := graph.AddLambdaNode("personalize",
		compose.InvokableLambda(func(ctx context.Context, in *runState) (*runState, error) {
			return a.personalize(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node personalize: %w", err)
	}

	if err := graph.AddLambdaNode("send_message",
		compose.InvokableLambda(func(ctx context.Context, in *runState) (Result, error) {
			return a.sendMessage(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node send_message: %w", err)
	}

	edges := [][2]string{
		{compose.START, "fetch_client_data"},
		{"fetch_client_data", "generate_message"},
		{"generate_message", "personalize"},
		{"personalize", "send_message"},
		{"send_message", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("communication.process"))
	if err != nil {
		return nil, fmt.Errorf("compile communication graph: %w", err)
	}
	return runner, nil
}
