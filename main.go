package main

import (
	"context"

	"github.com/rs/zerolog/log"

	bookingx "github.com/lenslink/lenslink-agent/agent/agents/booking"
	communicationx "github.com/lenslink/lenslink-agent/agent/agents/communication"
	pricingx "github.com/lenslink/lenslink-agent/agent/agents/pricing"
	llmx "github.com/lenslink/lenslink-agent/agent/llm"
	promptx "github.com/lenslink/lenslink-agent/agent/prompt"
	repox "github.com/lenslink/lenslink-agent/agent/repo"
	statex "github.com/lenslink/lenslink-agent/agent/state"
	toolx "github.com/lenslink/lenslink-agent/agent/tool"
	"github.com/lenslink/lenslink-agent/api"
	backendx "github.com/lenslink/lenslink-agent/pkg/backend"
	configx "github.com/lenslink/lenslink-agent/pkg/config"
	logx "github.com/lenslink/lenslink-agent/pkg/logger"
)

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	ctx := context.Background()

	dbCfg := configx.MustNew[repox.Config]("DATABASE")
	db, err := repox.Connect(*dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()
	repo := repox.New(db)

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	models, err := llmx.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build model registry")
	}

	toolCfg := configx.MustNew[toolx.Config]("TOOL")
	tools := toolx.NewGateway(*toolCfg)

	backendCfg := configx.MustNew[backendx.Config]("BOOKING_BACKEND")
	backend := backendx.MustNew(*backendCfg)

	sessionCfg := configx.MustNew[statex.MemoryConfig]("SESSION")
	sessions := statex.NewMemoryStore(*sessionCfg)
	defer sessions.Close()

	prompts := promptx.LoadPromptSet()

	bookingAgent, err := bookingx.New(repo, tools, backend, models.Booking(), prompts.Intent)
	if err != nil {
		log.Fatal().Err(err).Msg("build booking assistant")
	}

	pricingAgent, err := pricingx.New(repo, models.Pricing(), prompts.PricingOptimal, prompts.PricingExplain)
	if err != nil {
		log.Fatal().Err(err).Msg("build pricing agent")
	}

	communicationAgent, err := communicationx.New(repo, models.Communication(), sessions, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("build communication agent")
	}

	apiCfg := configx.MustNew[api.Config]("API")
	server, err := api.NewServer(bookingAgent, pricingAgent, communicationAgent, sessions, *apiCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build api server")
	}

	log.Info().Int("port", apiCfg.Port).Msg("agent service listening")
	if err := server.Run(*apiCfg); err != nil {
		log.Fatal().Err(err).Msg("api server stopped")
	}
}
