package bootstrap

import (
	"log"
	"time"

	"finance-chatbot-be/internal/config"
	"finance-chatbot-be/internal/controller"
	"finance-chatbot-be/internal/pkg/logger"
	"finance-chatbot-be/internal/repository/memory"
	"finance-chatbot-be/internal/service"
	"finance-chatbot-be/pkg/corpus"
	"finance-chatbot-be/pkg/embedding"
	"finance-chatbot-be/pkg/embedding/jina"
	"finance-chatbot-be/pkg/events"
	"finance-chatbot-be/pkg/flow"
	"finance-chatbot-be/pkg/llm/factory"
	"finance-chatbot-be/pkg/rag/prompt"
	"finance-chatbot-be/pkg/rag/ranker"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	ChatController *controller.ChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Knowledge Base
	kb, err := corpus.Load()
	if err != nil {
		log.Fatalf("[FATAL] Failed to load knowledge base: %v", err)
	}
	if err := kb.Init(embeddingProvider); err != nil {
		// Without entry vectors semantic ranking is useless, so the ranker
		// runs lexical-only until the next restart.
		sysLogger.Warn("Bootstrap", "failed to embed knowledge base, falling back to lexical matching", map[string]interface{}{"error": err.Error()})
		embeddingProvider = nil
	}
	log.Printf("[INFO] Knowledge base loaded: %d entries", kb.Len())

	// 5. Dialogue Components
	rankerCfg := ranker.Config{
		TopicBoost:          cfg.Ranker.TopicBoost,
		ProductBoost:        cfg.Ranker.ProductBoost,
		SubProductBoost:     cfg.Ranker.SubProductBoost,
		NationalityBoost:    cfg.Ranker.NationalityBoost,
		NationalityPenalty:  cfg.Ranker.NationalityPenalty,
		CombinedBonus:       cfg.Ranker.CombinedBonus,
		LexicalBoost:        cfg.Ranker.LexicalBoost,
		AutoAnswerThreshold: cfg.Ranker.AutoAnswerThreshold,
		ContextThreshold:    cfg.Ranker.ContextThreshold,
		TopK:                cfg.Ranker.TopK,
	}
	corpusRanker := ranker.New(kb, embeddingProvider, rankerCfg)
	promptBuilder := prompt.NewBuilder()

	flowEngine := flow.NewEngine(flow.Config{
		MinAmount: cfg.Flow.MinAmount,
		MinTenure: cfg.Flow.MinTenure,
		MaxTenure: cfg.Flow.MaxTenure,
		BaseRate:  flow.DefaultConfig().BaseRate,
		RateStep:  flow.DefaultConfig().RateStep,
	})

	sessionRepo := memory.NewSessionRepository(
		time.Duration(cfg.Session.TimeoutMinutes)*time.Minute,
		time.Duration(cfg.Session.SweepMinutes)*time.Minute,
	)
	usageTracker := events.NewUsageTracker(cfg.Usage.DailyCallCap)
	turnPublisher := events.NewPublisher(pubSub, cfg.Ai.ChatTurnTopic)

	// 6. Services
	chatService := service.NewChatService(
		sysLogger,
		sessionRepo,
		corpusRanker,
		promptBuilder,
		flowEngine,
		llmProvider,
		turnPublisher,
		usageTracker,
		rankerCfg,
		cfg.Ai.LLMTemperature,
		cfg.Ai.LLMMaxTokens,
	)
	consumerService := service.NewConsumerService(sysLogger, pubSub, cfg.Ai.ChatTurnTopic)

	// 7. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService, sessionRepo, usageTracker, sysLogger),
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
