package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/shopguide/shopguide-ai-platform/internal/catalog"
	appconfig "github.com/shopguide/shopguide-ai-platform/internal/config"
	"github.com/shopguide/shopguide-ai-platform/internal/dialogue"
	"github.com/shopguide/shopguide-ai-platform/internal/observability/metrics"
	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

// BuildLLMClient assembles the Bedrock-primary, Gemini-fallback completion
// chain. Either side may be absent; nil means no AI text generation and the
// engine falls back to its deterministic templates.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) dialogue.LLMClient {
	if logger == nil {
		logger = logging.Default()
	}

	var primary dialogue.LLMClient
	if strings.TrimSpace(cfg.BedrockModelID) != "" {
		primary = dialogue.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	var fallback dialogue.LLMClient
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		gemini, err := dialogue.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini client unavailable", "error", err)
		} else {
			fallback = gemini
		}
	}

	switch {
	case primary != nil && fallback != nil:
		return dialogue.NewFallbackLLMClient(primary, fallback, logger)
	case primary != nil:
		return primary
	case fallback != nil:
		return fallback
	default:
		return nil
	}
}

// CompletionModelID picks the model identifier matching the configured
// provider: Bedrock when a Bedrock model is set, otherwise the Gemini model
// when a Gemini key is present. Empty when no LLM is configured.
func CompletionModelID(cfg *appconfig.Config) string {
	if cfg == nil {
		return ""
	}
	if strings.TrimSpace(cfg.BedrockModelID) != "" {
		return cfg.BedrockModelID
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		model := strings.TrimSpace(cfg.GeminiModelID)
		if model == "" {
			model = "gemini-2.5-flash"
		}
		return model
	}
	return ""
}

// BuildInterpreter returns the AI interpreter with pattern fallback, or the
// bare pattern interpreter when no LLM is configured.
func BuildInterpreter(llm dialogue.LLMClient, cfg *appconfig.Config, logger *logging.Logger, m *metrics.DialogueMetrics) dialogue.Interpreter {
	if llm == nil {
		return dialogue.NewPatternInterpreter()
	}
	return dialogue.NewLLMInterpreter(llm, CompletionModelID(cfg), logger, m)
}

// BuildCatalogSearcher wires the product catalog client, or nil when no
// catalog endpoint is configured.
func BuildCatalogSearcher(cfg *appconfig.Config, logger *logging.Logger) catalog.Searcher {
	if cfg == nil || strings.TrimSpace(cfg.CatalogBaseURL) == "" {
		return nil
	}

	opts := []catalog.Option{catalog.WithTimeout(cfg.CatalogTimeout)}
	if cfg.CatalogAPIKey != "" {
		opts = append(opts, catalog.WithAPIKey(cfg.CatalogAPIKey))
	}
	return catalog.NewClient(cfg.CatalogBaseURL, logger, opts...)
}

// BuildEngine wires the dialogue engine from configuration.
func BuildEngine(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger, m *metrics.DialogueMetrics) (*dialogue.Engine, error) {
	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	sessions := BuildSessionStore(redisClient, cfg)
	if sessions == nil {
		return nil, errNoSessionStore
	}

	llm := BuildLLMClient(ctx, cfg, awsCfg, logger)
	interp := BuildInterpreter(llm, cfg, logger, m)
	textgen := dialogue.NewTextGenerator(llm, CompletionModelID(cfg), logger)
	searcher := BuildCatalogSearcher(cfg, logger)

	opts := []dialogue.EngineOption{dialogue.WithMetrics(m)}
	if db := OpenDatabase(cfg, logger); db != nil {
		opts = append(opts, dialogue.WithTranscriptStore(BuildTranscriptStore(db, logger)))
	}

	return dialogue.NewEngine(sessions, interp, textgen, searcher, logger, opts...), nil
}
