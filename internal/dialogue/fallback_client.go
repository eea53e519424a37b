package dialogue

import (
	"context"

	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

// FallbackLLMClient tries a primary provider and retries once against a
// secondary one when the primary errors. A nil fallback degrades to a
// plain passthrough.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackLLMClient composes two providers. Primary must be non-nil.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if primary == nil {
		panic("dialogue: primary LLM client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{primary: primary, fallback: fallback, logger: logger}
}

// Complete runs the request against the primary, then the fallback.
func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, primaryErr := c.primary.Complete(ctx, req)
	if primaryErr == nil {
		return resp, nil
	}
	if c.fallback == nil {
		return LLMResponse{}, primaryErr
	}

	// A dead caller context would fail the fallback anyway.
	if ctx != nil && ctx.Err() != nil {
		return LLMResponse{}, primaryErr
	}

	c.logger.Warn("primary LLM failed, trying fallback", "error", primaryErr)

	resp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback LLM also failed",
			"primary_error", primaryErr,
			"fallback_error", fallbackErr,
		)
		return LLMResponse{}, fallbackErr
	}

	c.logger.Info("fallback LLM recovered the completion")
	return resp, nil
}
