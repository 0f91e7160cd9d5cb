package llm

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"medminder/internal/metrics"
)

const (
	callTimeout   = 30 * time.Second
	infoCacheSize = 128
)

// Gateway is the application's boundary to the generative-AI service. Its
// methods never fail: any provider error is converted to the fixed fallback
// text, and a nil provider (no API key configured) degrades the same way.
type Gateway struct {
	provider Provider
	cache    *lru.Cache[string, string]
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// NewGateway wraps the provider. provider may be nil when no key is
// configured; every call then returns its fallback immediately.
func NewGateway(provider Provider, logger *zap.Logger, collector *metrics.Collector) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, _ := lru.New[string, string](infoCacheSize)
	return &Gateway{
		provider: provider,
		cache:    cache,
		logger:   logger,
		metrics:  collector,
	}
}

// IdentifyPill describes the pill in the photo. Each user trigger is a
// single attempt with a bounded timeout; no retry.
func (g *Gateway) IdentifyPill(ctx context.Context, imageBase64, mimeType string) string {
	if g.provider == nil {
		g.logger.Warn("pill identification requested without a configured AI provider")
		return IdentifyFallback
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	text, err := g.provider.IdentifyPill(ctx, imageBase64, mimeType)
	g.metrics.RecordAIRequest("identify_pill", err)
	if err != nil {
		g.logger.Warn("pill identification failed",
			zap.String("provider", g.provider.Name()),
			zap.Error(err))
		return IdentifyFallback
	}
	return strings.TrimSpace(text)
}

// MedicationInfo explains a medication in plain language. Successful answers
// are cached per name/dosage pair so reopening the same modal is free.
func (g *Gateway) MedicationInfo(ctx context.Context, name, dosage string) string {
	key := strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(dosage))
	if cached, ok := g.cache.Get(key); ok {
		return cached
	}

	if g.provider == nil {
		g.logger.Warn("medication info requested without a configured AI provider")
		return InfoFallback
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	text, err := g.provider.MedicationInfo(ctx, name, dosage)
	g.metrics.RecordAIRequest("medication_info", err)
	if err != nil {
		g.logger.Warn("medication info lookup failed",
			zap.String("provider", g.provider.Name()),
			zap.String("medication", name),
			zap.Error(err))
		return InfoFallback
	}

	text = strings.TrimSpace(text)
	if text != "" {
		g.cache.Add(key, text)
	}
	return text
}
