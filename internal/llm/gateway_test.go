package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	identifyText string
	infoText     string
	err          error
	calls        int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) IdentifyPill(ctx context.Context, imageBase64, mimeType string) (string, error) {
	p.calls++
	return p.identifyText, p.err
}

func (p *stubProvider) MedicationInfo(ctx context.Context, name, dosage string) (string, error) {
	p.calls++
	return p.infoText, p.err
}

func TestGatewayFailureReturnsFallback(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{err: errors.New("model unavailable")}
	g := NewGateway(provider, zap.NewNop(), nil)

	got := g.IdentifyPill(context.Background(), "aGVsbG8=", "image/jpeg")
	assert.Equal(t, IdentifyFallback, got)

	got = g.MedicationInfo(context.Background(), "Lisinopril", "10mg")
	assert.Equal(t, InfoFallback, got)
}

func TestGatewayNilProviderDegrades(t *testing.T) {
	t.Parallel()

	g := NewGateway(nil, zap.NewNop(), nil)

	assert.Equal(t, IdentifyFallback, g.IdentifyPill(context.Background(), "aGVsbG8=", "image/jpeg"))
	assert.Equal(t, InfoFallback, g.MedicationInfo(context.Background(), "Metformin", "500mg"))
}

func TestGatewaySuccessPassesTextThrough(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		identifyText: "  This looks like Lisinopril 10mg. \n",
		infoText:     "Lisinopril lowers blood pressure.",
	}
	g := NewGateway(provider, zap.NewNop(), nil)

	assert.Equal(t, "This looks like Lisinopril 10mg.",
		g.IdentifyPill(context.Background(), "aGVsbG8=", "image/jpeg"))
	assert.Equal(t, "Lisinopril lowers blood pressure.",
		g.MedicationInfo(context.Background(), "Lisinopril", "10mg"))
}

func TestGatewayCachesMedicationInfo(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{infoText: "Take with food."}
	g := NewGateway(provider, zap.NewNop(), nil)

	first := g.MedicationInfo(context.Background(), "Metformin", "500mg")
	second := g.MedicationInfo(context.Background(), "metformin", "500MG")

	require.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second lookup should be served from cache")
}

func TestGatewayDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{err: errors.New("down")}
	g := NewGateway(provider, zap.NewNop(), nil)

	_ = g.MedicationInfo(context.Background(), "Aspirin", "81mg")
	_ = g.MedicationInfo(context.Background(), "Aspirin", "81mg")

	assert.Equal(t, 2, provider.calls, "failures must not be cached")
}
