package llm

import "context"

// Provider is a single generative-AI backend capable of the two calls the
// application makes. Implementations return raw model text and surface
// errors; turning failures into user-facing fallbacks is the Gateway's job.
type Provider interface {
	Name() string
	IdentifyPill(ctx context.Context, imageBase64, mimeType string) (string, error)
	MedicationInfo(ctx context.Context, name, dosage string) (string, error)
}

const identifyPrompt = "Please identify this pill. Provide its common name, " +
	"typical dosage strengths, and what it's generally used for. Be concise " +
	"and clear, as this is for a senior-friendly application."

const infoPromptFormat = `Explain the medication %q (%s).
Describe its main purpose, common side effects, and any important instructions.
Write it in very simple, clear language suitable for a senior citizen with no medical background.
AVOID medical jargon. Use short sentences and bullet points for readability. Format the response clearly. Do not use markdown syntax.`

// Fixed user-facing fallbacks shown whenever a provider call fails. They must
// be the only failure signal that crosses the gateway boundary.
const (
	IdentifyFallback = "Could not identify the pill. Please try again or contact a healthcare provider."
	InfoFallback     = "Could not retrieve information for this medication. Please try again later."
)
