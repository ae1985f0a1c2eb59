// Package request builds provider-specific request payloads and transport
// headers from one internal envelope. Payload shape is a pure function of
// provider and feature flags; no provider-specific field leaks into
// another provider's payload, and the builder performs no network I/O.
package request

import (
	"encoding/json"
	"fmt"

	"github.com/everstacklabs/ask/internal/catalog"
	"github.com/everstacklabs/ask/internal/classify"
	"github.com/everstacklabs/ask/internal/provider"
)

// ThinkingLevel selects the reasoning effort on the direct Gemini surface.
type ThinkingLevel string

const (
	ThinkingNone   ThinkingLevel = "none"
	ThinkingLow    ThinkingLevel = "low"
	ThinkingMedium ThinkingLevel = "medium"
	ThinkingHigh   ThinkingLevel = "high"
)

// Flags are the feature toggles that shape a request.
type Flags struct {
	ExtendedContext bool
	ThinkingLevel   ThinkingLevel
	// ThinkingBudget, when positive, replaces ThinkingLevel in the
	// payload: the API rejects requests carrying both fields.
	ThinkingBudget  int
	IncludeThoughts bool
	SearchGrounding bool
}

// Envelope is the normalized request.
type Envelope struct {
	Prompt          string
	MaxOutputTokens int
	Stream          bool
	Flags           Flags
}

// Payload is a built request: the JSON body plus transport headers beyond
// auth and content type, which the dispatcher attaches.
type Payload struct {
	Body    []byte
	Headers map[string]string
}

// extendedContextHeader requests the 1M-token context window. Emitted
// only for sonnet models with the extended-context flag set.
const extendedContextHeader = "context-1m-2025-08-07"

// vertexProtocolVersion is the anthropic-on-vertex protocol marker.
const vertexProtocolVersion = "vertex-2023-10-16"

// Build produces the wire payload for a descriptor. An empty prompt fails
// with EmptyPrompt before any network call can be attempted.
func Build(desc catalog.Descriptor, env Envelope) (*Payload, error) {
	if env.Prompt == "" {
		return nil, classify.New(classify.EmptyPrompt, "prompt must not be empty")
	}

	if desc.Family == provider.FamilyDirect {
		return buildDirect(desc, env)
	}

	switch desc.Provider {
	case provider.Anthropic:
		return buildAnthropic(desc, env)
	case provider.Google, provider.Meta, provider.Mistral, provider.Cohere:
		return buildGatewayContents(desc, env)
	default:
		return nil, classify.New(classify.Unknown, fmt.Sprintf("no payload shape for provider %q", desc.Provider))
	}
}

func buildAnthropic(desc catalog.Descriptor, env Envelope) (*Payload, error) {
	prof, _ := provider.GetProfile(provider.Anthropic)
	maxTokens := env.MaxOutputTokens
	if maxTokens <= 0 || maxTokens > prof.MaxOutputTokens {
		maxTokens = prof.MaxOutputTokens
	}

	body := map[string]any{
		"anthropic_version": vertexProtocolVersion,
		"messages": []map[string]any{
			{"role": "user", "content": env.Prompt},
		},
		"max_tokens": maxTokens,
		"stream":     env.Stream,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, classify.Wrap(classify.Unknown, "marshaling anthropic payload", err)
	}

	p := &Payload{Body: data, Headers: map[string]string{}}
	if env.Flags.ExtendedContext && provider.SupportsExtendedContext(desc.ModelID) {
		p.Headers["anthropic-beta"] = extendedContextHeader
	}
	return p, nil
}

func buildGatewayContents(desc catalog.Descriptor, env Envelope) (*Payload, error) {
	prof, _ := provider.GetProfile(desc.Provider)
	maxTokens := env.MaxOutputTokens
	if maxTokens <= 0 || (prof.MaxOutputTokens > 0 && maxTokens > prof.MaxOutputTokens) {
		maxTokens = prof.MaxOutputTokens
	}

	body := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": env.Prompt}},
			},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": maxTokens,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, classify.Wrap(classify.Unknown, "marshaling gateway payload", err)
	}
	return &Payload{Body: data, Headers: map[string]string{}}, nil
}

func buildDirect(desc catalog.Descriptor, env Envelope) (*Payload, error) {
	maxTokens := env.MaxOutputTokens
	if maxTokens <= 0 || maxTokens > provider.MaxOutputTokensDirect {
		maxTokens = provider.MaxOutputTokensDirect
	}

	genConfig := map[string]any{
		"maxOutputTokens": maxTokens,
	}
	if tc := thinkingConfig(env.Flags); tc != nil {
		genConfig["thinkingConfig"] = tc
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": env.Prompt}}},
		},
		"generationConfig": genConfig,
	}
	if env.Flags.SearchGrounding {
		body["tools"] = []map[string]any{{"googleSearch": map[string]any{}}}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, classify.Wrap(classify.Unknown, "marshaling direct payload", err)
	}
	return &Payload{Body: data, Headers: map[string]string{}}, nil
}

// thinkingConfig builds the thinkingConfig block, or nil when reasoning
// is fully disabled. Budget and level are mutually exclusive on the wire.
func thinkingConfig(f Flags) map[string]any {
	if f.ThinkingBudget <= 0 && (f.ThinkingLevel == "" || f.ThinkingLevel == ThinkingNone) && !f.IncludeThoughts {
		return nil
	}
	tc := map[string]any{
		"includeThoughts": f.IncludeThoughts,
	}
	if f.ThinkingBudget > 0 {
		tc["thinkingBudget"] = f.ThinkingBudget
	} else if f.ThinkingLevel != "" && f.ThinkingLevel != ThinkingNone {
		tc["thinkingLevel"] = string(f.ThinkingLevel)
	}
	return tc
}
