package catalog

import "github.com/everstacklabs/ask/internal/provider"

// StaticDirect returns the version-pinned model list for the direct API
// family. No network call, never fails.
func StaticDirect() []Descriptor {
	ids := []string{
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
		"gemini-2.0-flash",
		"gemini-2.0-flash-lite",
	}
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, Descriptor{
			Provider: provider.Google,
			ModelID:  id,
			Method:   provider.GenerateContent,
			Region:   "global",
			Family:   provider.FamilyDirect,
		})
	}
	return out
}

// staticGatewayModels is the per-publisher fallback used when a
// publisher's listing call fails during discovery.
var staticGatewayModels = map[provider.Provider][]string{
	provider.Google: {
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
		"gemini-2.0-flash",
		"gemini-2.0-flash-lite",
	},
	provider.Anthropic: {
		"claude-opus-4-5",
		"claude-sonnet-4-5",
		"claude-haiku-4-5",
		"claude-opus-4",
		"claude-sonnet-4",
		"claude-3-7-sonnet",
		"claude-3-5-sonnet",
		"claude-3-5-haiku",
		"claude-3-haiku",
	},
	provider.Meta: {
		"llama-4-maverick-17b-128e-instruct-maas",
		"llama-3.3-70b-instruct-maas",
		"llama-3.2-90b-vision-instruct-maas",
		"llama-3.1-405b-instruct-maas",
	},
	provider.Mistral: {
		"mistral-medium-3",
		"mistral-small-2503",
		"mistral-large-2407",
		"codestral-2",
		"codestral-2405",
	},
	provider.Cohere: {
		"command-a-03-2025",
		"command-r-plus-08-2024",
		"command-r-08-2024",
	},
}

// StaticGateway returns the fallback gateway list for one publisher.
func StaticGateway(p provider.Provider, region string) []Descriptor {
	ids := staticGatewayModels[p]
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, gatewayDescriptor(p, id, region))
	}
	return out
}
