// Package provider defines the model publishers the CLI can call and the
// per-publisher invocation profile. Every provider-conditional decision in
// the rest of the codebase (payload shape, endpoint method, entitlement
// gating, model-name capability checks) is driven by this table, so there
// is exactly one place that knows what makes a publisher different.
package provider

import (
	"fmt"
	"strings"
)

// Provider identifies a model publisher.
type Provider string

const (
	Anthropic Provider = "anthropic"
	Google    Provider = "google"
	Meta      Provider = "meta"
	Mistral   Provider = "mistral"
	Cohere    Provider = "cohere"
)

// EndpointFamily distinguishes the two API surfaces the CLI can target.
type EndpointFamily string

const (
	// FamilyGateway is the multi-tenant cloud endpoint fronting several
	// publishers under one project/location/publisher/model path.
	FamilyGateway EndpointFamily = "gateway"
	// FamilyDirect is the publisher-hosted API reachable with an API key.
	FamilyDirect EndpointFamily = "direct"
)

// Method names the invocation method appended to the model path.
type Method string

const (
	StreamRawPredict      Method = "streamRawPredict"
	StreamGenerateContent Method = "streamGenerateContent"
	GenerateContent       Method = "generateContent"
)

// Profile describes how a publisher is invoked through the gateway.
type Profile struct {
	Provider Provider
	// PublisherPath is the path segment used in gateway URLs. It differs
	// from the provider name for Mistral ("mistral-ai").
	PublisherPath string
	// Method is the gateway invocation method. Determined by the
	// publisher, never by the caller.
	Method Method
	// RequiresEntitlement marks publishers whose models sit behind an
	// end-user license agreement that must be accepted per project.
	RequiresEntitlement bool
	// MaxOutputTokens is the ceiling the request builder clamps to.
	MaxOutputTokens int
}

// MaxOutputTokensDirect is the ceiling for the direct Gemini API's
// deep-reasoning surface.
const MaxOutputTokensDirect = 65536

var profiles = map[Provider]Profile{
	Anthropic: {
		Provider:            Anthropic,
		PublisherPath:       "anthropic",
		Method:              StreamRawPredict,
		RequiresEntitlement: true,
		MaxOutputTokens:     32000,
	},
	Google: {
		Provider:        Google,
		PublisherPath:   "google",
		Method:          StreamGenerateContent,
		MaxOutputTokens: MaxOutputTokensDirect,
	},
	Meta: {
		Provider:            Meta,
		PublisherPath:       "meta",
		Method:              StreamGenerateContent,
		RequiresEntitlement: true,
		MaxOutputTokens:     8192,
	},
	Mistral: {
		Provider:            Mistral,
		PublisherPath:       "mistral-ai",
		Method:              StreamGenerateContent,
		RequiresEntitlement: true,
		MaxOutputTokens:     8192,
	},
	Cohere: {
		Provider:            Cohere,
		PublisherPath:       "cohere",
		Method:              StreamGenerateContent,
		RequiresEntitlement: true,
		MaxOutputTokens:     4096,
	},
}

// discoveryOrder fixes the order publishers are queried and presented in.
var discoveryOrder = []Provider{Google, Anthropic, Meta, Mistral, Cohere}

// GetProfile returns the invocation profile for a provider. The second
// return is false for providers outside the known set.
func GetProfile(p Provider) (Profile, bool) {
	prof, ok := profiles[p]
	return prof, ok
}

// All returns the known providers in discovery/presentation order.
func All() []Provider {
	out := make([]Provider, len(discoveryOrder))
	copy(out, discoveryOrder)
	return out
}

// FromPublisherPath maps a gateway publisher path segment back to a
// provider. Unknown paths return false.
func FromPublisherPath(path string) (Provider, bool) {
	for p, prof := range profiles {
		if prof.PublisherPath == path {
			return p, true
		}
	}
	return "", false
}

// DirectAPIHost is the base host of the direct API family.
const DirectAPIHost = "https://generativelanguage.googleapis.com"

// GatewayHost resolves the gateway base host for a region. The global
// endpoint has no region prefix.
func GatewayHost(region string) string {
	if region == "" || region == "global" {
		return "https://aiplatform.googleapis.com"
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com", region)
}

// SupportsExtendedContext reports whether a model accepts the 1M-token
// extended context window. Only the sonnet line does; the request builder
// must never emit the beta header for anything else.
func SupportsExtendedContext(modelID string) bool {
	return strings.Contains(modelID, "sonnet")
}

// EntitlementHint returns the operator-facing remediation for a model
// gated behind an unaccepted license.
func EntitlementHint(p Provider, modelID string) string {
	prof, ok := profiles[p]
	if !ok || !prof.RequiresEntitlement {
		return ""
	}
	return "accept the model's end-user license before retrying: " +
		"gcloud alpha ai models describe publishers/" + prof.PublisherPath +
		"/models/" + modelID + " --region us-central1"
}
