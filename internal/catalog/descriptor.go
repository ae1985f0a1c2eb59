// Package catalog knows which models can be called: static version-pinned
// tables for the direct API family, dynamic per-publisher discovery for
// the gateway family, and a 24h on-disk cache in between.
package catalog

import (
	"github.com/everstacklabs/ask/internal/provider"
)

// ContextVariant tags descriptors that can run with a widened window.
type ContextVariant string

const (
	ContextStandard   ContextVariant = "standard"
	ContextExtended1M ContextVariant = "extended-1m"
)

// Descriptor identifies one callable model. Immutable once selected for a
// request; the invocation method is fixed by the provider profile and is
// never chosen by the caller.
type Descriptor struct {
	Provider       provider.Provider       `json:"provider" yaml:"provider"`
	ModelID        string                  `json:"model_id" yaml:"model_id"`
	Method         provider.Method         `json:"method" yaml:"method"`
	Region         string                  `json:"region" yaml:"region"`
	Family         provider.EndpointFamily `json:"family" yaml:"family"`
	ContextVariant ContextVariant          `json:"context_variant,omitempty" yaml:"context_variant,omitempty"`
}

// key is the de-duplication identity.
func (d Descriptor) key() string {
	return string(d.Provider) + "/" + d.ModelID
}

func gatewayDescriptor(p provider.Provider, modelID, region string) Descriptor {
	prof, _ := provider.GetProfile(p)
	d := Descriptor{
		Provider: p,
		ModelID:  modelID,
		Method:   prof.Method,
		Region:   region,
		Family:   provider.FamilyGateway,
	}
	if provider.SupportsExtendedContext(modelID) {
		d.ContextVariant = ContextExtended1M
	}
	return d
}
