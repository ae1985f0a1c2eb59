package request

import (
	"fmt"
	"net/url"

	"github.com/everstacklabs/ask/internal/catalog"
	"github.com/everstacklabs/ask/internal/provider"
)

// GatewayURL resolves the fully qualified generate endpoint for a gateway
// descriptor.
func GatewayURL(desc catalog.Descriptor, project string) string {
	prof, _ := provider.GetProfile(desc.Provider)
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/%s/models/%s:%s",
		provider.GatewayHost(desc.Region), project, desc.Region,
		prof.PublisherPath, desc.ModelID, desc.Method)
}

// DirectURL resolves the direct API generate endpoint; the API key rides
// as a query parameter.
func DirectURL(desc catalog.Descriptor, apiKey string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:%s?key=%s",
		provider.DirectAPIHost, desc.ModelID, desc.Method, url.QueryEscape(apiKey))
}
