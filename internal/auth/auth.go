// Package auth resolves the two credential kinds the CLI needs: an OAuth
// bearer token for the gateway family (Application Default Credentials)
// and a static API key for the direct family. The core only ever checks
// non-emptiness; token validity is the platform's concern.
package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/term"
)

// cloudPlatformScope is the scope the gateway accepts.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GatewayToken returns a bearer token from Application Default
// Credentials. An empty string with nil error is never returned.
func GatewayToken(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}
	tok, err := creds.TokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("fetching access token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("credential source returned an empty token")
	}
	return tok.AccessToken, nil
}

// APIKey resolves the direct-API key: explicit configuration first, then
// the environment, then an interactive no-echo prompt when stdin is a
// terminal. Fails when nothing yields a key.
func APIKey(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "API key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		if key := strings.TrimSpace(string(raw)); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("no API key; set GEMINI_API_KEY or configure direct.api_key")
}
