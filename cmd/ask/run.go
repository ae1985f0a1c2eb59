package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/everstacklabs/ask/internal/artifact"
	"github.com/everstacklabs/ask/internal/auth"
	"github.com/everstacklabs/ask/internal/catalog"
	"github.com/everstacklabs/ask/internal/classify"
	"github.com/everstacklabs/ask/internal/config"
	"github.com/everstacklabs/ask/internal/httpclient"
	"github.com/everstacklabs/ask/internal/provider"
	"github.com/everstacklabs/ask/internal/request"
	"github.com/everstacklabs/ask/internal/stream"
)

// discoveryTimeout bounds the model listing calls; the prompt request
// itself has no client timeout since deep-thinking responses take minutes.
const discoveryTimeout = 30 * time.Second

// runOptions are the root command's flag values.
type runOptions struct {
	Prompt          string
	Family          string
	Model           string
	Region          string
	MaxTokens       int
	ThinkingLevel   string
	NoThoughts      bool
	NoSearch        bool
	ExtendedContext bool
	Raw             bool
	Refresh         bool
}

// run executes the one-shot pipeline: resolve descriptor, build payload,
// dispatch, classify or reconcile, present.
func run(ctx context.Context, cfg *config.Config, opts *runOptions) error {
	family, err := parseFamily(opts.Family)
	if err != nil {
		return err
	}
	region := opts.Region
	if region == "" {
		region = cfg.Region
	}

	prompt, promptFromStdin, err := resolvePrompt(opts.Prompt)
	if err != nil {
		return err
	}

	store := artifact.New(cfg.ArtifactPath)
	client := httpclient.New(
		httpclient.WithRateLimit(cfg.RateLimitRPS),
		httpclient.WithMirror(store),
	)

	var token, apiKey string
	if family == provider.FamilyGateway {
		token, err = auth.GatewayToken(ctx)
		if err != nil {
			return classify.Wrap(classify.AuthFailure, "no gateway access token", err)
		}
	} else {
		apiKey, err = auth.APIKey(cfg.Direct.APIKey)
		if err != nil {
			return classify.Wrap(classify.AuthFailure, "no API key", err)
		}
	}

	desc, err := resolveDescriptor(ctx, cfg, opts, family, region, token, promptFromStdin)
	if err != nil {
		return err
	}

	env := request.Envelope{
		Prompt:          prompt,
		MaxOutputTokens: maxTokens(cfg, opts, family),
		Stream:          desc.Method != provider.GenerateContent,
		Flags: request.Flags{
			ExtendedContext: opts.ExtendedContext,
			ThinkingLevel:   request.ThinkingLevel(opts.ThinkingLevel),
			ThinkingBudget:  cfg.Direct.ThinkingBudget,
			IncludeThoughts: !opts.NoThoughts,
			SearchGrounding: !opts.NoSearch,
		},
	}

	payload, err := request.Build(desc, env)
	if err != nil {
		return err
	}

	url := request.DirectURL(desc, apiKey)
	headers := payload.Headers
	if family == provider.FamilyGateway {
		url = request.GatewayURL(desc, cfg.Project)
		headers["Authorization"] = "Bearer " + token
	}

	slog.Info("sending request", "provider", desc.Provider, "model", desc.ModelID, "method", desc.Method)
	fmt.Fprintf(os.Stderr, "Sending query to %s/%s... (deep thinking takes time)\n", desc.Provider, desc.ModelID)

	res, err := client.Post(ctx, url, headers, payload.Body)
	if err != nil {
		cerr := classify.Wrap(classify.TransportFailure, "request failed", err)
		cerr.ArtifactPath = store.Path()
		return cerr
	}

	if res.StatusCode != 200 {
		return classify.Classify(classify.Input{
			HTTPStatus:   res.StatusCode,
			Body:         res.Body,
			Provider:     desc.Provider,
			Family:       family,
			ModelID:      desc.ModelID,
			TokenPresent: token != "" || apiKey != "",
			ArtifactPath: store.Path(),
		})
	}

	if opts.Raw {
		fmt.Println(string(res.Body))
		return nil
	}

	rec, err := reconcile(desc, res.Body)
	if err != nil {
		var cerr *classify.Error
		if errors.As(err, &cerr) {
			cerr.ArtifactPath = store.Path()
		}
		return err
	}

	present(rec, opts.NoThoughts)
	fmt.Fprintf(os.Stderr, "\nQuery completed in %.2f seconds\n", res.Elapsed.Seconds())
	return nil
}

// reconcile picks the decoding by invocation method: streamRawPredict
// responses are event-framed, everything else is an array of chunks or a
// single object.
func reconcile(desc catalog.Descriptor, body []byte) (*stream.Reconciled, error) {
	if desc.Method == provider.StreamRawPredict {
		return stream.DecodeEventFramed(body)
	}
	return stream.DecodeChunked(body)
}

func present(rec *stream.Reconciled, noThoughts bool) {
	if !noThoughts && len(rec.ThoughtSegments) > 0 {
		fmt.Println("--- Thinking ---")
		for _, t := range rec.ThoughtSegments {
			fmt.Println(strings.TrimSpace(t))
		}
		fmt.Println()
	}
	if len(rec.Citations) > 0 {
		fmt.Println("--- Sources ---")
		for i, c := range rec.Citations {
			fmt.Printf("[%d] %s (%s)\n", i+1, c.Title, c.URI)
		}
		fmt.Println()
	}
	fmt.Println(strings.TrimSpace(rec.FinalText))
}

// resolvePrompt returns the prompt text and whether stdin supplied it.
func resolvePrompt(flagValue string) (string, bool, error) {
	if flagValue != "" {
		return flagValue, false, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", false, fmt.Errorf("reading prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", true, classify.New(classify.EmptyPrompt, "no prompt given; use -p or pipe text on stdin")
	}
	return prompt, true, nil
}

// resolveDescriptor picks the model. The direct family uses --model or
// the configured default; the gateway family uses --model or an
// interactive 1-based menu over the discovered catalog.
func resolveDescriptor(ctx context.Context, cfg *config.Config, opts *runOptions, family provider.EndpointFamily, region, token string, promptFromStdin bool) (catalog.Descriptor, error) {
	if family == provider.FamilyDirect {
		id := opts.Model
		if id == "" {
			id = cfg.Direct.Model
		}
		return catalog.Descriptor{
			Provider: provider.Google,
			ModelID:  id,
			Method:   provider.GenerateContent,
			Region:   "global",
			Family:   provider.FamilyDirect,
		}, nil
	}

	if opts.Model != "" {
		return gatewayDescriptorFromFlag(opts.Model, region)
	}

	if promptFromStdin {
		return catalog.Descriptor{}, classify.New(classify.InvalidSelection,
			"stdin is the prompt source; pass --model to skip the interactive menu")
	}

	svc := catalog.New(httpclient.New(httpclient.WithTimeout(discoveryTimeout)), cfg.Project, region, cfg.CachePath)
	res, err := svc.SelectFromCache(ctx, token, opts.Refresh)
	if err != nil {
		return catalog.Descriptor{}, err
	}
	warnDegraded(res)
	entries := catalog.GroupByProvider(res.Entries)

	printModelTable(entries, res)
	fmt.Fprintf(os.Stderr, "Select model [1-%d]: ", len(entries))

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return catalog.Descriptor{}, classify.New(classify.InvalidSelection, "no selection read")
	}
	n, err := catalog.Select(line, len(entries))
	if err != nil {
		return catalog.Descriptor{}, err
	}
	return entries[n-1], nil
}

// gatewayDescriptorFromFlag parses a "publisher/model-id" --model value.
func gatewayDescriptorFromFlag(value, region string) (catalog.Descriptor, error) {
	pub, id, ok := strings.Cut(value, "/")
	if !ok {
		return catalog.Descriptor{}, classify.New(classify.InvalidSelection,
			fmt.Sprintf("model %q must be publisher/model-id", value))
	}
	p, ok := provider.FromPublisherPath(pub)
	if !ok {
		p = provider.Provider(pub)
		if _, known := provider.GetProfile(p); !known {
			return catalog.Descriptor{}, classify.New(classify.InvalidSelection,
				fmt.Sprintf("unknown publisher %q", pub))
		}
	}
	prof, _ := provider.GetProfile(p)
	return catalog.Descriptor{
		Provider: p,
		ModelID:  id,
		Method:   prof.Method,
		Region:   region,
		Family:   provider.FamilyGateway,
	}, nil
}

func parseFamily(s string) (provider.EndpointFamily, error) {
	switch s {
	case "gateway", "":
		return provider.FamilyGateway, nil
	case "direct":
		return provider.FamilyDirect, nil
	default:
		return "", fmt.Errorf("unknown endpoint family %q (want gateway or direct)", s)
	}
}

func maxTokens(cfg *config.Config, opts *runOptions, family provider.EndpointFamily) int {
	if opts.MaxTokens > 0 {
		return opts.MaxTokens
	}
	if family == provider.FamilyDirect {
		return cfg.Direct.MaxTokens
	}
	return cfg.Gateway.MaxTokens
}

// listModels backs the models subcommand.
func listModels(ctx context.Context, cfg *config.Config, family string, refresh, static bool) (*catalog.Result, error) {
	fam, err := parseFamily(family)
	if err != nil {
		return nil, err
	}
	if fam == provider.FamilyDirect {
		return &catalog.Result{Entries: catalog.StaticDirect()}, nil
	}
	if static {
		res := &catalog.Result{}
		for _, p := range provider.All() {
			res.Entries = append(res.Entries, catalog.StaticGateway(p, cfg.Region)...)
		}
		return res, nil
	}

	token, err := auth.GatewayToken(ctx)
	if err != nil {
		return nil, classify.Wrap(classify.DiscoveryUnavailable, "no gateway access token", err)
	}
	svc := catalog.New(httpclient.New(httpclient.WithTimeout(discoveryTimeout)), cfg.Project, cfg.Region, cfg.CachePath)
	return svc.SelectFromCache(ctx, token, refresh)
}
