package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/everstacklabs/ask/internal/classify"
	"github.com/everstacklabs/ask/internal/httpclient"
	"github.com/everstacklabs/ask/internal/provider"
)

// Lister is the HTTP surface discovery needs.
type Lister interface {
	Get(ctx context.Context, url string, headers map[string]string) (*httpclient.Result, error)
}

// Service discovers and caches the set of callable gateway models.
type Service struct {
	client    Lister
	project   string
	region    string
	cachePath string
	now       func() time.Time
}

// New creates a catalog service. cachePath may be empty to disable the
// on-disk cache entirely.
func New(client Lister, project, region, cachePath string) *Service {
	return &Service{
		client:    client,
		project:   project,
		region:    region,
		cachePath: cachePath,
		now:       time.Now,
	}
}

// Result is a discovery outcome. Degraded is set when any publisher's
// listing failed and its static fallback was substituted; callers must
// surface this rather than silently presenting a possibly stale list.
type Result struct {
	Entries            []Descriptor
	Degraded           bool
	DegradedPublishers []provider.Provider
	FetchedAt          time.Time
	FromCache          bool
}

// listResponse is the gateway publisher-model listing envelope.
type listResponse struct {
	PublisherModels []struct {
		Name        string `json:"name"`
		VersionID   string `json:"versionId"`
		LaunchStage string `json:"launchStage"`
	} `json:"publisherModels"`
}

// Discover queries each publisher's listing endpoint, filters to GA
// models, merges and de-duplicates, and writes the cache. One publisher's
// outage degrades the result but never aborts discovery for the rest;
// only a missing gateway token is fatal.
func (s *Service) Discover(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, classify.New(classify.DiscoveryUnavailable,
			"no gateway access token; run: gcloud auth application-default login")
	}

	res := &Result{FetchedAt: s.now()}
	seen := make(map[string]bool)
	headers := map[string]string{"Authorization": "Bearer " + token}

	for _, p := range provider.All() {
		prof, _ := provider.GetProfile(p)
		url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/%s/models",
			provider.GatewayHost(s.region), s.project, s.region, prof.PublisherPath)

		entries, err := s.listPublisher(ctx, url, headers, p)
		if err != nil {
			slog.Warn("publisher listing failed, substituting static fallback",
				"publisher", prof.PublisherPath, "error", err)
			res.Degraded = true
			res.DegradedPublishers = append(res.DegradedPublishers, p)
			entries = StaticGateway(p, s.region)
		}
		for _, d := range entries {
			if seen[d.key()] {
				continue
			}
			seen[d.key()] = true
			res.Entries = append(res.Entries, d)
		}
	}

	if s.cachePath != "" {
		cf := &cacheFile{
			FetchedAt:          res.FetchedAt,
			Project:            s.project,
			Region:             s.region,
			Degraded:           res.Degraded,
			DegradedPublishers: res.DegradedPublishers,
			Entries:            res.Entries,
		}
		if err := saveCache(s.cachePath, cf); err != nil {
			slog.Warn("failed to write model cache", "path", s.cachePath, "error", err)
		}
	}

	slog.Info("discovery complete", "models", len(res.Entries), "degraded", res.Degraded)
	return res, nil
}

func (s *Service) listPublisher(ctx context.Context, url string, headers map[string]string, p provider.Provider) ([]Descriptor, error) {
	resp, err := s.client.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("listing returned HTTP %d", resp.StatusCode)
	}

	var lr listResponse
	if err := json.Unmarshal(resp.Body, &lr); err != nil {
		return nil, fmt.Errorf("parsing listing response: %w", err)
	}

	var out []Descriptor
	for _, m := range lr.PublisherModels {
		if !isGA(m.LaunchStage) {
			continue
		}
		id := modelIDFromName(m.Name)
		if id == "" {
			continue
		}
		out = append(out, gatewayDescriptor(p, id, s.region))
	}
	return out, nil
}

// SelectFromCache returns cached entries when the cache is fresh and
// force is false; otherwise it re-discovers.
func (s *Service) SelectFromCache(ctx context.Context, token string, force bool) (*Result, error) {
	if !force && s.cachePath != "" {
		cf, err := loadCache(s.cachePath)
		if err != nil {
			return nil, err
		}
		if cf != nil && s.now().Sub(cf.FetchedAt) < Freshness {
			return &Result{
				Entries:            cf.Entries,
				Degraded:           cf.Degraded,
				DegradedPublishers: cf.DegradedPublishers,
				FetchedAt:          cf.FetchedAt,
				FromCache:          true,
			}, nil
		}
	}
	return s.Discover(ctx, token)
}

// isGA keeps only generally available models; ALPHA, BETA, and
// unspecified stages are excluded.
func isGA(stage string) bool {
	return stage == "GA"
}

// modelIDFromName strips the resource prefix from
// "publishers/<pub>/models/<id>" style names. Bare ids pass through.
func modelIDFromName(name string) string {
	if i := strings.LastIndex(name, "/models/"); i >= 0 {
		return name[i+len("/models/"):]
	}
	return name
}
