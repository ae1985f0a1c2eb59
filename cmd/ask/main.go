package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/everstacklabs/ask/internal/artifact"
	"github.com/everstacklabs/ask/internal/catalog"
	"github.com/everstacklabs/ask/internal/classify"
	"github.com/everstacklabs/ask/internal/config"
	"github.com/everstacklabs/ask/internal/provider"
)

var cfgFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var cerr *classify.Error
		if errors.As(err, &cerr) {
			printClassified(cerr)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Send one prompt to a hosted model",
		Long: "Sends a single free-form prompt to a hosted model, either through\n" +
			"the cloud model gateway or the direct Gemini API, and prints the\n" +
			"reconciled response.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)
			return run(cmd.Context(), cfg, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	cmd.Flags().StringVarP(&opts.Prompt, "prompt", "p", "", "prompt text (default: read from stdin)")
	cmd.Flags().StringVar(&opts.Family, "api", "gateway", "endpoint family: gateway or direct")
	cmd.Flags().StringVar(&opts.Model, "model", "", "model as publisher/model-id, skips the menu")
	cmd.Flags().StringVar(&opts.Region, "region", "", "gateway region (default: from config)")
	cmd.Flags().IntVarP(&opts.MaxTokens, "max-tokens", "m", 0, "max output tokens (default: provider ceiling)")
	cmd.Flags().StringVarP(&opts.ThinkingLevel, "thinking-level", "t", "high", "thinking level: low, medium, high (direct API)")
	cmd.Flags().BoolVar(&opts.NoThoughts, "no-thoughts", false, "hide the thinking process")
	cmd.Flags().BoolVar(&opts.NoSearch, "no-search", false, "disable search grounding (direct API)")
	cmd.Flags().BoolVar(&opts.ExtendedContext, "extended-context", false, "request the 1M-token context window (sonnet models)")
	cmd.Flags().BoolVarP(&opts.Raw, "raw", "r", false, "print the raw response body")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "force model cache refresh")

	return cmd
}

func modelsCmd() *cobra.Command {
	var (
		family  string
		refresh bool
		static  bool
		output  string
	)

	cmd := &cobra.Command{
		Use:           "models",
		Short:         "List callable models",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)

			res, err := listModels(cmd.Context(), cfg, family, refresh, static)
			if err != nil {
				return err
			}

			entries := catalog.GroupByProvider(res.Entries)
			if output == "yaml" {
				doc := map[string]any{
					"fetched_at": res.FetchedAt,
					"degraded":   res.Degraded,
					"models":     entries,
				}
				return yaml.NewEncoder(os.Stdout).Encode(doc)
			}

			printModelTable(entries, res)
			warnDegraded(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "api", "gateway", "endpoint family: gateway or direct")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "force model cache refresh")
	cmd.Flags().BoolVar(&static, "static", false, "use the static list, no network call")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")

	return cmd
}

func printModelTable(entries []catalog.Descriptor, res *catalog.Result) {
	var lastProvider provider.Provider
	for i, d := range entries {
		if d.Provider != lastProvider {
			if lastProvider != "" {
				fmt.Println()
			}
			lastProvider = d.Provider
		}
		fmt.Printf("%3d  %-12s %-45s %-22s %s\n", i+1, d.Provider, d.ModelID, d.Method, d.Region)
	}
	fmt.Printf("\nTotal: %d models", len(entries))
	if res.FromCache {
		fmt.Printf(" (cached %s)", res.FetchedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()
}

func warnDegraded(res *catalog.Result) {
	if !res.Degraded {
		return
	}
	pubs := make([]string, 0, len(res.DegradedPublishers))
	for _, p := range res.DegradedPublishers {
		pubs = append(pubs, string(p))
	}
	fmt.Fprintf(os.Stderr, "Warning: discovery degraded; static fallback substituted for: %s\n",
		strings.Join(pubs, ", "))
}

func printClassified(e *classify.Error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", e.Error())
	if e.Remediation != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", e.Remediation)
	}
	body := e.RawBody
	if len(body) == 0 && e.ArtifactPath != "" {
		// Parse failures carry only the artifact path; show its contents.
		body = artifact.New(e.ArtifactPath).Read()
	}
	if len(body) > 0 {
		fmt.Fprintf(os.Stderr, "\n%s\n", body)
	}
	if e.ArtifactPath != "" {
		fmt.Fprintf(os.Stderr, "Raw response saved to %s\n", e.ArtifactPath)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h).With("invocation", uuid.NewString()))
}
