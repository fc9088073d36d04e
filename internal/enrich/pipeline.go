// Package enrich runs the batch pipelines that glue resolution, the oracle,
// scoring, and the record store together. Batches are sequential: one
// candidate at a time, paced against the oracle, with retries on transient
// failures and a Failed mark when retries run out.
package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/rezon-bio/leadintel/internal/icp"
	"github.com/rezon-bio/leadintel/internal/resilience"
	"github.com/rezon-bio/leadintel/internal/resolve"
	"github.com/rezon-bio/leadintel/internal/store"
	"github.com/rezon-bio/leadintel/internal/trigger"
	"github.com/rezon-bio/leadintel/pkg/oracle"
)

// Config tunes a pipeline run.
type Config struct {
	Model       string
	MaxTokens   int64
	MaxSearches int64

	// CallInterval paces oracle calls. Zero disables pacing (tests).
	CallInterval time.Duration

	// ReworkThreshold is the aggregate confidence below which an enriched
	// record is sent back for re-research.
	ReworkThreshold int

	// ScreenMinFit is the pre-screen fit score an unknown conference company
	// must reach before it is admitted to the store.
	ScreenMinFit int

	// FuzzyThreshold overrides the resolver's match threshold when positive.
	FuzzyThreshold float64

	// VersionCap overrides the outreach regeneration ceiling when positive.
	VersionCap int

	Retry resilience.RetryConfig
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:           "claude-sonnet-4-5-20250929",
		MaxTokens:       4096,
		MaxSearches:     5,
		CallInterval:    3 * time.Second,
		ReworkThreshold: 85,
		ScreenMinFit:    60,
		Retry:           resilience.DefaultRetryConfig(),
	}
}

// Pipeline holds the shared dependencies of all batch operations. One
// Pipeline serves one run; its resolver cache is not refreshed mid-run.
type Pipeline struct {
	store    store.Store
	oracle   oracle.Client
	resolver *resolve.Resolver
	triggers *trigger.Lifecycle
	limiter  *rate.Limiter
	scorer   icp.Scorer
	cfg      Config
}

// NewPipeline wires a pipeline over the given store and oracle client.
func NewPipeline(s store.Store, oc oracle.Client, cfg Config) *Pipeline {
	var limiter *rate.Limiter
	if cfg.CallInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.CallInterval), 1)
	}
	resolver := resolve.NewResolver(s)
	if cfg.FuzzyThreshold > 0 {
		resolver = resolver.WithThreshold(cfg.FuzzyThreshold)
	}
	triggers := trigger.NewLifecycle(s)
	if cfg.VersionCap > 0 {
		triggers = triggers.WithVersionCap(cfg.VersionCap)
	}
	return &Pipeline{
		store:    s,
		oracle:   oc,
		resolver: resolver,
		triggers: triggers,
		limiter:  limiter,
		scorer:   icp.NewHeuristicScorer(icp.CompanyCeiling),
		cfg:      cfg,
	}
}

// WithScorer swaps the company fit scorer, e.g. for a parsed rubric.
func (p *Pipeline) WithScorer(s icp.Scorer) *Pipeline {
	if s != nil {
		p.scorer = s
	}
	return p
}

// Report tallies the outcome of one batch operation.
type Report struct {
	Processed int
	Updated   int
	Created   int
	Failed    int
	Deleted   int
	Skipped   int
}

// research runs one paced, retried oracle call and returns the reply text.
func (p *Pipeline) research(ctx context.Context, system, prompt, phase string) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "enrich: pacing wait")
		}
	}

	cfg := p.cfg.Retry
	cfg.OnRetry = resilience.RetryLogger("oracle", phase)

	res, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*oracle.ResearchResult, error) {
		return p.oracle.Research(ctx, oracle.ResearchRequest{
			Model:       p.cfg.Model,
			System:      system,
			Prompt:      prompt,
			MaxTokens:   p.cfg.MaxTokens,
			MaxSearches: p.cfg.MaxSearches,
		})
	})
	if err != nil {
		return "", err
	}
	res.Usage.LogCost(p.cfg.Model, phase)
	return res.Text, nil
}
