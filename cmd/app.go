package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/enrich"
	"github.com/rezon-bio/leadintel/internal/icp"
	"github.com/rezon-bio/leadintel/internal/store"
	"github.com/rezon-bio/leadintel/pkg/oracle"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "leadintel.db"
		}
		s, err := store.NewSQLite(path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// pipelineConfig maps the application config onto batch pipeline settings.
func pipelineConfig() enrich.Config {
	pc := enrich.DefaultConfig()
	if cfg.Anthropic.Model != "" {
		pc.Model = cfg.Anthropic.Model
	}
	if cfg.Anthropic.MaxTokens > 0 {
		pc.MaxTokens = cfg.Anthropic.MaxTokens
	}
	if cfg.Anthropic.MaxSearches > 0 {
		pc.MaxSearches = cfg.Anthropic.MaxSearches
	}
	if cfg.Anthropic.CallIntervalSecs > 0 {
		pc.CallInterval = time.Duration(cfg.Anthropic.CallIntervalSecs) * time.Second
	}
	if cfg.Enrich.ReworkThreshold > 0 {
		pc.ReworkThreshold = cfg.Enrich.ReworkThreshold
	}
	if cfg.Enrich.ScreenMinFit > 0 {
		pc.ScreenMinFit = cfg.Enrich.ScreenMinFit
	}
	pc.FuzzyThreshold = cfg.Resolve.FuzzyThreshold
	pc.VersionCap = cfg.Trigger.OutreachVersionCap
	return pc
}

// loadScorer builds the company fit scorer. With a configured rubric file it
// parses the business-maintained criteria; otherwise, or when the rubric
// yields nothing usable, scoring falls back to the built-in heuristic.
func loadScorer() icp.Scorer {
	path := cfg.Enrich.RubricPath
	if path == "" {
		return icp.NewHeuristicScorer(icp.CompanyCeiling)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		zap.L().Warn("rubric unreadable, scoring with heuristic",
			zap.String("path", path),
			zap.Error(err),
		)
		return icp.NewHeuristicScorer(icp.CompanyCeiling)
	}
	rubric := icp.NewRubricScorer(icp.ParseCriteria(icp.SplitRubric(string(text))))
	if rubric == nil {
		zap.L().Warn("rubric has no parseable criteria, scoring with heuristic",
			zap.String("path", path))
		return icp.NewHeuristicScorer(icp.CompanyCeiling)
	}
	zap.L().Info("scoring with rubric",
		zap.String("path", path),
		zap.Int("criteria", len(rubric.Criteria)),
		zap.Int("ceiling", rubric.Ceiling()),
	)
	return rubric
}

func newPipeline(s store.Store) *enrich.Pipeline {
	return enrich.NewPipeline(s, oracle.NewClient(cfg.Anthropic.Key), pipelineConfig()).
		WithScorer(loadScorer())
}
