package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/recommend"
	"github.com/jonathan/job-portal/internal/skills"
	"github.com/jonathan/job-portal/internal/vocabulary"
)

// loadConfig reads the environment, overlays the --config file when given,
// validates the result and installs the process logger.
func loadConfig(logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}

	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, nil, err
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		cfg = &merged
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	logger, err := observability.NewLogger(logOut, cfg.LogFormat, level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// loadVocabulary returns the vocabulary file named in the config, or the embedded one.
func loadVocabulary(cfg *config.Config) (*vocabulary.Vocabulary, error) {
	if cfg.VocabularyPath != "" {
		return vocabulary.LoadFile(cfg.VocabularyPath)
	}
	return vocabulary.Default()
}

// recommender bundles the fetcher with the resources it holds open.
type recommender struct {
	fetcher *recommend.Fetcher
	sources []string
	redis   *redis.Client
}

func (r *recommender) Close() error {
	if r.redis != nil {
		return r.redis.Close()
	}
	return nil
}

// buildRecommender chains every configured course source, in order YouTube,
// web search, catalog, and caches the chain in Redis when REDIS_URL is set.
// With no sources configured the fetcher returns empty lists.
func buildRecommender(ctx context.Context, cfg *config.Config, logger *slog.Logger, options ...recommend.FetcherOption) (*recommender, error) {
	rec := &recommender{}
	var sources []recommend.Source

	if cfg.YouTubeAPIKey != "" {
		yt, err := recommend.NewYouTubeSource(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			return nil, err
		}
		sources = append(sources, yt)
	}
	if cfg.GoogleSearchAPIKey != "" {
		ws, err := recommend.NewWebSearchSource(ctx, cfg.GoogleSearchAPIKey, cfg.GoogleSearchCX)
		if err != nil {
			return nil, err
		}
		sources = append(sources, ws)
	}
	if cfg.CourseCatalogURL != "" {
		catalog, err := recommend.NewCatalogSource(recommend.CatalogOptions{
			SearchURL:         cfg.CourseCatalogURL,
			Platform:          cfg.CoursePlatform,
			RequestsPerSecond: cfg.CatalogRPS,
			UseBrowser:        cfg.UseBrowser,
			BrowserTimeout:    time.Duration(cfg.RecommendTimeout),
			Logger:            logger,
		})
		if err != nil {
			return nil, err
		}
		sources = append(sources, catalog)
	}

	var source recommend.Source
	if len(sources) > 0 {
		chain := recommend.NewChainSource(sources...)
		source = chain
		if cfg.RedisURL != "" {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			client, err := recommend.NewRedisClient(pingCtx, cfg.RedisURL)
			cancel()
			if err != nil {
				return nil, err
			}
			rec.redis = client
			source = recommend.NewCachedSource(chain, recommend.NewRedisCache(client, "job-portal:courses:"), time.Duration(cfg.CacheTTL), recommend.WithCacheLogger(logger))
		}
		for _, s := range sources {
			rec.sources = append(rec.sources, s.Name())
		}
	}

	options = append([]recommend.FetcherOption{recommend.WithLogger(logger)}, options...)
	rec.fetcher = recommend.NewFetcher(source, recommend.Options{
		MaxSkills:   cfg.RecommendMaxSkills,
		PerSkill:    cfg.RecommendPerSkill,
		MaxTotal:    cfg.RecommendMaxTotal,
		Timeout:     time.Duration(cfg.RecommendTimeout),
		Concurrency: cfg.RecommendConcurrency,
	}, options...)

	logger.Info("recommendation sources configured", "sources", rec.sources, "cache", rec.redis != nil)
	return rec, nil
}

// newAnalysisService builds the pipeline. A nil recommender disables course lookups.
func newAnalysisService(cfg *config.Config, rec analysis.Recommender, logger *slog.Logger) (*analysis.Service, error) {
	vocab, err := loadVocabulary(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills vocabulary: %w", err)
	}
	logger.Debug("skills vocabulary loaded", "version", vocab.Version(), "skills", vocab.Len())
	return analysis.NewService(skills.NewExtractor(vocab), rec, analysis.WithLogger(logger)), nil
}
