package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/llm/openai"
	"github.com/adel-hamdan/purchases-tracker/internal/normalize"
	"github.com/adel-hamdan/purchases-tracker/internal/parser"
	"github.com/adel-hamdan/purchases-tracker/internal/retry"
	"github.com/adel-hamdan/purchases-tracker/internal/store"
	"github.com/adel-hamdan/purchases-tracker/internal/workflow"
)

// app bundles the wired components every command works against.
type app struct {
	cfg    *common.Config
	logger *slog.Logger

	locale     *normalize.Locale
	norm       *normalize.Normalizer
	parser     *parser.Parser
	classifier *parser.Classifier
	store      *store.Resilient
	cache      *store.Cache
	workflow   *workflow.Workflow
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// buildApp wires the full pipeline from environment configuration. transport
// is the chat boundary commands want their replies on.
func buildApp(transport workflow.Transport) (*app, error) {
	logger := newLogger()
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	locale, err := normalize.LoadLocale(os.Getenv("LOCALE_FILE"))
	if err != nil {
		return nil, common.WrapError(err, "load locale")
	}
	norm := normalize.New(locale)
	p := parser.NewParser(norm, cfg.Parser)
	classifier := parser.NewClassifier(p, norm, cfg.Parser, logger)

	workbook, err := store.NewWorkbook(cfg.Store, logger)
	if err != nil {
		return nil, common.WrapError(err, "open workbook")
	}
	cache, err := store.OpenCache(cfg.Store.CachePath, logger)
	if err != nil {
		return nil, common.WrapError(err, "open cache")
	}

	policy := retry.Policy{Attempts: cfg.Retry.Attempts, Backoff: cfg.Retry.Backoff}
	resilient := store.NewResilient(workbook, cache, policy, logger)

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	wf := workflow.New(
		workflow.Config{MinPrice: cfg.Store.MinPrice, MaxPrice: cfg.Store.MaxPrice},
		norm, locale, p, classifier, extractor, resilient, transport, policy, logger,
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		locale:     locale,
		norm:       norm,
		parser:     p,
		classifier: classifier,
		store:      resilient,
		cache:      cache,
		workflow:   wf,
	}, nil
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", "error", err)
		}
	}
}
