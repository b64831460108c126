package main

import (
	"fmt"
	"os"

	"github.com/pevans/newsgrab/articles"
	"github.com/pevans/newsgrab/config"
	"github.com/pevans/newsgrab/fetcher"
	"go.uber.org/zap"
)

// newLogger returns a development logger in debug mode and a production
// logger otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore opens the article store or exits.
func openStore(cfg *config.Config) *articles.ArticleStore {
	store, err := articles.NewArticleStore(cfg.Storage.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open article store: %v\n", err)
		os.Exit(1)
	}
	return store
}

// newFetcher builds the page fetcher from configuration. The timeout was
// validated by config.Load.
func newFetcher(cfg *config.Config, log *zap.Logger) *fetcher.Fetcher {
	timeout, _ := cfg.FetchTimeout()
	return fetcher.New(fetcher.Options{
		Timeout:   timeout,
		UserAgent: cfg.Fetch.UserAgent,
		Logger:    log,
	})
}
