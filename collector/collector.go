package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pevans/newsgrab/extractor"
	"github.com/pevans/newsgrab/fetcher"
	"go.uber.org/zap"
)

// ErrInvalidURL is the Result error for submissions that don't start with
// "http".
var ErrInvalidURL = errors.New("url must start with http")

// Outcome classifies a collection attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeInvalidURL
	OutcomeNetworkError
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidURL:
		return "invalid_url"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Message is the user-facing text for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeSuccess:
		return "Collected successfully!"
	case OutcomeInvalidURL:
		return "Please enter a complete URL (including http or https)"
	case OutcomeTimeout:
		return "Collection failed: the page did not respond in time"
	default:
		return "Collection failed, please check that the URL is correct and the network is reachable"
	}
}

// PageFetcher downloads a page as text.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// ArticleSaver persists drafts.
type ArticleSaver interface {
	Insert(draft extractor.Draft) (int64, error)
}

// Result describes one collection attempt. Draft and ID are set only for
// OutcomeSuccess; Err holds the cause of the other outcomes.
type Result struct {
	Outcome Outcome
	URL     string
	Draft   *extractor.Draft
	ID      int64
	Err     error
}

// Collector runs the validate, fetch, extract and store pipeline.
type Collector struct {
	fetcher PageFetcher
	store   ArticleSaver
	log     *zap.Logger
}

// New creates a Collector.
func New(pages PageFetcher, store ArticleSaver, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{fetcher: pages, store: store, log: log}
}

// Collect processes one submitted URL. Validation and fetch failures are
// reported through the Result and never create a record. The error return
// is reserved for storage failures.
func (c *Collector) Collect(ctx context.Context, rawURL string) (Result, error) {
	pageURL := strings.TrimSpace(rawURL)
	if !strings.HasPrefix(pageURL, "http") {
		return Result{Outcome: OutcomeInvalidURL, URL: pageURL, Err: ErrInvalidURL}, nil
	}

	markup, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		outcome := OutcomeNetworkError
		if errors.Is(err, fetcher.ErrTimeout) {
			outcome = OutcomeTimeout
		}
		c.log.Warn("collection failed",
			zap.String("url", pageURL),
			zap.Stringer("outcome", outcome),
			zap.Error(err),
		)
		return Result{Outcome: outcome, URL: pageURL, Err: err}, nil
	}

	draft := extractor.Extract(markup, pageURL)

	id, err := c.store.Insert(draft)
	if err != nil {
		return Result{}, fmt.Errorf("failed to save article: %w", err)
	}

	c.log.Info("collected article",
		zap.Int64("id", id),
		zap.String("url", pageURL),
		zap.String("title", draft.Title),
	)

	return Result{Outcome: OutcomeSuccess, URL: pageURL, Draft: &draft, ID: id}, nil
}
