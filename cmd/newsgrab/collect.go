package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/newsgrab/collector"
	"github.com/pevans/newsgrab/config"
	"go.uber.org/zap"
)

func handleCollect(cfg *config.Config, log *zap.Logger, args []string) {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	showContent := fs.Bool("content", false, "Print the extracted body text")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: URL is required\n")
		fmt.Fprintf(os.Stderr, "Usage: newsgrab collect [--content] <url>\n")
		os.Exit(1)
	}

	store := openStore(cfg)
	defer store.Close()

	coll := collector.New(newFetcher(cfg, log), store, log)

	result, err := coll.Collect(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if result.Outcome != collector.OutcomeSuccess {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Outcome.Message())
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "  Cause: %v\n", result.Err)
		}
		os.Exit(1)
	}

	draft := result.Draft
	fmt.Printf("✓ %s (id %d)\n", result.Outcome.Message(), result.ID)
	fmt.Printf("  Title: %s\n", draft.Title)
	fmt.Printf("  Published: %s\n", draft.PubDate)
	fmt.Printf("  Source: %s\n", draft.Source)
	fmt.Printf("  URL: %s\n", draft.URL)
	if *showContent {
		fmt.Println()
		fmt.Println(draft.Content)
	}
}
