package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/newsgrab/articles"
	"github.com/pevans/newsgrab/config"
)

func handleList(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Output as JSON")
	fs.Parse(args)

	store := openStore(cfg)
	defer store.Close()

	summaries, err := store.ListAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list articles: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		printListJSON(summaries)
		return
	}
	printListTable(summaries)
}

// printListTable prints articles in human-readable table format
func printListTable(summaries []articles.Summary) {
	if len(summaries) == 0 {
		fmt.Println("No articles collected yet.")
		return
	}

	fmt.Printf("%-6s %-19s %-20s %-40s %s\n", "ID", "COLLECTED", "PUBLISHED", "TITLE", "URL")
	fmt.Println("----------------------------------------------------------------------------------------------------")

	for _, summary := range summaries {
		fmt.Printf("%-6d %-19s %-20s %-40s %s\n",
			summary.ID,
			summary.CollectTime,
			truncate(summary.PubDate, 20),
			truncate(summary.Title, 40),
			summary.URL,
		)
	}
}

// printListJSON prints articles in JSON format
func printListJSON(summaries []articles.Summary) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summaries); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

// truncate shortens s to at most n characters, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
