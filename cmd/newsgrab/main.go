package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pevans/newsgrab/config"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	subcommand := "serve"
	args := []string{}
	if len(os.Args) >= 2 {
		subcommand = os.Args[1]
		args = os.Args[2:]
	}

	if subcommand == "help" || subcommand == "--help" || subcommand == "-h" {
		printUsage()
		return
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Server.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch subcommand {
	case "serve":
		handleServe(cfg, log)
	case "collect":
		handleCollect(cfg, log, args)
	case "list":
		handleList(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("newsgrab - Single-page article collector")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  newsgrab <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve      Run the collection web form (default)")
	fmt.Println("  collect    Collect one URL and store the article")
	fmt.Println("  list       List collected articles, newest first")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  NEWSGRAB_CONFIG         Path to config file (default: newsgrab.yaml)")
	fmt.Println("  NEWSGRAB_ADDR           Listen address (default: 0.0.0.0:5000)")
	fmt.Println("  NEWSGRAB_DSN            Path to article database (default: database.db)")
	fmt.Println("  NEWSGRAB_DEBUG          Verbose errors and logs (default: true)")
	fmt.Println("  NEWSGRAB_FETCH_TIMEOUT  Page fetch timeout (default: 15s)")
	fmt.Println("  NEWSGRAB_USER_AGENT     User-Agent sent when fetching pages")
	fmt.Println("  NEWSGRAB_TEMPLATES_DIR  Template directory (default: templates)")
	fmt.Println("  NEWSGRAB_STATIC_DIR     Static asset directory (default: static)")
}
