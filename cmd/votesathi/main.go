// Package main is the VoteSathi CLI entry point.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/cli"
	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/server"
	"github.com/hyperjump/votesathi/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/votesathi/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// A missing default config is not an error: built-in defaults and the environment apply.
// Returns the config and the path that was actually loaded ("" for defaults only).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			config.ApplyEnv(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "booths":
		runBooths()
	case "extract":
		runExtract()
	case "ask":
		runAsk()
	case "index":
		runIndex()
	case "version", "--version", "-v":
		fmt.Printf("votesathi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and builds the logger shared by every subcommand.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode, "votesathi")
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))
	return cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	for _, dir := range cfg.Knowledge.Directories {
		n, err := components.Indexer.IndexDirectory(ctx, dir)
		if err != nil {
			logger.Warn("knowledge directory not indexed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		logger.Info("knowledge directory indexed", zap.String("dir", dir), zap.Int("files", n))
	}
	if cfg.Knowledge.Watch && len(cfg.Knowledge.Directories) > 0 {
		w := newKnowledgeWatcher(cfg, components, logger)
		if err := w.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Service, &cfg.Server, components.Registry, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runBooths() {
	fs := flag.NewFlagSet("booths", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 0, "maximum results (default from config)")
	locale := fs.String("locale", "en", "output language (en or hi)")
	format := fs.String("format", "text", "output format: text or json")
	explain := fs.Bool("explain", false, "show per-signal scores")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: votesathi booths [flags] <query>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}
	outFormat, err := cli.ParseOutputFormat(*format)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	engine := newBoothEngine(cfg, logger)

	ctx := context.Background()
	if *explain {
		results, err := engine.Explain(ctx, query, *limit)
		if err != nil {
			fmt.Printf("Booth search failed: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteExplain(os.Stdout, results, outFormat)
		return
	}
	results, err := engine.SearchScored(ctx, query, *limit)
	if err != nil {
		fmt.Printf("Booth search failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteBooths(os.Stdout, results, models.NormalizeLocale(*locale), outFormat)
}

// readImageFile loads an image and returns it base64-encoded with its MIME
// type. An empty mimeType is detected from the content.
func readImageFile(path, mimeType string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return "", "", fmt.Errorf("image %s is empty", path)
	}
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", "", fmt.Errorf("%s is %s, not an image", path, mimeType)
	}
	return base64.StdEncoding.EncodeToString(data), mimeType, nil
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	locale := fs.String("locale", "en", "explanation language")
	mimeType := fs.String("mime", "", "image MIME type (detected when empty)")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: votesathi extract [flags] <image-file>")
		os.Exit(1)
	}
	outFormat, err := cli.ParseOutputFormat(*format)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	encoded, mime, err := readImageFile(fs.Arg(0), *mimeType)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	pipeline := newVisionPipeline(cfg, logger)

	res, err := pipeline.ExtractDocumentFields(context.Background(), encoded, mime, *locale)
	if err != nil {
		fmt.Printf("Extraction failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteExtraction(os.Stdout, res, outFormat)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	locale := fs.String("locale", "en", "answer language")
	session := fs.String("session", "", "session ID for memory and audit")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	question := buildQuery(fs.Args())
	if question == "" {
		fmt.Println("Usage: votesathi ask [flags] <question>")
		os.Exit(1)
	}
	outFormat, err := cli.ParseOutputFormat(*format)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()
	for _, dir := range cfg.Knowledge.Directories {
		if _, err := components.Indexer.IndexDirectory(ctx, dir); err != nil {
			logger.Warn("knowledge directory not indexed", zap.String("dir", dir), zap.Error(err))
		}
	}

	resp, err := components.Service.Chat(ctx, models.ChatRequest{Message: question, Locale: *locale, SessionID: *session})
	if err != nil {
		fmt.Printf("Ask failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteAnswer(os.Stdout, resp, outFormat)
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: votesathi index [flags] <file-or-directory>")
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	if cfg.Knowledge.IndexPath == "" {
		fmt.Println("knowledge.index_path is not set; an in-memory index would be lost on exit")
		os.Exit(1)
	}

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Printf("Invalid path: %v\n", err)
		os.Exit(1)
	}
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to index: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		n, err := components.Indexer.IndexDirectory(ctx, path)
		if err != nil {
			fmt.Printf("Failed to index: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %s (%d files changed)\n", path, n)
		return
	}
	n, err := components.Indexer.IndexFile(ctx, path)
	if err != nil {
		fmt.Printf("Failed to index: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %s (%d passages)\n", path, n)
}

func printUsage() {
	fmt.Println(`votesathi - Multilingual voter assistance service

Usage:
  votesathi server [flags]             Start the HTTP server
  votesathi booths [flags] <query>     Search polling stations
  votesathi extract [flags] <image>    Read a voter document image
  votesathi ask [flags] <question>     Ask a question from the terminal
  votesathi index [flags] <path>       Add a file or directory to the knowledge base
  votesathi version                    Show version
  votesathi help                       Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/votesathi/config.yaml)

Server Flags:
  --debug            Enable debug logging

Booths Flags:
  --limit int        Maximum results (default from config)
  --locale string    Output language: en or hi (default: en)
  --format string    Output format: text or json (default: text)
  --explain          Show per-signal ranking scores

Extract Flags:
  --locale string    Explanation language (default: en)
  --mime string      Image MIME type (detected when empty)
  --format string    Output format: text or json (default: text)

Ask Flags:
  --locale string    Answer language (default: en)
  --session string   Session ID for memory and audit
  --format string    Output format: text or json (default: text)

Examples:
  votesathi server
  votesathi booths "primary school rampur"
  votesathi booths --explain --format json booth 12
  votesathi extract --locale hi epic-card.jpg
  votesathi ask "How do I register as a new voter?"
  votesathi index ./knowledge`)
}
