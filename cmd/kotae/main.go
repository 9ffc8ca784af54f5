// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cancel"
	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/dataset"
	"github.com/hyperjump/kotae/internal/engine"
	"github.com/hyperjump/kotae/internal/history"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

const defaultServerURL = "http://localhost:5005"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "kotae server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
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
	case "ask":
		runAsk()
	case "upload":
		runUpload()
	case "history":
		runHistory()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (uploads, cache reloads, engine calls)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if err := components.Store.Bootstrap(ctx); err != nil {
		logger.Fatal("Failed to bootstrap dataset", zap.Error(err))
	}
	components.Cache.Reload(ctx)

	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(
		cfg.Storage.UploadsDir,
		[]string{".csv", ".xlsx", ".db"},
		func() { components.Cache.Reload(context.Background()) },
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Warn("uploads watcher not started", zap.Error(err))
	} else {
		defer watchSvc.Stop()
	}

	srv := server.NewServer(
		components.Chat,
		components.Store,
		components.Cache,
		components.Log,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = srv.Stop(shutdownCtx)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// askArgsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func askArgsReorder(args []string) []string {
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

func runAsk() {
	askArgs := askArgsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae ask [flags] <question>")
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: kotae ask [flags] <question>")
		os.Exit(1)
	}

	body, _ := json.Marshal(models.AskRequest{Message: question})
	resp, err := http.Post(*serverURL+"/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out struct {
		Status   string  `json:"status"`
		Response *string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	if out.Status == "stopped" || out.Response == nil {
		fmt.Println("(stopped)")
		return
	}
	fmt.Println(*out.Response)
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae upload [flags] <file.csv|file.xlsx|file.db>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	if !dataset.AllowedFile(path) {
		fmt.Fprintf(os.Stderr, "Unsupported file type: %s\n", filepath.Ext(path))
		os.Exit(1)
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Open failed: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		os.Exit(1)
	}
	if _, err := io.Copy(fw, f); err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		os.Exit(1)
	}
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, *serverURL+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	client := &http.Client{
		// The handler redirects home on success; the CLI only needs the status.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther && resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Upload failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	fmt.Printf("Uploaded: %s\n", filepath.Base(path))
}

func runHistory() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: kotae history <search|clear> [args]")
		fmt.Println("  kotae history search <query>   Search past questions and answers")
		fmt.Println("  kotae history clear            Clear the conversation")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	limit := fs.Int("limit", 10, "max results")
	_ = fs.Parse(askArgsReorder(os.Args[3:]))
	switch sub {
	case "search":
		if fs.NArg() < 1 {
			fmt.Println("Usage: kotae history search <query>")
			os.Exit(1)
		}
		query := buildQuestion(fs.Args())
		u := fmt.Sprintf("%s/api/v1/history/search?q=%s&limit=%d", *serverURL, url.QueryEscape(query), *limit)
		resp, err := http.Get(u)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Search failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Hits []models.HistoryHit `json:"hits"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		if len(out.Hits) == 0 {
			fmt.Println("No matches.")
			return
		}
		for _, h := range out.Hits {
			fmt.Printf("[%d] (%.2f) Q: %s\n", h.Entry.ID, h.Score, h.Entry.Message)
			fmt.Printf("          A: %s\n", firstLine(h.Entry.Response))
		}
	case "clear":
		resp, err := http.Post(*serverURL+"/clear_chat", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Clear failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Println("Conversation cleared.")
	default:
		fmt.Printf("Unknown history subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// firstLine truncates multi-line answers (table and chart pages) for terminal output.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Entries     int64  `json:"entries"`
	CurrentFile string `json:"current_file"`
	Dataset     struct {
		Loaded  bool `json:"loaded"`
		Rows    int  `json:"rows"`
		Columns int  `json:"columns"`
	} `json:"dataset"`
	DiskUsageBytes *int64 `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("entries:            %d   # persisted (question, answer) turns\n", status.Entries)
		if status.CurrentFile != "" {
			fmt.Printf("current_file:       %s\n", status.CurrentFile)
		} else {
			fmt.Printf("current_file:       (none)\n")
		}
		fmt.Printf("dataset_loaded:     %t\n", status.Dataset.Loaded)
		if status.Dataset.Loaded {
			fmt.Printf("dataset_rows:       %d\n", status.Dataset.Rows)
			fmt.Printf("dataset_columns:    %d\n", status.Dataset.Columns)
		}
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:   %d   # database + uploads + history index\n", *status.DiskUsageBytes)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Storage    storage.Storage
	Index      *history.Index
	Log        *history.Log
	Store      *dataset.Store
	Cache      *dataset.Cache
	Engine     engine.Engine
	Controller *cancel.Controller
	Chat       *chat.Service
	UploadsDir string
	Logger     *zap.Logger
}

func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	idx, err := history.NewIndex(cfg.Storage.HistoryIndexPath)
	if err != nil {
		// The log degrades to storage-only; search endpoints come back empty.
		logger.Warn("history index unavailable", zap.Error(err))
		idx = nil
	}

	datasetStore := dataset.NewStore(store, cfg.Storage.UploadsDir, cfg.Storage.SeedPath, logger)
	cache := dataset.NewCache(datasetStore, logger)
	log := history.NewLog(store, idx, logger)

	eng := engine.NewHTTPEngine(
		cfg.Engine.URL,
		time.Duration(cfg.Engine.TimeoutSeconds)*time.Second,
		cfg.Engine.SampleRows,
	)
	ctrl := cancel.NewController()
	chatSvc := chat.NewService(cache, log, eng, ctrl, logger)

	return &Components{
		Storage:    store,
		Index:      idx,
		Log:        log,
		Store:      datasetStore,
		Cache:      cache,
		Engine:     eng,
		Controller: ctrl,
		Chat:       chatSvc,
		UploadsDir: cfg.Storage.UploadsDir,
		Logger:     logger,
	}, nil
}

func printUsage() {
	fmt.Println(`kotae - Chat with your tabular data

Usage:
  kotae server [flags]              Start the HTTP server
  kotae ask [flags] <question>      Ask a question about the current dataset
  kotae upload [flags] <file>       Upload a dataset (.csv, .xlsx, .db)
  kotae history search <query>      Search past questions and answers
  kotae history clear               Clear the conversation
  kotae status [flags]              Show dataset and conversation status
  kotae version                     Show version
  kotae help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging (uploads, cache reloads, engine calls)

Ask Flags:
  --server string    Server URL (default: http://localhost:5005)

Upload Flags:
  --server string    Server URL (default: http://localhost:5005)

History Flags:
  --server string    Server URL (default: http://localhost:5005)
  --limit int        Max search results (default: 10)

Status Flags:
  --server string    Server URL (default: http://localhost:5005)
  --output string    Output format: text or json (default: text)

Examples:
  kotae server
  kotae upload sales.csv
  kotae ask which region had the highest revenue
  kotae history search revenue
  kotae status --output json`)
}
