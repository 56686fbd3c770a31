package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/msami123/Web-chat-bot/internal/cache"
	"github.com/msami123/Web-chat-bot/internal/chat"
	"github.com/msami123/Web-chat-bot/internal/chunker"
	"github.com/msami123/Web-chat-bot/internal/config"
	"github.com/msami123/Web-chat-bot/internal/corpus"
	"github.com/msami123/Web-chat-bot/internal/domain"
	"github.com/msami123/Web-chat-bot/internal/index"
	"github.com/msami123/Web-chat-bot/internal/llm/openai"
	"github.com/msami123/Web-chat-bot/internal/logger"
	"github.com/msami123/Web-chat-bot/internal/metrics"
	"github.com/msami123/Web-chat-bot/internal/prompt"
	"github.com/msami123/Web-chat-bot/internal/retriever"
	"github.com/msami123/Web-chat-bot/internal/server"
	"github.com/msami123/Web-chat-bot/internal/summarizer"
	"github.com/msami123/Web-chat-bot/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		serve   bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/webbot/config.yaml if not provided)")
	flag.BoolVar(&serve, "serve", false, "Serve the HTTP API instead of the terminal chat")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: webbot [--config=config.yaml] [--serve] [knowledge.json|doc.txt|doc.pdf ...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, cfgPath, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if inputs := flag.Args(); len(inputs) > 0 {
		cfg.Corpus.Paths = inputs
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if !serve {
		// Keep the terminal for the chat UI.
		log = log.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.String("path", cfgPath), zap.Error(err))
	}
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Corpus and index
	loader := corpus.NewLoader(
		chunker.NewSentenceChunker(cfg.Corpus.SentencesPerChunk, cfg.Corpus.OverlapSentences),
		log,
	)
	indexOpts := index.Options{MinDF: cfg.Index.MinDF, MaxDF: cfg.Index.MaxDF, NgramMax: cfg.Index.NgramMax}
	chunks, err := loader.Load(ctx, cfg.Corpus.Paths)
	if err != nil {
		log.Fatal("Failed to load knowledge base", zap.Strings("paths", cfg.Corpus.Paths), zap.Error(err))
	}
	idx, err := index.Build(chunks, indexOpts)
	if err != nil {
		log.Fatal("Failed to build index", zap.Error(err))
	}
	holder, err := index.NewHolder(idx)
	if err != nil {
		log.Fatal("Failed to publish index", zap.Error(err))
	}
	metrics.ObserveIndex(idx.Len(), idx.VocabularySize())
	log.Info("Index built",
		zap.Int("chunks", idx.Len()),
		zap.Int("vocabulary", idx.VocabularySize()),
	)

	system, err := prompt.LoadSystem(cfg.Prompt.SystemPath)
	if err != nil {
		log.Fatal("Failed to load system prompt", zap.Error(err))
	}

	chatCfg := chat.Config{
		Retriever:        retriever.New(holder, retriever.WithLanguageBonus(cfg.Retrieval.LanguageBonus), retriever.WithLogger(log)),
		Summarizer:       summarizer.NewFrequencySummarizer(),
		System:           system,
		Loader:           loader,
		Holder:           holder,
		CorpusPaths:      cfg.Corpus.Paths,
		Index:            indexOpts,
		TopK:             cfg.Retrieval.TopK,
		MaxContextChars:  cfg.Retrieval.MaxContextChars,
		SummarySentences: cfg.Retrieval.SummarySentences,
		Logger:           log,
	}

	if gen, err := buildGenerator(cfg.Model, log); err != nil {
		log.Warn("Language model unavailable, answering offline", zap.Error(err))
	} else {
		chatCfg.Generator = gen
	}

	if cfg.Cache.Enabled {
		store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			PoolSize: cfg.Cache.PoolSize,
		})
		if err != nil {
			log.Warn("Answer cache disabled", zap.Error(err))
		} else {
			defer func() { _ = store.Close() }()
			chatCfg.Cache = cache.New(store, cfg.Cache.TTL(), log)
		}
	}

	svc, err := chat.NewService(chatCfg)
	if err != nil {
		log.Fatal("Failed to create chat service", zap.Error(err))
	}

	if serve {
		runServer(ctx, cfg, svc, log)
		return
	}

	p := tea.NewProgram(tui.New(svc, cfg.Model.AnswerBudget()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal("TUI failed", zap.Error(err))
	}
}

func buildGenerator(mc config.ModelConfig, log *zap.Logger) (domain.Generator, error) {
	key, err := openai.ResolveAPIKey(mc.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	client, err := openai.NewClient(openai.Config{
		BaseURL:     mc.BaseURL,
		APIKey:      key,
		Model:       mc.Model,
		Temperature: mc.Temperature,
		Timeout:     mc.Timeout(),
		MaxRetries:  mc.MaxRetries,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Language model configured", zap.String("model", client.Name()), zap.String("base_url", mc.BaseURL))
	return client, nil
}

func runServer(ctx context.Context, cfg *config.AppConfig, svc *chat.Service, log *zap.Logger) {
	sc := cfg.Server
	api := server.New(svc, 0, log, server.WithAnswerTimeout(cfg.Model.AnswerBudget()))
	srv := &http.Server{
		Addr:         sc.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  time.Duration(sc.ReadTimeoutSecs) * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", sc.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(sc.ShutdownTimeoutSecs)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}
	log.Info("Server stopped gracefully")
}
