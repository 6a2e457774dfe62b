package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"culturewalk.ai/internal/auth"
	"culturewalk.ai/internal/config"
	"culturewalk.ai/internal/manifest"
	"culturewalk.ai/internal/narrate"
	"culturewalk.ai/internal/overrides"
	"culturewalk.ai/internal/persistence/audit"
	"culturewalk.ai/internal/progress"
	"culturewalk.ai/internal/scene"
	"culturewalk.ai/internal/tour"
	"culturewalk.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		configPath = flag.String("config", "./configs/server.yaml", "server config path (empty for defaults)")
		dataDir    = flag.String("data", "", "runtime data directory (overrides config)")
		publicDir  = flag.String("public", "", "public asset directory (overrides config)")
		rescan     = flag.Bool("rescan_models", false, "rescan the models directory and rewrite the manifest on startup")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfgPath := strings.TrimSpace(*configPath)
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			logger.Printf("config %s not found; using defaults", cfgPath)
			cfgPath = ""
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *publicDir != "" {
		cfg.PublicDir = *publicDir
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	if *rescan {
		m, err := manifest.Scan(cfg.PublicDir, time.Now())
		if err != nil {
			logger.Printf("model scan: %v", err)
		} else if err := manifest.Write(cfg.PublicDir, m); err != nil {
			logger.Printf("model manifest write: %v", err)
		} else {
			logger.Printf("model manifest: %d files", len(m.Files))
		}
	}

	var authsvc *auth.Service
	if cfg.Admin.Password != "" {
		authsvc = auth.NewService(cfg.Admin.JWTSecret, cfg.Admin.Password, cfg.Admin.TokenTTL())
	} else {
		// No password configured: mutating endpoints stay locked, but a
		// throwaway secret keeps token verification well-defined.
		logger.Printf("admin.password not set; admin API disabled")
		authsvc = auth.NewService(uuid.NewString(), "", cfg.Admin.TokenTTL())
	}

	tracker, err := progress.Open(filepath.Join(cfg.DataDir, "progress.db"))
	if err != nil {
		logger.Fatalf("open progress db: %v", err)
	}
	defer tracker.Close()

	auditLog := audit.NewLogger(cfg.DataDir)
	defer auditLog.Close()

	cat := scene.Builtin()
	session := tour.New(cat, tour.Options{
		Backend:          overrides.NewFileBackend(cfg.DataDir),
		Logger:           logger,
		Models:           manifest.DirSource{PublicDir: cfg.PublicDir},
		BackupDir:        filepath.Join(cfg.DataDir, "backups"),
		Audit:            auditLog,
		Tracker:          tracker,
		DefaultScene:     cfg.DefaultScene,
		TransitionWindow: cfg.TransitionWindow(),
	})

	llm := narrate.New(cfg.LLM)
	logger.Printf("llm provider: %s", providerName(cfg.LLM))

	ctx, cancel := signalContext()
	defer cancel()

	api := &apiServer{
		session: session,
		auth:    authsvc,
		tracker: tracker,
		tts:     cfg.TTS,
		public:  cfg.PublicDir,
		log:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", api.metricsHandler)
	api.register(mux)
	mux.HandleFunc("/v1/ws", ws.NewServer(session, llm, authsvc, cfg.TTS, logger).Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	tracker.Flush()
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func providerName(cfg narrate.Config) string {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return "mock (openai unconfigured)"
		}
		return fmt.Sprintf("openai (%s)", cfg.Model)
	case "ollama":
		return fmt.Sprintf("ollama (%s)", cfg.Model)
	default:
		return "mock"
	}
}
