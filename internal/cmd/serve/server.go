package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/aisupport/faq-service/internal/chat"
	"github.com/aisupport/faq-service/internal/config"
	"github.com/aisupport/faq-service/internal/ingest"
	"github.com/aisupport/faq-service/internal/plugin/route/conversation"
	routesystem "github.com/aisupport/faq-service/internal/plugin/route/system"
	"github.com/aisupport/faq-service/internal/plugin/route/upload"
	storemetrics "github.com/aisupport/faq-service/internal/plugin/store/metrics"
	registrymigrate "github.com/aisupport/faq-service/internal/registry/migrate"
	registryroute "github.com/aisupport/faq-service/internal/registry/route"
	registrystore "github.com/aisupport/faq-service/internal/registry/store"
	"github.com/aisupport/faq-service/internal/security"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Server holds the running server and its subsystems.
type Server struct {
	Config *config.Config
	Store  registrystore.ChatStore
	Router *gin.Engine

	// Port is the actual listening port, useful when cfg.Listener.Port is 0.
	Port int

	httpServer *http.Server
	listener   net.Listener
}

// Shutdown gracefully shuts down the server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if closeErr := s.Store.Close(ctx); err == nil {
		err = closeErr
	}
	return err
}

// StartServer initializes all subsystems and starts the HTTP server.
// Use cfg.Listener.Port=0 for a random port. Actual port: Server.Port.
func StartServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	log.Info("Starting FAQ service",
		"httpPort", cfg.Listener.Port,
		"db", cfg.DatastoreType,
		"dbName", cfg.DBName,
	)

	// Initialize Prometheus metrics with configured constant labels.
	metricsLabels, err := security.ParseMetricsLabels(cfg.MetricsLabels)
	if err != nil {
		return nil, fmt.Errorf("invalid --metrics-labels: %w", err)
	}
	security.InitMetrics(metricsLabels)

	// Run migrations
	if err := registrymigrate.RunAll(ctx); err != nil {
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	// Initialize store
	storeLoader, err := registrystore.Select(cfg.DatastoreType)
	if err != nil {
		return nil, err
	}
	store, err := storeLoader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	store = storemetrics.Wrap(store)

	// Set up gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.ManagementAccessLog {
		router.Use(security.AccessLogMiddleware())
	} else {
		router.Use(security.AccessLogMiddleware("/health", "/ready", "/metrics"))
	}
	router.Use(security.MetricsMiddleware())
	router.Use(maxBodySizeMiddleware(cfg.MaxBodySize))
	if cfg.CORSEnabled {
		router.Use(corsMiddleware(cfg.CORSOrigins))
	}

	// Mount registered route plugins (health, readiness, metrics).
	for _, loader := range registryroute.Loaders() {
		if err := loader(router); err != nil {
			return nil, fmt.Errorf("failed to load routes: %w", err)
		}
	}

	// Mount API routes
	manager := chat.NewManager(store)
	pipeline := ingest.NewPipeline(store)
	conversation.MountRoutes(router, store, manager)
	upload.MountRoutes(router, pipeline, cfg)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Listener.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.Listener.Port, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: cfg.Listener.ReadHeaderTimeout,
	}
	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "err", err)
		}
	}()

	log.Info("Server listening", "port", port)
	routesystem.MarkReady()

	return &Server{
		Config:     cfg,
		Store:      store,
		Router:     router,
		Port:       port,
		httpServer: httpServer,
		listener:   ln,
	}, nil
}
