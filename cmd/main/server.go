package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/rs/cors"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/registry"
	"github.com/CTAG07/loremipsum/pkg/samples"
	"github.com/CTAG07/loremipsum/pkg/store"
	"github.com/CTAG07/loremipsum/pkg/templating"
)

// starterTemplate is written to an empty template directory on first start.
const starterTemplate = `<!DOCTYPE html>
<html lang="la">
<head><meta charset="utf-8"><title>{{title (loremWords 3)}}</title></head>
<body>
<h1>{{loremSentence}}</h1>
{{range loremParagraphs 4 true}}<p>{{.}}</p>
{{end}}</body>
</html>
`

// sampleResolver finds samples by name, built-in samples first.
type sampleResolver struct {
	store *store.Store
	cm    *ConfigManager
}

// resolve returns the named sample. An empty name is the configured default.
// Unknown names fail with store.ErrSampleNotFound.
func (sr *sampleResolver) resolve(ctx context.Context, name string) (*lorem.Sample, error) {
	if name == "" {
		name = sr.cm.Get().Generation.DefaultSample
	}
	s, err := samples.Get(name)
	if err == nil || !errors.Is(err, registry.ErrNotRegistered) {
		return s, err
	}
	return sr.store.Load(ctx, name)
}

// Server wires the sample store, the template manager and the HTTP APIs.
type Server struct {
	cm          *ConfigManager
	db          *sql.DB
	store       *store.Store
	logger      *slog.Logger
	tm          *templating.TemplateManager
	resolver    *sampleResolver
	loremAPI    *LoremAPI
	samplesAPI  *SamplesAPI
	serverAPI   *ServerAPI
	templateAPI *TemplateAPI
	mux         *http.ServeMux
	handler     http.Handler
	stopWatch   context.CancelFunc
}

// NewServer builds a Server over db, which must already carry the store schema.
func NewServer(cm *ConfigManager, logger *slog.Logger, db *sql.DB, actionChan chan string) (*Server, error) {
	config := cm.Get()

	st, err := store.New(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create sample store: %w", err)
	}
	st.SetLogger(logger)

	resolver := &sampleResolver{store: st, cm: cm}
	defaultSample, err := resolver.resolve(context.Background(), "")
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to load default sample %q: %w", config.Generation.DefaultSample, err)
	}

	if err = prepareTemplateDir(config.Server.TemplateDir); err != nil {
		st.Close()
		return nil, err
	}
	gen := lorem.NewGenerator(defaultSample, lorem.WithLogger(logger))
	tm, err := templating.NewTemplateManager(logger, gen, config.Templates, config.Server.TemplateDir)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create template manager: %w", err)
	}
	cm.SetTemplateManager(tm)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	if config.Server.WatchTemplates {
		if err = tm.Watch(watchCtx); err != nil {
			logger.Warn("Template hot reload disabled", slog.String("error", err.Error()))
		}
	}

	server := &Server{
		cm:          cm,
		db:          db,
		store:       st,
		logger:      logger,
		tm:          tm,
		resolver:    resolver,
		loremAPI:    NewLoremAPI(resolver, cm, logger),
		samplesAPI:  NewSamplesAPI(st, resolver, logger),
		serverAPI:   NewServerAPI(cm, actionChan, logger),
		templateAPI: NewTemplateAPI(tm, logger),
		mux:         http.NewServeMux(),
		stopWatch:   stopWatch,
	}

	server.loremAPI.RegisterRoutes(server.mux)
	server.samplesAPI.RegisterRoutes(server.mux)
	server.serverAPI.RegisterRoutes(server.mux)
	server.templateAPI.RegisterRoutes(server.mux)

	c := cors.New(cors.Options{
		AllowedOrigins: config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	})
	server.handler = withRequestLogging(logger, c.Handler(server.mux))
	return server, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops the template watcher and releases the store. The database is
// owned by the caller.
func (s *Server) Close() {
	s.stopWatch()
	s.store.Close()
}

// prepareTemplateDir creates dir with a starter page when it does not exist.
func prepareTemplateDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat template dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create template dir: %w", err)
	}
	page := filepath.Join(dir, "page.tmpl.html")
	if err := atomic.WriteFile(page, bytes.NewReader([]byte(starterTemplate))); err != nil {
		return fmt.Errorf("failed to write starter template: %w", err)
	}
	return nil
}
