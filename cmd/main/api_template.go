package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/CTAG07/loremipsum/pkg/templating"
)

// maxTemplateBody caps uploaded template sources.
const maxTemplateBody = 1 << 20

// TemplateAPI holds the dependencies for the template handlers.
type TemplateAPI struct {
	tm     *templating.TemplateManager
	logger *slog.Logger
}

// NewTemplateAPI creates a new instance of the TemplateAPI.
func NewTemplateAPI(tm *templating.TemplateManager, logger *slog.Logger) *TemplateAPI {
	return &TemplateAPI{tm: tm, logger: logger}
}

// RegisterRoutes sets up the routing for /render and all /api/templates endpoints.
func (t *TemplateAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /render/{$}", t.handleRender)
	mux.HandleFunc("GET /render/{template}", t.handleRender)
	mux.HandleFunc("GET /api/templates", t.handleList)
	mux.HandleFunc("POST /api/templates/refresh", t.handleRefresh)
	mux.HandleFunc("POST /api/templates/test", t.handleTest)
	mux.HandleFunc("GET /api/templates/{name}", t.handleGetFile)
	mux.HandleFunc("PUT /api/templates/{name}", t.handlePutFile)
	mux.HandleFunc("DELETE /api/templates/{name}", t.handleDeleteFile)
}

// handleRender renders a page. Without a name a random page is served.
func (t *TemplateAPI) handleRender(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("template")
	if name == "" {
		name = t.tm.GetRandomTemplate()
		if name == "" {
			respondWithError(w, http.StatusNotFound, "No templates loaded")
			return
		}
	}
	if !t.tm.HasTemplate(name) {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Template '%s' not found", name))
		return
	}

	var buf bytes.Buffer
	if err := t.tm.Execute(&buf, name, nil); err != nil {
		t.logger.Error("Failed to execute template",
			slog.String("request_id", requestID(r.Context())),
			slog.String("template", name),
			slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render template: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// handleList returns a list of all available template names.
func (t *TemplateAPI) handleList(w http.ResponseWriter, _ *http.Request) {
	names := t.tm.GetTemplateNames()
	if names == nil {
		names = []string{}
	}
	respondWithJSON(w, http.StatusOK, names)
}

// handleRefresh triggers a manual refresh of templates from disk.
func (t *TemplateAPI) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if err := t.tm.Refresh(); err != nil {
		t.logger.Error("API triggered refresh failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh templates: %v", err))
		return
	}
	t.logger.Info("Templates refreshed via API")
	w.WriteHeader(http.StatusNoContent)
}

// handleTest executes the request body as a template without saving it.
func (t *TemplateAPI) handleTest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTemplateBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read request body: %v", err))
		return
	}

	var buf bytes.Buffer
	if err = t.tm.ExecuteTemplateString(&buf, string(body), nil); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Template execution failed: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// templatePath validates a template file name and returns its path inside
// the template directory.
func (t *TemplateAPI) templatePath(name string) (string, int, error) {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") ||
		(!strings.HasSuffix(name, ".tmpl.html") && !strings.HasSuffix(name, ".part.html")) {
		return "", http.StatusBadRequest, fmt.Errorf("invalid template name format")
	}
	templateDir, err := filepath.Abs(t.tm.GetTemplateDir())
	if err != nil {
		return "", http.StatusInternalServerError, fmt.Errorf("failed to resolve template directory")
	}
	path := filepath.Join(templateDir, name)
	if filepath.Dir(path) != templateDir {
		return "", http.StatusForbidden, fmt.Errorf("access denied: path outside template directory")
	}
	return path, 0, nil
}

func (t *TemplateAPI) handleGetFile(w http.ResponseWriter, r *http.Request) {
	path, code, err := t.templatePath(r.PathValue("name"))
	if err != nil {
		respondWithError(w, code, err.Error())
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Template not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(content)
}

// handlePutFile writes a template file and reloads the set. A template that
// fails to parse is rolled back.
func (t *TemplateAPI) handlePutFile(w http.ResponseWriter, r *http.Request) {
	path, code, err := t.templatePath(r.PathValue("name"))
	if err != nil {
		respondWithError(w, code, err.Error())
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTemplateBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read request body: %v", err))
		return
	}

	previous, readErr := os.ReadFile(path)
	if err = atomic.WriteFile(path, bytes.NewReader(body)); err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to write template file: %v", err))
		return
	}
	if err = t.tm.Refresh(); err != nil {
		if readErr == nil {
			_ = atomic.WriteFile(path, bytes.NewReader(previous))
		} else {
			_ = os.Remove(path)
		}
		_ = t.tm.Refresh()
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Template rejected: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (t *TemplateAPI) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	path, code, err := t.templatePath(r.PathValue("name"))
	if err != nil {
		respondWithError(w, code, err.Error())
		return
	}
	if err = os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			respondWithError(w, http.StatusNotFound, "Template not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete template file: %v", err))
		return
	}
	_ = t.tm.Refresh()
	w.WriteHeader(http.StatusNoContent)
}
