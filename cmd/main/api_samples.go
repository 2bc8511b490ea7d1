package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
	"github.com/CTAG07/loremipsum/pkg/store"
)

// maxSampleBody caps uploaded sample documents.
const maxSampleBody = 32 << 20

// SamplesAPI manages the samples in the store and describes built-in ones.
type SamplesAPI struct {
	store    *store.Store
	resolver *sampleResolver
	logger   *slog.Logger
}

// NewSamplesAPI creates a new instance of the SamplesAPI.
func NewSamplesAPI(st *store.Store, resolver *sampleResolver, logger *slog.Logger) *SamplesAPI {
	return &SamplesAPI{store: st, resolver: resolver, logger: logger}
}

// RegisterRoutes sets up the routing for all /api/samples endpoints.
func (a *SamplesAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/samples", a.handleList)
	mux.HandleFunc("POST /api/samples", a.handleCreate)
	mux.HandleFunc("GET /api/samples/stats", a.handleStats)
	mux.HandleFunc("POST /api/samples/import", a.handleImport)
	mux.HandleFunc("GET /api/samples/{name}", a.handleGet)
	mux.HandleFunc("DELETE /api/samples/{name}", a.handleDelete)
	mux.HandleFunc("GET /api/samples/{name}/export", a.handleExport)
}

// sampleDetail describes one sample. Info is set for stored samples only.
type sampleDetail struct {
	Name    string            `json:"name"`
	Source  string            `json:"source"`
	Summary sampleSummary     `json:"summary"`
	Info    *store.SampleInfo `json:"info,omitempty"`
}

func isBuiltin(name string) bool {
	return slices.Contains(samples.Names(), name)
}

func (a *SamplesAPI) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	a.logger.Error(msg,
		slog.String("request_id", requestID(r.Context())),
		slog.String("error", err.Error()))
	respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", msg, err))
}

// handleList returns the built-in sample names and the stored sample infos.
func (a *SamplesAPI) handleList(w http.ResponseWriter, r *http.Request) {
	stored, err := a.store.List(r.Context())
	if err != nil {
		a.internalError(w, r, "Failed to list samples", err)
		return
	}
	if stored == nil {
		stored = []store.SampleInfo{}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"builtin": samples.Names(),
		"stored":  stored,
	})
}

// handleCreate cooks the ingredients in the request body and stores the
// result under the name query parameter.
func (a *SamplesAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'name' is required")
		return
	}
	if isBuiltin(name) {
		respondWithError(w, http.StatusConflict, fmt.Sprintf("'%s' is a built-in sample", name))
		return
	}

	var in lorem.Ingredients
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSampleBody)).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	sample, err := in.Cook()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid sample: %v", err))
		return
	}
	if err = a.store.Save(r.Context(), name, sample); err != nil {
		a.internalError(w, r, "Failed to save sample", err)
		return
	}
	info, err := a.store.Info(r.Context(), name)
	if err != nil {
		a.internalError(w, r, "Failed to read saved sample", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, info)
}

func (a *SamplesAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.GetStats(r.Context())
	if err != nil {
		a.internalError(w, r, "Failed to get store statistics", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// handleImport stores a document produced by the export endpoint.
func (a *SamplesAPI) handleImport(w http.ResponseWriter, r *http.Request) {
	name, err := a.store.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxSampleBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Failed to import sample: %v", err))
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (a *SamplesAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	sample, err := a.resolver.resolve(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrSampleNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Sample '%s' not found", name))
			return
		}
		a.internalError(w, r, "Failed to load sample", err)
		return
	}

	detail := sampleDetail{Name: name, Source: "builtin", Summary: summarize(sample)}
	if !isBuiltin(name) {
		info, err := a.store.Info(r.Context(), name)
		if err != nil {
			a.internalError(w, r, "Failed to read sample info", err)
			return
		}
		detail.Source, detail.Info = "store", &info
	}
	respondWithJSON(w, http.StatusOK, detail)
}

func (a *SamplesAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if isBuiltin(name) {
		respondWithError(w, http.StatusBadRequest, "Built-in samples cannot be removed")
		return
	}
	if err := a.store.Remove(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrSampleNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Sample '%s' not found", name))
			return
		}
		a.internalError(w, r, "Failed to remove sample", err)
		return
	}
	a.logger.Info("Sample removed via API", slog.String("sample", name))
	w.WriteHeader(http.StatusNoContent)
}

// handleExport writes a sample as an import document. Built-in samples are
// exported too, so they can be copied into another store.
func (a *SamplesAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".json"))

	if isBuiltin(name) {
		sample, err := samples.Get(name)
		if err != nil {
			a.internalError(w, r, "Failed to load sample", err)
			return
		}
		respondWithJSON(w, http.StatusOK, store.ExportedSample{Name: name, Sample: sample.Freeze()})
		return
	}

	if _, err := a.store.Info(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrSampleNotFound) {
			w.Header().Del("Content-Disposition")
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Sample '%s' not found", name))
			return
		}
		a.internalError(w, r, "Failed to read sample info", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := a.store.Export(r.Context(), name, w); err != nil {
		a.logger.Error("Failed to export sample",
			slog.String("request_id", requestID(r.Context())),
			slog.String("sample", name),
			slog.String("error", err.Error()))
	}
}
