package templating

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/CTAG07/loremipsum/pkg/lorem"
)

const (
	pageSuffix    = ".tmpl.html"
	partialSuffix = ".part.html"
)

// TemplateManager owns the parsed template set, its configuration and the
// generator the lorem functions draw from. All methods are safe for
// concurrent use.
type TemplateManager struct {
	logger         *slog.Logger
	config         *TemplateConfig
	gen            *lorem.Generator
	templates      *template.Template
	cleanTemplates *template.Template
	templateNames  []string
	funcMap        template.FuncMap
	templateDir    string
	mu             sync.RWMutex
}

// NewTemplateManager creates a TemplateManager over templateDir and performs
// an initial Refresh. A nil config uses DefaultConfig.
func NewTemplateManager(logger *slog.Logger, gen *lorem.Generator, config *TemplateConfig, templateDir string) (*TemplateManager, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: template manager needs a generator", lorem.ErrInvalidConfig)
	}
	if config == nil {
		def := DefaultConfig()
		config = &def
	}

	tm := &TemplateManager{
		logger:      logger,
		gen:         gen,
		templateDir: templateDir,
		config:      config,
	}
	tm.funcMap = tm.makeFuncMap()

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("Template manager initialized", slog.String("dir", templateDir))
	return tm, nil
}

func (tm *TemplateManager) makeFuncMap() template.FuncMap {
	return template.FuncMap{
		// Placeholder text (from funcs_lorem.go)
		"loremWord":       tm.loremWord,
		"loremWords":      tm.loremWords,
		"loremSentence":   tm.loremSentence,
		"loremSentences":  tm.loremSentences,
		"loremParagraph":  tm.loremParagraph,
		"loremParagraphs": tm.loremParagraphs,
		"loremIncipit":    tm.loremIncipit,

		// Logic & Control (from funcs_logic.go)
		"repeat":       tm.repeat,
		"list":         list,
		"randomChoice": randomChoice,
		"randomInt":    randomInt,

		// Text & arithmetic (from funcs_text.go)
		"title":    title,
		"join":     join,
		"truncate": truncate,
		"add":      add,
		"sub":      sub,
		"mult":     mult,
		"div":      div,
		"mod":      mod,
		"inc":      inc,
		"dec":      dec,
	}
}

// SetConfig swaps the safety limits without reparsing templates.
func (tm *TemplateManager) SetConfig(config *TemplateConfig) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.config = config
}

// SetGenerator swaps the generator behind the lorem functions, e.g. after a
// different sample was selected.
func (tm *TemplateManager) SetGenerator(gen *lorem.Generator) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.gen = gen
}

// parseGlob parses every file matching pattern into t. It returns the names
// of the parsed files; a pattern matching nothing is not an error.
func parseGlob(t *template.Template, pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	if _, err = t.ParseFiles(files...); err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return names, nil
}

// Refresh reloads all pages and partials from the template directory. On a
// parse error the previously loaded set stays in place.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	parsed := template.New("").Funcs(tm.funcMap)

	pagePattern := filepath.Join(tm.templateDir, "*"+pageSuffix)
	names, err := parseGlob(parsed, pagePattern)
	if err != nil {
		tm.logger.Error("Failed to parse template files", slog.String("error", err.Error()))
		return fmt.Errorf("failed to parse template files: %w", err)
	}

	partials, err := parseGlob(parsed, filepath.Join(tm.templateDir, "*"+partialSuffix))
	if err != nil {
		tm.logger.Error("Failed to parse partial files", slog.String("error", err.Error()))
		return fmt.Errorf("failed to parse partial files: %w", err)
	}

	if len(names) == 0 {
		tm.logger.Warn("No template files found matching pattern", slog.String("pattern", pagePattern))
	}

	clean, err := parsed.Clone()
	if err != nil {
		tm.logger.Error("Failed to clone templates", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create a clean clone of templates: %w", err)
	}

	slices.Sort(names)
	tm.templates = parsed
	tm.cleanTemplates = clean
	tm.templateNames = names
	tm.logger.Info("Loaded template and partial files",
		slog.Int("templates", len(names)),
		slog.Int("partials", len(partials)))
	return nil
}

// Execute renders the named template to w.
func (tm *TemplateManager) Execute(w io.Writer, name string, data any) error {
	if name == "" {
		return nil
	}
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.ExecuteTemplate(w, name, data)
}

// HasTemplate reports whether name is a loaded page.
func (tm *TemplateManager) HasTemplate(name string) bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	_, found := slices.BinarySearch(tm.templateNames, name)
	return found
}

// GetRandomTemplate returns the name of a random page, or "" when none are
// loaded.
func (tm *TemplateManager) GetRandomTemplate() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if len(tm.templateNames) == 0 {
		return ""
	}
	return tm.templateNames[rand.IntN(len(tm.templateNames))]
}

// GetConfig returns a copy of the current configuration.
func (tm *TemplateManager) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return *tm.config
}

// GetTemplateNames returns the names of all loaded pages and partials.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	var names []string
	for _, t := range tm.templates.Templates() {
		// The root template has no name.
		if strings.HasSuffix(t.Name(), ".html") {
			names = append(names, t.Name())
		}
	}
	slices.Sort(names)
	return names
}

// GetTemplateDir returns the directory templates are loaded from.
func (tm *TemplateManager) GetTemplateDir() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templateDir
}

// ExecuteTemplateString parses and executes a raw template string with
// access to the loaded partials and the function map.
func (tm *TemplateManager) ExecuteTemplateString(w io.Writer, content string, data any) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	// A template set cannot be parsed into after execution, so work on a
	// fresh clone of the never-executed set.
	tempSet, err := tm.cleanTemplates.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone clean templates for string execution: %w", err)
	}

	t, err := tempSet.Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse string template: %w", err)
	}
	return t.Execute(w, data)
}
