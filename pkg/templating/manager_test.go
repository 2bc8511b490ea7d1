package templating

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
)

// setupTestManager creates a TemplateManager over a temp dir holding a single
// page, backed by a seeded generator over the embedded sample.
func setupTestManager(tb testing.TB) *TemplateManager {
	tb.Helper()

	templateDir := tb.TempDir()
	writeTemplate(tb, templateDir, "dummy.tmpl.html", "Hello")

	sample, err := samples.Default()
	if err != nil {
		tb.Fatalf("failed to load default sample: %v", err)
	}
	gen := lorem.NewGenerator(sample, lorem.WithSeed(1))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	config := DefaultConfig()
	tm, err := NewTemplateManager(logger, gen, &config, templateDir)
	if err != nil {
		tb.Fatalf("NewTemplateManager failed: %v", err)
	}
	return tm
}

func writeTemplate(tb testing.TB, dir, name, content string) {
	tb.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		tb.Fatalf("failed to write template %s: %v", name, err)
	}
}

func TestNewTemplateManager(t *testing.T) {
	tm := setupTestManager(t)
	if len(tm.templateNames) != 1 {
		t.Errorf("expected 1 template on init, got %d", len(tm.templateNames))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewTemplateManager(logger, nil, nil, t.TempDir()); err == nil {
		t.Error("expected an error for a nil generator, got nil")
	}
}

func TestManager_Refresh(t *testing.T) {
	tm := setupTestManager(t)
	initialCount := len(tm.templateNames)

	writeTemplate(t, tm.templateDir, "new.tmpl.html", "New Content")
	writeTemplate(t, tm.templateDir, "shared.part.html", `{{define "shared"}}x{{end}}`)

	if err := tm.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(tm.templateNames) != initialCount+1 {
		t.Errorf("expected %d templates after refresh, got %d", initialCount+1, len(tm.templateNames))
	}

	want := []string{"dummy.tmpl.html", "new.tmpl.html", "shared.part.html"}
	got := tm.GetTemplateNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("GetTemplateNames() = %v, want %v", got, want)
	}
}

func TestManager_RefreshKeepsPreviousSetOnError(t *testing.T) {
	tm := setupTestManager(t)
	writeTemplate(t, tm.templateDir, "broken.tmpl.html", "{{ end")

	if err := tm.Refresh(); err == nil {
		t.Fatal("expected Refresh to fail on a broken template")
	}

	var buf bytes.Buffer
	if err := tm.Execute(&buf, "dummy.tmpl.html", nil); err != nil {
		t.Fatalf("Execute failed after a failed refresh: %v", err)
	}
	if buf.String() != "Hello" {
		t.Errorf("expected output 'Hello', got '%s'", buf.String())
	}
}

func TestManager_Execute(t *testing.T) {
	tm := setupTestManager(t)
	var buf bytes.Buffer
	if err := tm.Execute(&buf, "dummy.tmpl.html", nil); err != nil {
		t.Fatalf("Execute failed for valid template: %v", err)
	}
	if buf.String() != "Hello" {
		t.Errorf("expected output 'Hello', got '%s'", buf.String())
	}

	err := tm.Execute(&buf, "nonexistent.tmpl.html", nil)
	if err == nil {
		t.Fatal("expected an error for non-existent template, but got nil")
	}
	expectedErrString := `html/template: "nonexistent.tmpl.html" is undefined`
	if !strings.Contains(err.Error(), expectedErrString) {
		t.Errorf("error message mismatch: got '%v', expected to contain '%s'", err, expectedErrString)
	}
}

func TestManager_ExecuteTemplateString(t *testing.T) {
	tm := setupTestManager(t)
	writeTemplate(t, tm.templateDir, "greet.part.html", `{{define "greet"}}Hi {{.}}{{end}}`)
	if err := tm.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Run twice: the second call must not see state left by the first.
	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		if err := tm.ExecuteTemplateString(&buf, `{{template "greet" .}}!`, "there"); err != nil {
			t.Fatalf("ExecuteTemplateString failed: %v", err)
		}
		if buf.String() != "Hi there!" {
			t.Errorf("expected 'Hi there!', got '%s'", buf.String())
		}
	}

	if err := tm.ExecuteTemplateString(io.Discard, "{{ if }}", nil); err == nil {
		t.Error("expected a parse error, got nil")
	}
}

func TestManager_GetRandomTemplate(t *testing.T) {
	tm := setupTestManager(t)
	if name := tm.GetRandomTemplate(); name != "dummy.tmpl.html" {
		t.Errorf("GetRandomTemplate returned unexpected name '%s'", name)
	}
	if !tm.HasTemplate("dummy.tmpl.html") || tm.HasTemplate("missing.tmpl.html") {
		t.Error("HasTemplate disagrees with the loaded set")
	}

	empty := setupTestManager(t)
	_ = os.Remove(filepath.Join(empty.templateDir, "dummy.tmpl.html"))
	if err := empty.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if name := empty.GetRandomTemplate(); name != "" {
		t.Errorf("expected no template, got '%s'", name)
	}
}

func TestManager_SetConfig(t *testing.T) {
	tm := setupTestManager(t)
	newConfig := DefaultConfig()
	newConfig.MaxWords = 99
	tm.SetConfig(&newConfig)

	if got := tm.GetConfig().MaxWords; got != 99 {
		t.Errorf("SetConfig failed to update MaxWords: expected 99, got %d", got)
	}
}

func TestManager_Watch(t *testing.T) {
	old := WatchDebounce
	WatchDebounce = 10 * time.Millisecond
	t.Cleanup(func() { WatchDebounce = old })

	tm := setupTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := tm.Watch(ctx); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	writeTemplate(t, tm.templateDir, "ignored.txt", "not a template")
	writeTemplate(t, tm.templateDir, "watched.tmpl.html", "Watched")

	deadline := time.Now().Add(5 * time.Second)
	for !tm.HasTemplate("watched.tmpl.html") {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not pick up the new template")
		}
		time.Sleep(20 * time.Millisecond)
	}

	var buf bytes.Buffer
	if err := tm.Execute(&buf, "watched.tmpl.html", nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if buf.String() != "Watched" {
		t.Errorf("expected 'Watched', got '%s'", buf.String())
	}
}

func TestManager_WatchMissingDir(t *testing.T) {
	tm := setupTestManager(t)
	tm.templateDir = filepath.Join(t.TempDir(), "missing")
	if err := tm.Watch(context.Background()); err == nil {
		t.Error("expected an error watching a missing directory, got nil")
	}
}

// setupBenchmarkTemplate is a helper to create and load a specific template for a benchmark.
func setupBenchmarkTemplate(b *testing.B, tm *TemplateManager, name, content string) {
	b.Helper()
	writeTemplate(b, tm.templateDir, name, content)
	if err := tm.Refresh(); err != nil {
		b.Fatalf("failed to refresh after writing template %s: %v", name, err)
	}
}

// BenchmarkExecute_Simple measures the cost of the word and sentence functions.
func BenchmarkExecute_Simple(b *testing.B) {
	tm := setupTestManager(b)
	content := `<h1>{{loremWord}}</h1><p>{{loremSentence}}</p>`
	setupBenchmarkTemplate(b, tm, "simple_funcs.tmpl.html", content)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.Execute(io.Discard, "simple_funcs.tmpl.html", nil)
	}
}

// BenchmarkExecute_Article renders a page of several paragraphs.
func BenchmarkExecute_Article(b *testing.B) {
	tm := setupTestManager(b)
	content := `<h1>{{loremIncipit}}</h1>{{range loremParagraphs 5 true}}<p>{{.}}</p>{{end}}`
	setupBenchmarkTemplate(b, tm, "article.tmpl.html", content)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.Execute(io.Discard, "article.tmpl.html", nil)
	}
}
