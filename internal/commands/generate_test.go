package commands_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/rtt/internal/commands"
	"github.com/temirov/rtt/internal/filter"
	"github.com/temirov/rtt/internal/source"
	"github.com/temirov/rtt/internal/types"
)

const localRoot = "/project"

type stubCloner struct {
	fileSystem  afero.Fs
	files       map[string]string
	cloneError  error
	calls       int
	destination string
}

func (cloner *stubCloner) Clone(_ context.Context, destination string, _ source.CloneOptions) error {
	cloner.calls++
	cloner.destination = destination
	for relativePath, fileContent := range cloner.files {
		fullPath := filepath.Join(destination, relativePath)
		if mkdirError := cloner.fileSystem.MkdirAll(filepath.Dir(fullPath), 0o755); mkdirError != nil {
			return mkdirError
		}
		if writeError := afero.WriteFile(cloner.fileSystem, fullPath, []byte(fileContent), 0o644); writeError != nil {
			return writeError
		}
	}
	return cloner.cloneError
}

type lengthCounter struct{}

func (lengthCounter) Name() string { return "length" }

func (lengthCounter) CountString(input string) (int, error) { return len(input), nil }

func writeProject(testingInstance *testing.T, fileSystem afero.Fs, files map[string]string) {
	testingInstance.Helper()
	for relativePath, fileContent := range files {
		fullPath := filepath.Join(localRoot, relativePath)
		if mkdirError := fileSystem.MkdirAll(filepath.Dir(fullPath), 0o755); mkdirError != nil {
			testingInstance.Fatalf("mkdir: %v", mkdirError)
		}
		if writeError := afero.WriteFile(fileSystem, fullPath, []byte(fileContent), 0o644); writeError != nil {
			testingInstance.Fatalf("write: %v", writeError)
		}
	}
}

// TestGenerateLocal verifies the whole pipeline over a local directory.
func TestGenerateLocal(testingInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeProject(testingInstance, fileSystem, map[string]string{
		"a/b.txt":      "b",
		"a/c/d.txt":    "d",
		"e.txt":        "e",
		"cache.pyc":    "compiled",
		".git/HEAD":    "ref",
		"a/.gitignore": "*.log",
	})
	generator := commands.NewGenerator(commands.Dependencies{FileSystem: fileSystem, Cloner: &stubCloner{}, TokenCounter: lengthCounter{}})

	result, generateError := generator.Generate(context.Background(), commands.GenerateOptions{
		Source: source.Request{Source: localRoot, SourceType: types.SourceTypeLocal},
	})
	if generateError != nil {
		testingInstance.Fatalf("Generate error: %v", generateError)
	}
	if strings.Join(result.Files, ",") != "e.txt,a/b.txt,a/c/d.txt" {
		testingInstance.Fatalf("unexpected files %v", result.Files)
	}
	expectedTree := "## Tree Structure\n├── e.txt\n├── a\n│   ├── b.txt\n│   ├── c\n│   │   ├── d.txt\n"
	if !strings.HasPrefix(result.Document, "# Structure of repository /project\n\n"+expectedTree) {
		testingInstance.Fatalf("unexpected document head:\n%s", result.Document)
	}
	if result.Summary.TotalFiles != 3 || result.Summary.TotalBytes != 3 {
		testingInstance.Errorf("unexpected summary %+v", result.Summary)
	}
	if result.Summary.Tokens != len(result.Document) || result.Summary.Model != "length" {
		testingInstance.Errorf("unexpected token summary %+v", result.Summary)
	}
}

// TestGenerateIsIdempotent verifies two runs produce byte-identical documents.
func TestGenerateIsIdempotent(testingInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeProject(testingInstance, fileSystem, map[string]string{"x/y.go": "package x", "z.md": "# z", "x/w/v.txt": "v"})
	generator := commands.NewGenerator(commands.Dependencies{FileSystem: fileSystem, Cloner: &stubCloner{}})
	options := commands.GenerateOptions{
		Source: source.Request{Source: localRoot, SourceType: types.SourceTypeLocal},
		Filter: filter.FilterOptions{IgnoreExtensions: []string{".md"}},
	}
	firstResult, firstError := generator.Generate(context.Background(), options)
	secondResult, secondError := generator.Generate(context.Background(), options)
	if firstError != nil || secondError != nil {
		testingInstance.Fatalf("Generate errors: %v, %v", firstError, secondError)
	}
	if firstResult.Document != secondResult.Document {
		testingInstance.Fatalf("documents differ")
	}
}

// TestGenerateConfigConflict verifies the conflict is reported before the source is acquired.
func TestGenerateConfigConflict(testingInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	cloner := &stubCloner{fileSystem: fileSystem}
	generator := commands.NewGenerator(commands.Dependencies{FileSystem: fileSystem, Cloner: cloner})

	result, generateError := generator.Generate(context.Background(), commands.GenerateOptions{
		Source: source.Request{Source: "owner/name", SourceType: types.SourceTypeRemote},
		Filter: filter.FilterOptions{IgnoreFolders: []string{"tests"}, IncludeFolders: []string{"src"}},
	})
	if !errors.Is(generateError, types.ErrConfigConflict) {
		testingInstance.Fatalf("expected ErrConfigConflict, got %v", generateError)
	}
	if result.Document != "" || result.Files != nil {
		testingInstance.Fatalf("expected empty result, got %+v", result)
	}
	if cloner.calls != 0 {
		testingInstance.Fatalf("source must not be acquired on a config conflict")
	}
}

// TestGenerateRemote verifies remote sources are cloned, rendered, and cleaned up.
func TestGenerateRemote(testingInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	cloner := &stubCloner{fileSystem: fileSystem, files: map[string]string{"src/main.go": "package main", "docs/readme.md": "docs"}}
	generator := commands.NewGenerator(commands.Dependencies{FileSystem: fileSystem, Cloner: cloner})

	result, generateError := generator.Generate(context.Background(), commands.GenerateOptions{
		Source: source.Request{Source: "owner/name"},
		Filter: filter.FilterOptions{IncludeFolders: []string{"src"}},
	})
	if generateError != nil {
		testingInstance.Fatalf("Generate error: %v", generateError)
	}
	if !strings.HasPrefix(result.Document, "# Structure of repository owner/name\n") {
		testingInstance.Fatalf("unexpected label:\n%s", result.Document)
	}
	if strings.Join(result.Files, ",") != "src/main.go" {
		testingInstance.Fatalf("unexpected files %v", result.Files)
	}
	exists, existsError := afero.DirExists(fileSystem, cloner.destination)
	if existsError != nil || exists {
		testingInstance.Fatalf("clone directory should be removed, exists=%t err=%v", exists, existsError)
	}
}

// TestGenerateSourceUnavailable verifies clone failures abort the run without output.
func TestGenerateSourceUnavailable(testingInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	cloner := &stubCloner{fileSystem: fileSystem, files: map[string]string{"a.txt": "a"}, cloneError: errors.New("repository not found")}
	generator := commands.NewGenerator(commands.Dependencies{FileSystem: fileSystem, Cloner: cloner})

	result, generateError := generator.Generate(context.Background(), commands.GenerateOptions{
		Source: source.Request{Source: "owner/missing", SourceType: types.SourceTypeRemote},
	})
	if !errors.Is(generateError, types.ErrSourceUnavailable) {
		testingInstance.Fatalf("expected ErrSourceUnavailable, got %v", generateError)
	}
	if result.Document != "" {
		testingInstance.Fatalf("expected no document")
	}
	exists, _ := afero.DirExists(fileSystem, cloner.destination)
	if exists {
		testingInstance.Fatalf("clone directory should be removed after failure")
	}

	_, localError := generator.Generate(context.Background(), commands.GenerateOptions{
		Source: source.Request{Source: "/does/not/exist", SourceType: types.SourceTypeLocal},
	})
	if !errors.Is(localError, types.ErrSourceUnavailable) {
		testingInstance.Fatalf("expected ErrSourceUnavailable for missing local root, got %v", localError)
	}
}
