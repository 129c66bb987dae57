package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/rtt/internal/utils"
)

type configTestCase struct {
	name             string
	globalContent    string
	localContent     string
	explicitPath     string
	explicitContent  string
	expectSourceType string
	expectIgnored    []string
	expectIncluded   []string
	expectClipboard  *bool
	expectTokens     *bool
	expectModel      string
	expectDepth      *int
	expectBranch     string
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func intPointer(value int) *int {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:             "local_overrides_global",
			globalContent:    "render:\n  source_type: remote\n  ignore_folders: [vendor]\n  clipboard: true\n  tokens:\n    model: gpt-4\n",
			localContent:     "render:\n  source_type: local\n  clipboard: false\n  tokens:\n    enabled: true\n  clone:\n    depth: 1\n    branch: main\n",
			expectSourceType: "local",
			expectIgnored:    []string{"vendor"},
			expectClipboard:  boolPointer(false),
			expectTokens:     boolPointer(true),
			expectModel:      "gpt-4",
			expectDepth:      intPointer(1),
			expectBranch:     "main",
		},
		{
			name:           "lists_replace_and_deduplicate",
			globalContent:  "render:\n  ignore_folders: [vendor, dist]\n",
			localContent:   "render:\n  ignore_folders: [' build ', build, '']\n  include_folders: [src]\n",
			expectIgnored:  []string{"build"},
			expectIncluded: []string{"src"},
		},
		{
			name:             "explicit_path_replaces_local",
			localContent:     "render:\n  source_type: local\n",
			explicitPath:     "custom.yaml",
			explicitContent:  "render:\n  output_file: out.txt\n",
			expectSourceType: "",
		},
		{
			name: "no_files",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.ConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}
			render := loadedConfig.Render

			if render.SourceType != testCase.expectSourceType {
				t.Fatalf("expected source type %q, got %q", testCase.expectSourceType, render.SourceType)
			}
			if strings.Join(render.IgnoreFolders, ",") != strings.Join(testCase.expectIgnored, ",") {
				t.Fatalf("expected ignore folders %v, got %v", testCase.expectIgnored, render.IgnoreFolders)
			}
			if strings.Join(render.IncludeFolders, ",") != strings.Join(testCase.expectIncluded, ",") {
				t.Fatalf("expected include folders %v, got %v", testCase.expectIncluded, render.IncludeFolders)
			}
			if testCase.expectClipboard == nil {
				if render.Clipboard != nil {
					t.Fatalf("expected no clipboard override")
				}
			} else if render.Clipboard == nil || *render.Clipboard != *testCase.expectClipboard {
				t.Fatalf("unexpected clipboard value")
			}
			if testCase.expectTokens == nil {
				if render.Tokens.Enabled != nil {
					t.Fatalf("expected no tokens override")
				}
			} else if render.Tokens.Enabled == nil || *render.Tokens.Enabled != *testCase.expectTokens {
				t.Fatalf("unexpected tokens enabled value")
			}
			if render.Tokens.Model != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, render.Tokens.Model)
			}
			if testCase.expectDepth == nil {
				if render.Clone.Depth != nil {
					t.Fatalf("expected no depth override")
				}
			} else if render.Clone.Depth == nil || *render.Clone.Depth != *testCase.expectDepth {
				t.Fatalf("unexpected clone depth")
			}
			if render.Clone.Branch != testCase.expectBranch {
				t.Fatalf("expected branch %q, got %q", testCase.expectBranch, render.Clone.Branch)
			}
			if testCase.explicitContent != "" && render.OutputFile != "out.txt" {
				t.Fatalf("expected explicit file to supply output_file, got %q", render.OutputFile)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	workingDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(workingDir, utils.ConfigFileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected error when configuration path is a directory")
	}
}

func TestRenderMergeKeepsBaseWhenOverrideEmpty(t *testing.T) {
	base := ApplicationConfiguration{Render: RenderConfiguration{
		SourceType:       "local",
		IgnoreExtensions: []string{".log"},
		Clipboard:        boolPointer(true),
		Clone:            CloneConfiguration{Depth: intPointer(3)},
	}}
	merged := base.Merge(ApplicationConfiguration{})
	if merged.Render.SourceType != "local" || len(merged.Render.IgnoreExtensions) != 1 {
		t.Fatalf("unexpected merge result: %+v", merged.Render)
	}
	if merged.Render.Clipboard == nil || !*merged.Render.Clipboard {
		t.Fatalf("expected clipboard to survive merge")
	}
	if merged.Render.Clone.Depth == nil || *merged.Render.Clone.Depth != 3 {
		t.Fatalf("expected clone depth to survive merge")
	}
}
